package app

import (
	"net/url"
	"strings"
)

// Location is the parsed request URL a render runs for.
type Location struct {
	Href     string
	Path     string
	Query    url.Values
	Hash     string
	Host     string
	Protocol string
}

// ParseLocation parses raw into a Location. An empty raw yields "/".
func ParseLocation(raw string) (Location, error) {
	if strings.TrimSpace(raw) == "" {
		raw = "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, err
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	loc := Location{
		Href:  raw,
		Path:  path,
		Query: u.Query(),
		Hash:  u.Fragment,
		Host:  u.Host,
	}
	if u.Scheme != "" {
		loc.Protocol = u.Scheme + ":"
	}
	return loc, nil
}
