// Package shell builds the HTML document a render starts from.
//
// A Shell is a pongo2 template executed once per request with the page
// title, language, base href, request URL and application id. Values are
// auto-escaped. Templates link stylesheets and scripts through the asset
// function, which resolves fingerprinted names from a build manifest:
//
//	<link rel="stylesheet" href="{{ asset("app.css") }}">
//
// The result is passed as engine.RenderOptions.Document.
package shell

import (
	"fmt"
	"path/filepath"

	"github.com/flosch/pongo2/v6"
)

// DefaultTemplate mounts the application into <app-root>.
const DefaultTemplate = `<!DOCTYPE html>
<html lang="{{ lang }}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ title }}</title>
{% if base_href %}<base href="{{ base_href }}">{% endif %}
{% for name in styles %}<link rel="stylesheet" href="{{ asset(name) }}">
{% endfor %}</head>
<body data-app="{{ app_id }}">
<app-root></app-root>
{% for name in scripts %}<script src="{{ asset(name) }}" defer></script>
{% endfor %}</body>
</html>`

// Data is the template context of one document.
type Data struct {
	Title    string
	Lang     string
	BaseHref string
	URL      string
	AppID    string

	// Styles and Scripts are asset names linked by the default template.
	Styles  []string
	Scripts []string
}

func (d Data) context(assets *Assets) pongo2.Context {
	return pongo2.Context{
		"title":     d.Title,
		"lang":      d.Lang,
		"base_href": d.BaseHref,
		"url":       d.URL,
		"app_id":    d.AppID,
		"styles":    d.Styles,
		"scripts":   d.Scripts,
		"asset":     assets.URL,
	}
}

// Shell renders documents from a compiled template.
type Shell struct {
	tpl      *pongo2.Template
	defaults Data
	assets   *Assets
}

// Option configures a Shell.
type Option func(*Shell)

// WithAssets resolves template asset names through assets.
func WithAssets(assets *Assets) Option {
	return func(s *Shell) {
		s.assets = assets
	}
}

func newShell(tpl *pongo2.Template, defaults Data, opts []Option) *Shell {
	s := &Shell{tpl: tpl, defaults: withFallbacks(defaults)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New compiles src. An empty src uses DefaultTemplate.
func New(src string, defaults Data, opts ...Option) (*Shell, error) {
	if src == "" {
		src = DefaultTemplate
	}
	tpl, err := pongo2.FromString(src)
	if err != nil {
		return nil, fmt.Errorf("shell: compile template: %w", err)
	}
	return newShell(tpl, defaults, opts), nil
}

// Load compiles the template file at path. Includes and extends resolve
// relative to its directory.
func Load(path string, defaults Data, opts ...Option) (*Shell, error) {
	loader, err := pongo2.NewLocalFileSystemLoader(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("shell: create loader: %w", err)
	}
	set := pongo2.NewSet("shell", loader)
	tpl, err := set.FromFile(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("shell: load %s: %w", path, err)
	}
	return newShell(tpl, defaults, opts), nil
}

func withFallbacks(d Data) Data {
	if d.Lang == "" {
		d.Lang = "en"
	}
	return d
}

// Defaults returns the data used for unset fields.
func (s *Shell) Defaults() Data { return s.defaults }

// Render executes the template. Empty fields of d take the shell defaults.
func (s *Shell) Render(d Data) (string, error) {
	if d.Title == "" {
		d.Title = s.defaults.Title
	}
	if d.Lang == "" {
		d.Lang = s.defaults.Lang
	}
	if d.BaseHref == "" {
		d.BaseHref = s.defaults.BaseHref
	}
	if d.URL == "" {
		d.URL = s.defaults.URL
	}
	if d.AppID == "" {
		d.AppID = s.defaults.AppID
	}
	if d.Styles == nil {
		d.Styles = s.defaults.Styles
	}
	if d.Scripts == nil {
		d.Scripts = s.defaults.Scripts
	}
	out, err := s.tpl.Execute(d.context(s.assets))
	if err != nil {
		return "", fmt.Errorf("shell: execute template: %w", err)
	}
	return out, nil
}

// ForURL renders the document for a request URL with the shell defaults.
func (s *Shell) ForURL(url string) (string, error) {
	return s.Render(Data{URL: url})
}
