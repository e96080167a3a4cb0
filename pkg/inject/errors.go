package inject

import (
	"fmt"
	"strings"

	"github.com/vango-dev/engine/internal/errors"
)

// ErrDestroyed matches (via errors.Is) the error returned when a destroyed
// injector is asked to build a new factory instance.
var ErrDestroyed = errors.New("E206")

// NotFoundError means no provider exists for the token in the hierarchy.
type NotFoundError struct {
	Token *Token
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("no provider for %s", e.Token)
}

// CycleError means a factory transitively depends on its own token.
type CycleError struct {
	Path []*Token
}

func (e CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, tok := range e.Path {
		parts[i] = tok.String()
	}
	return "provider cycle detected: " + strings.Join(parts, " -> ")
}

// TypeMismatchError means Resolve[T] could not convert the service to T.
type TypeMismatchError struct {
	Token    *Token
	Expected string
	Actual   string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("provider type mismatch for %s: expected=%s actual=%s",
		e.Token, e.Expected, e.Actual)
}
