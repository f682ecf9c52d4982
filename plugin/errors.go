package plugin

import (
	"errors"
	"fmt"
)

//nolint:gochecknoglobals
var (
	// ErrInvalidDefinition is the sentinel for *DefinitionError.
	ErrInvalidDefinition = &DefinitionError{}

	errEmptyName = errors.New("name must not be empty")
	errEmptyRef  = errors.New("interceptor ref must not be empty")
)

// DefinitionError describes one problem of a plugin definition that
// failed to build.
type DefinitionError struct {
	Plugin string
	// Where points at the offending part, for example "methods[0]".
	Where string
	Err   error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("plugin %q: %s: %v", e.Plugin, e.Where, e.Err)
}

// Unwrap returns the underlying error.
func (e *DefinitionError) Unwrap() error { return e.Err }

// Is returns true if target is a *DefinitionError.
func (e *DefinitionError) Is(target error) bool {
	_, ok := target.(*DefinitionError) //nolint:errorlint
	return ok
}
