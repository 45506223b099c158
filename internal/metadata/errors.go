package metadata

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// ErrNotFound is returned when no descriptor exists for an ident.
var ErrNotFound = errors.New("metadata not found")

// Error is a descriptor error with its source position when known.
type Error struct {
	Ident   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Ident, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Ident, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(ident string, err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Ident: ident, Message: err.Error()}
	}

	// Report the first error with position info
	first := errs[0]
	e := &Error{Ident: ident, Message: first.Error()}
	// Prefer a position in the descriptor over one in the schema
	for _, pos := range cueerrors.Positions(first) {
		if !e.Pos.IsValid() || e.Pos.Filename() == schemaFilename {
			e.Pos = pos
		}
	}
	return e
}
