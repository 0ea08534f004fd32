package mover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"mcmodman/internal/domain"
)

// ErrSourceMissing is returned when neither the source nor the destination of a move exists
var ErrSourceMissing = errors.New("source file missing")

// Mover relocates a single mod file
type Mover interface {
	Move(src, dst string) error
	Method() domain.MoveMethod
}

// New creates a mover for the given method
func New(method domain.MoveMethod) Mover {
	switch method {
	case domain.MoveCopy:
		return NewCopy()
	default:
		return NewRename()
	}
}

// alreadyMoved reports whether a previous move of src to dst completed: src is gone and
// dst is present. A missing src with no dst is an error.
func alreadyMoved(src, dst string) (bool, error) {
	if _, err := os.Lstat(src); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking source: %w", err)
	}

	if _, err := os.Lstat(dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return false, fmt.Errorf("checking destination: %w", err)
	}
	return true, nil
}
