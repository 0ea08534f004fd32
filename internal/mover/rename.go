package mover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"mcmodman/internal/domain"
)

// RenameMover moves files with os.Rename, copying when the rename crosses filesystems
type RenameMover struct{}

// NewRename creates a new rename mover
func NewRename() *RenameMover {
	return &RenameMover{}
}

// Move renames src to dst, replacing any file already at dst
func (m *RenameMover) Move(src, dst string) error {
	done, err := alreadyMoved(src, dst)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating destination dir: %w", err)
	}

	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			return copyAndRemove(src, dst)
		}
		return fmt.Errorf("renaming: %w", err)
	}

	return nil
}

// Method returns the move method
func (m *RenameMover) Method() domain.MoveMethod {
	return domain.MoveRename
}
