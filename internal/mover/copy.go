package mover

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mcmodman/internal/domain"
)

// CopyMover moves files by copying them and removing the source
type CopyMover struct{}

// NewCopy creates a new copy mover
func NewCopy() *CopyMover {
	return &CopyMover{}
}

// Move copies src to dst, then removes src
func (m *CopyMover) Move(src, dst string) error {
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

	return copyAndRemove(src, dst)
}

// Method returns the move method
func (m *CopyMover) Method() domain.MoveMethod {
	return domain.MoveCopy
}

func copyAndRemove(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("removing source: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(dst)
		return fmt.Errorf("copying file: %w", err)
	}

	// src is left in place whenever dst may be incomplete.
	if err := dstFile.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("closing destination: %w", err)
	}

	return nil
}
