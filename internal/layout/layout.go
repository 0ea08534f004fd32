// Package layout maps profiles to directories under the mods root.
//
//	<modsRoot>/            active area, scanned by the game
//	<modsRoot>/<loader>/   one per supported loader
//	<modsRoot>/<loader>/<version>/*.jar
package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"mcmodman/internal/domain"
)

// DefaultExtension is the mod-package extension used when none is configured
const DefaultExtension = ".jar"

// Layout resolves profile directories and lists mod files
type Layout struct {
	root string
	ext  string
}

// New creates a layout rooted at modsRoot. An empty ext selects DefaultExtension.
func New(modsRoot, ext string) *Layout {
	if ext == "" {
		ext = DefaultExtension
	}
	return &Layout{root: modsRoot, ext: ext}
}

// Root returns the mods root
func (l *Layout) Root() string {
	return l.root
}

// Extension returns the mod-package extension, including the dot
func (l *Layout) Extension() string {
	return l.ext
}

// ActivePath returns the directory the game scans for mods
func (l *Layout) ActivePath() string {
	return l.root
}

// LoaderPath returns the directory holding all profiles for a loader
func (l *Layout) LoaderPath(loader domain.Loader) string {
	return filepath.Join(l.root, string(loader))
}

// ProfilePath returns the directory where a profile's inactive mods are stored.
// Keys must come from domain.NewProfileKey; no validation happens here.
func (l *Layout) ProfilePath(key domain.ProfileKey) string {
	return filepath.Join(l.root, string(key.Loader), key.Version)
}

// EnsureSkeleton creates the per-loader directories that are missing
func (l *Layout) EnsureSkeleton(loaders domain.LoaderSet) error {
	for _, loader := range loaders {
		dir := l.LoaderPath(loader)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &domain.IOError{Op: "create directory", Path: dir, Err: err}
		}
	}
	return nil
}

// ListModFiles returns the names of mod files directly inside dir, sorted.
// A missing directory yields an empty list.
func (l *Layout) ListModFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.IOError{Op: "list directory", Path: dir, Err: err}
	}

	var mods []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if domain.HasModExtension(entry.Name(), l.ext) {
			mods = append(mods, entry.Name())
		}
	}
	slices.Sort(mods)

	return mods, nil
}

// ListActive returns the mod files currently in the active area
func (l *Layout) ListActive() ([]string, error) {
	return l.ListModFiles(l.ActivePath())
}

// Size returns the total size of the mod files directly inside dir
func (l *Layout) Size(dir string) (int64, error) {
	mods, err := l.ListModFiles(dir)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, name := range mods {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return 0, &domain.IOError{Op: "stat", Path: filepath.Join(dir, name), Err: err}
		}
		total += info.Size()
	}

	return total, nil
}

// ProfileInfo summarizes a stored profile directory
type ProfileInfo struct {
	Key  domain.ProfileKey
	Path string
	Mods int
	Size int64
}

// Profiles enumerates every profile directory for the given loaders. Versions within a
// loader are ordered by SortVersions. Directories whose names are not valid versions are skipped.
func (l *Layout) Profiles(loaders domain.LoaderSet) ([]ProfileInfo, error) {
	var profiles []ProfileInfo

	for _, loader := range loaders {
		loaderDir := l.LoaderPath(loader)
		entries, err := os.ReadDir(loaderDir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, &domain.IOError{Op: "list directory", Path: loaderDir, Err: err}
		}

		var versions []string
		for _, entry := range entries {
			if !entry.IsDir() || domain.ValidateVersion(entry.Name()) != nil {
				continue
			}
			versions = append(versions, entry.Name())
		}
		SortVersions(versions)

		for _, version := range versions {
			key := domain.ProfileKey{Loader: loader, Version: version}
			dir := l.ProfilePath(key)

			mods, err := l.ListModFiles(dir)
			if err != nil {
				return nil, err
			}
			size, err := l.Size(dir)
			if err != nil {
				return nil, fmt.Errorf("sizing %s: %w", key, err)
			}

			profiles = append(profiles, ProfileInfo{Key: key, Path: dir, Mods: len(mods), Size: size})
		}
	}

	return profiles, nil
}
