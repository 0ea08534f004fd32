package domain

import (
	"fmt"
	"slices"
)

// Loader identifies a mod-loader ecosystem, e.g. "Forge" or "Fabric".
// Loader names double as directory names under the mods root.
type Loader string

const (
	LoaderForge  Loader = "Forge"
	LoaderFabric Loader = "Fabric"
)

// DefaultLoaders is the loader set used when configuration does not name one.
var DefaultLoaders = []Loader{LoaderForge, LoaderFabric}

func (l Loader) String() string {
	return string(l)
}

// LoaderSet is the closed set of loaders supported for a run
type LoaderSet []Loader

// NewLoaderSet builds a loader set from configured names, rejecting duplicates and
// names that cannot be used as a single path segment.
func NewLoaderSet(names []string) (LoaderSet, error) {
	if len(names) == 0 {
		return slices.Clone(LoaderSet(DefaultLoaders)), nil
	}

	set := make(LoaderSet, 0, len(names))
	for _, name := range names {
		if err := validateSegment(name); err != nil {
			return nil, fmt.Errorf("%w: loader %q: %v", ErrInvalidConfig, name, err)
		}
		if slices.Contains(set, Loader(name)) {
			return nil, fmt.Errorf("%w: duplicate loader %q", ErrInvalidConfig, name)
		}
		set = append(set, Loader(name))
	}
	return set, nil
}

// Contains reports whether l is a member of the set
func (s LoaderSet) Contains(l Loader) bool {
	return slices.Contains(s, l)
}

// Parse returns the loader named s, or ErrUnsupportedLoader.
func (s LoaderSet) Parse(name string) (Loader, error) {
	l := Loader(name)
	if !s.Contains(l) {
		return "", fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedLoader, name, s.Strings())
	}
	return l, nil
}

// Strings returns the loader names in configured order
func (s LoaderSet) Strings() []string {
	out := make([]string, len(s))
	for i, l := range s {
		out[i] = string(l)
	}
	return out
}
