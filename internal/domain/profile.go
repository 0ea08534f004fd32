package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// ActiveState is the persisted record of which profile currently occupies the active area.
// Empty fields mean "absent".
type ActiveState struct {
	ModLoader string `json:"modLoader,omitempty"`
	Version   string `json:"version,omitempty"`
}

// IsZero reports whether no profile has been activated yet
func (s ActiveState) IsZero() bool {
	return s.ModLoader == "" || s.Version == ""
}

// Key returns the profile named by the state. Only meaningful when !IsZero().
func (s ActiveState) Key() ProfileKey {
	return ProfileKey{Loader: Loader(s.ModLoader), Version: s.Version}
}

// Matches reports whether the state names exactly the given profile
func (s ActiveState) Matches(key ProfileKey) bool {
	return s.ModLoader == string(key.Loader) && s.Version == key.Version
}

func (s ActiveState) String() string {
	if s.IsZero() {
		return "none"
	}
	return s.Key().String()
}

// StateFor returns the record that marks key as active
func StateFor(key ProfileKey) ActiveState {
	return ActiveState{ModLoader: string(key.Loader), Version: key.Version}
}

// ProfileKey identifies a profile: a loader plus a game version
type ProfileKey struct {
	Loader  Loader
	Version string
}

// NewProfileKey validates loader against the supported set and version as a safe
// path segment.
func NewProfileKey(loaders LoaderSet, loader, version string) (ProfileKey, error) {
	l, err := loaders.Parse(loader)
	if err != nil {
		return ProfileKey{}, err
	}
	if err := ValidateVersion(version); err != nil {
		return ProfileKey{}, err
	}
	return ProfileKey{Loader: l, Version: version}, nil
}

func (k ProfileKey) String() string {
	return fmt.Sprintf("%s %s", k.Loader, k.Version)
}

// ValidateVersion rejects version strings that would escape or alias the profile directory
func ValidateVersion(version string) error {
	if err := validateSegment(version); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidVersion, version, err)
	}
	if strings.Contains(version, "..") {
		return fmt.Errorf("%w %q: contains a traversal sequence", ErrInvalidVersion, version)
	}
	return nil
}

// ValidateModName checks that name is a plain file name carrying the mod extension.
func ValidateModName(name, ext string) error {
	if err := validateSegment(name); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidModName, name, err)
	}
	if !HasModExtension(name, ext) {
		return fmt.Errorf("%w %q: extension is not %s", ErrInvalidModName, name, ext)
	}
	return nil
}

// HasModExtension reports whether name ends in ext, ignoring case
func HasModExtension(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

func validateSegment(s string) error {
	switch {
	case s == "":
		return errors.New("empty")
	case s == "." || s == "..":
		return errors.New("reserved name")
	case strings.TrimSpace(s) != s:
		return errors.New("leading or trailing whitespace")
	case strings.ContainsAny(s, `/\:`):
		return errors.New("contains a path separator")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return errors.New("contains a control character")
		}
	}
	return nil
}

// ProposalKind is the outcome of proposing a switch target
type ProposalKind int

const (
	ProposalAvailable ProposalKind = iota
	ProposalAlreadyActive
	ProposalNoModsAvailable
)

func (k ProposalKind) String() string {
	switch k {
	case ProposalAvailable:
		return "available"
	case ProposalAlreadyActive:
		return "already-active"
	case ProposalNoModsAvailable:
		return "no-mods-available"
	default:
		return "unknown"
	}
}

// Proposal is the read-only answer to "can we switch to Key?"
type Proposal struct {
	Kind ProposalKind
	Key  ProfileKey
	Mods []string // full listing of the target profile; set only for ProposalAvailable
}

// ValidateState checks that a loaded record names a usable profile directory.
// Loader membership is not checked: a record may name a loader that configuration no longer lists.
func ValidateState(s ActiveState) error {
	if s.IsZero() {
		return nil
	}
	if err := validateSegment(s.ModLoader); err != nil {
		return fmt.Errorf("%w %q: %v", ErrUnsupportedLoader, s.ModLoader, err)
	}
	return ValidateVersion(s.Version)
}
