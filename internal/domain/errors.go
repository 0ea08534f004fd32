package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedLoader = errors.New("unsupported mod loader")
	ErrInvalidVersion    = errors.New("invalid game version")
	ErrInvalidModName    = errors.New("invalid mod file name")
	ErrNoModsChosen      = errors.New("no mods chosen")
	ErrUnknownMod        = errors.New("mod not available in profile")
	ErrAlreadyActive     = errors.New("profile already active")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrCancelled         = errors.New("cancelled")
)

// CorruptStateError is returned when the active-state record exists but cannot be parsed.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt state record %s: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

// IOError wraps an OS-level filesystem failure together with the offending path.
type IOError struct {
	Op   string // e.g. "create directory", "move", "write record"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// SwitchPhase names the step of a commit in which a failure occurred.
type SwitchPhase string

const (
	PhaseArchive  SwitchPhase = "archive"
	PhaseActivate SwitchPhase = "activate"
	PhaseRecord   SwitchPhase = "record"
)

// PartialSwitchError reports a commit that stopped part way. Moves already made are
// not undone; running the same commit again finishes the switch.
type PartialSwitchError struct {
	Phase   SwitchPhase
	Moved   []string // files that reached their destination in this phase
	Pending []string // files not yet moved
	Err     error
}

func (e *PartialSwitchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "switch interrupted during %s phase", e.Phase)
	if len(e.Pending) > 0 {
		fmt.Fprintf(&b, " (%d file(s) not moved: %s)", len(e.Pending), strings.Join(e.Pending, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *PartialSwitchError) Unwrap() error { return e.Err }
