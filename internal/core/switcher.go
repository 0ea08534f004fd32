package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"mcmodman/internal/domain"
	"mcmodman/internal/layout"
	"mcmodman/internal/mover"
	"mcmodman/internal/storage/state"
)

// Switcher swaps the active area between profiles. It holds no state of its own;
// the record in the Store is the single source of truth.
type Switcher struct {
	store  *state.Store
	layout *layout.Layout
	mover  mover.Mover
	logger *slog.Logger
}

// NewSwitcher creates a new profile switcher
func NewSwitcher(store *state.Store, lay *layout.Layout, mv mover.Mover, logger *slog.Logger) *Switcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Switcher{
		store:  store,
		layout: lay,
		mover:  mv,
		logger: logger,
	}
}

// CommitResult describes a completed switch
type CommitResult struct {
	From      domain.ActiveState
	To        domain.ProfileKey
	Archived  []string // files moved from the active area into the previous profile
	Activated []string // files moved from the target profile into the active area
}

// Current loads the active-state record
func (s *Switcher) Current() (domain.ActiveState, error) {
	current, err := s.store.Load()
	if err != nil {
		return domain.ActiveState{}, err
	}
	if err := domain.ValidateState(current); err != nil {
		return domain.ActiveState{}, &domain.CorruptStateError{Path: s.store.Path(), Err: err}
	}
	return current, nil
}

// ProposeTarget decides whether key can be switched to. It never modifies the filesystem.
func (s *Switcher) ProposeTarget(key domain.ProfileKey) (domain.Proposal, error) {
	current, err := s.Current()
	if err != nil {
		return domain.Proposal{}, err
	}

	if current.Matches(key) {
		return domain.Proposal{Kind: domain.ProposalAlreadyActive, Key: key}, nil
	}

	mods, err := s.layout.ListModFiles(s.layout.ProfilePath(key))
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("listing %s: %w", key, err)
	}
	if len(mods) == 0 {
		return domain.Proposal{Kind: domain.ProposalNoModsAvailable, Key: key}, nil
	}

	return domain.Proposal{Kind: domain.ProposalAvailable, Key: key, Mods: mods}, nil
}

// Commit archives the active profile's files, activates chosen from key's profile
// directory, then records key as active. Every chosen name must be listed in key's
// profile directory.
//
// Failures after the first move return *domain.PartialSwitchError and leave completed
// moves in place. Use Continue to finish such a switch.
func (s *Switcher) Commit(ctx context.Context, key domain.ProfileKey, chosen []string) (*CommitResult, error) {
	return s.Continue(ctx, key, chosen, nil)
}

// Continue finishes a switch to key that an earlier Commit left partial. activated names
// the files that attempt already moved into the active area; those still there and gone
// from key's profile directory stay active and are never archived. Other names in
// activated are ignored. With no activated files Continue is Commit.
func (s *Switcher) Continue(ctx context.Context, key domain.ProfileKey, chosen, activated []string) (*CommitResult, error) {
	p, err := s.plan(key, chosen, activated)
	if err != nil {
		return nil, err
	}

	result := &CommitResult{From: p.current, To: key}

	if p.current.IsZero() {
		// First switch: whatever is in the active area belongs to no tracked profile.
		s.logger.Info("no active profile recorded, leaving existing mods in place", "count", len(p.active))
	} else {
		archiveDir := s.layout.ProfilePath(p.current.Key())

		var toArchive []string
		for _, name := range p.active {
			if p.carried[name] {
				continue
			}
			toArchive = append(toArchive, name)
		}

		s.logger.Info("archiving active mods", "profile", p.current.String(), "count", len(toArchive))
		moved, err := s.moveAll(ctx, toArchive, p.activeDir, archiveDir)
		result.Archived = moved
		if err != nil {
			return result, &domain.PartialSwitchError{
				Phase:   domain.PhaseArchive,
				Moved:   moved,
				Pending: toArchive[len(moved):],
				Err:     err,
			}
		}
	}

	var toActivate []string
	for _, name := range p.mods {
		if p.carried[name] {
			result.Activated = append(result.Activated, name)
			continue
		}
		toActivate = append(toActivate, name)
	}

	s.logger.Info("activating mods", "profile", key.String(), "count", len(toActivate), "kept", len(result.Activated))
	moved, err := s.moveAll(ctx, toActivate, p.targetDir, p.activeDir)
	result.Activated = append(result.Activated, moved...)
	if err != nil {
		return result, &domain.PartialSwitchError{
			Phase:   domain.PhaseActivate,
			Moved:   moved,
			Pending: toActivate[len(moved):],
			Err:     err,
		}
	}

	if err := s.store.Save(domain.StateFor(key)); err != nil {
		return result, &domain.PartialSwitchError{Phase: domain.PhaseRecord, Err: err}
	}

	s.logger.Info("switched profile", "from", p.current.String(), "to", key.String())
	return result, nil
}

// Validate checks a switch to key without moving anything. It returns every mod the
// switch would leave in the active area: chosen plus the carried-over activated files.
func (s *Switcher) Validate(key domain.ProfileKey, chosen, activated []string) ([]string, error) {
	p, err := s.plan(key, chosen, activated)
	if err != nil {
		return nil, err
	}
	return p.mods, nil
}

type switchPlan struct {
	current   domain.ActiveState
	targetDir string
	activeDir string
	active    []string        // mod files in the active area
	mods      []string        // files active once the switch completes
	carried   map[string]bool // activated by an earlier attempt and still in place
}

func (s *Switcher) plan(key domain.ProfileKey, chosen, activated []string) (*switchPlan, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	if current.Matches(key) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyActive, key)
	}

	p := &switchPlan{
		current:   current,
		targetDir: s.layout.ProfilePath(key),
		activeDir: s.layout.ActivePath(),
		carried:   make(map[string]bool),
	}

	available, err := s.layout.ListModFiles(p.targetDir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", key, err)
	}
	p.active, err = s.layout.ListActive()
	if err != nil {
		return nil, fmt.Errorf("listing active mods: %w", err)
	}

	inTarget := toSet(available)
	inActive := toSet(p.active)
	for _, name := range activated {
		if inActive[name] && !inTarget[name] {
			p.carried[name] = true
		}
	}

	if err := s.validateChosen(chosen, inTarget, p.carried); err != nil {
		return nil, err
	}

	p.mods = append([]string(nil), chosen...)
	isChosen := toSet(chosen)
	for _, name := range p.active {
		if p.carried[name] && !isChosen[name] {
			p.mods = append(p.mods, name)
		}
	}
	return p, nil
}

// validateChosen checks the selection against the target listing. A name missing from
// the listing is accepted only when an earlier attempt already activated it.
func (s *Switcher) validateChosen(chosen []string, inTarget, carried map[string]bool) error {
	if len(chosen) == 0 {
		return domain.ErrNoModsChosen
	}

	seen := make(map[string]bool, len(chosen))
	for _, name := range chosen {
		if err := domain.ValidateModName(name, s.layout.Extension()); err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("%w %q: listed more than once", domain.ErrInvalidModName, name)
		}
		seen[name] = true

		if !inTarget[name] && !carried[name] {
			return fmt.Errorf("%w: %s", domain.ErrUnknownMod, name)
		}
	}
	return nil
}

// moveAll moves names from one directory to another in order, stopping at the first
// failure. It returns the names that reached toDir.
func (s *Switcher) moveAll(ctx context.Context, names []string, fromDir, toDir string) ([]string, error) {
	moved := make([]string, 0, len(names))
	for _, name := range names {
		select {
		case <-ctx.Done():
			return moved, ctx.Err()
		default:
		}

		src := filepath.Join(fromDir, name)
		dst := filepath.Join(toDir, name)
		if err := s.mover.Move(src, dst); err != nil {
			return moved, &domain.IOError{Op: "move", Path: src, Err: err}
		}
		s.logger.Debug("moved mod", "file", name, "from", fromDir, "to", toDir)
		moved = append(moved, name)
	}
	return moved, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
