package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mcmodman/internal/domain"
	"mcmodman/internal/layout"
	"mcmodman/internal/mover"
	"mcmodman/internal/storage/config"
	"mcmodman/internal/storage/db"
	"mcmodman/internal/storage/state"

	"github.com/google/uuid"
)

// ErrNothingToResume is returned by Resume when the last journaled switch finished
var ErrNothingToResume = errors.New("no interrupted switch to resume")

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ModsRoot string         // The game's live mods directory
	DataDir  string         // Directory for the switch journal
	Config   *config.Config // Loaded application config; defaults when nil
	Logger   *slog.Logger
	NoHooks  bool
}

// Service is the main orchestrator for profile operations
type Service struct {
	config   *config.Config
	loaders  domain.LoaderSet
	layout   *layout.Layout
	store    *state.Store
	switcher *Switcher
	db       *db.DB
	hooks    *HookRunner // nil when hooks are disabled
	logger   *slog.Logger

	modsRoot string
	dataDir  string
}

// NewService creates a new core service instance. The mods root must already exist.
func NewService(cfg ServiceConfig) (*Service, error) {
	appConfig := cfg.Config
	if appConfig == nil {
		appConfig = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.ModsRoot == "" {
		return nil, fmt.Errorf("%w: mods root not set", domain.ErrInvalidConfig)
	}
	modsRoot, err := filepath.Abs(cfg.ModsRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving mods root: %w", err)
	}
	info, err := os.Stat(modsRoot)
	if err != nil {
		return nil, &domain.IOError{Op: "open mods root", Path: modsRoot, Err: err}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mods root is not a directory: %s", modsRoot)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	database, err := db.New(filepath.Join(cfg.DataDir, "mcmodman.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	lay := layout.New(modsRoot, appConfig.ModExtension)
	store := state.ForModsRoot(modsRoot)

	var hooks *HookRunner
	if !cfg.NoHooks && !appConfig.Hooks.IsEmpty() {
		timeout := time.Duration(appConfig.HookTimeout) * time.Second
		if timeout <= 0 {
			timeout = config.DefaultHookTimeout * time.Second
		}
		hooks = NewHookRunner(timeout)
	}

	return &Service{
		config:   appConfig,
		loaders:  appConfig.LoaderSet(),
		layout:   lay,
		store:    store,
		switcher: NewSwitcher(store, lay, mover.New(appConfig.MoveMethod), logger),
		db:       database,
		hooks:    hooks,
		logger:   logger,
		modsRoot: modsRoot,
		dataDir:  cfg.DataDir,
	}, nil
}

// Close releases resources held by the service
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Initialize creates the state record and loader directories if missing.
// Call once before any other operation.
func (s *Service) Initialize() error {
	if err := s.store.Initialize(); err != nil {
		return fmt.Errorf("initializing state: %w", err)
	}
	if err := s.layout.EnsureSkeleton(s.loaders); err != nil {
		return fmt.Errorf("creating loader directories: %w", err)
	}
	return nil
}

// ModsRoot returns the absolute mods root
func (s *Service) ModsRoot() string {
	return s.modsRoot
}

// Loaders returns the supported loader set
func (s *Service) Loaders() domain.LoaderSet {
	return s.loaders
}

// Layout returns the profile directory layout
func (s *Service) Layout() *layout.Layout {
	return s.layout
}

// ProfileKey validates a loader/version pair against the supported loaders
func (s *Service) ProfileKey(loader, version string) (domain.ProfileKey, error) {
	return domain.NewProfileKey(s.loaders, loader, version)
}

// Current returns the active-state record
func (s *Service) Current() (domain.ActiveState, error) {
	return s.switcher.Current()
}

// Propose reports whether key can be switched to
func (s *Service) Propose(key domain.ProfileKey) (domain.Proposal, error) {
	return s.switcher.ProposeTarget(key)
}

// Commit performs a switch, journaling it and running configured hooks. The selection
// is validated before the before_switch hook runs, and a failing hook aborts before any
// file moves. When the last journaled attempt at key was interrupted, files it already
// activated stay in the active area.
func (s *Service) Commit(ctx context.Context, key domain.ProfileKey, chosen []string) (*CommitResult, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}

	last, err := s.lastAttempt()
	if err != nil {
		return nil, err
	}
	activated := interruptedActivations(last, key)

	rec := &db.SwitchRecord{
		ID:       uuid.NewString(),
		ModsRoot: s.modsRoot,
		From:     current,
		To:       key,
		Mods:     chosen,
	}

	mods, verr := s.switcher.Validate(key, chosen, activated)
	if verr == nil {
		rec.Mods = mods
	}
	if err := s.db.BeginSwitch(rec); err != nil {
		return nil, fmt.Errorf("journaling switch: %w", err)
	}
	if verr != nil {
		s.finish(rec.ID, db.SwitchFailed, "", nil, verr)
		return nil, verr
	}

	if err := s.runHook(ctx, HookBeforeSwitch, s.config.Hooks.BeforeSwitch, current, key, mods); err != nil {
		s.finish(rec.ID, db.SwitchFailed, "", nil, err)
		return nil, fmt.Errorf("%s hook: %w", HookBeforeSwitch, err)
	}

	result, err := s.switcher.Continue(ctx, key, chosen, activated)
	if err != nil {
		var partial *domain.PartialSwitchError
		if errors.As(err, &partial) {
			s.finish(rec.ID, db.SwitchPartial, partial.Phase, partial.Pending, err)
		} else {
			s.finish(rec.ID, db.SwitchFailed, "", nil, err)
		}
		return result, err
	}
	s.finish(rec.ID, db.SwitchCompleted, "", nil, nil)

	if err := s.runHook(ctx, HookAfterSwitch, s.config.Hooks.AfterSwitch, current, key, mods); err != nil {
		s.logger.Warn("after_switch hook failed", "error", err)
	}

	return result, nil
}

// Resume re-runs the last journaled switch if it did not complete
func (s *Service) Resume(ctx context.Context) (*db.SwitchRecord, *CommitResult, error) {
	last, err := s.lastAttempt()
	if err != nil {
		return nil, nil, err
	}
	if last == nil || (last.Status != db.SwitchPartial && last.Status != db.SwitchStarted) {
		return last, nil, ErrNothingToResume
	}

	key, err := s.ProfileKey(string(last.To.Loader), last.To.Version)
	if err != nil {
		return last, nil, fmt.Errorf("journaled target: %w", err)
	}

	result, err := s.Commit(ctx, key, last.Mods)
	return last, result, err
}

// lastAttempt returns the newest journaled switch that got past validation.
// Rejected switches never moved a file, so they are skipped.
func (s *Service) lastAttempt() (*db.SwitchRecord, error) {
	records, err := s.db.ListSwitches(s.modsRoot, 0)
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	for i := range records {
		if records[i].Status != db.SwitchFailed {
			return &records[i], nil
		}
	}
	return nil, nil
}

// interruptedActivations lists the files an interrupted switch to key may already have
// moved into the active area.
func interruptedActivations(last *db.SwitchRecord, key domain.ProfileKey) []string {
	if last == nil || last.To != key {
		return nil
	}

	switch last.Status {
	case db.SwitchStarted:
		// No outcome recorded; any of them may have moved.
		return last.Mods
	case db.SwitchPartial:
		switch last.Phase {
		case domain.PhaseActivate:
			pending := toSet(last.Pending)
			var done []string
			for _, name := range last.Mods {
				if !pending[name] {
					done = append(done, name)
				}
			}
			return done
		case domain.PhaseRecord:
			return last.Mods
		}
	}
	return nil
}

// Status describes the mods root as it is now
type Status struct {
	ModsRoot   string
	Active     domain.ActiveState
	ActiveMods []string
	LastSwitch *db.SwitchRecord
}

// Status reports the active profile, the files in the active area and the last journaled switch
func (s *Service) Status() (*Status, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	mods, err := s.layout.ListActive()
	if err != nil {
		return nil, err
	}
	last, err := s.db.LastSwitch(s.modsRoot)
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}

	return &Status{
		ModsRoot:   s.modsRoot,
		Active:     current,
		ActiveMods: mods,
		LastSwitch: last,
	}, nil
}

// Profiles lists stored profiles for the given loaders (all supported loaders when empty)
func (s *Service) Profiles(loaders domain.LoaderSet) ([]layout.ProfileInfo, error) {
	if len(loaders) == 0 {
		loaders = s.loaders
	}
	return s.layout.Profiles(loaders)
}

// History returns journaled switches for this mods root, newest first
func (s *Service) History(limit int) ([]db.SwitchRecord, error) {
	return s.db.ListSwitches(s.modsRoot, limit)
}

func (s *Service) runHook(ctx context.Context, name, script string, prev domain.ActiveState, key domain.ProfileKey, mods []string) error {
	if s.hooks == nil || script == "" {
		return nil
	}

	s.logger.Debug("running hook", "hook", name, "script", script)
	result, err := s.hooks.Run(ctx, script, newHookContext(s.modsRoot, prev, key, mods, name))
	if result != nil && result.Stderr != "" {
		s.logger.Debug("hook stderr", "hook", name, "output", result.Stderr)
	}
	return err
}

func (s *Service) finish(id string, status db.SwitchStatus, phase domain.SwitchPhase, pending []string, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if err := s.db.FinishSwitch(id, status, phase, pending, msg); err != nil {
		s.logger.Warn("could not journal switch outcome", "id", id, "error", err)
	}
}
