package core

import (
	"context"
	"fmt"

	"mcmodman/internal/domain"
)

// Prompter supplies the user's choices. Implementations may block indefinitely;
// the session mutates nothing until Confirm returns true.
type Prompter interface {
	SelectLoader(ctx context.Context, loaders domain.LoaderSet) (domain.Loader, error)
	SelectVersion(ctx context.Context) (string, error)
	SelectMods(ctx context.Context, candidates []string) ([]string, error)
	Confirm(ctx context.Context, summary Summary) (bool, error)
}

// Summary is what the user is asked to confirm
type Summary struct {
	From domain.ActiveState
	To   domain.ProfileKey
	Mods []string
}

// OutcomeKind says how an interactive session ended
type OutcomeKind int

const (
	OutcomeSwitched OutcomeKind = iota
	OutcomeAlreadyActive
	OutcomeNoModsAvailable
	OutcomeNothingSelected
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSwitched:
		return "switched"
	case OutcomeAlreadyActive:
		return "already-active"
	case OutcomeNoModsAvailable:
		return "no-mods-available"
	case OutcomeNothingSelected:
		return "nothing-selected"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome reports the end of an interactive session
type Outcome struct {
	Kind     OutcomeKind
	Key      domain.ProfileKey
	Proposal domain.Proposal
	Chosen   []string
	Result   *CommitResult // set only for OutcomeSwitched
}

// RunSession drives one loader → version → mods → confirm → commit round.
func (s *Service) RunSession(ctx context.Context, p Prompter) (*Outcome, error) {
	loader, err := p.SelectLoader(ctx, s.loaders)
	if err != nil {
		return nil, fmt.Errorf("selecting loader: %w", err)
	}

	version, err := p.SelectVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("selecting version: %w", err)
	}

	key, err := domain.NewProfileKey(s.loaders, string(loader), version)
	if err != nil {
		return nil, err
	}

	proposal, err := s.Propose(key)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Key: key, Proposal: proposal}
	switch proposal.Kind {
	case domain.ProposalAlreadyActive:
		outcome.Kind = OutcomeAlreadyActive
		return outcome, nil
	case domain.ProposalNoModsAvailable:
		outcome.Kind = OutcomeNoModsAvailable
		return outcome, nil
	}

	chosen, err := p.SelectMods(ctx, proposal.Mods)
	if err != nil {
		return nil, fmt.Errorf("selecting mods: %w", err)
	}
	outcome.Chosen = chosen
	if len(chosen) == 0 {
		outcome.Kind = OutcomeNothingSelected
		return outcome, nil
	}

	current, err := s.Current()
	if err != nil {
		return nil, err
	}

	ok, err := p.Confirm(ctx, Summary{From: current, To: key, Mods: chosen})
	if err != nil {
		return nil, fmt.Errorf("confirming: %w", err)
	}
	if !ok {
		outcome.Kind = OutcomeCancelled
		return outcome, nil
	}

	result, err := s.Commit(ctx, key, chosen)
	if err != nil {
		return outcome, err
	}

	outcome.Kind = OutcomeSwitched
	outcome.Result = result
	return outcome, nil
}
