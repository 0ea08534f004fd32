// Package tui implements the interactive prompts for a profile switch.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mcmodman/internal/core"
	"mcmodman/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// maxListHeight caps the mod checklist height; longer lists scroll
const maxListHeight = 15

// Options configures a Prompter
type Options struct {
	Output      io.Writer // defaults to os.Stderr
	Keybindings string    // "vim" or "standard"
	Color       bool
	Accessible  bool // line-based prompts for screen readers
}

// Prompter asks the user for each step of a switch with huh forms
type Prompter struct {
	output     io.Writer
	keymap     *huh.KeyMap
	theme      *huh.Theme
	styles     Styles
	accessible bool
}

var _ core.Prompter = (*Prompter)(nil)

// NewPrompter creates a huh-backed prompter
func NewPrompter(opts Options) *Prompter {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	theme := huh.ThemeBase()
	if opts.Color {
		theme = huh.ThemeCharm()
	}

	return &Prompter{
		output:     output,
		keymap:     NewKeyMap(opts.Keybindings),
		theme:      theme,
		styles:     NewStyles(opts.Color),
		accessible: opts.Accessible,
	}
}

// SelectLoader asks which mod loader to switch to
func (p *Prompter) SelectLoader(ctx context.Context, loaders domain.LoaderSet) (domain.Loader, error) {
	var loader domain.Loader
	field := huh.NewSelect[domain.Loader]().
		Title("Mod loader").
		Options(huh.NewOptions([]domain.Loader(loaders)...)...).
		Value(&loader)

	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	return loader, nil
}

// SelectVersion asks for the game version
func (p *Prompter) SelectVersion(ctx context.Context) (string, error) {
	var version string
	field := huh.NewInput().
		Title("Game version").
		Placeholder("1.20.1").
		Validate(domain.ValidateVersion).
		Value(&version)

	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	return version, nil
}

// SelectMods asks which of the candidate files to activate. None are preselected.
func (p *Prompter) SelectMods(ctx context.Context, candidates []string) ([]string, error) {
	var chosen []string
	field := huh.NewMultiSelect[string]().
		Title("Mods to activate").
		Description(fmt.Sprintf("%d available, space to toggle", len(candidates))).
		Options(huh.NewOptions(candidates...)...).
		Filterable(true).
		Height(min(len(candidates)+2, maxListHeight)).
		Value(&chosen)

	if err := p.run(ctx, field); err != nil {
		return nil, err
	}
	return chosen, nil
}

// Confirm shows the pending switch and asks whether to go ahead
func (p *Prompter) Confirm(ctx context.Context, summary core.Summary) (bool, error) {
	ok := true
	field := huh.NewConfirm().
		Title(fmt.Sprintf("Switch to %s?", summary.To)).
		Description(p.describeSummary(summary)).
		Affirmative("Switch").
		Negative("Cancel").
		Value(&ok)

	if err := p.run(ctx, field); err != nil {
		return false, err
	}
	return ok, nil
}

func (p *Prompter) describeSummary(s core.Summary) string {
	var b strings.Builder

	from := "no active profile"
	if !s.From.IsZero() {
		from = s.From.String()
	}
	fmt.Fprintf(&b, "%s %s %s\n", p.styles.Muted.Render(from), p.styles.Muted.Render("→"), p.styles.Active.Render(s.To.String()))
	if s.From.IsZero() {
		b.WriteString(p.styles.Warning.Render("Mods already in the folder stay in place."))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Activating %d mod(s):", len(s.Mods))
	for _, name := range s.Mods {
		b.WriteString("\n  ")
		b.WriteString(name)
	}
	return b.String()
}

func (p *Prompter) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.theme).
		WithKeyMap(p.keymap).
		WithAccessible(p.accessible).
		WithShowHelp(true).
		WithProgramOptions(tea.WithOutput(p.output))

	err := form.RunWithContext(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, huh.ErrUserAborted):
		return domain.ErrCancelled
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return err
	}
}
