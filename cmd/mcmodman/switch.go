package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mcmodman/internal/core"
	"mcmodman/internal/domain"
	"mcmodman/internal/tui"

	"github.com/spf13/cobra"
)

var (
	switchLoader  string
	switchVersion string
	switchMods    []string
	switchAll     bool
	switchYes     bool
)

var switchCmd = &cobra.Command{
	Use:   "switch",
	Short: "Switch the active mod profile",
	Long: `Move the active mods into their profile folder and activate mods from another profile.

Without --loader and --version the loader, version and mods are asked for interactively.

Examples:
  mcmodman switch
  mcmodman switch --loader Fabric --version 1.21 --all
  mcmodman switch --loader Forge --version 1.20.1 --mods jei.jar,create.jar --yes`,
	Args: cobra.NoArgs,
	RunE: runSwitch,
}

func init() {
	switchCmd.Flags().StringVarP(&switchLoader, "loader", "l", "", "mod loader to switch to")
	switchCmd.Flags().StringVar(&switchVersion, "version", "", "game version to switch to")
	switchCmd.Flags().StringSliceVarP(&switchMods, "mods", "m", nil, "mod files to activate (comma separated)")
	switchCmd.Flags().BoolVarP(&switchAll, "all", "a", false, "activate every mod in the profile")
	switchCmd.Flags().BoolVarP(&switchYes, "yes", "y", false, "skip confirmation prompt")

	rootCmd.AddCommand(switchCmd)
}

// switchJSON is the --json shape for switch and resume
type switchJSON struct {
	Outcome   string   `json:"outcome"`
	From      string   `json:"from,omitempty"`
	To        string   `json:"to"`
	Archived  []string `json:"archived,omitempty"`
	Activated []string `json:"activated,omitempty"`
}

func runSwitch(cmd *cobra.Command, args []string) error {
	svc, cfg, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer svc.Close()

	prompter := tui.NewPrompter(tui.Options{
		Keybindings: cfg.Keybindings,
		Color:       colorEnabled(),
		Accessible:  os.Getenv("ACCESSIBLE") != "",
	})

	if switchLoader == "" && switchVersion == "" {
		return runInteractiveSwitch(cmd, svc, prompter)
	}
	return runDirectSwitch(cmd, svc, prompter)
}

func runInteractiveSwitch(cmd *cobra.Command, svc *core.Service, prompter core.Prompter) error {
	if jsonOutput {
		return fmt.Errorf("interactive switch does not support --json; pass --loader and --version")
	}
	if len(switchMods) > 0 || switchAll {
		return fmt.Errorf("--mods and --all need --loader and --version")
	}

	out := cmd.OutOrStdout()
	outcome, err := svc.RunSession(cmd.Context(), prompter)
	if err != nil {
		reportSwitchError(cmd.ErrOrStderr(), err)
		return err
	}

	switch outcome.Kind {
	case core.OutcomeAlreadyActive:
		fmt.Fprintf(out, "%s is already active.\n", outcome.Key)
	case core.OutcomeNoModsAvailable:
		printNoMods(out, svc, outcome.Key)
	case core.OutcomeNothingSelected:
		fmt.Fprintln(out, "No mods selected, nothing changed.")
	case core.OutcomeCancelled:
		fmt.Fprintln(out, "Cancelled.")
		return domain.ErrCancelled
	case core.OutcomeSwitched:
		printSwitchResult(out, outcome.Result)
	}
	return nil
}

func runDirectSwitch(cmd *cobra.Command, svc *core.Service, prompter core.Prompter) error {
	if switchLoader == "" || switchVersion == "" {
		return fmt.Errorf("--loader and --version must be given together")
	}
	if switchAll && len(switchMods) > 0 {
		return fmt.Errorf("--mods and --all cannot be combined")
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	key, err := svc.ProfileKey(switchLoader, switchVersion)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedLoader) {
			return fmt.Errorf("%w (supported: %s)", err, strings.Join(svc.Loaders().Strings(), ", "))
		}
		return err
	}

	proposal, err := svc.Propose(key)
	if err != nil {
		return err
	}

	switch proposal.Kind {
	case domain.ProposalAlreadyActive:
		if jsonOutput {
			return writeJSON(out, switchJSON{Outcome: proposal.Kind.String(), To: key.String()})
		}
		fmt.Fprintf(out, "%s is already active.\n", key)
		return nil
	case domain.ProposalNoModsAvailable:
		if jsonOutput {
			return writeJSON(out, switchJSON{Outcome: proposal.Kind.String(), To: key.String()})
		}
		printNoMods(out, svc, key)
		return nil
	}

	chosen := switchMods
	if switchAll {
		chosen = proposal.Mods
	}
	if len(chosen) == 0 {
		return fmt.Errorf("%w; pass --mods or --all (available: %s)", domain.ErrNoModsChosen, strings.Join(proposal.Mods, ", "))
	}
	if !switchAll {
		listed := make(map[string]bool, len(proposal.Mods))
		for _, name := range proposal.Mods {
			listed[name] = true
		}
		for _, name := range chosen {
			if !listed[name] {
				return fmt.Errorf("%w: %s (available: %s)", domain.ErrUnknownMod, name, strings.Join(proposal.Mods, ", "))
			}
		}
	}

	if !switchYes {
		if jsonOutput {
			return fmt.Errorf("--yes is required with --json")
		}
		current, err := svc.Current()
		if err != nil {
			return err
		}
		ok, err := prompter.Confirm(ctx, core.Summary{From: current, To: key, Mods: chosen})
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return domain.ErrCancelled
		}
	}

	result, err := svc.Commit(ctx, key, chosen)
	if err != nil {
		if !jsonOutput {
			reportSwitchError(cmd.ErrOrStderr(), err)
		}
		return err
	}

	if jsonOutput {
		return writeJSON(out, newSwitchJSON(result))
	}
	printSwitchResult(out, result)
	return nil
}

func newSwitchJSON(result *core.CommitResult) switchJSON {
	v := switchJSON{
		Outcome:   core.OutcomeSwitched.String(),
		To:        result.To.String(),
		Archived:  result.Archived,
		Activated: result.Activated,
	}
	if !result.From.IsZero() {
		v.From = result.From.String()
	}
	return v
}

func printSwitchResult(out io.Writer, result *core.CommitResult) {
	st := styles()

	fmt.Fprintf(out, "%s Switched to %s\n", st.Success.Render("✓"), st.Active.Render(result.To.String()))
	if result.From.IsZero() {
		fmt.Fprintln(out, "  no previous profile recorded; existing mods were left in place")
	} else {
		fmt.Fprintf(out, "  archived %d mod(s) to %s\n", len(result.Archived), result.From)
	}
	fmt.Fprintf(out, "  activated %d mod(s)\n", len(result.Activated))

	if verbose {
		for _, name := range result.Activated {
			fmt.Fprintf(out, "    %s\n", name)
		}
	}
}

func printNoMods(out io.Writer, svc *core.Service, key domain.ProfileKey) {
	fmt.Fprintf(out, "No mods found for %s.\n", key)
	fmt.Fprintf(out, "Put %s files in %s and run again.\n", svc.Layout().Extension(), svc.Layout().ProfilePath(key))
}

// reportSwitchError prints which files were left where after an interrupted switch
func reportSwitchError(w io.Writer, err error) {
	var partial *domain.PartialSwitchError
	if !errors.As(err, &partial) {
		return
	}

	st := styles()
	fmt.Fprintf(w, "%s switch stopped during the %s phase\n", st.Warning.Render("!"), partial.Phase)
	if len(partial.Moved) > 0 {
		fmt.Fprintf(w, "  moved:     %s\n", strings.Join(partial.Moved, ", "))
	}
	if len(partial.Pending) > 0 {
		fmt.Fprintf(w, "  not moved: %s\n", strings.Join(partial.Pending, ", "))
	}
	fmt.Fprintln(w, "Fix the cause and run 'mcmodman resume' to finish the switch.")
}
