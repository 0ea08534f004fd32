package main

import (
	"fmt"
	"strings"
	"time"

	"mcmodman/internal/storage/db"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active profile",
	Long: `Show the mods root, the active profile, the mod files currently in use and
the outcome of the last switch.

Examples:
  mcmodman status
  mcmodman status --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusJSON struct {
	ModsRoot   string           `json:"mods_root"`
	ModLoader  string           `json:"mod_loader,omitempty"`
	Version    string           `json:"version,omitempty"`
	ActiveMods []string         `json:"active_mods"`
	LastSwitch *historyItemJSON `json:"last_switch,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	service, _, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	status, err := service.Status()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if jsonOutput {
		v := statusJSON{
			ModsRoot:   status.ModsRoot,
			ModLoader:  status.Active.ModLoader,
			Version:    status.Active.Version,
			ActiveMods: status.ActiveMods,
		}
		if v.ActiveMods == nil {
			v.ActiveMods = []string{}
		}
		if status.LastSwitch != nil {
			item := newHistoryItemJSON(*status.LastSwitch)
			v.LastSwitch = &item
		}
		return writeJSON(out, v)
	}

	st := styles()
	fmt.Fprintf(out, "Mods root: %s\n", status.ModsRoot)
	if status.Active.IsZero() {
		fmt.Fprintf(out, "Profile:   %s\n", st.Muted.Render("none (the next switch leaves existing mods in place)"))
	} else {
		fmt.Fprintf(out, "Profile:   %s\n", st.Active.Render(status.Active.String()))
	}

	fmt.Fprintf(out, "\nActive mods (%d):\n", len(status.ActiveMods))
	for _, name := range status.ActiveMods {
		fmt.Fprintf(out, "  %s\n", name)
	}

	if last := status.LastSwitch; last != nil {
		fmt.Fprintf(out, "\nLast switch: %s → %s, %s (%s)\n",
			describeFrom(last), last.To, statusLabel(last.Status), humanize.Time(last.StartedAt))
		if last.Status == db.SwitchPartial {
			fmt.Fprintf(out, "  %s interrupted during the %s phase; not moved: %s\n",
				st.Warning.Render("!"), last.Phase, strings.Join(last.Pending, ", "))
			fmt.Fprintln(out, "  Run 'mcmodman resume' to finish it.")
		}
	}

	return nil
}

func describeFrom(rec *db.SwitchRecord) string {
	if rec.From.IsZero() {
		return "none"
	}
	return rec.From.String()
}

func statusLabel(s db.SwitchStatus) string {
	st := styles()
	switch s {
	case db.SwitchCompleted:
		return st.Success.Render(string(s))
	case db.SwitchPartial, db.SwitchStarted:
		return st.Warning.Render(string(s))
	case db.SwitchFailed:
		return st.Error.Render(string(s))
	default:
		return string(s)
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
