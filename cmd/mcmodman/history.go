package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"mcmodman/internal/storage/db"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past switches",
	Long: `Show the switch journal for the current mods root, newest first.

Examples:
  mcmodman history
  mcmodman history --limit 5
  mcmodman history --limit 0 --json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show (0 for all)")

	rootCmd.AddCommand(historyCmd)
}

type historyItemJSON struct {
	ID         string     `json:"id"`
	From       string     `json:"from,omitempty"`
	To         string     `json:"to"`
	Mods       []string   `json:"mods"`
	Status     string     `json:"status"`
	Phase      string     `json:"phase,omitempty"`
	Pending    []string   `json:"pending,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func newHistoryItemJSON(rec db.SwitchRecord) historyItemJSON {
	item := historyItemJSON{
		ID:         rec.ID,
		To:         rec.To.String(),
		Mods:       rec.Mods,
		Status:     string(rec.Status),
		Phase:      string(rec.Phase),
		Pending:    rec.Pending,
		Error:      rec.Error,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
	}
	if !rec.From.IsZero() {
		item.From = rec.From.String()
	}
	if item.Mods == nil {
		item.Mods = []string{}
	}
	return item
}

func runHistory(cmd *cobra.Command, args []string) error {
	service, _, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	records, err := service.History(historyLimit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	out := cmd.OutOrStdout()

	if jsonOutput {
		items := make([]historyItemJSON, 0, len(records))
		for _, rec := range records {
			items = append(items, newHistoryItemJSON(rec))
		}
		return writeJSON(out, items)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No switches recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tFROM\tTO\tMODS\tSTATUS")
	fmt.Fprintln(w, "----\t----\t--\t----\t------")

	for i := range records {
		rec := &records[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			formatTime(rec.StartedAt),
			describeFrom(rec),
			rec.To,
			len(rec.Mods),
			statusLabel(rec.Status),
		)
	}
	w.Flush()

	if verbose {
		for _, rec := range records {
			if rec.Error != "" {
				fmt.Fprintf(out, "\n%s (%s): %s\n", rec.ID, humanize.Time(rec.StartedAt), rec.Error)
			}
		}
	}

	return nil
}
