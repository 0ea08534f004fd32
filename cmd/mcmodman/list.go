package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"mcmodman/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listLoader string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	Long: `List every profile folder with its mod count and size. The active profile is marked.

Examples:
  mcmodman list
  mcmodman list --loader Fabric`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listLoader, "loader", "l", "", "only list profiles for this loader")

	rootCmd.AddCommand(listCmd)
}

type profileJSON struct {
	ModLoader string `json:"mod_loader"`
	Version   string `json:"version"`
	Path      string `json:"path"`
	Mods      int    `json:"mods"`
	Size      int64  `json:"size"`
	Active    bool   `json:"active"`
}

func runList(cmd *cobra.Command, args []string) error {
	service, _, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	var loaders domain.LoaderSet
	if listLoader != "" {
		loader, err := service.Loaders().Parse(listLoader)
		if err != nil {
			return err
		}
		loaders = domain.LoaderSet{loader}
	}

	profiles, err := service.Profiles(loaders)
	if err != nil {
		return fmt.Errorf("listing profiles: %w", err)
	}
	current, err := service.Current()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if jsonOutput {
		items := make([]profileJSON, 0, len(profiles))
		for _, p := range profiles {
			items = append(items, profileJSON{
				ModLoader: string(p.Key.Loader),
				Version:   p.Key.Version,
				Path:      p.Path,
				Mods:      p.Mods,
				Size:      p.Size,
				Active:    current.Matches(p.Key),
			})
		}
		return writeJSON(out, items)
	}

	if len(profiles) == 0 {
		fmt.Fprintln(out, "No profiles stored.")
		fmt.Fprintf(out, "\nProfiles are folders named %s.\n", service.Layout().ProfilePath(domain.ProfileKey{Loader: "<loader>", Version: "<version>"}))
	} else {
		st := styles()
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LOADER\tVERSION\tMODS\tSIZE\t")
		fmt.Fprintln(w, "------\t-------\t----\t----\t")
		for _, p := range profiles {
			marker := ""
			if current.Matches(p.Key) {
				marker = st.Active.Render("(active)")
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				p.Key.Loader,
				p.Key.Version,
				p.Mods,
				humanize.Bytes(uint64(p.Size)),
				marker,
			)
		}
		w.Flush()
	}

	// The active profile's files live in the mods root, not its folder
	if !current.IsZero() && (listLoader == "" || listLoader == current.ModLoader) {
		active, err := service.Layout().ListActive()
		if err != nil {
			return err
		}
		size, err := service.Layout().Size(service.ModsRoot())
		if err != nil {
			slog.Warn("could not size active mods", "error", err)
		}
		fmt.Fprintf(out, "\nActive: %s, %d mod(s) in use (%s in mods root)\n", current, len(active), humanize.Bytes(uint64(size)))
	}

	return nil
}
