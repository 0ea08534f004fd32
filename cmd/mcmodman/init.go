package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mcmodman/internal/storage/config"

	"github.com/spf13/cobra"
)

var initWriteConfig bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Prepare the mods root",
	Long: `Create the state record and one folder per mod loader inside the mods root.
Every other command does this too; init only makes it explicit.

Examples:
  mcmodman init
  mcmodman init --mods-root ~/.minecraft/mods --write-config`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initWriteConfig, "write-config", false, "also write config.yaml with the resolved settings if it does not exist")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	service, cfg, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	out := cmd.OutOrStdout()
	st := styles()

	fmt.Fprintf(out, "%s Mods root ready: %s\n", st.Success.Render("✓"), service.ModsRoot())
	for _, loader := range service.Loaders() {
		fmt.Fprintf(out, "  %s\n", service.Layout().LoaderPath(loader))
	}

	if !initWriteConfig {
		return nil
	}

	cfgDir, _, err := defaultDirs()
	if err != nil {
		return err
	}
	path := filepath.Join(cfgDir, config.FileName)
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "Config already exists: %s\n", path)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg.ModsRoot = service.ModsRoot()
	if err := cfg.Save(cfgDir); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Wrote %s\n", st.Success.Render("✓"), path)
	return nil
}
