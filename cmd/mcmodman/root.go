package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"mcmodman/internal/core"
	"mcmodman/internal/domain"
	"mcmodman/internal/storage/config"
	"mcmodman/internal/tui"

	"github.com/spf13/cobra"
)

// modsRootEnv overrides the configured mods root
const modsRootEnv = "MCMODMAN_MODS_ROOT"

var (
	version = "0.3.0"

	// Global flags
	modsRoot   string
	configDir  string
	dataDir    string
	verbose    bool
	noHooks    bool
	jsonOutput bool
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mcmodman",
	Short: "Minecraft mod profile switcher",
	Long: `mcmodman keeps one mods folder per mod loader and game version and swaps
them in and out of the game's live mods directory.

Run without arguments to pick a profile interactively.`,
	Version:           version,
	SilenceUsage:      true, // Runtime errors should not print usage
	SilenceErrors:     true, // We handle error output in Execute()
	PersistentPreRunE: setupLogging,
	RunE:              runSwitch,
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&modsRoot, "mods-root", "", "game mods directory (default: $"+modsRootEnv+", config mods_root, or the launcher default)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/mcmodman)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/mcmodman)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noHooks, "no-hooks", false, "disable switch hooks")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format (switch, status, list, history, resume)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
// NO_COLOR: if set (any value), color is disabled per https://no-color.org
func colorEnabled() bool {
	if noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return true
}

func styles() tui.Styles {
	return tui.NewStyles(colorEnabled())
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error, 2 = user cancelled.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
// Cancellation (domain.ErrCancelled) exits with code 2 without printing JSON, since it is a user action, not an error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", styles().Error.Render("Error:"), err)
		}
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

// defaultDirs returns the config and data directories with defaults applied
func defaultDirs() (cfgDir, datDir string, err error) {
	cfgDir, datDir = configDir, dataDir
	if cfgDir != "" && datDir != "" {
		return cfgDir, datDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("home directory: %w", err)
	}
	if cfgDir == "" {
		cfgDir = filepath.Join(homeDir, ".config", "mcmodman")
	}
	if datDir == "" {
		datDir = filepath.Join(homeDir, ".local", "share", "mcmodman")
	}
	return cfgDir, datDir, nil
}

// loadConfig reads config.yaml from the config directory
func loadConfig() (*config.Config, string, error) {
	cfgDir, _, err := defaultDirs()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(cfgDir)
	if err != nil {
		return nil, "", err
	}
	return cfg, cfgDir, nil
}

// resolveModsRoot picks the mods root: --mods-root, then $MCMODMAN_MODS_ROOT,
// then config mods_root, then the vanilla launcher location for this platform.
func resolveModsRoot(cfg *config.Config) (string, error) {
	if modsRoot != "" {
		return config.ExpandPath(modsRoot), nil
	}
	if env := os.Getenv(modsRootEnv); env != "" {
		return config.ExpandPath(env), nil
	}
	if cfg != nil && cfg.ModsRoot != "" {
		return cfg.ModsRoot, nil
	}
	return defaultModsRoot(runtime.GOOS)
}

func defaultModsRoot(goos string) (string, error) {
	if goos == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, ".minecraft", "mods"), nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}

	switch goos {
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming", ".minecraft", "mods"), nil
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "minecraft", "mods"), nil
	default:
		return filepath.Join(homeDir, ".minecraft", "mods"), nil
	}
}

// initService creates the core service and makes sure the state record and loader directories exist
func initService() (*core.Service, *config.Config, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	_, datDir, err := defaultDirs()
	if err != nil {
		return nil, nil, err
	}
	root, err := resolveModsRoot(cfg)
	if err != nil {
		return nil, nil, err
	}

	svc, err := core.NewService(core.ServiceConfig{
		ModsRoot: root,
		DataDir:  datDir,
		Config:   cfg,
		Logger:   slog.Default(),
		NoHooks:  noHooks,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := svc.Initialize(); err != nil {
		svc.Close()
		return nil, nil, err
	}

	return svc, cfg, nil
}

// writeJSON encodes v as indented JSON
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
