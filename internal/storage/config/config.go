package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mcmodman/internal/domain"
	"mcmodman/internal/storage/state"

	"gopkg.in/yaml.v3"
)

// FileName is the config file's name inside the config directory
const FileName = "config.yaml"

// DefaultHookTimeout is the hook timeout in seconds when none is configured
const DefaultHookTimeout = 60

// Config holds global application settings
type Config struct {
	ModsRoot      string             `yaml:"mods_root,omitempty"`
	Loaders       []string           `yaml:"loaders,omitempty"`
	ModExtension  string             `yaml:"mod_extension,omitempty"`
	MoveMethod    domain.MoveMethod  `yaml:"-"`
	MoveMethodStr string             `yaml:"move_method,omitempty"`
	HookTimeout   int                `yaml:"hook_timeout,omitempty"` // seconds
	Keybindings   string             `yaml:"keybindings,omitempty"`  // "vim" or "standard"
	Hooks         domain.SwitchHooks `yaml:"hooks,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		ModExtension: ".jar",
		MoveMethod:   domain.MoveRename,
		HookTimeout:  DefaultHookTimeout,
		Keybindings:  "vim",
	}
}

// Load reads configuration from the given directory
func Load(configDir string) (*Config, error) {
	return LoadFile(filepath.Join(configDir, FileName))
}

// LoadFile reads configuration from path. A missing file yields defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.MoveMethodStr != "" {
		cfg.MoveMethod = domain.ParseMoveMethod(cfg.MoveMethodStr)
	}
	if cfg.ModsRoot != "" {
		cfg.ModsRoot = ExpandPath(cfg.ModsRoot)
	}
	cfg.Hooks.BeforeSwitch = ExpandPath(cfg.Hooks.BeforeSwitch)
	cfg.Hooks.AfterSwitch = ExpandPath(cfg.Hooks.AfterSwitch)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field values that yaml decoding cannot
func (c *Config) Validate() error {
	switch c.MoveMethodStr {
	case "", "rename", "copy":
	default:
		return fmt.Errorf("%w: move_method %q (want rename or copy)", domain.ErrInvalidConfig, c.MoveMethodStr)
	}

	if !strings.HasPrefix(c.ModExtension, ".") || len(c.ModExtension) < 2 || strings.ContainsAny(c.ModExtension, `/\`) {
		return fmt.Errorf("%w: mod_extension %q", domain.ErrInvalidConfig, c.ModExtension)
	}
	// The state record lives in the mods root and must never be listed as a mod
	if strings.EqualFold(c.ModExtension, filepath.Ext(state.FileName)) {
		return fmt.Errorf("%w: mod_extension %q is used by %s", domain.ErrInvalidConfig, c.ModExtension, state.FileName)
	}

	switch c.Keybindings {
	case "", "vim", "standard":
	default:
		return fmt.Errorf("%w: keybindings %q (want vim or standard)", domain.ErrInvalidConfig, c.Keybindings)
	}

	if c.HookTimeout < 0 {
		return fmt.Errorf("%w: hook_timeout must not be negative", domain.ErrInvalidConfig)
	}

	if _, err := domain.NewLoaderSet(c.Loaders); err != nil {
		return err
	}

	return nil
}

// LoaderSet returns the supported loaders, defaulting to Forge and Fabric
func (c *Config) LoaderSet() domain.LoaderSet {
	set, err := domain.NewLoaderSet(c.Loaders)
	if err != nil {
		// Validate rejects these at load time
		return domain.LoaderSet(domain.DefaultLoaders)
	}
	return set
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	c.MoveMethodStr = c.MoveMethod.String()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, FileName)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
