package core

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"mcmodman/internal/domain"
)

const (
	HookBeforeSwitch = "before_switch"
	HookAfterSwitch  = "after_switch"
)

// HookContext provides environment information for hook scripts
type HookContext struct {
	ModsRoot    string
	Loader      string
	Version     string
	PrevLoader  string // Empty on first switch
	PrevVersion string // Empty on first switch
	Mods        []string
	HookName    string // e.g., "before_switch"
}

// newHookContext describes a switch from prev to key
func newHookContext(modsRoot string, prev domain.ActiveState, key domain.ProfileKey, mods []string, hookName string) HookContext {
	return HookContext{
		ModsRoot:    modsRoot,
		Loader:      string(key.Loader),
		Version:     key.Version,
		PrevLoader:  prev.ModLoader,
		PrevVersion: prev.Version,
		Mods:        mods,
		HookName:    hookName,
	}
}

// HookResult contains the output from running a hook
type HookResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// HookRunner executes hook scripts with timeout and environment
type HookRunner struct {
	timeout time.Duration
}

// NewHookRunner creates a new hook runner with the given timeout
func NewHookRunner(timeout time.Duration) *HookRunner {
	return &HookRunner{timeout: timeout}
}

// Run executes a hook script and returns its output
func (r *HookRunner) Run(ctx context.Context, scriptPath string, hc HookContext) (*HookResult, error) {
	result := &HookResult{}

	// Check script exists
	info, err := os.Stat(scriptPath)
	if os.IsNotExist(err) {
		return result, fmt.Errorf("hook script not found: %s", scriptPath)
	}
	if err != nil {
		return result, fmt.Errorf("checking hook script: %w", err)
	}

	// Check script is executable
	if info.Mode()&0111 == 0 {
		return result, fmt.Errorf("hook script not executable: %s", scriptPath)
	}

	// Create timeout context
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, scriptPath)
	cmd.WaitDelay = 100 * time.Millisecond // Allow graceful shutdown after context cancel
	cmd.Env = append(os.Environ(),
		"MCMODMAN_MODS_ROOT="+hc.ModsRoot,
		"MCMODMAN_LOADER="+hc.Loader,
		"MCMODMAN_VERSION="+hc.Version,
		"MCMODMAN_PREV_LOADER="+hc.PrevLoader,
		"MCMODMAN_PREV_VERSION="+hc.PrevVersion,
		"MCMODMAN_MODS="+strings.Join(hc.Mods, "\n"),
		"MCMODMAN_HOOK="+hc.HookName,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return result, fmt.Errorf("hook timed out after %v: %s", r.timeout, scriptPath)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, fmt.Errorf("hook failed with exit code %d: %s", result.ExitCode, scriptPath)
		}
		return result, fmt.Errorf("running hook: %w", err)
	}

	return result, nil
}
