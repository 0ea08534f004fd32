package core_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mcmodman/internal/core"
	"mcmodman/internal/domain"
	"mcmodman/internal/storage/config"
	"mcmodman/internal/storage/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg *config.Config) (*core.Service, *fixture) {
	t.Helper()
	f := newFixture(t)

	svc, err := core.NewService(core.ServiceConfig{
		ModsRoot: f.root,
		DataDir:  t.TempDir(),
		Config:   cfg,
	})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	require.NoError(t, svc.Initialize())

	return svc, f
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestNewService_MissingModsRoot(t *testing.T) {
	_, err := core.NewService(core.ServiceConfig{
		ModsRoot: filepath.Join(t.TempDir(), "missing"),
		DataDir:  t.TempDir(),
	})
	var ioErr *domain.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestNewService_EmptyModsRoot(t *testing.T) {
	_, err := core.NewService(core.ServiceConfig{DataDir: t.TempDir()})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestService_Initialize(t *testing.T) {
	svc, f := newTestService(t, nil)

	assert.FileExists(t, f.store.Path())
	assert.DirExists(t, filepath.Join(f.root, "Forge"))
	assert.DirExists(t, filepath.Join(f.root, "Fabric"))

	current, err := svc.Current()
	require.NoError(t, err)
	assert.True(t, current.IsZero())

	// A second call keeps the existing record
	f.setActive(t, forge120)
	require.NoError(t, svc.Initialize())
	assert.Equal(t, domain.StateFor(forge120), f.active(t))
}

func TestService_Initialize_CustomLoaders(t *testing.T) {
	cfg := config.Default()
	cfg.Loaders = []string{"Forge", "Fabric", "Quilt"}

	svc, f := newTestService(t, cfg)
	assert.DirExists(t, filepath.Join(f.root, "Quilt"))

	_, err := svc.ProfileKey("Quilt", "1.20")
	assert.NoError(t, err)
	_, err = svc.ProfileKey("NeoForge", "1.20")
	assert.ErrorIs(t, err, domain.ErrUnsupportedLoader)
}

func TestService_Commit_Journal(t *testing.T) {
	svc, f := newTestService(t, nil)
	f.setActive(t, forge120)
	f.put(t, f.root, "a.jar", "b.jar")
	f.put(t, f.profileDir(fabric121), "c.jar", "d.jar")

	_, err := svc.Commit(context.Background(), fabric121, []string{"c.jar"})
	require.NoError(t, err)

	history, err := svc.History(0)
	require.NoError(t, err)
	require.Len(t, history, 1)

	rec := history[0]
	assert.Equal(t, db.SwitchCompleted, rec.Status)
	assert.Equal(t, domain.StateFor(forge120), rec.From)
	assert.Equal(t, fabric121, rec.To)
	assert.Equal(t, []string{"c.jar"}, rec.Mods)
	assert.NotEmpty(t, rec.ID)
	assert.NotNil(t, rec.FinishedAt)
}

func TestService_Commit_RejectedIsJournaledAsFailed(t *testing.T) {
	svc, f := newTestService(t, nil)
	f.setActive(t, forge120)
	f.put(t, f.profileDir(fabric121), "c.jar")

	_, err := svc.Commit(context.Background(), fabric121, []string{"missing.jar"})
	require.ErrorIs(t, err, domain.ErrUnknownMod)

	history, err := svc.History(0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, db.SwitchFailed, history[0].Status)
	assert.Contains(t, history[0].Error, "missing.jar")

	_, _, err = svc.Resume(context.Background())
	assert.ErrorIs(t, err, core.ErrNothingToResume)
}

func TestService_Resume(t *testing.T) {
	svc, f := newTestService(t, nil)
	f.setActive(t, forge120)
	f.put(t, f.root, "a.jar", "b.jar")
	f.put(t, f.profileDir(fabric121), "c.jar", "d.jar")

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	// Interrupt the switch by making the archive directory unwritable
	archiveDir := f.profileDir(forge120)
	require.NoError(t, os.MkdirAll(archiveDir, 0755))
	require.NoError(t, os.Chmod(archiveDir, 0555))
	t.Cleanup(func() { os.Chmod(archiveDir, 0755) })

	_, err := svc.Commit(context.Background(), fabric121, []string{"c.jar", "d.jar"})
	var partial *domain.PartialSwitchError
	require.ErrorAs(t, err, &partial)

	status, err := svc.Status()
	require.NoError(t, err)
	require.NotNil(t, status.LastSwitch)
	assert.Equal(t, db.SwitchPartial, status.LastSwitch.Status)
	assert.Equal(t, domain.PhaseArchive, status.LastSwitch.Phase)
	assert.Equal(t, []string{"a.jar", "b.jar"}, status.LastSwitch.Pending)

	require.NoError(t, os.Chmod(archiveDir, 0755))

	last, result, err := svc.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fabric121, last.To)
	assert.Equal(t, []string{"c.jar", "d.jar"}, result.Activated)

	assert.Equal(t, []string{"c.jar", "d.jar"}, f.mods(t, f.root))
	assert.Equal(t, []string{"a.jar", "b.jar"}, f.mods(t, archiveDir))
	assert.Equal(t, domain.StateFor(fabric121), f.active(t))

	_, _, err = svc.Resume(context.Background())
	assert.ErrorIs(t, err, core.ErrNothingToResume)
}

func TestService_Commit_KeepsFilesFromInterruptedActivation(t *testing.T) {
	svc, f := newTestService(t, nil)
	f.setActive(t, forge120)
	f.put(t, f.root, "a.jar", "b.jar")
	f.put(t, f.profileDir(fabric121), "c.jar", "d.jar")

	// A directory in the way of d.jar stops the activate phase after c.jar
	blocker := filepath.Join(f.root, "d.jar")
	f.put(t, blocker, "keep.txt")

	_, err := svc.Commit(context.Background(), fabric121, []string{"c.jar", "d.jar"})
	var partial *domain.PartialSwitchError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, domain.PhaseActivate, partial.Phase)
	assert.Equal(t, []string{"c.jar"}, partial.Moved)

	require.NoError(t, os.RemoveAll(blocker))

	// c.jar is live and no longer listed, so only d.jar is offered
	proposal, err := svc.Propose(fabric121)
	require.NoError(t, err)
	assert.Equal(t, []string{"d.jar"}, proposal.Mods)

	result, err := svc.Commit(context.Background(), fabric121, []string{"d.jar"})
	require.NoError(t, err)
	assert.Empty(t, result.Archived)
	assert.ElementsMatch(t, []string{"c.jar", "d.jar"}, result.Activated)

	assert.Equal(t, []string{"c.jar", "d.jar"}, f.mods(t, f.root))
	assert.Equal(t, []string{"a.jar", "b.jar"}, f.mods(t, f.profileDir(forge120)))
	assert.Equal(t, domain.StateFor(fabric121), f.active(t))

	history, err := svc.History(1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.ElementsMatch(t, []string{"c.jar", "d.jar"}, history[0].Mods)
}

func TestService_Commit_RejectsActiveProfileMod(t *testing.T) {
	svc, f := newTestService(t, nil)
	f.setActive(t, forge120)
	f.put(t, f.root, "a.jar", "b.jar")
	f.put(t, f.profileDir(fabric121), "c.jar", "d.jar")

	_, err := svc.Commit(context.Background(), fabric121, []string{"a.jar"})
	require.ErrorIs(t, err, domain.ErrUnknownMod)

	assert.Equal(t, []string{"a.jar", "b.jar"}, f.mods(t, f.root))
	assert.Equal(t, domain.StateFor(forge120), f.active(t))
}

func TestService_Resume_AfterRejectedRetry(t *testing.T) {
	svc, f := newTestService(t, nil)
	f.setActive(t, forge120)
	f.put(t, f.root, "a.jar", "b.jar")
	f.put(t, f.profileDir(fabric121), "c.jar", "d.jar")

	blocker := filepath.Join(f.root, "d.jar")
	f.put(t, blocker, "keep.txt")

	_, err := svc.Commit(context.Background(), fabric121, []string{"c.jar", "d.jar"})
	require.Error(t, err)
	require.NoError(t, os.RemoveAll(blocker))

	// A rejected attempt in between does not hide the interrupted one
	_, err = svc.Commit(context.Background(), fabric121, []string{"zzz.jar"})
	require.ErrorIs(t, err, domain.ErrUnknownMod)

	last, result, err := svc.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, db.SwitchPartial, last.Status)
	assert.Empty(t, result.Archived)
	assert.Equal(t, []string{"c.jar", "d.jar"}, f.mods(t, f.root))
	assert.Equal(t, []string{"a.jar", "b.jar"}, f.mods(t, f.profileDir(forge120)))
}

func TestService_Resume_EmptyJournal(t *testing.T) {
	svc, _ := newTestService(t, nil)

	last, _, err := svc.Resume(context.Background())
	assert.ErrorIs(t, err, core.ErrNothingToResume)
	assert.Nil(t, last)
}

func TestService_Status(t *testing.T) {
	svc, f := newTestService(t, nil)
	f.setActive(t, forge120)
	f.put(t, f.root, "b.jar", "a.jar", "notes.txt")

	status, err := svc.Status()
	require.NoError(t, err)
	assert.Equal(t, f.root, status.ModsRoot)
	assert.Equal(t, domain.StateFor(forge120), status.Active)
	assert.Equal(t, []string{"a.jar", "b.jar"}, status.ActiveMods)
	assert.Nil(t, status.LastSwitch)
}

func TestService_Profiles(t *testing.T) {
	svc, f := newTestService(t, nil)
	f.put(t, f.layout.ProfilePath(domain.ProfileKey{Loader: domain.LoaderForge, Version: "1.20.10"}), "x.jar")
	f.put(t, f.layout.ProfilePath(domain.ProfileKey{Loader: domain.LoaderForge, Version: "1.20.2"}), "y.jar", "z.jar")
	f.put(t, f.profileDir(fabric121), "c.jar")

	all, err := svc.Profiles(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "1.20.2", all[0].Key.Version)
	assert.Equal(t, "1.20.10", all[1].Key.Version)
	assert.Equal(t, fabric121, all[2].Key)

	fabricOnly, err := svc.Profiles(domain.LoaderSet{domain.LoaderFabric})
	require.NoError(t, err)
	require.Len(t, fabricOnly, 1)
	assert.Equal(t, 1, fabricOnly[0].Mods)
	assert.Equal(t, 2, all[0].Mods)
}

func TestService_Hooks(t *testing.T) {
	scripts := t.TempDir()
	envFile := filepath.Join(scripts, "env.txt")

	cfg := config.Default()
	cfg.Hooks.AfterSwitch = writeScript(t, scripts, "after.sh",
		`echo "$MCMODMAN_HOOK $MCMODMAN_PREV_LOADER/$MCMODMAN_PREV_VERSION -> $MCMODMAN_LOADER/$MCMODMAN_VERSION" > `+envFile)

	svc, f := newTestService(t, cfg)
	f.setActive(t, forge120)
	f.put(t, f.profileDir(fabric121), "c.jar")

	_, err := svc.Commit(context.Background(), fabric121, []string{"c.jar"})
	require.NoError(t, err)

	got, err := os.ReadFile(envFile)
	require.NoError(t, err)
	assert.Equal(t, "after_switch Forge/1.20 -> Fabric/1.21", strings.TrimSpace(string(got)))
}

func TestService_BeforeHookFailureAborts(t *testing.T) {
	cfg := config.Default()
	cfg.Hooks.BeforeSwitch = writeScript(t, t.TempDir(), "before.sh", "exit 3")

	svc, f := newTestService(t, cfg)
	f.setActive(t, forge120)
	f.put(t, f.root, "a.jar")
	f.put(t, f.profileDir(fabric121), "c.jar")

	_, err := svc.Commit(context.Background(), fabric121, []string{"c.jar"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit code 3")

	assert.Equal(t, []string{"a.jar"}, f.mods(t, f.root))
	assert.Equal(t, domain.StateFor(forge120), f.active(t))

	history, err := svc.History(1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, db.SwitchFailed, history[0].Status)
}

func TestService_BeforeHookSkippedForRejectedSwitch(t *testing.T) {
	scripts := t.TempDir()
	marker := filepath.Join(scripts, "ran")

	cfg := config.Default()
	cfg.Hooks.BeforeSwitch = writeScript(t, scripts, "before.sh", "touch "+marker)

	svc, f := newTestService(t, cfg)
	f.setActive(t, forge120)
	f.put(t, f.root, "a.jar")
	f.put(t, f.profileDir(fabric121), "c.jar")

	tests := []struct {
		name    string
		key     domain.ProfileKey
		chosen  []string
		wantErr error
	}{
		{"already active", forge120, []string{"a.jar"}, domain.ErrAlreadyActive},
		{"unknown mod", fabric121, []string{"zzz.jar"}, domain.ErrUnknownMod},
		{"nothing chosen", fabric121, nil, domain.ErrNoModsChosen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Commit(context.Background(), tt.key, tt.chosen)
			require.ErrorIs(t, err, tt.wantErr)
			assert.NoFileExists(t, marker)
		})
	}

	_, err := svc.Commit(context.Background(), fabric121, []string{"c.jar"})
	require.NoError(t, err)
	assert.FileExists(t, marker)
}

func TestService_AfterHookFailureKeepsSwitch(t *testing.T) {
	cfg := config.Default()
	cfg.Hooks.AfterSwitch = writeScript(t, t.TempDir(), "after.sh", "exit 1")

	svc, f := newTestService(t, cfg)
	f.setActive(t, forge120)
	f.put(t, f.profileDir(fabric121), "c.jar")

	_, err := svc.Commit(context.Background(), fabric121, []string{"c.jar"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateFor(fabric121), f.active(t))
}

func TestService_NoHooks(t *testing.T) {
	cfg := config.Default()
	cfg.Hooks.BeforeSwitch = writeScript(t, t.TempDir(), "before.sh", "exit 1")

	f := newFixture(t)
	svc, err := core.NewService(core.ServiceConfig{
		ModsRoot: f.root,
		DataDir:  t.TempDir(),
		Config:   cfg,
		NoHooks:  true,
	})
	require.NoError(t, err)
	defer svc.Close()

	f.put(t, f.profileDir(fabric121), "c.jar")
	_, err = svc.Commit(context.Background(), fabric121, []string{"c.jar"})
	require.NoError(t, err)
}
