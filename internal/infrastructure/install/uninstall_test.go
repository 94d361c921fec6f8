package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codescope.dev/cli/internal/core/domain"
	"codescope.dev/cli/internal/infrastructure/registry"
)

func newUninstallHarness(t *testing.T) (*Uninstaller, *registry.FileRegistry, Paths) {
	t.Helper()
	logger := hclog.NewNullLogger()
	paths := NewPaths(filepath.Join(t.TempDir(), "scanners"))
	reg, err := registry.Open(paths.RegistryFile(), logger)
	require.NoError(t, err)
	return NewUninstaller(reg, paths, logger), reg, paths
}

func installArtifacts(t *testing.T, paths Paths, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(paths.InstallDir(name), 0o755))
	require.NoError(t, os.WriteFile(paths.ExecutablePath(name), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.MkdirAll(paths.VenvDir(name), 0o755))
}

// TestUninstall_RemovesEverything tests the registered-with-files path
func TestUninstall_RemovesEverything(t *testing.T) {
	u, reg, paths := newUninstallHarness(t)
	require.NoError(t, reg.Add("secrets", domain.InstalledScanner{Kind: domain.KindExecutable}))
	installArtifacts(t, paths, "secrets")

	msg, err := u.Uninstall("secrets", false)
	require.NoError(t, err)
	assert.Contains(t, msg, "successfully uninstalled")

	assert.False(t, reg.Has("secrets"))
	assert.False(t, paths.ArtifactsExist("secrets"))
}

// TestUninstall_RegisteredWithoutFiles tests cleaning a broken install
func TestUninstall_RegisteredWithoutFiles(t *testing.T) {
	u, reg, _ := newUninstallHarness(t)
	require.NoError(t, reg.Add("ghost", domain.InstalledScanner{Kind: domain.KindPython}))

	_, err := u.Uninstall("ghost", false)
	require.NoError(t, err)
	assert.False(t, reg.Has("ghost"))
}

// TestUninstall_UnknownScanner tests the not-found paths with and
// without force
func TestUninstall_UnknownScanner(t *testing.T) {
	u, _, _ := newUninstallHarness(t)

	_, err := u.Uninstall("absent", false)
	assert.Error(t, err)

	msg, err := u.Uninstall("absent", true)
	require.NoError(t, err)
	assert.Contains(t, msg, "nothing to uninstall")
}

// TestUninstall_LeftoverFilesRequireForce tests the unregistered-files
// rule
func TestUninstall_LeftoverFilesRequireForce(t *testing.T) {
	u, _, paths := newUninstallHarness(t)
	installArtifacts(t, paths, "leftover")

	_, err := u.Uninstall("leftover", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = u.Uninstall("leftover", true)
	require.NoError(t, err)
	assert.False(t, paths.ArtifactsExist("leftover"))
}

// TestUninstall_DevelopSymlinkRemovedSourceKept tests that uninstalling
// a develop-mode scanner leaves the linked source alone
func TestUninstall_DevelopSymlinkRemovedSourceKept(t *testing.T) {
	u, reg, paths := newUninstallHarness(t)

	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "scanner.py"), []byte("pass\n"), 0o644))
	require.NoError(t, os.MkdirAll(paths.Base(), 0o755))
	require.NoError(t, os.Symlink(srcDir, paths.InstallDir("dev-scanner")))
	require.NoError(t, reg.Add("dev-scanner", domain.InstalledScanner{Kind: domain.KindPython, DevelopMode: true}))

	_, err := u.Uninstall("dev-scanner", false)
	require.NoError(t, err)

	assert.False(t, paths.ArtifactsExist("dev-scanner"))
	_, statErr := os.Stat(filepath.Join(srcDir, "scanner.py"))
	assert.NoError(t, statErr, "the linked source survives uninstall")
}
