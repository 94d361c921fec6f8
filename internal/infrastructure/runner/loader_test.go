package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codescope.dev/cli/internal/core/domain"
	"codescope.dev/cli/internal/infrastructure/envbuild"
	"codescope.dev/cli/internal/infrastructure/install"
	"codescope.dev/cli/internal/infrastructure/registry"
)

func loaderFixture(t *testing.T) (*Loader, *registry.FileRegistry, install.Paths) {
	t.Helper()
	logger := hclog.NewNullLogger()
	paths := install.NewPaths(filepath.Join(t.TempDir(), "scanners"))
	reg, err := registry.Open(paths.RegistryFile(), logger)
	require.NoError(t, err)
	return NewLoader(reg, paths, Timeouts{}, logger), reg, paths
}

func placeExecutable(t *testing.T, paths install.Paths, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(paths.InstallDir(name), 0o755))
	require.NoError(t, os.WriteFile(paths.ExecutablePath(name), []byte("#!/bin/sh\n"), 0o755))
}

func placeVenv(t *testing.T, paths install.Paths, name string) {
	t.Helper()
	python := envbuild.PythonPath(paths.VenvDir(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(python), 0o755))
	require.NoError(t, os.WriteFile(python, []byte("#!/bin/sh\n"), 0o755))
}

// TestLoader_BuildsRunnersByKind tests runner construction per kind
func TestLoader_BuildsRunnersByKind(t *testing.T) {
	loader, reg, paths := loaderFixture(t)

	placeExecutable(t, paths, "exec-scanner")
	require.NoError(t, reg.Add("exec-scanner", domain.InstalledScanner{Kind: domain.KindExecutable}))
	placeVenv(t, paths, "py-scanner")
	require.NoError(t, reg.Add("py-scanner", domain.InstalledScanner{
		Kind: domain.KindPython,
		Path: paths.InstallDir("py-scanner"),
	}))

	execRunner, err := loader.Runner("exec-scanner")
	require.NoError(t, err)
	assert.IsType(t, &ExecutableRunner{}, execRunner)

	pyRunner, err := loader.Runner("py-scanner")
	require.NoError(t, err)
	assert.IsType(t, &PythonRunner{}, pyRunner)
}

// TestLoader_UnknownScanner tests lookup of unregistered names
func TestLoader_UnknownScanner(t *testing.T) {
	loader, _, _ := loaderFixture(t)
	_, err := loader.Runner("absent")
	assert.Error(t, err)
}

// TestLoader_RunnersSkipsBrokenInstalls tests that one broken entry
// does not block the rest
func TestLoader_RunnersSkipsBrokenInstalls(t *testing.T) {
	loader, reg, paths := loaderFixture(t)

	placeExecutable(t, paths, "good")
	require.NoError(t, reg.Add("good", domain.InstalledScanner{Kind: domain.KindExecutable}))
	// Registered but its files are gone.
	require.NoError(t, reg.Add("broken", domain.InstalledScanner{Kind: domain.KindExecutable}))
	// Unknown kind.
	require.NoError(t, reg.Add("weird", domain.InstalledScanner{Kind: "wasm"}))

	runners, err := loader.Runners(nil)
	require.NoError(t, err)
	require.Len(t, runners, 1)
	assert.Equal(t, "good", runners[0].Name())
}

// TestLoader_RunnersExplicitUnknownName tests that an explicitly named
// missing scanner is an error rather than a skip
func TestLoader_RunnersExplicitUnknownName(t *testing.T) {
	loader, reg, paths := loaderFixture(t)
	placeExecutable(t, paths, "good")
	require.NoError(t, reg.Add("good", domain.InstalledScanner{Kind: domain.KindExecutable}))

	_, err := loader.Runners([]string{"good", "absent"})
	assert.Error(t, err)
}
