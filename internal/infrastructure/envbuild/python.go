// Package envbuild prepares the runtime environment of an installed
// scanner: an isolated virtual environment with dependencies for Python
// scanners, the run bit for executables.
package envbuild

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"codescope.dev/cli/internal/core/domain"
)

const (
	// DefaultPipTimeout bounds a dependency install from a requirements
	// file. Third-party dependency trees can be large.
	DefaultPipTimeout = 10 * time.Minute

	// DefaultEditableTimeout bounds the editable install of the scanner
	// package itself.
	DefaultEditableTimeout = 5 * time.Minute
)

// PythonBuilder creates per-scanner virtual environments and installs
// scanner dependencies into them.
type PythonBuilder struct {
	pythonBin       string
	pipTimeout      time.Duration
	editableTimeout time.Duration
	logger          hclog.Logger
}

// NewPythonBuilder creates an environment builder. pythonBin is the host
// interpreter used to create environments; empty selects "python3".
func NewPythonBuilder(pythonBin string, pipTimeout, editableTimeout time.Duration, logger hclog.Logger) *PythonBuilder {
	if pythonBin == "" {
		pythonBin = "python3"
	}
	if pipTimeout <= 0 {
		pipTimeout = DefaultPipTimeout
	}
	if editableTimeout <= 0 {
		editableTimeout = DefaultEditableTimeout
	}
	return &PythonBuilder{
		pythonBin:       pythonBin,
		pipTimeout:      pipTimeout,
		editableTimeout: editableTimeout,
		logger:          logger.Named("envbuild"),
	}
}

// Build creates a fresh virtual environment at venvPath, installs the
// scanner's requirements (preferring the dev variant in develop mode,
// tolerating absence of either file), and installs the scanner package
// itself in editable mode so its modules import without copying
// dependencies into the install tree.
func (b *PythonBuilder) Build(ctx context.Context, installPath, venvPath string, develop bool) error {
	b.logger.Info("creating virtual environment", "path", venvPath)
	if err := os.MkdirAll(filepath.Dir(venvPath), 0o755); err != nil {
		return &domain.DependencyInstallError{Reason: "cannot create environments directory", Err: err}
	}
	if _, err := b.run(ctx, b.pipTimeout, b.pythonBin, "-m", "venv", venvPath); err != nil {
		return err
	}

	pip := PipPath(venvPath)
	if _, err := os.Stat(pip); err != nil {
		return &domain.DependencyInstallError{Reason: "pip not found in created environment: " + pip, Err: err}
	}

	if reqPath := selectRequirements(installPath, develop, b.logger); reqPath != "" {
		b.logger.Info("installing scanner dependencies", "requirements", filepath.Base(reqPath))
		args := []string{"install", "--disable-pip-version-check", "--no-cache-dir", "-r", reqPath}
		if _, err := b.run(ctx, b.pipTimeout, pip, args...); err != nil {
			return err
		}
	}

	// Editable install makes the scanner package importable from the
	// environment without copying its code in.
	if hasPackageDefinition(installPath) {
		b.logger.Info("installing scanner package in editable mode", "path", installPath)
		args := []string{"install", "--disable-pip-version-check", "--no-cache-dir", "-e", installPath}
		if _, err := b.run(ctx, b.editableTimeout, pip, args...); err != nil {
			return err
		}
	} else {
		b.logger.Warn("no pyproject.toml or setup.py found, skipping editable install; the scanner may not be importable", "path", installPath)
	}

	return nil
}

// run executes an external command under its own timeout, capturing
// output. Non-zero exit and timeouts are dependency-install failures
// carrying the captured stderr/stdout.
func (b *PythonBuilder) run(ctx context.Context, timeout time.Duration, bin string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	b.logger.Debug("running command", "cmd", bin+" "+strings.Join(args, " "))
	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return output.String(), &domain.DependencyInstallError{
			Reason: "timeout running " + bin + " " + strings.Join(args, " "),
			Output: tail(output.String()),
		}
	}
	if err != nil {
		return output.String(), &domain.DependencyInstallError{
			Reason: bin + " " + strings.Join(args, " ") + " failed",
			Output: tail(output.String()),
			Err:    err,
		}
	}
	return output.String(), nil
}

// PipPath returns the pip executable inside a virtual environment.
func PipPath(venvPath string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venvPath, "Scripts", "pip.exe")
	}
	return filepath.Join(venvPath, "bin", "pip")
}

// PythonPath returns the interpreter inside a virtual environment.
func PythonPath(venvPath string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venvPath, "Scripts", "python.exe")
	}
	return filepath.Join(venvPath, "bin", "python")
}

// selectRequirements picks the requirements file to install from:
// requirements-dev.txt in develop mode when present, then
// requirements.txt, else none.
func selectRequirements(installPath string, develop bool, logger hclog.Logger) string {
	candidates := []string{"requirements.txt"}
	if develop {
		candidates = []string{"requirements-dev.txt", "requirements.txt"}
	}
	for _, name := range candidates {
		path := filepath.Join(installPath, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	logger.Debug("no requirements file found, skipping dependency install", "path", installPath)
	return ""
}

func hasPackageDefinition(installPath string) bool {
	for _, name := range []string{"pyproject.toml", "setup.py"} {
		if info, err := os.Stat(filepath.Join(installPath, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// tail trims captured process output to its last few lines for error
// messages.
func tail(output string) string {
	output = strings.TrimSpace(output)
	lines := strings.Split(output, "\n")
	if len(lines) <= 20 {
		return output
	}
	return strings.Join(lines[len(lines)-20:], "\n")
}
