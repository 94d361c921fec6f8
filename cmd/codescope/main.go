package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codescope.dev/cli/internal/core/domain"
	"codescope.dev/cli/internal/interfaces/cli"
)

// Exit codes by failure class, so scripts can react to what went wrong.
const (
	exitFailure           = 1
	exitSourceInvalid     = 2
	exitMetadataInvalid   = 3
	exitDependencyInstall = 4
	exitConflict          = 5
	exitRegistryIO        = 6
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		cancel()
	}()

	app := &cli.App{}
	rootCmd := cli.NewRootCommand(app)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var (
		sourceErr   *domain.SourceInvalidError
		metadataErr *domain.MetadataInvalidError
		depErr      *domain.DependencyInstallError
		conflictErr *domain.ConflictError
		registryErr *domain.RegistryIOError
		installErr  *domain.InstallFailedError
	)
	switch {
	case errors.As(err, &conflictErr):
		return exitConflict
	case errors.As(err, &sourceErr):
		return exitSourceInvalid
	case errors.As(err, &metadataErr):
		return exitMetadataInvalid
	case errors.As(err, &depErr):
		return exitDependencyInstall
	case errors.As(err, &registryErr):
		return exitRegistryIO
	case errors.As(err, &installErr):
		return exitFailure
	default:
		return exitFailure
	}
}
