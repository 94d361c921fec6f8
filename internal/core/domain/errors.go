package domain

import "fmt"

// Install error taxonomy. Every failure that escapes the install
// orchestrator is one of these classes, carrying the stage-local cause.
// Callers translate the class into exit codes and user-facing text.

// SourceInvalidError reports an unusable install source: missing path,
// failed download, or corrupt archive.
type SourceInvalidError struct {
	Reason string
	Err    error
}

func (e *SourceInvalidError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid scanner source: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid scanner source: %s", e.Reason)
}

func (e *SourceInvalidError) Unwrap() error { return e.Err }

// MetadataInvalidError reports that the staged source is not a
// recognizable scanner: missing or malformed manifest, ambiguous or
// absent executable, bad metadata output, or a missing required name.
type MetadataInvalidError struct {
	Reason string
	Err    error
}

func (e *MetadataInvalidError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid scanner metadata: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid scanner metadata: %s", e.Reason)
}

func (e *MetadataInvalidError) Unwrap() error { return e.Err }

// DependencyInstallError reports a failed or timed-out external process
// during environment setup (venv creation, dependency install, editable
// install) or a timed-out plugin metadata call. Output carries captured
// stderr/stdout from the failing process.
type DependencyInstallError struct {
	Reason string
	Output string
	Err    error
}

func (e *DependencyInstallError) Error() string {
	msg := fmt.Sprintf("dependency installation failed: %s", e.Reason)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DependencyInstallError) Unwrap() error { return e.Err }

// ConflictError reports an existing registration or existing filesystem
// artifacts for the target name without an explicit reinstall request.
type ConflictError struct {
	ScannerName string
	Reason      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("scanner %q %s; use --reinstall to replace it", e.ScannerName, e.Reason)
}

// RegistryIOError reports a failure reading or writing the registry
// document.
type RegistryIOError struct {
	Op  string
	Err error
}

func (e *RegistryIOError) Error() string {
	return fmt.Sprintf("scanner registry %s failed: %v", e.Op, e.Err)
}

func (e *RegistryIOError) Unwrap() error { return e.Err }

// InstallFailedError is the generic rollback wrapper: any unexpected
// failure during install is wrapped in this class after the partial
// artifacts have been removed.
type InstallFailedError struct {
	ScannerName string
	Reason      string
	Err         error
}

func (e *InstallFailedError) Error() string {
	name := e.ScannerName
	if name == "" {
		name = "scanner"
	}
	if e.Err != nil {
		return fmt.Sprintf("installation of %s failed: %s: %v", name, e.Reason, e.Err)
	}
	return fmt.Sprintf("installation of %s failed: %s", name, e.Reason)
}

func (e *InstallFailedError) Unwrap() error { return e.Err }
