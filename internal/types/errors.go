package types

import "fmt"

// ConfigSourceError reports that a single parser failed to read or parse its
// configuration source. Non-fatal: the source contributes zero instructions
// for the run and the error is surfaced as a warning alongside the result.
type ConfigSourceError struct {
	// Source is the parser name (e.g. "eslint", "prettier").
	Source string
	Err    error
}

func (e *ConfigSourceError) Error() string {
	return fmt.Sprintf("config source %q: %v", e.Source, e.Err)
}

func (e *ConfigSourceError) Unwrap() error { return e.Err }

// BackupError reports a failed backup creation. Fatal to the current run:
// generation aborts before any write, so the live document tree is
// guaranteed unchanged.
type BackupError struct {
	Err error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("backup failed: %v", e.Err)
}

func (e *BackupError) Unwrap() error { return e.Err }

// RestoreNotFoundError reports a restore request for an unknown backup id.
// No filesystem change occurs.
type RestoreNotFoundError struct {
	ID string
}

func (e *RestoreNotFoundError) Error() string {
	return fmt.Sprintf("backup %q not found", e.ID)
}

// WriteError reports a filesystem write failure during the write phase. The
// run is marked failed; already-backed-up state remains recoverable via
// restore.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ConcurrentGenerationError reports that a generation request arrived while
// another was in flight for the same workspace. The request is rejected
// immediately with no state change.
type ConcurrentGenerationError struct {
	Workspace string
	HolderPID int
	Hostname  string
}

func (e *ConcurrentGenerationError) Error() string {
	return fmt.Sprintf("another generation is in progress for %s (PID %d on %s)",
		e.Workspace, e.HolderPID, e.Hostname)
}
