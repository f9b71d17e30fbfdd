package types

import "time"

// Backup describes one snapshot of the generated-document tree. Immutable
// once created; the captured file contents live in the backup store, never
// in the live tree.
type Backup struct {
	// ID is the unique, time-based identifier used to address the backup.
	ID string

	// Timestamp is when the backup was captured.
	Timestamp time.Time

	// Files lists the workspace-relative paths captured in this backup.
	Files []string

	// Label records why the backup was taken (e.g. "pre-update",
	// "pre-remove"). Display only.
	Label string
}

// BackupFile is one captured file: its workspace-relative path and its
// verbatim content at capture time.
type BackupFile struct {
	Path    string
	Content []byte
}
