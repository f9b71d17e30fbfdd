package types

// Decision is the caller's choice when prior generated output exists.
type Decision string

const (
	DecisionUpdate  Decision = "update"
	DecisionRestore Decision = "restore"
	DecisionRemove  Decision = "remove"
	DecisionCancel  Decision = "cancel"
)

// Valid reports whether d is one of the recognized decisions.
func (d Decision) Valid() bool {
	switch d {
	case DecisionUpdate, DecisionRestore, DecisionRemove, DecisionCancel:
		return true
	}
	return false
}

// ExistingOutputState is the result of analyzing a workspace for previously
// generated instruction documents.
type ExistingOutputState struct {
	// Exists is true if any generated document was found.
	Exists bool

	// Files lists the workspace-relative paths of the documents found,
	// sorted for stable display.
	Files []string

	// HasUserOverrides is true if the user-override document is present.
	// That document is an input, never part of the generated set.
	HasUserOverrides bool
}

// ResultKind discriminates the outcome of a caller-facing operation.
type ResultKind string

const (
	// ResultSuccess: the operation completed with no warnings.
	ResultSuccess ResultKind = "success"

	// ResultPartial: the operation completed but one or more configuration
	// sources were degraded (see Result.Warnings).
	ResultPartial ResultKind = "partial"

	// ResultFailed: the operation failed; Result.Step names the failing
	// step and Result.Err carries the taxonomy error.
	ResultFailed ResultKind = "failed"

	// ResultCancelled: the caller chose to cancel; no side effects.
	ResultCancelled ResultKind = "cancelled"
)

// Result is the discriminated outcome of generate/restore/remove. Nothing
// throws across the caller boundary; failures are carried here.
type Result struct {
	Kind ResultKind

	// Decision records which path was taken (update/restore/remove/cancel).
	Decision Decision

	// Step names the pipeline step that failed, when Kind == ResultFailed.
	Step string

	// Err is the taxonomy error for a failed run.
	Err error

	// Warnings collects non-fatal per-source degradations.
	Warnings []*ConfigSourceError

	// Conflicts records instructions dropped by semantic conflict
	// resolution. Informational.
	Conflicts []ConflictNote

	// Written and Skipped list workspace-relative paths written this run
	// and paths skipped because their rendered content was unchanged.
	Written []string
	Skipped []string

	// BackupID is the id of the backup taken by this run, if any.
	BackupID string
}

// Failed is a convenience constructor for a failed result.
func Failed(decision Decision, step string, err error) Result {
	return Result{Kind: ResultFailed, Decision: decision, Step: step, Err: err}
}
