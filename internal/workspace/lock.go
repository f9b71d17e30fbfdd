package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// LockPath is the generation lock file relative to the workspace root. While
// present, at most one generation runs against the workspace.
const LockPath = ".aictx/generate.lock"

// generationLock is the lock file format.
type generationLock struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
}

// AcquireLock claims the workspace for one generation run. If another live
// process holds the lock, it returns *types.ConcurrentGenerationError with
// no state change. Stale locks (holder process no longer running on this
// host) are reclaimed. The returned release function removes the lock and is
// safe to defer.
func AcquireLock(workspaceRoot string) (release func(), err error) {
	lockPath := filepath.Join(workspaceRoot, filepath.FromSlash(LockPath))

	if data, readErr := os.ReadFile(lockPath); readErr == nil {
		var existing generationLock
		if json.Unmarshal(data, &existing) == nil {
			if isProcessAlive(existing.PID, existing.Hostname) {
				return nil, &types.ConcurrentGenerationError{
					Workspace: workspaceRoot,
					HolderPID: existing.PID,
					Hostname:  existing.Hostname,
				}
			}
			// Stale lock: holder died without releasing. Reclaim below.
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to get hostname: %w", err)
	}

	lock := generationLock{
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	if err := os.WriteFile(lockPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to create generation lock: %w", err)
	}

	return func() { _ = os.Remove(lockPath) }, nil
}

// isProcessAlive checks whether the lock holder still runs. Remote holders
// cannot be verified and are assumed alive.
func isProcessAlive(pid int, hostname string) bool {
	currentHost, err := os.Hostname()
	if err != nil {
		return true
	}
	if !strings.EqualFold(hostname, currentHost) {
		return true
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM means the process exists but belongs to another user.
	return err == syscall.EPERM
}
