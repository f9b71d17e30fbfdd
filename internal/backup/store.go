// Package backup maintains bounded, immutable snapshots of the generated
// instruction documents. Snapshots live in a SQLite database separate from
// the live document tree, so a restore can reintroduce files that no longer
// exist on disk.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// DefaultDBPath is the backup database location relative to the workspace
// root.
const DefaultDBPath = ".aictx/backups.db"

const schema = `
CREATE TABLE IF NOT EXISTS backups (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	label      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS backup_files (
	backup_id TEXT NOT NULL REFERENCES backups(id) ON DELETE CASCADE,
	path      TEXT NOT NULL,
	content   BLOB NOT NULL,
	PRIMARY KEY (backup_id, path)
);

CREATE INDEX IF NOT EXISTS idx_backups_created_at ON backups(created_at);
`

// Store is the backup manager. Creation, retention eviction, and listing all
// go through one database so visibility is transactional: an observer never
// sees a half-written backup, and never sees the store momentarily empty
// while eviction and insertion are in flight.
type Store struct {
	db  *sql.DB
	max int
}

// NewStore opens (creating if needed) the backup database at path and
// enforces a maximum retained backup count. max must be >= 1.
func NewStore(path string, max int) (*Store, error) {
	if max < 1 {
		return nil, fmt.Errorf("max backups must be >= 1, got %d", max)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	// WAL for concurrent readers; foreign keys for the cascade delete on
	// eviction.
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping backup database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize backup schema: %w", err)
	}

	return &Store{db: db, max: max}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create captures the given files verbatim as one new backup, evicting the
// oldest backups beyond the retention limit in the same transaction.
// All-or-nothing: a failure mid-capture leaves no new backup visible.
func (s *Store) Create(ctx context.Context, files []types.BackupFile, label string) (types.Backup, error) {
	now := time.Now().UTC()
	id := fmt.Sprintf("%d-%s", now.UnixMilli(), strings.Split(uuid.NewString(), "-")[0])

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Backup{}, fmt.Errorf("failed to begin backup transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO backups (id, created_at, label) VALUES (?, ?, ?)",
		id, now.UnixNano(), label); err != nil {
		return types.Backup{}, fmt.Errorf("failed to record backup: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO backup_files (backup_id, path, content) VALUES (?, ?, ?)",
			id, f.Path, f.Content); err != nil {
			return types.Backup{}, fmt.Errorf("failed to capture %s: %w", f.Path, err)
		}
		paths = append(paths, f.Path)
	}

	// FIFO retention: evict oldest first, never the backup just created.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM backups WHERE id IN (
			SELECT id FROM backups
			ORDER BY created_at DESC, id DESC
			LIMIT -1 OFFSET ?
		)`, s.max); err != nil {
		return types.Backup{}, fmt.Errorf("failed to evict old backups: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Backup{}, fmt.Errorf("failed to commit backup: %w", err)
	}

	return types.Backup{ID: id, Timestamp: now, Files: paths, Label: label}, nil
}

// List returns all retained backups, most recent first.
func (s *Store) List(ctx context.Context) ([]types.Backup, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, created_at, label FROM backups ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	defer rows.Close()

	var backups []types.Backup
	for rows.Next() {
		var b types.Backup
		var createdNanos int64
		if err := rows.Scan(&b.ID, &createdNanos, &b.Label); err != nil {
			return nil, fmt.Errorf("failed to scan backup row: %w", err)
		}
		b.Timestamp = time.Unix(0, createdNanos).UTC()
		backups = append(backups, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read backups: %w", err)
	}

	for i := range backups {
		files, err := s.backupPaths(ctx, backups[i].ID)
		if err != nil {
			return nil, err
		}
		backups[i].Files = files
	}
	return backups, nil
}

// Get returns the captured files of one backup, byte-for-byte as stored.
// Returns *types.RestoreNotFoundError for an unknown id.
func (s *Store) Get(ctx context.Context, id string) ([]types.BackupFile, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM backups WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up backup %s: %w", id, err)
	}
	if exists == 0 {
		return nil, &types.RestoreNotFoundError{ID: id}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT path, content FROM backup_files WHERE backup_id = ? ORDER BY path", id)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup %s: %w", id, err)
	}
	defer rows.Close()

	var files []types.BackupFile
	for rows.Next() {
		var f types.BackupFile
		if err := rows.Scan(&f.Path, &f.Content); err != nil {
			return nil, fmt.Errorf("failed to scan backup file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read backup files: %w", err)
	}
	return files, nil
}

// Restore overwrites the live tree under workspaceRoot with the backup's
// captured content, recreating files that no longer exist. Returns the
// workspace-relative paths written.
func (s *Store) Restore(ctx context.Context, workspaceRoot, id string) ([]string, error) {
	files, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, f := range files {
		dst := filepath.Join(workspaceRoot, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(dst, f.Content, 0644); err != nil {
			return written, fmt.Errorf("failed to restore %s: %w", f.Path, err)
		}
		written = append(written, f.Path)
	}
	return written, nil
}

func (s *Store) backupPaths(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path FROM backup_files WHERE backup_id = ? ORDER BY path", id)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan backup path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
