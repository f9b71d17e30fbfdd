package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/backup"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/config"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/docs"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/orchestrator"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/workspace"
)

// session bundles everything a command needs for one invocation.
type session struct {
	Info  *workspace.Info
	Cfg   config.Config
	Store *backup.Store
	Docs  *docs.Fetcher
	Orch  *orchestrator.Orchestrator
}

// openSession discovers the workspace from the current directory and wires
// up the orchestrator. Callers must defer Close.
func openSession() (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	info, err := workspace.Discover(cwd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(info.Root)
	if err != nil {
		return nil, err
	}

	store, err := backup.NewStore(filepath.Join(info.Root, filepath.FromSlash(backup.DefaultDBPath)), cfg.MaxBackups)
	if err != nil {
		return nil, err
	}

	fetcher := docs.NewFetcher(info.Root, time.Duration(cfg.DocsCacheTTLHours)*time.Hour)

	orch, err := orchestrator.New(orchestrator.Options{
		WorkspaceRoot: info.Root,
		Config:        cfg,
		Backups:       store,
		Docs:          fetcher,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	return &session{Info: info, Cfg: cfg, Store: store, Docs: fetcher, Orch: orch}, nil
}

// Close releases the session's resources.
func (s *session) Close() {
	_ = s.Store.Close()
}
