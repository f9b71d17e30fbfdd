// Package docs fetches official framework documentation into an on-disk
// cache and serves it as high-priority instructions. Generation itself only
// ever reads the cache, so runs stay offline and deterministic; fetching is
// an explicit caller action.
package docs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// CacheDir is the documentation cache relative to the workspace root.
const CacheDir = ".aictx/cache/docs"

// maxDocBytes caps one cached document. Official docs indexes are small;
// anything larger is rejected rather than cached.
const maxDocBytes = 1 << 20

// defaultSources maps a framework name to its official assistant-facing
// documentation URL.
var defaultSources = map[string]string{
	"angular": "https://angular.dev/llms.txt",
	"react":   "https://react.dev/llms.txt",
	"vue":     "https://vuejs.org/llms.txt",
	"next":    "https://nextjs.org/docs/llms.txt",
}

// Fetcher downloads and caches official framework documentation.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	cacheDir string
	ttl      time.Duration
	sources  map[string]string
}

// NewFetcher creates a fetcher for a workspace. ttl controls cache
// freshness.
func NewFetcher(workspaceRoot string, ttl time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		// Pace requests politely when refreshing several frameworks at once.
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		cacheDir: filepath.Join(workspaceRoot, filepath.FromSlash(CacheDir)),
		ttl:      ttl,
		sources:  defaultSources,
	}
}

// WithSources substitutes the source table. Intended for tests.
func (f *Fetcher) WithSources(sources map[string]string) *Fetcher {
	f.sources = sources
	return f
}

// Known reports whether official documentation exists for a framework.
func (f *Fetcher) Known(framework string) bool {
	_, ok := f.sources[framework]
	return ok
}

// Fresh reports whether the cached document for framework exists and is
// within the freshness window.
func (f *Fetcher) Fresh(framework string) bool {
	st, err := os.Stat(f.cachePath(framework))
	if err != nil {
		return false
	}
	return time.Since(st.ModTime()) < f.ttl
}

// Fetch downloads the documentation for one framework into the cache.
// Unknown frameworks are a no-op. A single GET, no retries.
func (f *Fetcher) Fetch(ctx context.Context, framework string) error {
	url, ok := f.sources[framework]
	if !ok {
		return nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s docs: %w", framework, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s docs: %w", framework, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch %s docs: HTTP %d", framework, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read %s docs: %w", framework, err)
	}
	if len(body) > maxDocBytes {
		return fmt.Errorf("%s docs exceed %d bytes; refusing to cache", framework, maxDocBytes)
	}

	if err := os.MkdirAll(f.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create docs cache: %w", err)
	}
	if err := os.WriteFile(f.cachePath(framework), body, 0644); err != nil {
		return fmt.Errorf("failed to cache %s docs: %w", framework, err)
	}
	return nil
}

// CachedInstructions returns one instruction per framework whose docs are
// cached and fresh. Absent or stale cache entries contribute nothing; that
// is not an error.
func (f *Fetcher) CachedInstructions(frameworks []string) []types.ParsedInstruction {
	var instrs []types.ParsedInstruction
	for _, fw := range frameworks {
		if !f.Fresh(fw) {
			continue
		}
		data, err := os.ReadFile(f.cachePath(fw))
		if err != nil {
			continue
		}
		instrs = append(instrs, types.ParsedInstruction{
			Content:  string(data),
			Category: types.CategoryFramework,
			Frontmatter: types.Frontmatter{
				Priority:    types.PriorityOfficialDocs,
				Framework:   fw,
				Description: fmt.Sprintf("Official %s documentation guidance", fw),
			},
		})
	}
	return instrs
}

func (f *Fetcher) cachePath(framework string) string {
	return filepath.Join(f.cacheDir, framework+".md")
}
