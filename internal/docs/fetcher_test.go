package docs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

func TestFetchAndCachedInstructions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Angular official guidance.\n"))
	}))
	defer srv.Close()

	root := t.TempDir()
	f := NewFetcher(root, time.Hour).WithSources(map[string]string{"angular": srv.URL})

	require.NoError(t, f.Fetch(context.Background(), "angular"))
	assert.True(t, f.Fresh("angular"))

	instrs := f.CachedInstructions([]string{"angular", "react"})
	require.Len(t, instrs, 1, "only cached frameworks contribute")

	in := instrs[0]
	assert.Equal(t, "Angular official guidance.\n", in.Content)
	assert.Equal(t, types.CategoryFramework, in.Category)
	assert.Equal(t, types.PriorityOfficialDocs, in.Frontmatter.Priority)
	assert.Equal(t, "angular", in.Frontmatter.Framework)
}

func TestFetch_UnknownFrameworkIsNoop(t *testing.T) {
	f := NewFetcher(t.TempDir(), time.Hour).WithSources(map[string]string{})
	require.NoError(t, f.Fetch(context.Background(), "svelte"))
	assert.False(t, f.Fresh("svelte"))
}

func TestFetch_HTTPErrorDoesNotCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	root := t.TempDir()
	f := NewFetcher(root, time.Hour).WithSources(map[string]string{"react": srv.URL})

	err := f.Fetch(context.Background(), "react")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.False(t, f.Fresh("react"))
}

func TestFresh_ExpiresWithTTL(t *testing.T) {
	root := t.TempDir()
	f := NewFetcher(root, time.Hour)

	cache := filepath.Join(root, filepath.FromSlash(CacheDir))
	require.NoError(t, os.MkdirAll(cache, 0755))
	path := filepath.Join(cache, "vue.md")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	// Fresh file within TTL.
	assert.True(t, f.Fresh("vue"))

	// Age the file past the TTL.
	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, stale, stale))
	assert.False(t, f.Fresh("vue"))
	assert.Empty(t, f.CachedInstructions([]string{"vue"}))
}
