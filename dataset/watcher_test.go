package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	config := DefaultWatchConfig(tmpDir)
	config.Patterns = []string{"data/**/*.yaml"}

	watcher, err := NewWatcher(config, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if !watcher.excludes[".git"] {
		t.Error("expected .git to be excluded")
	}

	_, err = NewWatcher(WatchConfig{Root: tmpDir, Patterns: []string{"data/[.yaml"}}, nil)
	assert.Error(t, err)
}

func TestWatcherMatches(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(WatchConfig{
		Root:        root,
		Patterns:    []string{"data/**/*.yaml", "schema.yaml"},
		ExcludeDirs: []string{"vendor"},
	}, nil)
	require.NoError(t, err)
	defer w.Stop()

	tests := []struct {
		path string
		want bool
	}{
		{"data/a.yaml", true},
		{"data/x/y/b.yaml", true},
		{"schema.yaml", true},
		{"data/a.json", false},
		{"other/a.yaml", false},
		{"data/vendor/a.yaml", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.Matches(filepath.Join(root, filepath.FromSlash(tt.path))), tt.path)
	}
	assert.False(t, w.Matches(filepath.Join(filepath.Dir(root), "elsewhere.yaml")))
}

func TestWatcherMatchesAllDocumentsByDefault(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(DefaultWatchConfig(root), nil)
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.Matches(filepath.Join(root, "any", "doc.json")))
	assert.False(t, w.Matches(filepath.Join(root, "any", "doc.txt")))
}

// replaceFile writes through a temporary file so the watcher never sees a
// partial write.
func replaceFile(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestWatcherFileLifecycle(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.yaml")
	writeFile(t, existing, personDoc)

	config := DefaultWatchConfig(root)
	config.Debounce = 50 * time.Millisecond
	watcher, err := NewWatcher(config, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	// Give watcher time to set up
	time.Sleep(100 * time.Millisecond)

	next := func() WatchEvent {
		t.Helper()
		select {
		case ev, ok := <-watcher.Events():
			require.True(t, ok, "events channel closed")
			return ev
		case <-ctx.Done():
			t.Fatal("timeout waiting for watch event")
			return WatchEvent{}
		}
	}

	created := filepath.Join(root, "new.yaml")
	replaceFile(t, created, personDoc)
	ev := next()
	assert.Equal(t, "new.yaml", ev.Path)
	assert.Equal(t, WatchOpCreate, ev.Operation)

	// Rewriting identical content is not a change
	replaceFile(t, existing, personDoc)
	time.Sleep(150 * time.Millisecond)
	replaceFile(t, existing, personDoc+"  - [_:q, a, <http://ex.org/Person>]\n")
	ev = next()
	assert.Equal(t, "existing.yaml", ev.Path)
	assert.Equal(t, WatchOpModify, ev.Operation)

	require.NoError(t, os.Remove(created))
	ev = next()
	assert.Equal(t, "new.yaml", ev.Path)
	assert.Equal(t, WatchOpDelete, ev.Operation)

	assert.Equal(t, int64(0), watcher.DroppedEvents())
}
