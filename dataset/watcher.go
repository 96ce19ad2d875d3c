package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const (
	// eventChannelBuffer is the size of the watch event channel.
	eventChannelBuffer = 500

	defaultDebounce = 500 * time.Millisecond
)

// WatchConfig configures document file watching.
type WatchConfig struct {
	// Root is the directory watched recursively.
	Root string

	// Patterns select the watched files, relative to Root. Empty watches
	// every document file.
	Patterns []string

	// Debounce is how long to wait for more changes before reporting.
	Debounce time.Duration

	// ExcludeDirs lists directory names to skip (e.g., [".git", "node_modules"]).
	ExcludeDirs []string
}

// DefaultWatchConfig returns default watch configuration.
func DefaultWatchConfig(root string) WatchConfig {
	return WatchConfig{
		Root:        root,
		Debounce:    defaultDebounce,
		ExcludeDirs: []string{".git", "node_modules", "vendor"},
	}
}

// WatchEvent represents a document file change event.
type WatchEvent struct {
	// Path is the file path relative to Root, with forward slashes.
	Path string

	// Operation is the type of change.
	Operation WatchOperation

	// AbsPath is the absolute file path.
	AbsPath string
}

// WatchOperation indicates the type of file operation.
type WatchOperation string

// WatchOpCreate, WatchOpModify, and WatchOpDelete enumerate the file watch operation types.
const (
	WatchOpCreate WatchOperation = "create"
	WatchOpModify WatchOperation = "modify"
	WatchOpDelete WatchOperation = "delete"
)

// Watcher watches document files and emits debounced change events.
type Watcher struct {
	config   WatchConfig
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	excludes map[string]bool

	// Debouncing: collect changes before processing
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// Hash-based change detection
	hashMu sync.RWMutex
	hashes map[string]string

	// Output channel
	events chan WatchEvent

	// Metrics
	droppedEvents atomic.Int64
}

// NewWatcher creates a new document file watcher.
func NewWatcher(config WatchConfig, logger *slog.Logger) (*Watcher, error) {
	for _, p := range config.Patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return nil, doublestar.ErrBadPattern
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}

	// Build exclude set
	excludes := make(map[string]bool)
	for _, dir := range config.ExcludeDirs {
		excludes[dir] = true
	}

	return &Watcher{
		config:   config,
		watcher:  fsw,
		logger:   logger,
		excludes: excludes,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		events:   make(chan WatchEvent, eventChannelBuffer),
	}, nil
}

// Events returns the channel of watch events.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start begins watching the root directory for changes.
func (w *Watcher) Start(ctx context.Context) error {
	// Add watches recursively
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}

	// Record current content so unchanged rewrites are not reported
	w.seedHashes()

	// Start the event processing goroutine
	go w.processEvents(ctx)

	w.logger.Info("Document watcher started",
		"root", w.config.Root,
		"debounce", w.config.Debounce,
		"patterns", w.config.Patterns)

	return nil
}

// Stop stops the watcher.
// The events channel is closed by processEvents when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Matches reports whether an absolute path is a watched document.
func (w *Watcher) Matches(path string) bool {
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if w.excludes[part] {
			return false
		}
	}
	if len(w.config.Patterns) == 0 {
		return IsDocument(path)
	}
	for _, p := range w.config.Patterns {
		if ok, _ := doublestar.Match(filepath.ToSlash(p), rel); ok {
			return true
		}
	}
	return false
}

// addWatchesRecursive adds watches to all directories.
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Only watch directories
		if !info.IsDir() {
			return nil
		}

		// Skip excluded and hidden directories
		base := filepath.Base(path)
		if path != root && (w.excludes[base] || strings.HasPrefix(base, ".")) {
			return filepath.SkipDir
		}

		// Add watch
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}

		return nil
	})
}

func (w *Watcher) seedHashes() {
	_ = filepath.Walk(w.config.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !w.Matches(path) {
			return nil
		}
		if content, err := os.ReadFile(path); err == nil {
			w.setHash(path, contentHash(content))
		}
		return nil
	})
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events) // Close events channel when goroutine exits
	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent processes a single fsnotify event.
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	// Handle directory creation (for new watches)
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
	}

	if !w.Matches(path) {
		return
	}

	// Accumulate pending changes
	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Document change detected",
		"path", path,
		"op", event.Op.String())
}

// handleNewDirectory adds a watch to a newly created directory.
func (w *Watcher) handleNewDirectory(path string) {
	base := filepath.Base(path)
	if w.excludes[base] || strings.HasPrefix(base, ".") {
		return
	}

	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("Failed to watch new directory",
			"path", path,
			"error", err)
	} else {
		w.logger.Debug("Added watch for new directory", "path", path)
	}
}

// flushPending processes accumulated changes.
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}

	// Copy and clear pending
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	// Process each change
	for path, op := range toProcess {
		select {
		case <-ctx.Done():
			return
		default:
		}

		relPath, _ := filepath.Rel(w.config.Root, path)
		event := WatchEvent{
			Path:    filepath.ToSlash(relPath),
			AbsPath: path,
		}

		// Check if file still exists
		content, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				w.logger.Warn("Failed to read file for hash check",
					"path", relPath,
					"error", err)
				continue
			}
			if _, known := w.hash(path); !known && !op.Has(fsnotify.Remove) && !op.Has(fsnotify.Rename) {
				continue
			}
			w.deleteHash(path)
			event.Operation = WatchOpDelete
			w.sendEvent(event)
			continue
		}

		newHash := contentHash(content)

		// Check if content actually changed
		oldHash, hadHash := w.hash(path)
		if hadHash && oldHash == newHash {
			// Content unchanged, skip
			continue
		}

		// Update hash cache
		w.setHash(path, newHash)

		if !hadHash {
			event.Operation = WatchOpCreate
		} else {
			event.Operation = WatchOpModify
		}

		w.sendEvent(event)
	}
}

// sendEvent sends an event to the output channel.
func (w *Watcher) sendEvent(event WatchEvent) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event",
			"path", event.Path,
			"op", event.Operation)
	default:
		dropped := w.droppedEvents.Add(1)
		w.logger.Warn("Event channel full, dropping event",
			"path", event.Path,
			"total_dropped", dropped)
	}
}

// DroppedEvents returns the number of events dropped due to channel overflow.
func (w *Watcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

func (w *Watcher) hash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

func (w *Watcher) deleteHash(path string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	delete(w.hashes, path)
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
