// Package watcher notices working tree changes made outside the workbench
// and reports them, debounced, so the project can be reconciled again.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Options configures a Watcher.
type Options struct {
	Debounce       time.Duration
	IgnorePatterns []string

	// MetadataDir is the repository metadata directory relative to the root,
	// e.g. ".git". Its top-level files are watched even when an ignore
	// pattern matches it, so index and HEAD updates by other tools count.
	MetadataDir string
}

// metadataFiles are the entries of MetadataDir whose change means the
// recorded state moved.
var metadataFiles = map[string]bool{
	"index":       true,
	"HEAD":        true,
	"ORIG_HEAD":   true,
	"FETCH_HEAD":  true,
	"packed-refs": true,
}

// Watcher monitors a working tree recursively.
type Watcher struct {
	root     string
	opts     Options
	onChange func(paths []string)
	log      zerolog.Logger

	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a watcher for root. onChange receives the sorted, root
// relative paths touched during one debounce window.
func New(root string, opts Options, onChange func(paths []string), log zerolog.Logger) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	return &Watcher{
		root:     root,
		opts:     opts,
		onChange: onChange,
		log:      log.With().Str("component", "watcher").Logger(),
	}
}

// Start begins watching. It returns once the initial watches are in place.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.fsWatcher = fsWatcher
	w.debouncer = NewDebouncer(w.opts.Debounce, w.onChange)

	if err := w.addWatchRecursive(w.root); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}
	if w.opts.MetadataDir != "" {
		meta := filepath.Join(w.root, w.opts.MetadataDir)
		if info, err := os.Stat(meta); err == nil && info.IsDir() {
			if err := fsWatcher.Add(meta); err != nil {
				w.log.Warn().Err(err).Str("path", meta).Msg("cannot watch metadata directory")
			}
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go w.eventLoop(ctx, fsWatcher, w.done)

	w.log.Info().
		Str("root", w.root).
		Dur("debounce", w.opts.Debounce).
		Msg("file watcher started")
	return nil
}

// Stop ends watching and drops any pending notification.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done
	w.debouncer.Stop()
	err := w.fsWatcher.Close()

	w.log.Info().Msg("file watcher stopped")
	return err
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Vanished between listing and stat.
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != w.root && w.shouldIgnore(w.relative(path)) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("failed to watch directory")
		}
		return nil
	})
}

func (w *Watcher) eventLoop(ctx context.Context, fsWatcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	rel := w.relative(event.Name)

	if w.isMetadata(rel) {
		if metadataFiles[filepath.Base(rel)] {
			w.log.Debug().Str("path", rel).Str("op", event.Op.String()).Msg("metadata changed")
			w.debouncer.Notify(rel)
		}
		return
	}
	if w.shouldIgnore(rel) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatchRecursive(event.Name); err != nil {
				w.log.Warn().Err(err).Str("path", rel).Msg("failed to watch new directory")
			}
		}
	}

	w.log.Debug().Str("path", rel).Str("op", event.Op.String()).Msg("file changed")
	w.debouncer.Notify(rel)
}

func (w *Watcher) relative(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) isMetadata(rel string) bool {
	if w.opts.MetadataDir == "" {
		return false
	}
	meta := filepath.ToSlash(w.opts.MetadataDir)
	return rel == meta || strings.HasPrefix(rel, meta+"/")
}

func (w *Watcher) shouldIgnore(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, pattern := range w.opts.IgnorePatterns {
		for _, part := range parts {
			if matched, _ := filepath.Match(pattern, part); matched {
				return true
			}
		}
	}
	return false
}
