// Package watch ingests PDF files as they appear in a directory.
//
// The watcher is a driving adapter: filesystem events drive the indexing
// port. Each file is ingested once its writes have settled for the debounce
// period, and is ingested again only when its size or modification time
// changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// DefaultDebounce is the quiet period after the last write before a file is ingested.
const DefaultDebounce = time.Second

// Result reports the outcome of ingesting one file.
type Result struct {
	Path     string
	Passages int
	Err      error
}

// Config configures a Watcher.
type Config struct {
	// Debounce is the quiet period before ingesting. Zero uses DefaultDebounce.
	Debounce time.Duration

	// IngestExisting ingests PDFs already in the directory when Run starts.
	IngestExisting bool

	// OnResult is called after every ingest attempt. Optional.
	OnResult func(Result)

	// Logger receives watcher logs. Nil discards them.
	Logger *slog.Logger
}

// pending is a scheduled ingest. A reschedule replaces the map entry, so a
// firing whose pending is no longer current is stale.
type pending struct {
	path  string
	timer *time.Timer
}

// fileState identifies an ingested file version.
type fileState struct {
	size    int64
	modTime time.Time
}

// Watcher ingests PDFs written to a directory.
type Watcher struct {
	dir      string
	indexing driving.IndexingService
	cfg      Config
	logger   *slog.Logger

	mu       sync.Mutex
	timers   map[string]*pending
	ingested map[string]fileState
}

// New creates a watcher for dir.
func New(dir string, indexing driving.IndexingService, cfg Config) (*Watcher, error) {
	if dir == "" {
		return nil, errors.New("watch directory is required")
	}
	if indexing == nil {
		return nil, errors.New("indexing service is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Watcher{
		dir:      dir,
		indexing: indexing,
		cfg:      cfg,
		logger:   log,
		timers:   make(map[string]*pending),
		ingested: make(map[string]fileState),
	}, nil
}

// Run watches the directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch dir %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch dir %s: not a directory", w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch dir %s: %w", w.dir, err)
	}
	w.logger.Info("watching for PDFs", slog.String("dir", w.dir), slog.Duration("debounce", w.cfg.Debounce))

	if w.cfg.IngestExisting {
		if err := w.ingestExisting(ctx); err != nil {
			return err
		}
	}

	ready := make(chan *pending)
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path := w.handleEvent(event); path != "" {
				w.schedule(ctx, path, ready)
			}

		case p := <-ready:
			w.fire(ctx, p)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}

// handleEvent returns the path to ingest for event, or "" when the event
// should be ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}
	if !isCandidate(event.Name) {
		return ""
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return ""
	}
	return event.Name
}

// isCandidate reports whether path names a visible PDF file.
func isCandidate(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- *pending) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if prev, ok := w.timers[path]; ok {
		prev.timer.Stop()
	}
	p := &pending{path: path}
	p.timer = time.AfterFunc(w.cfg.Debounce, func() {
		select {
		case ready <- p:
		case <-ctx.Done():
		}
	})
	w.timers[path] = p
}

// fire ingests the file of p unless p was superseded by a later schedule.
func (w *Watcher) fire(ctx context.Context, p *pending) {
	w.mu.Lock()
	if w.timers[p.path] != p {
		w.mu.Unlock()
		return
	}
	delete(w.timers, p.path)
	w.mu.Unlock()

	w.ingest(ctx, p.path)
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, p := range w.timers {
		p.timer.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) ingestExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", w.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isCandidate(entry.Name()) {
			continue
		}
		w.ingest(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// ingest stores path unless this version of the file was already ingested.
func (w *Watcher) ingest(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Removed before it settled
		return
	}
	state := fileState{size: info.Size(), modTime: info.ModTime()}
	if prev, ok := w.ingested[path]; ok && prev == state {
		return
	}

	n, err := w.ingestFile(ctx, path)
	if err == nil {
		w.ingested[path] = state
		w.logger.Info("ingested", slog.String("document", filepath.Base(path)), slog.Int("passages", n))
	} else {
		w.logger.Warn("ingest failed", slog.String("document", filepath.Base(path)), slog.Any("error", err))
	}

	if w.cfg.OnResult != nil {
		w.cfg.OnResult(Result{Path: path, Passages: n, Err: err})
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return w.indexing.Ingest(ctx, filepath.Base(path), f)
}
