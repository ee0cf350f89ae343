// Package watcher hot-reloads datasets from a local directory tree.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jobrunner/sphaera/internal/ports/output"
)

// Event is a settled change to a dataset file.
type Event struct {
	Path      string
	Operation Operation
}

// Operation represents the type of file operation.
type Operation int

// File operation types.
const (
	OpCreate Operation = iota
	OpModify
	OpDelete
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Handler is called once per settled event.
type Handler func(ctx context.Context, event Event) error

type pending struct {
	seen time.Time
	op   Operation
}

// Watcher watches directory trees for dataset changes. Bursts of events on
// one file collapse into a single event once the file has been quiet for the
// debounce interval. Events are delivered to the handler one at a time.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	accept    func(path string) bool
	logger    *slog.Logger
	roots     []string
	debounce  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	pending map[string]*pending

	events chan Event
	wg     sync.WaitGroup
}

// Config holds watcher configuration.
type Config struct {
	Paths    []string
	Debounce time.Duration
	// Accept filters file paths; defaults to output.IsDatasetKey.
	Accept func(path string) bool
}

// New creates a new file watcher.
func New(cfg Config, handler Handler, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg.Debounce == 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.Accept == nil {
		cfg.Accept = output.IsDatasetKey
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		accept:    cfg.Accept,
		logger:    logger,
		roots:     cfg.Paths,
		debounce:  cfg.Debounce,
		now:       time.Now,
		pending:   make(map[string]*pending),
		events:    make(chan Event, 64),
	}, nil
}

// Start registers every directory below the configured roots and starts the
// event, debounce and dispatch loops. Unreadable roots are logged and skipped.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			w.logger.Warn("invalid watch path", "path", root, "error", err)
			continue
		}
		n := w.addTree(abs)
		w.logger.Info("watching dataset directory", "path", abs, "directories", n)
	}

	w.wg.Add(3)
	go w.eventLoop(ctx)
	go w.debounceLoop(ctx)
	go w.dispatchLoop(ctx)

	return nil
}

// Stop closes the underlying watcher and waits for the loops to exit.
func (w *Watcher) Stop() error {
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

// addTree watches dir and all its subdirectories. It returns the number of
// directories added.
func (w *Watcher) addTree(dir string) int {
	added := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("failed to walk watch path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsWatcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		added++
		return nil
	})
	return added
}

func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.observe(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// observe records a raw fsnotify event. New directories are watched so that
// datasets dropped into them are picked up.
func (w *Watcher) observe(event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addTree(event.Name)
			return
		}
	}
	if !w.accept(event.Name) {
		return
	}

	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
	w.record(event.Name, toOperation(event.Op))
}

func (w *Watcher) record(path string, op Operation) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.pending[path]
	if !ok {
		w.pending[path] = &pending{seen: w.now(), op: op}
		return
	}
	p.seen = w.now()
	p.op = merge(p.op, op)
}

// merge folds a new operation into a pending one. A delete wins until the
// file reappears, which turns the burst into a create.
func merge(prev, next Operation) Operation {
	switch {
	case next == OpDelete:
		return OpDelete
	case prev == OpDelete && next == OpCreate:
		return OpCreate
	case prev == OpDelete:
		return OpModify
	default:
		return prev
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.debounce / 5)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, e := range w.settled() {
				select {
				case w.events <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// settled removes and returns the events that have been quiet long enough.
func (w *Watcher) settled() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	var ready []Event
	for path, p := range w.pending {
		if now.Sub(p.seen) < w.debounce {
			continue
		}
		delete(w.pending, path)
		ready = append(ready, Event{Path: path, Operation: p.op})
	}
	return ready
}

func (w *Watcher) dispatchLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-w.events:
			w.logger.Info("processing dataset change",
				"path", e.Path,
				"operation", e.Operation.String(),
			)
			if err := w.handler(ctx, e); err != nil {
				w.logger.Error("handler error",
					"path", e.Path,
					"operation", e.Operation.String(),
					"error", err,
				)
			}
		}
	}
}

func toOperation(op fsnotify.Op) Operation {
	switch {
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		// a renamed file is gone from its watched location
		return OpDelete
	case op.Has(fsnotify.Create):
		return OpCreate
	default:
		return OpModify
	}
}
