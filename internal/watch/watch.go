// Package watch re-validates instruction files when they change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ppiankov/icscheck/internal/model"
	"github.com/ppiankov/icscheck/internal/validate"
)

// DefaultDebounce is the quiet period after the last event before files
// are re-validated.
const DefaultDebounce = 200 * time.Millisecond

// Handler receives one validation outcome. err is set when the file could
// not be read or decoded; report is nil in that case.
type Handler func(path string, report *model.Report, err error)

// Config configures a Watcher.
type Config struct {
	Options       validate.Options
	MaxInputBytes int64
	Debounce      time.Duration
	Logger        *zap.Logger
}

// Watcher validates a fixed set of files once at start and again after
// every write, create or rename that touches them.
type Watcher struct {
	files   map[string]bool
	dirs    []string
	cfg     Config
	handler Handler
}

// New creates a watcher for the given files. Parent directories are
// watched so editors that replace files by rename are seen.
func New(paths []string, cfg Config, handler Handler) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	w := &Watcher{files: make(map[string]bool), cfg: cfg, handler: handler}
	seenDir := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", p, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if !seenDir[dir] {
			seenDir[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	sort.Strings(w.dirs)
	return w, nil
}

// Run validates every file, then watches until ctx is cancelled. Handlers
// run on the calling goroutine, one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}

	for _, path := range w.sortedFiles() {
		w.check(path)
	}

	// A single timer resets on each event; when it fires all pending
	// paths are validated in sorted order.
	pending := make(map[string]bool)
	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.files[event.Name] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending[event.Name] = true
				timer.Reset(w.cfg.Debounce)
			}

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			for _, p := range paths {
				if _, err := os.Stat(p); err != nil {
					// Renamed away; a later Create brings it back.
					continue
				}
				w.check(p)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.cfg.Logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) check(path string) {
	report, err := w.validateFile(path)
	if err != nil {
		w.cfg.Logger.Warn("validation skipped", zap.String("path", path), zap.Error(err))
	} else {
		w.cfg.Logger.Info("validated",
			zap.String("path", path),
			zap.Bool("compliant", report.Compliant),
			zap.Int("errors", report.Errors()),
			zap.Int("warnings", report.Warnings()))
	}
	w.handler(path, report, err)
}

func (w *Watcher) validateFile(path string) (*model.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	text, err := validate.Read(f, w.cfg.MaxInputBytes)
	if err != nil {
		return nil, err
	}
	return validate.Validate(text, w.cfg.Options), nil
}

func (w *Watcher) sortedFiles() []string {
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
