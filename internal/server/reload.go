package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ppiankov/icscheck/internal/validate"
)

// DefaultReloadDelay is how long the reloader waits after the last write.
const DefaultReloadDelay = 500 * time.Millisecond

// LoadFunc rebuilds validator options and the config hash from disk.
type LoadFunc func() (validate.Options, string, error)

// Reloader watches configuration files and swaps the server's options when
// they change. A failed load keeps the previous options.
type Reloader struct {
	watcher *fsnotify.Watcher
	server  *Server
	load    LoadFunc
	files   map[string]bool
	delay   time.Duration
	logger  *zap.Logger
}

// NewReloader creates a file watcher for the given paths. Empty and
// missing paths are skipped. Parent directories are watched so that
// atomic replacements are seen.
func NewReloader(server *Server, paths []string, load LoadFunc) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	r := &Reloader{
		watcher: watcher,
		server:  server,
		load:    load,
		files:   make(map[string]bool),
		delay:   DefaultReloadDelay,
		logger:  server.logger.Named("reload"),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("resolve %q: %w", p, err)
		}
		r.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
		}
		dirs[dir] = true
	}
	return r, nil
}

// Watched returns how many files the reloader tracks.
func (r *Reloader) Watched() int {
	return len(r.files)
}

// Run watches for changes and reloads. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var (
		mu       sync.Mutex
		debounce *time.Timer
	)
	stop := func() {
		mu.Lock()
		if debounce != nil {
			debounce.Stop()
		}
		mu.Unlock()
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				stop()
				return nil
			}
			if !r.files[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(r.delay, r.reload)
			mu.Unlock()

		case err, ok := <-r.watcher.Errors:
			if !ok {
				stop()
				return nil
			}
			r.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (r *Reloader) reload() {
	opts, hash, err := r.load()
	if err != nil {
		r.logger.Error("hot-reload failed; keeping previous configuration", zap.Error(err))
		return
	}
	r.server.Reload(opts, hash)
	r.logger.Info("configuration reloaded", zap.String("config_hash", hash))
}
