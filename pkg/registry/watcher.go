package registry

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is notified after each reload attempt with the outcome
// ("success" or "failure") and the number of bundles currently serving.
type ReloadFunc func(outcome string, bundleCount int)

// WatchConfig configures bundle hot reload.
type WatchConfig struct {
	// Directory is the bundle directory to watch.
	Directory string

	// DebounceInterval coalesces bursts of file events into a single
	// reload (default: 100ms). Editors commonly emit several writes
	// per save.
	DebounceInterval time.Duration

	// Extensions lists the file extensions treated as bundle files.
	// Default: .yaml, .yml.
	Extensions []string
}

// DefaultWatchConfig returns the default watch configuration.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml"},
	}
}

// BundleWatcher keeps a registry in sync with a bundle directory.
// On file changes it reloads the whole directory through the loader
// and atomically replaces the registry's bundle set. A reload that
// fails validation leaves the previous set serving.
type BundleWatcher struct {
	loader   *BundleLoader
	registry *BundleRegistry
	config   *WatchConfig
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
	debounce *Debouncer
	notify   ReloadFunc

	closeOnce sync.Once
	closeErr  error
}

// NewBundleWatcher creates a watcher that reloads reg from the
// configured directory via loader.
func NewBundleWatcher(loader *BundleLoader, reg *BundleRegistry, config *WatchConfig, logger *slog.Logger) (*BundleWatcher, error) {
	if loader == nil || reg == nil {
		return nil, fmt.Errorf("loader and registry are required")
	}
	if config == nil {
		config = DefaultWatchConfig()
	}
	if config.Directory == "" {
		return nil, fmt.Errorf("watch directory cannot be empty")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultWatchConfig().DebounceInterval
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultWatchConfig().Extensions
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &BundleWatcher{
		loader:   loader,
		registry: reg,
		config:   config,
		logger:   logger.With("component", "bundle_watcher"),
		fsw:      fsw,
		debounce: NewDebouncer(config.DebounceInterval),
	}, nil
}

// OnReload registers a hook notified after every reload attempt.
// Metrics collectors hang off this.
func (w *BundleWatcher) OnReload(fn ReloadFunc) {
	w.notify = fn
}

// Run watches the bundle directory until the context is cancelled or
// Close is called. Blocking.
func (w *BundleWatcher) Run(ctx context.Context) error {
	if err := w.watchTree(w.config.Directory); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.config.Directory, err)
	}

	w.logger.Info("Watching bundle directory",
		"directory", w.config.Directory,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
		"bundles", w.registry.Count(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Bundle watch stopped")
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				// Close was called.
				return nil
			}
			if !w.relevantEvent(event) {
				continue
			}

			w.logger.Debug("Bundle file changed", "path", event.Name, "op", event.Op.String())
			w.debounce.Trigger(w.reload)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			// A transient fs error does not invalidate the serving set.
			w.logger.Error("Bundle watch error", "error", err)
		}
	}
}

// Close stops the watcher. Safe to call concurrently with Run and more
// than once.
func (w *BundleWatcher) Close() error {
	w.closeOnce.Do(func() {
		w.debounce.Stop()
		w.closeErr = w.fsw.Close()
	})
	return w.closeErr
}

// reload loads the whole directory and swaps the registry set. The
// previous set keeps serving when the load fails.
func (w *BundleWatcher) reload() {
	bundles, err := w.loader.LoadFromDirectory(w.config.Directory)
	if err != nil {
		w.logger.Error("Bundle reload failed, previous set keeps serving", "error", err)
		w.notifyReload("failure")
		return
	}

	if err := w.registry.Replace(bundles); err != nil {
		w.logger.Error("Bundle reload failed, previous set keeps serving", "error", err)
		w.notifyReload("failure")
		return
	}

	w.logger.Info("Bundles reloaded",
		"bundles", len(bundles),
		"registry_version", w.registry.Version(),
	)
	w.notifyReload("success")
}

func (w *BundleWatcher) notifyReload(outcome string) {
	if w.notify != nil {
		w.notify(outcome, w.registry.Count())
	}
}

// watchTree registers the directory and its subdirectories, skipping
// hidden ones.
func (w *BundleWatcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		w.logger.Debug("Watching directory", "path", path)
		return nil
	})
}

// relevantEvent reports whether an event should schedule a reload.
// Chmod-only events, hidden files, and non-bundle extensions are
// ignored.
func (w *BundleWatcher) relevantEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, want := range w.config.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// Debouncer coalesces rapid triggers into a single callback after a
// quiet period.
type Debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	stopped bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules fn after the debounce interval. A trigger before
// the interval elapses replaces the pending callback and restarts the
// clock.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	stopped := d.stopped
	d.mu.Unlock()

	if stopped || fn == nil {
		return
	}
	fn()
}

// Stop cancels any pending callback. The debouncer cannot be reused
// after Stop.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}
