// Package watch reruns documentation generation when diagram sources change
// and, optionally, on a fixed interval.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	derrors "git.home.luguber.info/inful/plantdoc/internal/foundation/errors"
	"git.home.luguber.info/inful/plantdoc/internal/logfields"
)

// DefaultDebounce is the quiet window applied when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// RunFunc performs one generation pass.
type RunFunc func(ctx context.Context)

// Options configures a Watcher.
type Options struct {
	// SourceDir is watched for files with SourceExtension.
	SourceDir       string
	SourceExtension string
	// Files are individual files (config, catalog) whose changes also trigger a run.
	Files    []string
	Debounce time.Duration
	// Interval schedules additional runs; zero disables the schedule.
	Interval time.Duration
}

// Watcher serializes generation runs triggered by file changes and the schedule.
type Watcher struct {
	opts  Options
	run   RunFunc
	files map[string]struct{}

	// requests holds at most one pending run.
	requests chan struct{}
}

// New returns a watcher for opts. run is invoked once at start and then for
// every coalesced burst of changes; runs never overlap.
func New(opts Options, run RunFunc) (*Watcher, error) {
	if run == nil {
		return nil, derrors.ValidationError("watch requires a run function").Build()
	}
	if opts.SourceDir == "" {
		return nil, derrors.ValidationError("watch requires a source directory").Build()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Interval < 0 {
		return nil, derrors.ValidationError("watch interval must not be negative").
			WithContext("interval", opts.Interval.String()).Build()
	}

	files := make(map[string]struct{}, len(opts.Files))
	for _, f := range opts.Files {
		if f == "" {
			continue
		}
		files[absClean(f)] = struct{}{}
	}
	return &Watcher{
		opts:     opts,
		run:      run,
		files:    files,
		requests: make(chan struct{}, 1),
	}, nil
}

// Run blocks until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.opts.SourceDir, 0o755); err != nil {
		return derrors.FileSystemError("create source directory").WithCause(err).
			WithContext("path", w.opts.SourceDir).Build()
	}

	fsw, err := w.setupFileWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fsw.Close() }()

	deb := newDebouncer(w.opts.Debounce, w.request)
	defer deb.Stop()

	if w.opts.Interval > 0 {
		sched, schedErr := w.startScheduler()
		if schedErr != nil {
			return schedErr
		}
		defer func() {
			if shutdownErr := sched.Shutdown(); shutdownErr != nil {
				slog.Warn("Scheduler shutdown error", logfields.Error(shutdownErr))
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	stop := func() {
		cancel()
		<-done
	}
	go func() {
		defer close(done)
		w.worker(ctx)
	}()
	w.request()

	slog.Info("Watching for diagram changes",
		logfields.Path(w.opts.SourceDir),
		slog.Duration("debounce", w.opts.Debounce),
		slog.Duration("interval", w.opts.Interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watcher")
			stop()
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				stop()
				return nil
			}
			if w.relevant(ev) {
				slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
				deb.Trigger()
			}
		case werr, ok := <-fsw.Errors:
			if !ok {
				stop()
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(werr))
		}
	}
}

// request queues a run unless one is already pending.
func (w *Watcher) request() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			start := time.Now()
			w.run(ctx)
			slog.Debug("Generation pass finished", logfields.Duration(time.Since(start)))
		}
	}
}

func (w *Watcher) setupFileWatcher() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	dirs := map[string]struct{}{absClean(w.opts.SourceDir): {}}
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if addErr := fsw.Add(dir); addErr != nil {
			if dir == absClean(w.opts.SourceDir) {
				_ = fsw.Close()
				return nil, derrors.FileSystemError("watch source directory").WithCause(addErr).
					WithContext("path", dir).Build()
			}
			slog.Warn("Watch add failed", logfields.Path(dir), logfields.Error(addErr))
		}
	}
	return fsw, nil
}

func (w *Watcher) startScheduler() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(func() {
			slog.Debug("Scheduled generation requested")
			w.request()
		}),
		gocron.WithName("periodic-generate"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic generate job: %w", err)
	}
	s.Start()
	return s, nil
}

// relevant reports whether ev should trigger a run.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	path := absClean(ev.Name)
	if _, ok := w.files[path]; ok {
		return true
	}
	if shouldIgnoreEvent(path) {
		return false
	}
	if filepath.Dir(path) != absClean(w.opts.SourceDir) {
		return false
	}
	return w.opts.SourceExtension == "" || strings.EqualFold(filepath.Ext(path), w.opts.SourceExtension)
}

// shouldIgnoreEvent reports hidden, editor swap and lock files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
