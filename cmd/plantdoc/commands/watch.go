package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"git.home.luguber.info/inful/plantdoc/internal/catalog"
	"git.home.luguber.info/inful/plantdoc/internal/config"
	"git.home.luguber.info/inful/plantdoc/internal/logfields"
	"git.home.luguber.info/inful/plantdoc/internal/metrics"
	"git.home.luguber.info/inful/plantdoc/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Every         time.Duration `help:"Also regenerate on this interval (e.g. 10m); overrides watch.interval"`
	Debounce      time.Duration `help:"Quiet window before regenerating; overrides watch.debounce"`
	MetricsListen string        `name:"metrics-listen" help:"Serve Prometheus metrics on this address (e.g. :9464)"`
}

func (w *WatchCmd) Run(glob *Global, root *CLI) error {
	cfg, cat, err := root.load(glob)
	if err != nil {
		return err
	}
	opts, err := w.options(cfg, root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rec := newRecorder(cfg, w.MetricsListen != "")
	if pr, ok := rec.(*metrics.PrometheusRecorder); ok && w.MetricsListen != "" {
		stop := serveMetrics(w.MetricsListen, pr)
		defer stop()
	}

	state := &watchState{cfg: cfg, cat: cat}
	run := func(ctx context.Context) {
		cfg, cat := state.reload(root)
		newGenerator(cfg, cat, glob.stdout(), rec).Run(ctx)
	}

	watcher, err := watch.New(opts, run)
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

func (w *WatchCmd) options(cfg *config.Config, root *CLI) (watch.Options, error) {
	debounce, err := cfg.Watch.DebounceDuration()
	if err != nil {
		return watch.Options{}, err
	}
	if w.Debounce > 0 {
		debounce = w.Debounce
	}
	interval, err := cfg.Watch.IntervalDuration()
	if err != nil {
		return watch.Options{}, err
	}
	if w.Every > 0 {
		interval = w.Every
	}
	return watch.Options{
		SourceDir:       cfg.Paths.SourcePath(),
		SourceExtension: cfg.Paths.SourceExtension,
		Files:           []string{root.Config, cfg.Catalog.File},
		Debounce:        debounce,
		Interval:        interval,
	}, nil
}

// watchState keeps the last good configuration so a broken edit does not
// stop the watcher.
type watchState struct {
	mu  sync.Mutex
	cfg *config.Config
	cat *catalog.Catalog
}

func (s *watchState) reload(root *CLI) (*config.Config, *catalog.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := config.Resolve(root.Config, root.configRequired())
	if err == nil {
		var cat *catalog.Catalog
		if cat, err = catalog.Load(cfg.Catalog.File); err == nil {
			s.pinWatchedPaths(cfg)
			s.cfg, s.cat = cfg, cat
		}
	}
	if err != nil {
		slog.Error("Reload failed; keeping previous configuration", logfields.Error(err))
	}
	return s.cfg, s.cat
}

// pinWatchedPaths keeps the paths the watcher was started with when the
// reloaded config moves the source directory, since the running watcher
// cannot follow it.
func (s *watchState) pinWatchedPaths(cfg *config.Config) {
	old := s.cfg.Paths
	if cfg.Paths.SourcePath() == old.SourcePath() && cfg.Paths.SourceExtension == old.SourceExtension {
		return
	}
	slog.Warn("Source location changed; restart watch to follow it",
		logfields.Path(old.SourcePath()),
		slog.String("new_path", cfg.Paths.SourcePath()),
		slog.String("new_extension", cfg.Paths.SourceExtension))
	cfg.Paths = old
}

func serveMetrics(addr string, pr *metrics.PrometheusRecorder) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", pr.HTTPHandler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	slog.Info("Serving metrics", slog.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("Metrics server shutdown error", logfields.Error(err))
		}
	}
}
