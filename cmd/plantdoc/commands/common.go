package commands

import (
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/plantdoc/internal/catalog"
	"git.home.luguber.info/inful/plantdoc/internal/config"
	"git.home.luguber.info/inful/plantdoc/internal/generator"
	"git.home.luguber.info/inful/plantdoc/internal/metrics"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Stdout receives progress output; defaults to os.Stdout.
	Stdout io.Writer
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"plantdoc.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Generate GenerateCmd `cmd:"" default:"1" help:"Render diagrams and write pages and the index (default)"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate documentation when diagram sources change"`
	Version  VersionCmd  `cmd:"" help:"Show plantdoc and PlantUML versions"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// configRequired reports whether the config file was named explicitly. The
// default path may be absent, in which case built-in defaults apply.
func (c *CLI) configRequired() bool {
	return c.Config != config.DefaultPath
}

// load resolves the configuration and catalog and applies the configured
// logging settings.
func (c *CLI) load(g *Global) (*config.Config, *catalog.Catalog, error) {
	cfg, err := config.Resolve(c.Config, c.configRequired())
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.Logging.NewLogger(os.Stderr, c.Verbose)
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}

	cat, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cat, nil
}

// newRecorder returns a Prometheus recorder when metrics output is wanted.
func newRecorder(cfg *config.Config, serve bool) metrics.Recorder {
	if cfg.Metrics.Textfile == "" && !serve {
		return metrics.NoopRecorder{}
	}
	return metrics.NewPrometheusRecorder(nil)
}

func newGenerator(cfg *config.Config, cat *catalog.Catalog, out io.Writer, rec metrics.Recorder) *generator.Generator {
	return generator.New(cfg, cat).WithOutput(out).WithRecorder(rec)
}
