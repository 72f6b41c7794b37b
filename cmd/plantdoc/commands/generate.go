package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/plantdoc/internal/logfields"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Renderer string `name:"renderer" help:"PlantUML binary to use instead of the configured one"`
}

// Run performs a single generation pass. Per-diagram failures are reported
// in the output but do not fail the command.
func (g *GenerateCmd) Run(glob *Global, root *CLI) error {
	cfg, cat, err := root.load(glob)
	if err != nil {
		return err
	}
	if g.Renderer != "" {
		cfg.Renderer.Binary = g.Renderer
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sum := newGenerator(cfg, cat, glob.stdout(), newRecorder(cfg, false)).Run(ctx)

	slog.Debug("Generation finished",
		logfields.Count(len(sum.Generated)),
		slog.Int("failed", len(sum.Failed)),
		slog.Int("broken_links", len(sum.BrokenLinks)),
		logfields.Duration(sum.Duration))
	return nil
}
