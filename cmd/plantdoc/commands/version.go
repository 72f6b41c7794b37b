package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/plantdoc/internal/render"
	"git.home.luguber.info/inful/plantdoc/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct {
	runner render.CommandRunner `kong:"-"`
}

func (v *VersionCmd) Run(glob *Global, root *CLI) error {
	out := glob.stdout()
	_, _ = fmt.Fprintln(out, version.String())

	cfg, _, err := root.load(glob)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if pv := render.DetectVersion(ctx, v.runner, cfg.Renderer.Binary); pv != "" {
		_, _ = fmt.Fprintf(out, "PlantUML %s (%s)\n", pv, cfg.Renderer.Binary)
	} else {
		_, _ = fmt.Fprintf(out, "PlantUML not available (%s)\n", cfg.Renderer.Binary)
	}
	return nil
}
