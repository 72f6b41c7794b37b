package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/plantdoc/internal/diagram"
	derrors "git.home.luguber.info/inful/plantdoc/internal/foundation/errors"
	"git.home.luguber.info/inful/plantdoc/internal/logfields"
)

// Renderer turns one diagram source into an image inside outDir and returns
// the image path. Implementations must not return a path unless the file exists.
type Renderer interface {
	Render(ctx context.Context, sourcePath, outDir string) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, sourcePath, outDir string) (string, error)

func (f RendererFunc) Render(ctx context.Context, sourcePath, outDir string) (string, error) {
	return f(ctx, sourcePath, outDir)
}

// PlantUMLRenderer invokes the plantuml command line tool.
type PlantUMLRenderer struct {
	binary    string
	extraArgs []string
	runner    CommandRunner
}

// NewPlantUMLRenderer returns a renderer for binary using os/exec.
func NewPlantUMLRenderer(binary string, extraArgs []string) *PlantUMLRenderer {
	return &PlantUMLRenderer{binary: binary, extraArgs: extraArgs, runner: ExecRunner{}}
}

// WithRunner allows tests or callers to inject a custom command runner.
func (r *PlantUMLRenderer) WithRunner(cr CommandRunner) *PlantUMLRenderer {
	if cr != nil {
		r.runner = cr
	}
	return r
}

// Args returns the renderer arguments for one source.
func (r *PlantUMLRenderer) Args(absSource, absOutDir string) []string {
	args := make([]string, 0, len(r.extraArgs)+4)
	args = append(args, "-tpng", "-o", absOutDir)
	args = append(args, r.extraArgs...)
	return append(args, absSource)
}

// Render runs plantuml for sourcePath and verifies <outDir>/<stem>.png exists afterwards.
func (r *PlantUMLRenderer) Render(ctx context.Context, sourcePath, outDir string) (string, error) {
	name := diagram.Stem(sourcePath)

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", derrors.FileSystemError("resolve image directory").WithCause(err).
			WithContext("diagram", name).Build()
	}
	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", derrors.FileSystemError("resolve source path").WithCause(err).
			WithContext("diagram", name).Build()
	}
	if err := os.MkdirAll(absOut, 0o755); err != nil {
		return "", derrors.FileSystemError("create image directory").WithCause(err).
			WithContext("diagram", name).WithContext("path", absOut).Build()
	}

	args := r.Args(absSource, absOut)
	slog.Debug("Invoking renderer", logfields.Diagram(name), logfields.Renderer(r.binary), slog.Any("args", args))

	res, err := r.runner.Run(ctx, r.binary, args...)
	if err != nil {
		if !errors.Is(err, ErrRendererNotFound) {
			err = fmt.Errorf("%w: %w", ErrRendererNotFound, err)
		}
		return "", derrors.RenderError("PlantUML could not be started").
			WithCause(err).WithContext("diagram", name).WithContext("renderer", r.binary).Build()
	}

	if out := strings.TrimSpace(res.Stdout); out != "" {
		slog.Debug("renderer stdout", logfields.Diagram(name), slog.String("output", out))
	}
	if res.ExitCode != 0 {
		// plantuml reports syntax errors on stderr, but some wrappers use stdout
		output := strings.TrimSpace(res.Stderr)
		if output == "" {
			output = strings.TrimSpace(res.Stdout)
		}
		cause := fmt.Errorf("%w (exit status %d)", ErrRenderFailed, res.ExitCode)
		if output != "" {
			cause = fmt.Errorf("%w (exit status %d): %s", ErrRenderFailed, res.ExitCode, output)
		}
		return "", derrors.RenderError("PlantUML conversion failed").
			WithCause(cause).WithContext("diagram", name).WithContext("exit_code", res.ExitCode).Build()
	}
	if errOut := strings.TrimSpace(res.Stderr); errOut != "" {
		slog.Warn("renderer stderr", logfields.Diagram(name), slog.String("error_output", errOut))
	}

	png := filepath.Join(absOut, name+".png")
	if _, err := os.Stat(png); err != nil {
		return "", derrors.RenderError("Expected PNG file not created").
			WithCause(fmt.Errorf("%w: %s", ErrArtifactMissing, png)).
			WithContext("diagram", name).WithContext("path", png).Build()
	}
	return png, nil
}
