// Package generator runs one documentation generation pass: discover
// diagram sources, render each to an image, write its page and finally
// write the index.
package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"git.home.luguber.info/inful/plantdoc/internal/catalog"
	"git.home.luguber.info/inful/plantdoc/internal/config"
	"git.home.luguber.info/inful/plantdoc/internal/diagram"
	"git.home.luguber.info/inful/plantdoc/internal/index"
	"git.home.luguber.info/inful/plantdoc/internal/linkcheck"
	"git.home.luguber.info/inful/plantdoc/internal/logfields"
	"git.home.luguber.info/inful/plantdoc/internal/metrics"
	"git.home.luguber.info/inful/plantdoc/internal/pages"
	"git.home.luguber.info/inful/plantdoc/internal/render"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	rule     = strings.Repeat("=", 50)
)

// Pipeline stages a diagram passes through.
const (
	StageRead   = "read"
	StageRender = "render"
	StagePage   = "page"
)

// Failure is a diagram that could not be read, rendered or written.
type Failure struct {
	Name  string
	Stage string
	Err   error
}

// Summary describes a finished run.
type Summary struct {
	DiscoverErr error
	Found       int
	Generated   []pages.Generated
	Failed      []Failure
	IndexPath   string
	IndexErr    error
	BrokenLinks []linkcheck.Broken
	Duration    time.Duration
}

// Processed is the number of diagrams that produced a page.
func (s Summary) Processed() int { return len(s.Generated) }

// textfileWriter is implemented by recorders that can persist their metrics.
type textfileWriter interface {
	WriteTextfile(path string) error
}

// Generator orchestrates a generation run.
type Generator struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	renderer render.Renderer
	out      io.Writer
	recorder metrics.Recorder
}

// New returns a generator rendering with the configured PlantUML binary and
// printing progress to stdout.
func New(cfg *config.Config, cat *catalog.Catalog) *Generator {
	if cat == nil {
		cat = &catalog.Catalog{Diagrams: catalog.Table{}}
	}
	return &Generator{
		cfg:      cfg,
		catalog:  cat,
		renderer: render.NewPlantUMLRenderer(cfg.Renderer.Binary, cfg.Renderer.ExtraArgs),
		out:      os.Stdout,
		recorder: metrics.NoopRecorder{},
	}
}

// WithRenderer replaces the renderer, e.g. with a stub in tests.
func (g *Generator) WithRenderer(r render.Renderer) *Generator {
	if r != nil {
		g.renderer = r
	}
	return g
}

// WithOutput sets the progress writer.
func (g *Generator) WithOutput(w io.Writer) *Generator {
	if w != nil {
		g.out = w
	}
	return g
}

// WithRecorder sets the metrics recorder.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r != nil {
		g.recorder = r
	}
	return g
}

func (g *Generator) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(g.out, format, args...)
}

// Run performs one generation pass. Per-diagram failures are reported and
// skipped; Run itself never fails.
func (g *Generator) Run(ctx context.Context) Summary {
	start := time.Now()
	var sum Summary
	defer func() {
		sum.Duration = time.Since(start)
		g.recorder.ObserveRunDuration(sum.Duration)
		g.recorder.SetPagesGenerated(len(sum.Generated))
		g.writeMetrics()
	}()

	paths := g.cfg.Paths
	sourceDir := paths.SourcePath()

	heading := "Documentation Generator"
	if p := strings.TrimSpace(g.catalog.Project); p != "" {
		heading = p + " " + heading
	}
	g.printf("%s\n%s\n", heading, rule)

	sources, err := diagram.Discover(sourceDir, paths.SourceExtension)
	if err != nil {
		sum.DiscoverErr = err
		g.printf("%s Failed to list %s: %v\n", failMark, sourceDir, err)
		slog.Error("Failed to list diagram sources", logfields.Path(sourceDir), logfields.Error(err))
		return sum
	}
	if len(sources) == 0 {
		g.printf("No %s files found in %s\n", paths.SourceExtension, sourceDir)
		return sum
	}
	sum.Found = len(sources)
	g.printf("Found %d PlantUML files\n\n", len(sources))

	for _, src := range sources {
		if ctx.Err() != nil {
			slog.Warn("Generation canceled", logfields.Count(sum.Found-len(sum.Generated)-len(sum.Failed)))
			break
		}
		g.printf("Processing: %s\n", src.Name)
		page, stage, err := g.process(ctx, src)
		if err != nil {
			g.printf("  %s Error: %v\n\n", failMark, err)
			slog.Error("Diagram generation failed",
				logfields.Diagram(src.Name), logfields.Stage(stage), logfields.Error(err))
			g.recorder.IncDiagramResult(metrics.ResultFailed)
			sum.Failed = append(sum.Failed, Failure{Name: src.Name, Stage: stage, Err: err})
			continue
		}
		g.recorder.IncDiagramResult(metrics.ResultSuccess)
		sum.Generated = append(sum.Generated, page)
		g.printf("\n")
	}

	g.printf("Generating index...\n")
	sum.IndexPath, sum.IndexErr = index.Write(sum.Generated, g.catalog, g.indexOptions())
	if sum.IndexErr != nil {
		g.printf("%s Error: %v\n\n", failMark, sum.IndexErr)
		slog.Error("Index generation failed", logfields.Error(sum.IndexErr))
	} else {
		g.printf("%s Created: %s\n\n", okMark, filepath.Base(sum.IndexPath))
	}

	if g.cfg.Pages.VerifyLinksEnabled() {
		sum.BrokenLinks = linkcheck.Verify(g.checkedFiles(sum))
	}

	g.printf("%s\nDocumentation generation complete!\n", rule)
	g.printf("  - %d diagrams processed\n", len(sum.Generated))
	g.printf("  - Images: %s\n", paths.ImagePath())
	g.printf("  - Markdown: %s\n", paths.PagePath())
	g.printf("  - Index: %s\n", sum.IndexPath)
	return sum
}

// process renders one source and writes its page. On failure it reports the
// stage that failed.
func (g *Generator) process(ctx context.Context, src diagram.Source) (pages.Generated, string, error) {
	content, err := src.Read()
	if err != nil {
		return pages.Generated{}, StageRead, err
	}
	md := catalog.Resolve(g.catalog.Diagrams, src.Name, content)

	g.printf("  → Generating PNG...\n")
	renderStart := time.Now()
	image, err := g.renderer.Render(ctx, src.Path, g.cfg.Paths.ImagePath())
	g.recorder.ObserveRenderDuration(src.Name, time.Since(renderStart), err == nil)
	if err != nil {
		return pages.Generated{}, StageRender, err
	}
	slog.Debug("Rendered diagram", logfields.Diagram(src.Name), logfields.Stage(StageRender), logfields.Path(image))
	g.printf("  %s Created: %s\n", okMark, filepath.Base(image))

	g.printf("  → Generating Markdown...\n")
	path, err := pages.Write(pages.PageInput{
		Name:        src.Name,
		Title:       md.Title,
		Description: md.Description,
		SourcePath:  src.Path,
		ImagePath:   image,
		PageDir:     g.cfg.Paths.PagePath(),
		Extension:   g.cfg.Pages.Extension,
		IndexFile:   g.cfg.Pages.IndexFile,
		FrontMatter: g.cfg.Pages.FrontMatter,
	})
	if err != nil {
		return pages.Generated{}, StagePage, err
	}
	slog.Debug("Wrote diagram page", logfields.Diagram(src.Name), logfields.Stage(StagePage), logfields.Path(path))
	g.printf("  %s Created: %s\n", okMark, filepath.Base(path))

	return pages.Generated{Name: src.Name, Title: md.Title, Path: path}, "", nil
}

func (g *Generator) indexOptions() index.Options {
	p := g.cfg.Paths
	return index.Options{
		PageDir:   p.PagePath(),
		Extension: g.cfg.Pages.Extension,
		IndexFile: g.cfg.Pages.IndexFile,
		Layout: index.Layout{
			BaseDirectory:   p.BaseDirectory,
			SourceDir:       p.SourceDir,
			ImageDir:        p.ImageDir,
			PageDir:         p.PageDir,
			SourceExtension: p.SourceExtension,
		},
	}
}

func (g *Generator) checkedFiles(sum Summary) []string {
	files := make([]string, 0, len(sum.Generated)+1)
	for _, p := range sum.Generated {
		files = append(files, p.Path)
	}
	if sum.IndexErr == nil && sum.IndexPath != "" {
		files = append(files, sum.IndexPath)
	}
	return files
}

func (g *Generator) writeMetrics() {
	path := g.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	w, ok := g.recorder.(textfileWriter)
	if !ok {
		slog.Warn("Metrics textfile configured but recorder cannot write it", logfields.Path(path))
		return
	}
	if err := w.WriteTextfile(path); err != nil {
		slog.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
	}
}
