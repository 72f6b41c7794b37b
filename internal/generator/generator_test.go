package generator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/plantdoc/internal/catalog"
	"git.home.luguber.info/inful/plantdoc/internal/config"
	"git.home.luguber.info/inful/plantdoc/internal/diagram"
	"git.home.luguber.info/inful/plantdoc/internal/metrics"
	"git.home.luguber.info/inful/plantdoc/internal/render"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Project: "Acme",
		Diagrams: catalog.Table{
			"alpha-architecture": {Title: "Alpha Architecture", Description: "The alpha system."},
		},
		Sections: []catalog.Section{{
			Heading: "Overview",
			Entries: []catalog.Entry{
				{Name: "alpha-architecture", Title: "Alpha Architecture"},
				{Name: "beta-sequence", Title: "Beta Sequence"},
			},
		}},
	}
}

func setup(t *testing.T, sources map[string]string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDirectory = t.TempDir()
	require.NoError(t, os.MkdirAll(cfg.Paths.SourcePath(), 0o755))
	for name, content := range sources {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.SourcePath(), name+".puml"), []byte(content), 0o600))
	}
	return cfg
}

// stubRenderer writes an image for every source except those named in fail.
func stubRenderer(fail ...string) render.Renderer {
	return render.RendererFunc(func(_ context.Context, sourcePath, outDir string) (string, error) {
		name := diagram.Stem(sourcePath)
		for _, f := range fail {
			if f == name {
				return "", errors.New("PlantUML conversion failed: syntax error")
			}
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return "", err
		}
		out := filepath.Join(outDir, name+".png")
		return out, os.WriteFile(out, []byte("png"), 0o600)
	})
}

var threeSources = map[string]string{
	"alpha-architecture": "@startuml\ntitle Alpha\n@enduml\n",
	"beta-sequence":      "@startuml\ntitle Beta Flow\n@enduml\n",
	"gamma-unrelated":    "@startuml\n@enduml\n",
}

func TestRunAllSucceed(t *testing.T) {
	cfg := setup(t, threeSources)
	var out bytes.Buffer

	sum := New(cfg, testCatalog()).WithRenderer(stubRenderer()).WithOutput(&out).Run(context.Background())

	assert.Equal(t, 3, sum.Found)
	assert.Equal(t, 3, sum.Processed())
	assert.Empty(t, sum.Failed)
	require.NoError(t, sum.IndexErr)
	assert.Equal(t, filepath.Join(cfg.Paths.PagePath(), "README.md"), sum.IndexPath)

	for _, name := range []string{"alpha-architecture", "beta-sequence", "gamma-unrelated"} {
		assert.FileExists(t, filepath.Join(cfg.Paths.PagePath(), name+".md"))
		assert.FileExists(t, filepath.Join(cfg.Paths.ImagePath(), name+".png"))
	}

	alpha, err := os.ReadFile(filepath.Join(cfg.Paths.PagePath(), "alpha-architecture.md"))
	require.NoError(t, err)
	assert.Contains(t, string(alpha), "# Alpha Architecture\n\nThe alpha system.\n")

	beta, err := os.ReadFile(filepath.Join(cfg.Paths.PagePath(), "beta-sequence.md"))
	require.NoError(t, err)
	assert.Contains(t, string(beta), "# Beta Flow\n\nDocumentation for Beta Flow.\n")
	assert.Contains(t, string(beta), "- [Backend Architecture](./senzu-ai-backend-architecture.md)\n")

	gamma, err := os.ReadFile(filepath.Join(cfg.Paths.PagePath(), "gamma-unrelated.md"))
	require.NoError(t, err)
	assert.Contains(t, string(gamma), "# Untitled Diagram\n")

	idx, err := os.ReadFile(sum.IndexPath)
	require.NoError(t, err)
	assert.Contains(t, string(idx), "# Acme Architecture Documentation\n")
	assert.Contains(t, string(idx), "- [Beta Sequence](./beta-sequence.md)\n")

	text := out.String()
	assert.Contains(t, text, "Acme Documentation Generator\n")
	assert.Contains(t, text, "Found 3 PlantUML files\n")
	assert.Contains(t, text, "Processing: alpha-architecture\n")
	assert.Contains(t, text, "  ✓ Created: alpha-architecture.png\n")
	assert.Contains(t, text, "  ✓ Created: alpha-architecture.md\n")
	assert.Contains(t, text, "  - 3 diagrams processed\n")
}

func TestRunContinuesAfterFailure(t *testing.T) {
	cfg := setup(t, threeSources)
	var out bytes.Buffer

	sum := New(cfg, testCatalog()).WithRenderer(stubRenderer("beta-sequence")).WithOutput(&out).Run(context.Background())

	assert.Equal(t, 2, sum.Processed())
	require.Len(t, sum.Failed, 1)
	assert.Equal(t, "beta-sequence", sum.Failed[0].Name)
	assert.Equal(t, StageRender, sum.Failed[0].Stage)
	assert.NoFileExists(t, filepath.Join(cfg.Paths.PagePath(), "beta-sequence.md"))
	assert.FileExists(t, filepath.Join(cfg.Paths.PagePath(), "gamma-unrelated.md"))

	require.NoError(t, sum.IndexErr)
	idx, err := os.ReadFile(sum.IndexPath)
	require.NoError(t, err)
	// The curated index still links the failed page.
	assert.Contains(t, string(idx), "./beta-sequence.md")

	text := out.String()
	assert.Contains(t, text, "  ✗ Error: PlantUML conversion failed: syntax error\n")
	assert.Contains(t, text, "  - 2 diagrams processed\n")
}

func TestRunNoSources(t *testing.T) {
	cfg := setup(t, nil)
	var out bytes.Buffer

	sum := New(cfg, testCatalog()).WithRenderer(stubRenderer()).WithOutput(&out).Run(context.Background())

	assert.Zero(t, sum.Found)
	assert.Empty(t, sum.IndexPath)
	assert.NoFileExists(t, filepath.Join(cfg.Paths.PagePath(), "README.md"))
	assert.Contains(t, out.String(), "No .puml files found in "+cfg.Paths.SourcePath()+"\n")
}

func TestRunMissingSourceDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BaseDirectory = filepath.Join(t.TempDir(), "absent")
	var out bytes.Buffer

	sum := New(cfg, nil).WithOutput(&out).Run(context.Background())
	assert.Zero(t, sum.Found)
	assert.Contains(t, out.String(), "No .puml files found")
}

func TestRunSourceListingFails(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BaseDirectory = t.TempDir()
	// A regular file where the source directory should be.
	require.NoError(t, os.WriteFile(cfg.Paths.SourcePath(), []byte("x"), 0o600))
	var out bytes.Buffer

	sum := New(cfg, testCatalog()).WithRenderer(stubRenderer()).WithOutput(&out).Run(context.Background())

	require.Error(t, sum.DiscoverErr)
	assert.Zero(t, sum.Found)
	assert.Empty(t, sum.IndexPath)
	assert.Contains(t, out.String(), "✗ Failed to list "+cfg.Paths.SourcePath())
	assert.NotContains(t, out.String(), "No .puml files found")
}

func TestRunUnreadableSourceIsPerDiagramFailure(t *testing.T) {
	cfg := setup(t, map[string]string{
		"alpha-architecture": threeSources["alpha-architecture"],
		"gamma-unrelated":    threeSources["gamma-unrelated"],
	})
	// A dangling link cannot be read, even by root.
	require.NoError(t, os.Symlink(
		filepath.Join(t.TempDir(), "missing.puml"),
		filepath.Join(cfg.Paths.SourcePath(), "beta-sequence.puml"),
	))
	var out bytes.Buffer

	sum := New(cfg, testCatalog()).WithRenderer(stubRenderer()).WithOutput(&out).Run(context.Background())

	require.NoError(t, sum.DiscoverErr)
	assert.Equal(t, 3, sum.Found)
	assert.Equal(t, 2, sum.Processed())
	require.Len(t, sum.Failed, 1)
	assert.Equal(t, "beta-sequence", sum.Failed[0].Name)
	assert.Equal(t, StageRead, sum.Failed[0].Stage)
	require.NoError(t, sum.IndexErr)
	assert.FileExists(t, sum.IndexPath)
	assert.Contains(t, out.String(), "Processing: beta-sequence\n  ✗ Error: ")
}

func TestRunPermissionDeniedSource(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read mode 000 files")
	}
	cfg := setup(t, threeSources)
	locked := filepath.Join(cfg.Paths.SourcePath(), "beta-sequence.puml")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o600) })
	var out bytes.Buffer

	sum := New(cfg, testCatalog()).WithRenderer(stubRenderer()).WithOutput(&out).Run(context.Background())

	assert.Equal(t, 3, sum.Found)
	assert.Equal(t, 2, sum.Processed())
	require.Len(t, sum.Failed, 1)
	assert.Equal(t, StageRead, sum.Failed[0].Stage)
	assert.FileExists(t, sum.IndexPath)
	assert.NotContains(t, out.String(), "No .puml files found")
}

func TestRunSymlinkedSource(t *testing.T) {
	cfg := setup(t, nil)
	shared := filepath.Join(t.TempDir(), "shared.puml")
	require.NoError(t, os.WriteFile(shared, []byte(threeSources["beta-sequence"]), 0o600))
	require.NoError(t, os.Symlink(shared, filepath.Join(cfg.Paths.SourcePath(), "beta-sequence.puml")))

	sum := New(cfg, testCatalog()).WithRenderer(stubRenderer()).WithOutput(&bytes.Buffer{}).Run(context.Background())

	assert.Equal(t, 1, sum.Found)
	assert.Equal(t, 1, sum.Processed())
	page, err := os.ReadFile(filepath.Join(cfg.Paths.PagePath(), "beta-sequence.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "# Beta Flow\n")
}

func TestRunCanceled(t *testing.T) {
	cfg := setup(t, threeSources)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum := New(cfg, testCatalog()).WithRenderer(stubRenderer()).WithOutput(&bytes.Buffer{}).Run(ctx)
	assert.Equal(t, 3, sum.Found)
	assert.Zero(t, sum.Processed())
	assert.FileExists(t, sum.IndexPath)
}

func TestRunVerifiesLinks(t *testing.T) {
	cfg := setup(t, threeSources)

	sum := New(cfg, testCatalog()).WithRenderer(stubRenderer()).WithOutput(&bytes.Buffer{}).Run(context.Background())

	// alpha-architecture links to the class, deployment and database pages,
	// none of which were generated.
	var targets []string
	for _, b := range sum.BrokenLinks {
		targets = append(targets, filepath.Base(b.Target))
	}
	assert.Contains(t, targets, "senzu-ai-class-diagram.md")
	assert.NotContains(t, targets, "alpha-architecture.png")

	off := false
	cfg.Pages.VerifyLinks = &off
	sum = New(cfg, testCatalog()).WithRenderer(stubRenderer()).WithOutput(&bytes.Buffer{}).Run(context.Background())
	assert.Empty(t, sum.BrokenLinks)
}

func TestRunRecordsMetrics(t *testing.T) {
	cfg := setup(t, threeSources)
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "plantdoc.prom")
	rec := metrics.NewPrometheusRecorder(prom.NewRegistry())

	New(cfg, testCatalog()).
		WithRenderer(stubRenderer("gamma-unrelated")).
		WithOutput(&bytes.Buffer{}).
		WithRecorder(rec).
		Run(context.Background())

	data, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `plantdoc_diagram_results_total{result="success"} 2`)
	assert.Contains(t, text, `plantdoc_diagram_results_total{result="failed"} 1`)
	assert.Contains(t, text, "plantdoc_pages_generated 2")
}
