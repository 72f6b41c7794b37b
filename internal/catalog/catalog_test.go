package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/plantdoc/internal/diagram"
	derrors "git.home.luguber.info/inful/plantdoc/internal/foundation/errors"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Diagrams, 11)
	require.Len(t, c.Sections, 4)
	assert.Equal(t, "System Overview", c.Sections[0].Heading)
	assert.Equal(t, "ML & Features", c.Sections[3].Heading)
	assert.Equal(t, "Senzu AI", c.Project)
	assert.Contains(t, c.About, "- Data ingestion and processing")
	require.Len(t, c.Navigation, 2)
	assert.Equal(t, NavLink{Title: "Project README", Href: "../../README.md"}, c.Navigation[0])
	assert.Equal(t, NavLink{Title: "Claude AI Instructions", Href: "../CLAUDE.md"}, c.Navigation[1])

	md := c.Diagrams["senzu-ai-backend-architecture"]
	assert.Equal(t, "Backend Architecture", md.Title)
	assert.Contains(t, md.Description, "### Key Components:")

	// every curated index entry has catalog metadata
	for _, name := range c.Names() {
		_, ok := c.Diagrams[name]
		assert.True(t, ok, "index entry %s missing from diagrams", name)
	}
}

func TestResolve(t *testing.T) {
	table := Table{
		"alpha-architecture": {Title: "Alpha", Description: "Alpha description."},
	}

	t.Run("table entry wins", func(t *testing.T) {
		got := Resolve(table, "alpha-architecture", "title Something Else")
		assert.Equal(t, table["alpha-architecture"], got)
	})

	t.Run("fallback uses extracted title", func(t *testing.T) {
		got := Resolve(table, "beta-sequence", "@startuml\ntitle Beta Sequence\n@enduml")
		assert.Equal(t, Metadata{Title: "Beta Sequence", Description: "Documentation for Beta Sequence."}, got)
	})

	t.Run("fallback without title directive", func(t *testing.T) {
		got := Resolve(table, "gamma-unrelated", "@startuml\nA -> B\n@enduml")
		assert.Equal(t, diagram.UntitledDiagram, got.Title)
		assert.Equal(t, "Documentation for Untitled Diagram.", got.Description)
	})

	t.Run("nil table", func(t *testing.T) {
		got := Resolve(nil, "x", "title X")
		assert.Equal(t, "X", got.Title)
		assert.NotEmpty(t, got.Description)
	})
}

func TestParseValidation(t *testing.T) {
	_, err := Parse([]byte("diagrams:\n  a:\n    title: A\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `diagram "a"`)

	_, err = Parse([]byte("sections:\n  - heading: X\n    entries:\n      - {name: a}\n"))
	require.Error(t, err)

	c, err := Parse([]byte("{}"))
	require.NoError(t, err)
	assert.NotNil(t, c.Diagrams)
	assert.Empty(t, c.Names())
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Len(t, c.Diagrams, 11)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diagrams:\n  one:\n    title: One\n    description: First.\n"), 0o600))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, Metadata{Title: "One", Description: "First."}, c.Diagrams["one"])

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryCatalog))
}
