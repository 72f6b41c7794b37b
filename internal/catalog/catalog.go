// Package catalog holds the hand-curated diagram metadata: titles and
// descriptions keyed by diagram name, plus the index table of contents.
//
// The catalog is an explicit value. Callers load it once (Default or Load)
// and pass it to Resolve, so tests can substitute their own table.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/plantdoc/internal/diagram"
	derrors "git.home.luguber.info/inful/plantdoc/internal/foundation/errors"
)

//go:embed catalog.yaml
var embedded []byte

// Metadata is the title and description shown on a diagram page.
type Metadata struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Table maps a diagram name (file stem) to its metadata.
type Table map[string]Metadata

// Entry is one curated index link.
type Entry struct {
	Name    string `yaml:"name"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
}

// Section is a curated index subsection.
type Section struct {
	Heading string  `yaml:"heading"`
	Entries []Entry `yaml:"entries"`
}

// NavLink is a back-link from the index to project documentation.
type NavLink struct {
	Title string `yaml:"title"`
	Href  string `yaml:"href"`
}

// Catalog is the parsed catalog file.
type Catalog struct {
	Project    string    `yaml:"project"`
	Diagrams   Table     `yaml:"diagrams"`
	Sections   []Section `yaml:"sections"`
	About      string    `yaml:"about"`
	Navigation []NavLink `yaml:"navigation"`
}

var parseEmbedded = sync.OnceValues(func() (*Catalog, error) {
	return Parse(embedded)
})

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return parseEmbedded()
}

// Load reads a catalog file, or returns the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derrors.CatalogError("failed to read catalog").WithCause(err).
			WithContext("path", path).Build()
	}
	c, err := Parse(data)
	if err != nil {
		return nil, derrors.CatalogError("invalid catalog").WithCause(err).
			WithContext("path", path).Build()
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if c.Diagrams == nil {
		c.Diagrams = Table{}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	for name, md := range c.Diagrams {
		if strings.TrimSpace(md.Title) == "" || strings.TrimSpace(md.Description) == "" {
			return fmt.Errorf("diagram %q: title and description are required", name)
		}
	}
	for _, s := range c.Sections {
		if strings.TrimSpace(s.Heading) == "" {
			return errors.New("index section without heading")
		}
		for _, e := range s.Entries {
			if e.Name == "" || e.Title == "" {
				return fmt.Errorf("index section %q: entries need a name and a title", s.Heading)
			}
		}
	}
	for _, n := range c.Navigation {
		if n.Title == "" || n.Href == "" {
			return errors.New("navigation links need a title and an href")
		}
	}
	return nil
}

// Names returns every diagram name referenced by the index sections, in order.
func (c *Catalog) Names() []string {
	var names []string
	for _, s := range c.Sections {
		for _, e := range s.Entries {
			names = append(names, e.Name)
		}
	}
	return names
}

// FallbackDescription is the generic description for diagrams missing from the table.
func FallbackDescription(title string) string {
	return fmt.Sprintf("Documentation for %s.", title)
}

// Resolve returns the table entry for name, or metadata synthesized from the
// source's title directive.
func Resolve(table Table, name, content string) Metadata {
	if md, ok := table[name]; ok {
		return md
	}
	title := diagram.ExtractTitle(content)
	return Metadata{Title: title, Description: FallbackDescription(title)}
}
