// Package index writes the aggregate documentation index.
//
// The index is a curated table of contents taken from the catalog. It does
// not list the pages generated by a run; Write only reports curated entries
// that were not generated so the gap is visible in the logs.
package index

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/plantdoc/internal/catalog"
	derrors "git.home.luguber.info/inful/plantdoc/internal/foundation/errors"
	"git.home.luguber.info/inful/plantdoc/internal/logfields"
	"git.home.luguber.info/inful/plantdoc/internal/pages"
)

const defaultAbout = "These diagrams document the system architecture, data models and process flows."

// Layout describes the documentation directories for the structure illustration.
type Layout struct {
	BaseDirectory   string
	SourceDir       string
	ImageDir        string
	PageDir         string
	SourceExtension string
}

// Options controls index composition.
type Options struct {
	PageDir   string
	Extension string
	IndexFile string
	Layout    Layout
}

type indexData struct {
	Heading    string
	Sections   []catalog.Section
	About      string
	Ext        string
	Tree       string
	Navigation []catalog.NavLink
}

var indexTemplate = template.Must(template.New("index").Parse(`# {{.Heading}}

This directory contains automatically generated documentation from PlantUML diagrams.
Each document includes a rendered diagram image and detailed descriptions of the components and flows.

## Architecture Diagrams
{{range .Sections}}
### {{.Heading}}
{{range .Entries}}- [{{.Title}}](./{{.Name}}{{$.Ext}}){{if .Summary}} - {{.Summary}}{{end}}
{{end}}{{end}}
## About

{{.About}}

### Regenerating Documentation

To regenerate this documentation from PlantUML source files:

` + "```bash" + `
plantdoc generate
` + "```" + `

### Project Structure

` + "```" + `
{{.Tree}}` + "```" + `
{{if .Navigation}}
## Navigation

{{range .Navigation}}- [{{.Title}}]({{.Href}})
{{end}}{{end}}`))

// Compose renders the index document for the catalog.
func Compose(cat *catalog.Catalog, opts Options) ([]byte, error) {
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	heading := "Architecture Documentation"
	if p := strings.TrimSpace(cat.Project); p != "" {
		heading = p + " " + heading
	}
	about := strings.TrimSpace(cat.About)
	if about == "" {
		about = defaultAbout
	}

	data := indexData{
		Heading:    heading,
		Sections:   cat.Sections,
		About:      about,
		Ext:        extensionOrDefault(opts.Extension),
		Tree:       tree(opts.Layout, indexFileOrDefault(opts.IndexFile)),
		Navigation: cat.Navigation,
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		return nil, derrors.PagesError("render index template").WithCause(err).Build()
	}
	return buf.Bytes(), nil
}

// Write composes the index into <PageDir>/<IndexFile>, replacing any existing
// file. Curated entries missing from generated are logged as warnings.
func Write(generated []pages.Generated, cat *catalog.Catalog, opts Options) (string, error) {
	content, err := Compose(cat, opts)
	if err != nil {
		return "", err
	}

	for _, name := range Missing(generated, cat) {
		slog.Warn("Index links to a page that was not generated in this run", logfields.Diagram(name))
	}

	if err := os.MkdirAll(opts.PageDir, 0o755); err != nil {
		return "", derrors.FileSystemError("create page directory").WithCause(err).
			WithContext("path", opts.PageDir).Build()
	}
	path := filepath.Join(opts.PageDir, indexFileOrDefault(opts.IndexFile))
	// #nosec G306 -- generated documentation is meant to be world-readable
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", derrors.FileSystemError("write index").WithCause(err).
			WithContext("path", path).Build()
	}
	return path, nil
}

// Missing returns curated index entries with no generated page, in index order.
func Missing(generated []pages.Generated, cat *catalog.Catalog) []string {
	if cat == nil {
		return nil
	}
	have := make(map[string]struct{}, len(generated))
	for _, g := range generated {
		have[g.Name] = struct{}{}
	}
	var missing []string
	seen := make(map[string]struct{})
	for _, name := range cat.Names() {
		if _, ok := have[name]; ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		missing = append(missing, name)
	}
	return missing
}

// tree draws the directory layout with comments aligned in one column.
func tree(l Layout, indexFile string) string {
	base := l.BaseDirectory
	if base == "" {
		base = "."
	}
	ext := l.SourceExtension
	if ext == "" {
		ext = ".puml"
	}
	var b strings.Builder
	b.WriteString(filepath.ToSlash(filepath.Clean(base)) + "/\n")
	line := func(prefix, name, comment string) {
		fmt.Fprintf(&b, "%s%-*s # %s\n", prefix, 22-len([]rune(prefix)), name, comment)
	}
	line("├── ", dirName(l.SourceDir, "puml"), fmt.Sprintf("PlantUML source files (%s)", ext))
	line("├── ", dirName(l.ImageDir, "images"), "Generated PNG images")
	line("└── ", dirName(l.PageDir, "md"), "Generated Markdown documentation")
	line("    └── ", indexFile, "This file")
	return b.String()
}

func dirName(dir, fallback string) string {
	if dir == "" {
		return fallback + "/"
	}
	return filepath.Base(filepath.Clean(dir)) + "/"
}

func extensionOrDefault(ext string) string {
	if ext == "" {
		return ".md"
	}
	return ext
}

func indexFileOrDefault(name string) string {
	if name == "" {
		return "README.md"
	}
	return name
}
