// Package pages composes and writes one Markdown page per rendered diagram.
package pages

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	derrors "git.home.luguber.info/inful/plantdoc/internal/foundation/errors"
)

// Generated records a page that was rendered and written successfully.
type Generated struct {
	Name  string
	Title string
	Path  string
}

// PageInput carries everything needed to compose one diagram page.
type PageInput struct {
	Name        string
	Title       string
	Description string
	SourcePath  string
	ImagePath   string
	PageDir     string
	Extension   string
	IndexFile   string
	FrontMatter bool
}

type pageData struct {
	Title       string
	Description string
	ImageRef    string
	SourceRef   string
	Related     []Link
	Ext         string
	IndexFile   string
}

var pageTemplate = template.Must(template.New("page").Parse(`# {{.Title}}

{{.Description}}

## Diagram

![{{.Title}}]({{.ImageRef}})

## Related Diagrams

{{range .Related}}- [{{.Title}}](./{{.Name}}{{$.Ext}})
{{end}}
## Source

This documentation was automatically generated from PlantUML diagrams.

- Source file: [` + "`{{.SourceRef}}`" + `]({{.SourceRef}})
- Image: [` + "`{{.ImageRef}}`" + `]({{.ImageRef}})

## Navigation

Return to [Documentation Index](./{{.IndexFile}})
`))

// Compose renders the page text. It is deterministic: identical input
// always yields identical bytes.
func Compose(in PageInput) ([]byte, error) {
	imageRef, err := relativeRef(in.PageDir, in.ImagePath)
	if err != nil {
		return nil, err
	}
	sourceRef, err := relativeRef(in.PageDir, in.SourcePath)
	if err != nil {
		return nil, err
	}

	data := pageData{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		ImageRef:    imageRef,
		SourceRef:   sourceRef,
		Related:     Related(in.Name),
		Ext:         extension(in.Extension),
		IndexFile:   indexFile(in.IndexFile),
	}

	var body bytes.Buffer
	if err := pageTemplate.Execute(&body, data); err != nil {
		return nil, derrors.PagesError("render page template").WithCause(err).
			WithContext("diagram", in.Name).Build()
	}
	if !in.FrontMatter {
		return body.Bytes(), nil
	}

	fm, err := buildFrontMatter(in.Name, in.Title, body.Bytes())
	if err != nil {
		return nil, derrors.PagesError("serialize front matter").WithCause(err).
			WithContext("diagram", in.Name).Build()
	}
	out := make([]byte, 0, len(fm)+body.Len()+8)
	out = append(out, "---\n"...)
	out = append(out, fm...)
	out = append(out, "---\n\n"...)
	return append(out, body.Bytes()...), nil
}

// Write composes the page and writes it to <PageDir>/<Name><Extension>,
// replacing any existing file.
func Write(in PageInput) (string, error) {
	content, err := Compose(in)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(in.PageDir, 0o755); err != nil {
		return "", derrors.FileSystemError("create page directory").WithCause(err).
			WithContext("path", in.PageDir).Build()
	}
	path := filepath.Join(in.PageDir, in.Name+extension(in.Extension))
	// #nosec G306 -- generated documentation is meant to be world-readable
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", derrors.FileSystemError("write page").WithCause(err).
			WithContext("diagram", in.Name).WithContext("path", path).Build()
	}
	return path, nil
}

// relativeRef returns target relative to dir using forward slashes, as Markdown expects.
func relativeRef(dir, target string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil {
		return "", derrors.PagesError("compute relative link").WithCause(err).
			WithContext("from", dir).WithContext("to", target).Build()
	}
	return filepath.ToSlash(rel), nil
}

func extension(ext string) string {
	if ext == "" {
		return ".md"
	}
	return ext
}

func indexFile(name string) string {
	if name == "" {
		return "README.md"
	}
	return name
}
