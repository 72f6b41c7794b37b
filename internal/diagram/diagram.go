// Package diagram discovers PlantUML sources and reads their title directive.
package diagram

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	derrors "git.home.luguber.info/inful/plantdoc/internal/foundation/errors"
)

// UntitledDiagram is returned by ExtractTitle when a source declares no title.
const UntitledDiagram = "Untitled Diagram"

// The separator also accepts Unicode spaces such as U+00A0.
var titleDirective = regexp.MustCompile(`title[\s\p{Z}]+(.+)`)

// Source is a single diagram source file, identified by its file stem.
type Source struct {
	Name string
	Path string
}

// Read returns the source text.
func (s Source) Read() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", derrors.FileSystemError("read diagram source").WithCause(err).
			WithContext("diagram", s.Name).WithContext("path", s.Path).Build()
	}
	return string(data), nil
}

// ExtractTitle returns the trimmed text following the first "title" directive,
// or UntitledDiagram.
func ExtractTitle(content string) string {
	m := titleDirective.FindStringSubmatch(content)
	if m == nil {
		return UntitledDiagram
	}
	title := strings.TrimSpace(m[1])
	if title == "" {
		return UntitledDiagram
	}
	return title
}

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Discover lists the files in dir whose extension matches ext
// (case-insensitive), sorted by file name. Symlinks are followed; a link that
// cannot be resolved is still listed so the failure surfaces when it is read.
// Directories never match. A missing directory yields no sources and no error.
func Discover(dir, ext string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, derrors.FileSystemError("list diagram sources").WithCause(err).
			WithContext("path", dir).Build()
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		if !isFileEntry(dir, e) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	sources := make([]Source, 0, len(names))
	for _, name := range names {
		sources = append(sources, Source{Name: Stem(name), Path: filepath.Join(dir, name)})
	}
	return sources, nil
}

func isFileEntry(dir string, e fs.DirEntry) bool {
	switch {
	case e.Type().IsRegular():
		return true
	case e.Type()&fs.ModeSymlink != 0:
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil {
			return true
		}
		return info.Mode().IsRegular()
	default:
		return false
	}
}
