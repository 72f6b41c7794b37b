// Package linkcheck verifies that relative links in generated Markdown
// resolve to files on disk.
package linkcheck

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	derrors "git.home.luguber.info/inful/plantdoc/internal/foundation/errors"
	"git.home.luguber.info/inful/plantdoc/internal/logfields"
)

type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
)

type Link struct {
	Kind        LinkKind
	Destination string
}

// Broken is a relative link whose target does not exist.
type Broken struct {
	File   string
	Link   Link
	Target string
}

// ExtractLinks returns inline links and images in document order.
func ExtractLinks(body []byte) []Link {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})
	return links
}

// localTarget returns the path part of a relative destination, or false for
// external URLs, absolute paths and pure fragments.
func localTarget(dest string) (string, bool) {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return "", false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}

// CheckFile reports the relative links in file whose targets are missing.
func CheckFile(file string) ([]Broken, error) {
	body, err := os.ReadFile(file)
	if err != nil {
		return nil, derrors.FileSystemError("read page for link check").WithCause(err).
			WithContext("path", file).Build()
	}

	dir := filepath.Dir(file)
	var broken []Broken
	for _, l := range ExtractLinks(body) {
		rel, ok := localTarget(l.Destination)
		if !ok {
			continue
		}
		target := filepath.Join(dir, rel)
		if _, statErr := os.Stat(target); statErr != nil {
			broken = append(broken, Broken{File: file, Link: l, Target: target})
		}
	}
	return broken, nil
}

// Verify checks every file and logs a warning per broken link. Unreadable
// files are logged and skipped.
func Verify(files []string) []Broken {
	var all []Broken
	for _, f := range files {
		broken, err := CheckFile(f)
		if err != nil {
			slog.Warn("Link check skipped", logfields.Path(f), logfields.Error(err))
			continue
		}
		for _, b := range broken {
			slog.Warn("Broken relative link",
				logfields.Path(b.File),
				slog.String("link", b.Link.Destination),
				slog.String("kind", string(b.Link.Kind)))
		}
		all = append(all, broken...)
	}
	return all
}
