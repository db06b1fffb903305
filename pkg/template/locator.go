package template

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const templatesDir = "templates"

var ErrTemplateNotFound = errors.New("template not found")

// NotFoundError lists every path that was probed for a category, in probe
// order.
type NotFoundError struct {
	Category     Category
	CheckedPaths []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template %q not found; checked paths:\n  %s",
		e.Category.DirName(), strings.Join(e.CheckedPaths, "\n  "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}

// Locator resolves a category to a template directory by probing an ordered
// list of search roots. The first existing directory wins.
type Locator struct {
	fs    afero.Fs
	roots []SearchRoot
}

func NewLocator(afs afero.Fs, roots []SearchRoot) *Locator {
	return &Locator{fs: afs, roots: roots}
}

// Roots returns the search roots in probe order.
func (l *Locator) Roots() []SearchRoot {
	return append([]SearchRoot(nil), l.roots...)
}

// Candidates returns the template paths probed for c, in order, without
// duplicates.
func (l *Locator) Candidates(c Category) []string {
	if parsed, err := ParseCategory(string(c)); err == nil {
		c = parsed
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, root := range l.roots {
		path := filepath.Join(root.Dir, templatesDir, c.DirName())
		add(path)
		if root.Kind == RootBundled {
			add(path + string(filepath.Separator))
			add(filepath.Join(root.Dir, bundledParentDir, "src", templatesDir, c.DirName()))
		}
	}
	return out
}

// Locate returns the first candidate for c that exists and is a directory.
func (l *Locator) Locate(c Category) (string, error) {
	c, err := ParseCategory(string(c))
	if err != nil {
		return "", err
	}

	candidates := l.Candidates(c)
	for _, path := range candidates {
		info, err := l.fs.Stat(path)
		if err != nil || !info.IsDir() {
			slog.Debug("template candidate rejected", "category", c, "path", path)
			continue
		}
		slog.Debug("template located", "category", c, "path", path)
		return path, nil
	}

	return "", &NotFoundError{Category: c, CheckedPaths: candidates}
}

// ListAvailable resolves every known category.
func (l *Locator) ListAvailable() []TemplateInfo {
	var infos []TemplateInfo
	for _, c := range Categories() {
		path, err := l.Locate(c)
		infos = append(infos, TemplateInfo{Category: c, Path: path, Err: err})
	}
	return infos
}
