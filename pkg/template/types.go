package template

import (
	"errors"
	"fmt"
	"strings"
)

// Category selects which boilerplate tree a new project starts from.
type Category string

const (
	Category2D Category = "2d"
	Category3D Category = "3d"
)

var ErrInvalidCategory = errors.New("invalid template category")

// Categories returns the recognised categories in display order.
func Categories() []Category {
	return []Category{Category2D, Category3D}
}

// ParseCategory validates s. Surrounding whitespace and letter case are
// ignored; anything outside the closed set is ErrInvalidCategory.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: 2d, 3d)", ErrInvalidCategory, s)
}

// DirName is the directory name a category's template lives under.
func (c Category) DirName() string {
	return string(c) + "-game-boilerplate"
}

// RootKind says where a search root came from.
type RootKind string

const (
	RootBundled    RootKind = "bundled"
	RootWorkingDir RootKind = "working-dir"
	RootProject    RootKind = "project-root"
	RootExecutable RootKind = "executable"
	RootConfigured RootKind = "configured"
)

// SearchRoot is one base directory probed for templates.
type SearchRoot struct {
	Dir  string
	Kind RootKind
}

// TemplateInfo describes where a category resolved to.
type TemplateInfo struct {
	Category Category
	Path     string
	Err      error
}
