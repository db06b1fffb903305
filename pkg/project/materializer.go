// Package project creates new game projects by copying a template tree into
// a fresh directory.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"gamegrove/pkg/fsys"
	"gamegrove/pkg/template"
)

// TemplateLocator resolves a category to a template directory.
type TemplateLocator interface {
	Locate(c template.Category) (string, error)
}

// Materializer runs the create-project pipeline. Each call is independent;
// a Materializer holds no mutable state.
type Materializer struct {
	fs      afero.Fs
	locator TemplateLocator
}

func NewMaterializer(afs afero.Fs, locator TemplateLocator) *Materializer {
	return &Materializer{fs: afs, locator: locator}
}

// Materialize creates parent/name and fills it with the template for
// category, returning the absolute path of the new directory. parent must be
// an absolute path to an existing directory.
//
// The pipeline only moves forward. When locating or copying fails, the
// directory created so far (empty or partially populated) is left in place
// for the caller to inspect.
func (m *Materializer) Materialize(parent, name, category string) (string, error) {
	c, err := template.ParseCategory(category)
	if err != nil {
		return "", &Error{Step: StepValidateCategory, Err: err}
	}

	// parent must be absolute; nothing resolves against the working directory.
	if strings.TrimSpace(parent) == "" {
		return "", &Error{Step: StepValidateParent, Err: fmt.Errorf("%w: parent is empty", ErrInvalidParent)}
	}
	if !filepath.IsAbs(parent) {
		return "", &Error{Step: StepValidateParent, Path: parent, Err: fmt.Errorf("%w: %q is not absolute", ErrInvalidParent, parent)}
	}
	parent = filepath.Clean(parent)
	info, err := m.fs.Stat(parent)
	if err != nil {
		return "", &Error{Step: StepValidateParent, Path: parent, Err: fmt.Errorf("%w: %w", ErrInvalidParent, err)}
	}
	if !info.IsDir() {
		return "", &Error{Step: StepValidateParent, Path: parent, Err: ErrInvalidParent}
	}

	if err := validateName(name); err != nil {
		return "", &Error{Step: StepValidateName, Path: name, Err: err}
	}

	target := filepath.Join(parent, name)
	if _, err := fsys.Lstat(m.fs, target); err == nil {
		return "", &Error{Step: StepValidateTarget, Path: target, Err: ErrAlreadyExists}
	} else if !fsys.IsNotFound(err) {
		return "", &Error{Step: StepValidateTarget, Path: target, Err: fsys.Wrap("stat", target, err)}
	}

	if err := m.fs.Mkdir(target, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", &Error{Step: StepCreate, Path: target, Err: ErrAlreadyExists}
		}
		return "", &Error{Step: StepCreate, Path: target, Err: fsys.Wrap("mkdir", target, err)}
	}

	src, err := m.locator.Locate(c)
	if err != nil {
		slog.Warn("template lookup failed; leaving empty project directory", "category", c, "target", target, "error", err)
		return "", &Error{Step: StepLocate, Path: target, Err: err}
	}

	if err := template.CopyTree(m.fs, src, target); err != nil {
		slog.Warn("template copy failed; project directory is incomplete", "template", src, "target", target, "error", err)
		return "", &Error{Step: StepCopy, Path: target, Err: err}
	}

	slog.Info("project materialized", "category", c, "template", src, "path", target)
	return target, nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case trimmed == "." || trimmed == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: %q must not contain path separators", ErrInvalidName, name)
	}
	return nil
}
