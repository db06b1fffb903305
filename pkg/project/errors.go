package project

import (
	"errors"
	"fmt"

	"gamegrove/pkg/fsys"
	"gamegrove/pkg/template"
)

var (
	ErrInvalidParent    = errors.New("parent is not an existing directory")
	ErrInvalidName      = errors.New("invalid project folder name")
	ErrAlreadyExists    = errors.New("target already exists")
	ErrInvalidCategory  = template.ErrInvalidCategory
	ErrTemplateNotFound = template.ErrTemplateNotFound
)

// Step names a stage of materialization.
type Step string

const (
	StepValidateCategory Step = "validate-category"
	StepValidateParent   Step = "validate-parent"
	StepValidateName     Step = "validate-name"
	StepValidateTarget   Step = "validate-target"
	StepCreate           Step = "create"
	StepLocate           Step = "locate-template"
	StepCopy             Step = "copy"
)

// Error reports which step of a materialization failed and on which path.
type Error struct {
	Step Step
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Step, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kind classifies err into a stable identifier for payloads and telemetry.
func Kind(err error) string {
	var ioErr *fsys.IOError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidParent):
		return "invalid_parent"
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrTemplateNotFound):
		return "template_not_found"
	case errors.As(err, &ioErr):
		return "io"
	}
	return "unknown"
}

// CheckedPaths returns the probed template paths when err is a
// template-not-found failure.
func CheckedPaths(err error) []string {
	var nf *template.NotFoundError
	if errors.As(err, &nf) {
		return nf.CheckedPaths
	}
	return nil
}
