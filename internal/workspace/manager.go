// Package workspace is the boundary the desktop frontend, the HTTP bridge and
// the CLI call into: listing project folders, creating projects from
// templates and handing projects to external programs.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"gamegrove/pkg/fsys"
	"gamegrove/pkg/launch"
	"gamegrove/pkg/listing"
	"gamegrove/pkg/project"
	"gamegrove/pkg/template"
)

// EntryPage is the file opened by OpenInBrowser.
const EntryPage = "index.html"

var (
	ErrRelativePath = errors.New("path must be absolute")
	ErrNotAProject  = errors.New("not an existing project folder")
	ErrNoEntryPage  = errors.New("project has no " + EntryPage)
)

// Recorder receives usage events. *telemetry.Collector implements it.
type Recorder interface {
	RecordProject(action, name, template string, duration time.Duration, err error) error
	RecordListing(root string, count int, err error) error
	RecordOpen(target, path string, err error) error
}

type nopRecorder struct{}

func (nopRecorder) RecordProject(string, string, string, time.Duration, error) error { return nil }
func (nopRecorder) RecordListing(string, int, error) error                         { return nil }
func (nopRecorder) RecordOpen(string, string, error) error                         { return nil }

// Locator is the template lookup the manager needs.
type Locator interface {
	project.TemplateLocator
	ListAvailable() []template.TemplateInfo
}

type Options struct {
	// WorkspaceRoot is the folder the user picked as workspace.
	WorkspaceRoot string
	// DefaultRoot is listed when no workspace was picked, usually $HOME/src.
	DefaultRoot string
	Editor      string
	Recorder    Recorder
}

type Manager struct {
	fs           afero.Fs
	locator      Locator
	materializer *project.Materializer
	launcher     launch.Launcher
	recorder     Recorder

	workspaceRoot string
	defaultRoot   string
	editor        string
}

func NewManager(afs afero.Fs, locator Locator, launcher launch.Launcher, opts Options) *Manager {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Manager{
		fs:            afs,
		locator:       locator,
		materializer:  project.NewMaterializer(afs, locator),
		launcher:      launcher,
		recorder:      recorder,
		workspaceRoot: opts.WorkspaceRoot,
		defaultRoot:   opts.DefaultRoot,
		editor:        opts.Editor,
	}
}

func (m *Manager) WorkspaceRoot() string { return m.workspaceRoot }
func (m *Manager) DefaultRoot() string   { return m.defaultRoot }

// ListWorkspace lists the configured workspace root.
func (m *Manager) ListWorkspace(order listing.SortOrder) ([]listing.FolderEntry, error) {
	return m.List(m.workspaceRoot, order)
}

// ListDefault lists the default root.
func (m *Manager) ListDefault(order listing.SortOrder) ([]listing.FolderEntry, error) {
	return m.List(m.defaultRoot, order)
}

func (m *Manager) List(root string, order listing.SortOrder) ([]listing.FolderEntry, error) {
	entries, err := listing.List(m.fs, root, order)
	m.recorded(m.recorder.RecordListing(root, len(entries), err))
	return entries, err
}

// CreateProject materializes a new project at parent/name from the template
// for category and returns its absolute path.
func (m *Manager) CreateProject(parent, name, category string) (string, error) {
	start := time.Now()
	path, err := m.materializer.Materialize(parent, name, category)
	m.recorded(m.recorder.RecordProject("create", name, strings.ToLower(strings.TrimSpace(category)), time.Since(start), err))
	return path, err
}

// Templates reports where each category's template was found.
func (m *Manager) Templates() []template.TemplateInfo {
	return m.locator.ListAvailable()
}

// OpenInEditor launches the configured editor on the project folder.
func (m *Manager) OpenInEditor(ctx context.Context, path string) error {
	err := m.requireProject(path)
	if err == nil {
		err = launch.OpenEditor(ctx, m.launcher, m.editor, path)
	}
	m.recorded(m.recorder.RecordOpen("editor", path, err))
	return err
}

// OpenInBrowser opens the project's index.html in the default browser.
func (m *Manager) OpenInBrowser(ctx context.Context, path string) error {
	err := m.requireProject(path)
	page := filepath.Join(path, EntryPage)
	if err == nil {
		if ok, _ := afero.Exists(m.fs, page); !ok {
			err = fmt.Errorf("%w: %s", ErrNoEntryPage, page)
		}
	}
	if err == nil {
		err = launch.OpenBrowser(ctx, m.launcher, page)
	}
	m.recorded(m.recorder.RecordOpen("browser", path, err))
	return err
}

// recorded logs a failed telemetry write; it never fails the operation.
func (m *Manager) recorded(err error) {
	if err != nil {
		slog.Debug("failed to record event", "error", err)
	}
}

func (m *Manager) requireProject(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %q", ErrRelativePath, path)
	}
	if !fsys.DirExists(m.fs, path) {
		return fmt.Errorf("%w: %s", ErrNotAProject, path)
	}
	return nil
}

// Message renders err for display to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var perr *project.Error
	errors.As(err, &perr)

	var nf *template.NotFoundError
	var ioErr *fsys.IOError

	switch {
	case errors.Is(err, project.ErrInvalidCategory):
		names := make([]string, 0, len(template.Categories()))
		for _, c := range template.Categories() {
			names = append(names, string(c))
		}
		return fmt.Sprintf("Unknown template category. Choose one of: %s.", strings.Join(names, ", "))
	case errors.Is(err, project.ErrInvalidParent) && pathOf(perr) == "":
		return "No parent folder was given."
	case errors.Is(err, project.ErrInvalidParent):
		return fmt.Sprintf("The folder %s does not exist or is not a folder.", pathOf(perr))
	case errors.Is(err, project.ErrInvalidName):
		return fmt.Sprintf("%q is not a valid project name.", pathOf(perr))
	case errors.Is(err, project.ErrAlreadyExists):
		return fmt.Sprintf("%s already exists. Pick another name.", pathOf(perr))
	case errors.As(err, &nf):
		var b strings.Builder
		fmt.Fprintf(&b, "Could not find the %s game template. Looked in:", nf.Category)
		for _, p := range nf.CheckedPaths {
			b.WriteString("\n  - ")
			b.WriteString(p)
		}
		if perr != nil && perr.Path != "" {
			fmt.Fprintf(&b, "\nThe empty folder %s was left in place.", perr.Path)
		}
		return b.String()
	case errors.Is(err, ErrNoEntryPage):
		return "This project has no index.html to open in the browser."
	case errors.Is(err, ErrNotAProject), errors.Is(err, ErrRelativePath):
		return fmt.Sprintf("Cannot open: %v.", err)
	case errors.As(err, &ioErr):
		if ioErr.Op == "list" {
			return fmt.Sprintf("Error reading directory: %v", ioErr.Err)
		}
		if perr != nil && perr.Step == project.StepCopy {
			return fmt.Sprintf("Copying the template failed at %s: %v. The project folder %s is incomplete.", ioErr.Path, ioErr.Err, perr.Path)
		}
		return fmt.Sprintf("Could not %s %s: %v", ioErr.Op, ioErr.Path, ioErr.Err)
	}
	return err.Error()
}

func pathOf(perr *project.Error) string {
	if perr == nil {
		return "the target"
	}
	return perr.Path
}
