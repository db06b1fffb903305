package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// executableAncestors is how many parents of the executable's directory are
// searched in addition to the directory itself.
const executableAncestors = 3

// bundledParentDir is where the desktop bundler places resources that were
// declared relative to the parent directory ("../src/templates").
const bundledParentDir = "_up_"

// DefaultMarkers identify the root of a source checkout.
var DefaultMarkers = []string{".gamegrove.yaml", "package.json", "src-tauri"}

// Context is the deployment context templates are resolved against. It is
// plain data so search order can be tested without touching process state.
type Context struct {
	// ResourceDir is the packaged resource directory. Empty when running
	// from source.
	ResourceDir   string
	WorkingDir    string
	ProjectRoot   string
	ExecutableDir string
	ExtraRoots    []string
}

// DetectContext builds a Context from the running process. resourceDir
// overrides bundle detection when non-empty.
func DetectContext(afs afero.Fs, resourceDir string, markers []string) (Context, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Context{}, fmt.Errorf("failed to get working directory: %w", err)
	}

	var exeDir string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		exeDir = filepath.Dir(exe)
	}

	if resourceDir == "" {
		resourceDir = bundledResourceDir(afs, exeDir)
	}

	return Context{
		ResourceDir:   resourceDir,
		WorkingDir:    wd,
		ProjectRoot:   FindProjectRoot(afs, wd, markers),
		ExecutableDir: exeDir,
	}, nil
}

// bundledResourceDir recognises an application bundle layout
// (<name>.app/Contents/MacOS/<exe>) and returns its Resources directory.
func bundledResourceDir(afs afero.Fs, exeDir string) string {
	if exeDir == "" || filepath.Base(exeDir) != "MacOS" {
		return ""
	}
	contents := filepath.Dir(exeDir)
	if filepath.Base(contents) != "Contents" || !strings.HasSuffix(filepath.Dir(contents), ".app") {
		return ""
	}
	res := filepath.Join(contents, "Resources")
	if info, err := afs.Stat(res); err != nil || !info.IsDir() {
		return ""
	}
	return res
}

// FindProjectRoot walks up from start to the first directory holding one of
// markers. It returns start when no marker is found.
func FindProjectRoot(afs afero.Fs, start string, markers []string) string {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	dir := filepath.Clean(start)
	for {
		for _, marker := range markers {
			if _, err := afs.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// SearchRoots lists the roots to probe, in order: the bundled resource
// directory, the working directory, the project root, the executable's
// directory and its ancestors, then any configured extras.
func (c Context) SearchRoots() []SearchRoot {
	var roots []SearchRoot
	add := func(dir string, kind RootKind) {
		if dir == "" {
			return
		}
		roots = append(roots, SearchRoot{Dir: filepath.Clean(dir), Kind: kind})
	}

	add(c.ResourceDir, RootBundled)
	add(c.WorkingDir, RootWorkingDir)

	projectRoot := c.ProjectRoot
	if projectRoot == "" {
		projectRoot = c.WorkingDir
	}
	add(projectRoot, RootProject)

	if c.ExecutableDir != "" {
		dir := filepath.Clean(c.ExecutableDir)
		add(dir, RootExecutable)
		for i := 0; i < executableAncestors; i++ {
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			add(parent, RootExecutable)
			dir = parent
		}
	}

	for _, extra := range c.ExtraRoots {
		add(extra, RootConfigured)
	}
	return roots
}
