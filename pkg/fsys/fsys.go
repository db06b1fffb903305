// Package fsys is the filesystem capability used by the lister, the template
// locator and copier, and the project materializer.
//
// Everything goes through an afero.Fs so the same code runs against the real
// disk (OS) and against an in-memory double (Memory) in tests.
package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// OS returns the filesystem backed by the operating system.
func OS() afero.Fs {
	return afero.NewOsFs()
}

// Memory returns an empty in-memory filesystem.
func Memory() afero.Fs {
	return afero.NewMemMapFs()
}

// IOError reports a failed filesystem operation on a path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *IOError for op on path. A nil err stays nil and an
// error that already is an *IOError is returned unchanged.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// IsNotFound reports whether err means the path does not exist.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, fs.ErrNotExist)
}

// Lstat stats path without following a final symlink when the filesystem
// supports it, and falls back to Stat otherwise.
func Lstat(fsys afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fsys.Stat(path)
}

// DirExists reports whether path exists and is a directory. Any stat error,
// including "not found", yields false.
func DirExists(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
