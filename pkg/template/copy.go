package template

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"gamegrove/pkg/fsys"
)

var (
	errNotDirectory = errors.New("not a directory")
	errNestedCopy   = errors.New("destination is inside the source tree")
)

// CopyTree copies everything under src into dst. Both must already exist
// as directories.
//
// Regular files are copied byte for byte, directories are created (empty
// ones included) and recursed into. Symlinks and special files are skipped
// with a warning. The first I/O error stops the copy and is returned as an
// *fsys.IOError; whatever was copied before it stays in dst.
func CopyTree(afs afero.Fs, src, dst string) error {
	if err := requireDir(afs, src); err != nil {
		return err
	}
	if err := requireDir(afs, dst); err != nil {
		return err
	}
	if within(src, dst) {
		return fsys.Wrap("copy", dst, errNestedCopy)
	}
	return copyDir(afs, src, dst)
}

func copyDir(afs afero.Fs, src, dst string) error {
	infos, err := afero.ReadDir(afs, src)
	if err != nil {
		return fsys.Wrap("read dir", src, err)
	}

	for _, fi := range infos {
		from := filepath.Join(src, fi.Name())
		to := filepath.Join(dst, fi.Name())
		mode := fi.Mode()

		switch {
		case mode.IsRegular():
			if err := copyFile(afs, from, to, mode.Perm()); err != nil {
				return err
			}
		case mode.IsDir():
			if err := afs.MkdirAll(to, mode.Perm()|0700); err != nil {
				return fsys.Wrap("mkdir", to, err)
			}
			if err := copyDir(afs, from, to); err != nil {
				return err
			}
		default:
			slog.Warn("skipping entry that is neither a file nor a directory", "path", from, "mode", mode.String())
		}
	}
	return nil
}

func copyFile(afs afero.Fs, from, to string, perm os.FileMode) error {
	in, err := afs.Open(from)
	if err != nil {
		return fsys.Wrap("open", from, err)
	}
	defer in.Close()

	out, err := afs.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fsys.Wrap("create", to, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fsys.Wrap("copy", to, err)
	}
	if err := out.Close(); err != nil {
		return fsys.Wrap("close", to, err)
	}
	return nil
}

func requireDir(afs afero.Fs, path string) error {
	info, err := afs.Stat(path)
	if err != nil {
		return fsys.Wrap("stat", path, err)
	}
	if !info.IsDir() {
		return fsys.Wrap("stat", path, errNotDirectory)
	}
	return nil
}

// within reports whether dst is src or lies below it.
func within(src, dst string) bool {
	rel, err := filepath.Rel(filepath.Clean(src), filepath.Clean(dst))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
