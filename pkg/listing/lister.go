// Package listing enumerates the project folders of a workspace root.
package listing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"gamegrove/pkg/fsys"
)

// FolderEntry describes one immediate subdirectory of a listed root.
type FolderEntry struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	LastModified int64  `json:"lastModified"`
}

// SortOrder selects how List orders its result.
type SortOrder string

const (
	// SortByName orders case-insensitively by name, ascending.
	SortByName SortOrder = "name"
	// SortByModified orders newest first.
	SortByModified SortOrder = "modified"
)

var ErrUnknownOrder = errors.New("unknown sort order")

var errNotDirectory = errors.New("not a directory")

// ParseSortOrder maps user input onto a SortOrder. The empty string selects
// SortByName.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByName:
		return SortByName, nil
	case SortByModified:
		return SortByModified, nil
	}
	return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownOrder, s, SortByName, SortByModified)
}

// List returns the directories directly under root.
//
// A root that does not exist yields an empty result. A root that exists but
// cannot be read, or is not a directory, yields an *fsys.IOError. Symlinks are
// followed to decide whether an entry is a directory; lastModified is always
// the entry's own modification time.
func List(afs afero.Fs, root string, order SortOrder) ([]FolderEntry, error) {
	if order != SortByName && order != SortByModified {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrder, order)
	}

	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	info, err := afs.Stat(root)
	if err != nil {
		if fsys.IsNotFound(err) {
			return []FolderEntry{}, nil
		}
		return nil, fsys.Wrap("list", root, err)
	}
	if !info.IsDir() {
		return nil, fsys.Wrap("list", root, errNotDirectory)
	}

	infos, err := afero.ReadDir(afs, root)
	if err != nil {
		return nil, fsys.Wrap("list", root, err)
	}

	entries := make([]FolderEntry, 0, len(infos))
	for _, fi := range infos {
		path := filepath.Join(root, fi.Name())
		if !isDirEntry(afs, path, fi) {
			continue
		}
		entries = append(entries, FolderEntry{
			Name:         fi.Name(),
			Path:         path,
			LastModified: modSeconds(fi),
		})
	}

	Sort(entries, order)
	return entries, nil
}

// Sort orders entries in place. Ties fall back to name so the result only
// depends on the directory contents.
func Sort(entries []FolderEntry, order SortOrder) {
	switch order {
	case SortByModified:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].LastModified != entries[j].LastModified {
				return entries[i].LastModified > entries[j].LastModified
			}
			return lessName(entries[i], entries[j])
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			return lessName(entries[i], entries[j])
		})
	}
}

func lessName(a, b FolderEntry) bool {
	la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if la != lb {
		return la < lb
	}
	return a.Name < b.Name
}

func isDirEntry(afs afero.Fs, path string, fi os.FileInfo) bool {
	if fi.Mode()&os.ModeSymlink == 0 {
		return fi.IsDir()
	}
	target, err := afs.Stat(path)
	return err == nil && target.IsDir()
}

func modSeconds(fi os.FileInfo) int64 {
	mt := fi.ModTime()
	if mt.IsZero() {
		return 0
	}
	if secs := mt.Unix(); secs > 0 {
		return secs
	}
	return 0
}
