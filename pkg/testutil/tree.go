// Package testutil provides filesystem tree fixtures for tests
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

// WriteTree creates files under root. Keys are slash-separated paths relative
// to root; a key ending in "/" creates an empty directory.
func WriteTree(t *testing.T, afs afero.Fs, root string, files map[string]string) {
	t.Helper()

	if err := afs.MkdirAll(root, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", root, err)
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			if err := afs.MkdirAll(path, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", path, err)
			}
			continue
		}
		if err := afs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(afs, path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
}

// ReadTree returns every regular file under root keyed by its slash-separated
// relative path.
func ReadTree(t *testing.T, afs afero.Fs, root string) map[string]string {
	t.Helper()

	out := make(map[string]string)
	err := afero.Walk(afs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := afero.ReadFile(afs, path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to read tree %s: %v", root, err)
	}
	return out
}

// ListDirs returns every directory below root, relative and slash-separated,
// sorted.
func ListDirs(t *testing.T, afs afero.Fs, root string) []string {
	t.Helper()

	var dirs []string
	err := afero.Walk(afs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() || path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		dirs = append(dirs, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", root, err)
	}
	sort.Strings(dirs)
	return dirs
}

// GameTemplate is a small template tree shaped like the real boilerplates.
func GameTemplate() map[string]string {
	return map[string]string{
		"index.html":        "<!doctype html><script src=\"main.js\"></script>\n",
		"main.js":           "console.log('game');\n",
		"assets/sprite.png": "\x89PNG\r\n\x1a\nfake-sprite",
		"assets/sfx/":       "",
	}
}
