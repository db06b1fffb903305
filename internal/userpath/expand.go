// Package userpath expands user-relative paths from config files and flags.
package userpath

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandUser expands a leading ~ to the current user's home directory.
func ExpandUser(path string) string {
	return expandWith(path, os.UserHomeDir)
}

// ExpandAll expands every path in paths in place.
func ExpandAll(paths []string) {
	for i, p := range paths {
		paths[i] = ExpandUser(p)
	}
}

// Resolve expands ~ and makes path absolute against the working directory.
func Resolve(path string) (string, error) {
	path = ExpandUser(path)
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(path)
}

func expandWith(path string, home func() (string, error)) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	dir, err := home()
	if err != nil {
		return path
	}
	if path == "~" {
		return dir
	}
	return filepath.Join(dir, path[2:])
}
