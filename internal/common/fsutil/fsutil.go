// Package fsutil holds the small filesystem helpers shared by config loading
// and the background loader.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrIsDir is returned by FileSize for directories.
var ErrIsDir = errors.New("path is a directory")

// ExpandHome expands a leading "~" or "~/" to the user's home directory.
// "~user" forms are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// FileSize expands path and returns the size of the regular file there.
func FileSize(path string) (int64, error) {
	p, err := ExpandHome(path)
	if err != nil {
		return 0, err
	}
	fi, err := os.Stat(p)
	if err != nil {
		return 0, err
	}
	if fi.IsDir() {
		return 0, fmt.Errorf("%s: %w", path, ErrIsDir)
	}
	return fi.Size(), nil
}
