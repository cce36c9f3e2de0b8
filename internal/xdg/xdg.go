// Package xdg resolves the XDG Base Directory paths the grader keeps its
// runtime state under.
package xdg

import (
	"os"
	"path/filepath"
)

// RuntimeDir returns the directory for short-lived runtime files
// (XDG_RUNTIME_DIR, with a /tmp fallback when unset).
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "grader-runtime-"+os.Getenv("USER"))
}
