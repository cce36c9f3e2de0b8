// Package workspace manages per-submission scratch directories. Each
// grading run gets a uniquely named directory so concurrent submissions
// cannot collide, and the directory is removed on every exit path.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Workspace struct {
	dir string
}

// New allocates a fresh workspace directory under root. Root is created
// if missing.
func New(root string) (*Workspace, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace root %s: %w", root, err)
	}
	dir := filepath.Join(root, "subm-"+uuid.New().String())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace dir: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the absolute path of a file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *Workspace) AddFile(name string, content []byte) error {
	if err := os.WriteFile(w.Path(name), content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (w *Workspace) HasFile(name string) bool {
	_, err := os.Stat(w.Path(name))
	return err == nil
}

func (w *Workspace) GetFile(name string) ([]byte, error) {
	return os.ReadFile(w.Path(name))
}

// Close removes the workspace directory and everything in it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}
