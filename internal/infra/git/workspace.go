// Package git acquires remote repositories into ephemeral workspaces.
package git

import (
	"fmt"
	"os"
	"sync"
)

// Workspace is a uniquely-named ephemeral directory owned by a single scan
// session. It exists from successful creation until Remove, which runs at
// most once.
type Workspace struct {
	path string

	mu      sync.Mutex
	removed bool
}

// NewWorkspace creates a fresh workspace directory.
func NewWorkspace() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "repoguard-scan-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{path: dir}, nil
}

// Path returns the workspace root directory.
func (w *Workspace) Path() string {
	return w.path
}

// Remove deletes the workspace tree. Subsequent calls are no-ops; the first
// call's result is what counts. Returns (true, nil) when this call removed
// the directory.
func (w *Workspace) Remove() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.removed {
		return false, nil
	}
	w.removed = true

	if err := os.RemoveAll(w.path); err != nil {
		return false, fmt.Errorf("failed to remove workspace: %w", err)
	}
	return true, nil
}
