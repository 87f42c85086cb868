package mcp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathGuard confines tool file access to the configured directory.
type PathGuard struct {
	root string
}

// NewPathGuard creates a guard rooted at dir.
func NewPathGuard(dir string) (*PathGuard, error) {
	if dir == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	return &PathGuard{root: abs}, nil
}

// Root returns the configured directory.
func (g *PathGuard) Root() string {
	return g.root
}

// Resolve normalizes path (relative paths are taken against the root) and
// rejects anything that escapes the configured directory, symlinks
// included.
func (g *PathGuard) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	path = strings.ReplaceAll(path, "\x00", "")

	if !filepath.IsAbs(path) {
		path = filepath.Join(g.root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	clean := filepath.Clean(abs)

	real := clean
	if info, err := os.Lstat(clean); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(clean); err == nil {
			real = resolved
		}
	}
	realRoot := g.root
	if resolved, err := filepath.EvalSymlinks(g.root); err == nil {
		realRoot = resolved
	}

	if !within(clean, g.root) && !within(clean, realRoot) {
		return "", fmt.Errorf("path is outside configured directory: %s", path)
	}
	if !within(real, g.root) && !within(real, realRoot) {
		return "", fmt.Errorf("path is outside configured directory: %s", path)
	}
	return clean, nil
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
