// Package dotdir resolves the .agentui/ directory that holds config.toml,
// the component registry override and the local transcript database.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the agentui directory.
	DirName = ".agentui"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .agentui/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.agentui/ dir
//  3. Home ~/.agentui/ dir
//
// When no override is given and neither directory exists, Target returns
// an empty string so callers fall back to defaults.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating agentui directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	if dir, ok := m.localDir(); ok {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir := filepath.Join(home, DirName)
	if isDir(dir) {
		return dir, nil
	}

	return "", nil
}

// Ensure is like Target but creates ~/.agentui/ when nothing else resolves.
// Commands that write state (config set) use it.
func (m *Manager) Ensure(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir != "" {
		return dir, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir = filepath.Join(home, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating agentui directory %s: %w", dir, err)
	}

	return dir, nil
}

// localDir reports the .agentui/ directory in the current working
// directory, if one exists.
func (m *Manager) localDir() (string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}

	dir := filepath.Join(cwd, DirName)
	return dir, isDir(dir)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
