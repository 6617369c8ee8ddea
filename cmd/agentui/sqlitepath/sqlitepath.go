// Package sqlitepath resolves where the serve command keeps its SQLite
// transcript database when none is configured.
package sqlitepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/agentui/pkg/dotdir"
)

// DefaultFileName is the database file name inside a .agentui/ directory.
const DefaultFileName = "agentui.sqlite"

// ResolveSQLitePath picks the database path. An explicit path wins, then a
// file inside the config dir override, then the first existing candidate.
// With nothing found the database goes into the resolved .agentui/ dir,
// which is created if needed.
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configDir != "" {
		return filepath.Join(configDir, DefaultFileName), nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	dir, err := dotdir.NewManager().Ensure("")
	if err != nil {
		return "", fmt.Errorf("resolving sqlite dir: %w", err)
	}

	return filepath.Join(dir, DefaultFileName), nil
}

func sqliteCandidates() []string {
	candidates := []string{
		DefaultFileName,
		filepath.Join(dotdir.DirName, DefaultFileName),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append([]string{
			filepath.Join(home, dotdir.DirName, DefaultFileName),
		}, candidates...)
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append([]string{
			filepath.Join(xdgHome, "agentui", DefaultFileName),
		}, candidates...)
	}

	return candidates
}
