// Package run manages scout run directories. Every invocation without an
// explicit --workdir gets a fresh numbered directory under the runs root,
// and each plan's discovery step works in its own subdirectory of it.
package run

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultRootDir is the runs root location relative to the home directory.
const DefaultRootDir = ".scout/runs"

// dirPrefix prefixes every allocated run directory name.
const dirPrefix = "run-"

// DefaultRoot returns the default runs root, ~/.scout/runs.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, DefaultRootDir), nil
}

// NextRunDir creates and returns the next numbered run directory under
// root: run-001, run-002, and so on. Numbering continues one past the
// highest existing entry; gaps left by deleted runs are not reused.
func NextRunDir(root string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("creating runs root %s: %w", root, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("reading runs root %s: %w", root, err)
	}

	last := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if n, ok := runNumber(entry.Name()); ok && n > last {
			last = n
		}
	}

	// Mkdir is the claim; on a collision with a concurrent run, move on
	// to the next number.
	for n := last + 1; ; n++ {
		dir := filepath.Join(root, fmt.Sprintf("%s%03d", dirPrefix, n))
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("creating run directory %s: %w", dir, err)
		}
	}
}

// runNumber extracts the number from a run directory name.
func runNumber(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, dirPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// StepDir returns the working directory for one plan's step inside a
// run directory.
func StepDir(runDir, plan, step string) string {
	return filepath.Join(runDir, Slug(plan), step)
}
