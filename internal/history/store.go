// Package history records completed discovery runs so past selections
// can be reviewed later. Entries live in a single JSON file under the
// runs root, pruned to a maximum count. Recording is best-effort and
// never fails the run that triggered it.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// historyFileName is the file holding recorded runs, relative to the root.
const historyFileName = "history.json"

// DefaultMaxEntries is the number of entries retained before pruning.
const DefaultMaxEntries = 500

// Entry is one recorded discovery run for one plan.
type Entry struct {
	// Timestamp is when the run finished.
	Timestamp time.Time `json:"timestamp"`
	// Plan is the plan name the entry belongs to.
	Plan string `json:"plan"`
	// Outcome is "ok" for a successful run, or the error kind otherwise.
	Outcome string `json:"outcome"`
	// Tests is the number of tests selected; zero for failed runs.
	Tests int `json:"tests,omitempty"`
	// Workdir is the directory the selected tests were materialized in.
	Workdir string `json:"workdir,omitempty"`
	// Duration is the elapsed wall time of the invocation.
	Duration string `json:"duration"`
}

// File is the persisted history document.
type File struct {
	Entries []Entry `json:"entries"`
}

// Load reads the history file under root. A missing file is an empty
// history, not an error.
func Load(root string) (*File, error) {
	data, err := os.ReadFile(filepath.Join(root, historyFileName))
	if os.IsNotExist(err) {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}
	return &file, nil
}

// Save writes the history file under root, creating the directory if
// needed.
func Save(root string, file *File) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	if err := os.WriteFile(filepath.Join(root, historyFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

// Clear removes the history file under root. A missing file is not an
// error.
func Clear(root string) error {
	err := os.Remove(filepath.Join(root, historyFileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing history: %w", err)
	}
	return nil
}
