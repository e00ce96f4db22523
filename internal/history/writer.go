package history

import (
	"fmt"
	"os"
	"time"
)

// Writer appends run entries to the history file with automatic pruning.
type Writer struct {
	// Root is the directory containing the history file.
	Root string
	// MaxEntries is the maximum number of entries to retain.
	MaxEntries int
}

// NewWriter creates a history writer for the given root.
func NewWriter(root string, maxEntries int) *Writer {
	return &Writer{
		Root:       root,
		MaxEntries: maxEntries,
	}
}

// Log adds a new entry to the history file.
// It loads the existing history, appends the new entry, prunes if needed, and saves.
// Errors are non-fatal: they are written to stderr and don't cause command failures.
func (w *Writer) Log(entry Entry) {
	if err := w.logInternal(entry); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record history: %v\n", err)
	}
}

// logInternal handles the actual logging logic.
func (w *Writer) logInternal(entry Entry) error {
	file, err := Load(w.Root)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	file.Entries = append(file.Entries, entry)

	// Prune oldest entries if over limit
	if w.MaxEntries > 0 && len(file.Entries) > w.MaxEntries {
		excess := len(file.Entries) - w.MaxEntries
		file.Entries = file.Entries[excess:]
	}

	if err := Save(w.Root, file); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}

	return nil
}

// LogPlan is a convenience method to log one plan outcome.
func (w *Writer) LogPlan(plan, outcome string, tests int, workdir string, duration time.Duration) {
	entry := Entry{
		Timestamp: time.Now(),
		Plan:      plan,
		Outcome:   outcome,
		Tests:     tests,
		Workdir:   workdir,
		Duration:  duration.String(),
	}
	w.Log(entry)
}
