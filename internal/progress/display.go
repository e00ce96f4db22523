package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// spinnerInterval is how often the spinner advances a frame.
const spinnerInterval = 100 * time.Millisecond

var (
	okSymbol   = color.New(color.FgGreen).SprintFunc()
	failSymbol = color.New(color.FgRed).SprintFunc()
)

// Display drives a single-line spinner while a plan runs and prints a
// status symbol when it settles. A nil *Display is valid and renders
// nothing, so callers wire progress unconditionally and let construction
// decide whether anything is shown.
type Display struct {
	mu      sync.Mutex
	symbols ProgressSymbols
	colored bool
	writer  io.Writer
	spin    *spinner.Spinner
	label   string
}

// NewDisplay builds a Display for the detected capabilities, writing to
// w (stderr when nil, keeping stdout machine-readable). Returns nil when
// stdout is not a terminal; a spinner on a pipe is just noise.
func NewDisplay(caps TerminalCapabilities, w io.Writer) *Display {
	if !caps.IsTTY {
		return nil
	}
	if w == nil {
		w = os.Stderr
	}
	return &Display{
		symbols: SelectSymbols(caps),
		colored: caps.SupportsColor,
		writer:  w,
	}
}

// Start begins spinning with the given label, replacing any spinner
// still running from an earlier Start.
func (d *Display) Start(label string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.label = label
	d.startLocked()
}

// Pause stops the spinner so other output can print on a clean line.
// Resume picks the same label back up.
func (d *Display) Pause() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
}

// Resume restarts the spinner after a Pause. No-op before Start or
// after Complete/Fail settled the line.
func (d *Display) Resume() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.label != "" && d.spin == nil {
		d.startLocked()
	}
}

// Complete stops the spinner and prints the success symbol with label.
func (d *Display) Complete(label string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.label = ""
	fmt.Fprintf(d.writer, "%s %s\n", d.paint(d.symbols.Checkmark, okSymbol), label)
}

// Fail stops the spinner and prints the failure symbol with label and
// the error.
func (d *Display) Fail(label string, err error) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.label = ""
	fmt.Fprintf(d.writer, "%s %s: %v\n", d.paint(d.symbols.Failure, failSymbol), label, err)
}

// startLocked spins up a fresh spinner for the current label.
// Callers hold the mutex.
func (d *Display) startLocked() {
	opts := []spinner.Option{
		spinner.WithWriter(d.writer),
		spinner.WithSuffix(" " + d.label),
	}
	if d.colored {
		opts = append(opts, spinner.WithColor("cyan"))
	}
	d.spin = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], spinnerInterval, opts...)
	d.spin.Start()
}

// stopLocked halts any running spinner. Callers hold the mutex.
func (d *Display) stopLocked() {
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
}

// paint applies fn to symbol when the terminal supports color.
func (d *Display) paint(symbol string, fn func(a ...interface{}) string) string {
	if !d.colored {
		return symbol
	}
	return fn(symbol)
}
