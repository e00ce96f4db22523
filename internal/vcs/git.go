// Package vcs wraps the version control operations used to acquire and diff
// test sources. Mutating operations (clone, checkout, remote management,
// fetch, log) shell out to the git CLI so behavior matches what users see on
// the command line, while go-git provides read-only repository root detection
// without a subprocess.
package vcs

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for vcs operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// CommandError describes a failed git invocation. It captures the full
// argument list, the working directory, anything the command wrote to
// stderr, and the process exit code, so callers can surface the failure
// without re-running the command.
type CommandError struct {
	// Args is the git argument list, without the binary name.
	Args []string
	// Dir is the working directory the command ran in ("" for inherited).
	Dir string
	// Stderr is the captured standard error output, trimmed.
	Stderr string
	// ExitCode is the process exit code, or -1 if the process never ran.
	ExitCode int
	// Err is the underlying exec error.
	Err error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// AsCommandError attempts to convert an error to a CommandError.
// Returns nil if no CommandError is found in the chain.
func AsCommandError(err error) *CommandError {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr
	}
	return nil
}

// Git executes git subcommands against working directories.
// The zero value is not usable; construct instances with New.
type Git struct {
	binary string
}

// Option configures a Git instance.
type Option func(*Git)

// WithBinary overrides the git binary path. Used in tests to substitute
// a mock executable.
func WithBinary(path string) Option {
	return func(g *Git) {
		if path != "" {
			g.binary = path
		}
	}
}

// New creates a Git instance invoking the "git" binary from PATH.
func New(opts ...Option) *Git {
	g := &Git{binary: "git"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Clone clones the repository at url into dest.
func (g *Git) Clone(url, dest string) error {
	_, err := g.run("", "clone", url, dest)
	return err
}

// Checkout force-checks-out the given ref inside dir.
// The force flag matches the acquisition contract: the freshly copied or
// cloned tree carries no local changes worth preserving.
func (g *Git) Checkout(dir, ref string) error {
	_, err := g.run(dir, "checkout", "-f", ref)
	return err
}

// AddRemote registers url as a named remote inside dir.
func (g *Git) AddRemote(dir, name, url string) error {
	_, err := g.run(dir, "remote", "add", name, url)
	return err
}

// Fetch fetches the named remote inside dir.
func (g *Git) Fetch(dir, remote string) error {
	_, err := g.run(dir, "fetch", remote)
	return err
}

// ChangedFiles lists the paths of files touched between referenceRef and the
// current HEAD of dir. Only paths are retrieved (no content, no rename
// collapsing); empty lines from the log format are dropped.
func (g *Git) ChangedFiles(dir, referenceRef string) ([]string, error) {
	out, err := g.run(dir, "log", "--format=", "--name-only", referenceRef+"..HEAD")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// run executes a git subcommand and returns its standard output.
// Failures are wrapped in a CommandError with stderr captured.
func (g *Git) run(dir string, args ...string) (string, error) {
	logDebug("[vcs] git %s (dir=%s)", strings.Join(args, " "), dir)

	cmd := exec.Command(g.binary, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Args:     args,
			Dir:      dir,
			Stderr:   strings.TrimSpace(stderr.String()),
			ExitCode: exitCode(cmd),
			Err:      err,
		}
		logDebug("[vcs] git %s failed: %v", args[0], cmdErr)
		return "", cmdErr
	}

	return stdout.String(), nil
}

// exitCode extracts the exit code from a completed command.
// Returns -1 when the process never started.
func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}
