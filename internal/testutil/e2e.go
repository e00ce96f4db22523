package testutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"
)

var (
	// scoutBinaryPath caches the built scout binary path.
	scoutBinaryPath string
	scoutBuildOnce  sync.Once
	scoutBuildErr   error
)

// E2EEnv provides an isolated environment for end-to-end testing. Each
// test gets its own HOME, so run directories and history never touch the
// real user state, and a private bin directory that fronts PATH.
type E2EEnv struct {
	t         *testing.T
	tempDir   string
	binDir    string
	cleanedUp bool
}

// CommandResult captures the result of running a scout command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv creates an isolated end-to-end environment with the scout
// binary built from the enclosing repository.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	env := &E2EEnv{t: t}
	env.setup()
	t.Cleanup(env.Cleanup)

	return env
}

func (e *E2EEnv) setup() {
	e.t.Helper()

	tempDir, err := os.MkdirTemp("", "scout-e2e-*")
	if err != nil {
		e.t.Fatalf("creating temp directory: %v", err)
	}
	e.tempDir = tempDir

	e.binDir = filepath.Join(tempDir, "bin")
	if err := os.MkdirAll(e.binDir, 0o755); err != nil {
		e.t.Fatalf("creating bin directory: %v", err)
	}

	e.buildScout()
}

func (e *E2EEnv) buildScout() {
	e.t.Helper()

	// Build the scout binary once per test session
	scoutBuildOnce.Do(func() {
		scoutBinaryPath, scoutBuildErr = buildScoutBinary()
	})
	if scoutBuildErr != nil {
		e.t.Fatalf("building scout: %v", scoutBuildErr)
	}

	// Copy the binary into our bin directory
	content, err := os.ReadFile(scoutBinaryPath)
	if err != nil {
		e.t.Fatalf("reading scout binary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.binDir, "scout"), content, 0o755); err != nil {
		e.t.Fatalf("writing scout binary: %v", err)
	}
}

func buildScoutBinary() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("determining current file location")
	}
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	tmpDir, err := os.MkdirTemp("", "scout-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "scout")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/scout")
	cmd.Dir = repoRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("building scout: %w\nOutput: %s", err, output)
	}

	return binaryPath, nil
}

// Run executes a scout command in the isolated environment.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()
	return e.run(e.isolatedEnv(os.Getenv("PATH")), args...)
}

// RunWithoutGit executes a scout command with a PATH that holds no git,
// for exercising prerequisite failures.
func (e *E2EEnv) RunWithoutGit(args ...string) CommandResult {
	e.t.Helper()
	return e.run(e.isolatedEnv(""), args...)
}

func (e *E2EEnv) run(env []string, args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()

	cmd := exec.Command(filepath.Join(e.binDir, "scout"), args...)
	cmd.Dir = e.tempDir
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
	}

	return result
}

// isolatedEnv builds the child environment: the private bin directory
// fronts systemPath, HOME points into the temp directory, and only safe
// variables survive from the parent.
func (e *E2EEnv) isolatedEnv(systemPath string) []string {
	isolatedPath := e.binDir
	if systemPath != "" {
		isolatedPath = e.binDir + ":" + systemPath
	}

	env := []string{
		"PATH=" + isolatedPath,
		"HOME=" + e.tempDir,
	}

	for _, key := range []string{"TERM", "LANG", "LC_ALL", "TMPDIR"} {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}

	return env
}

// TempDir returns the root temp directory for this test environment.
func (e *E2EEnv) TempDir() string {
	return e.tempDir
}

// WriteFile writes content at a path relative to the temp directory and
// returns the absolute path.
func (e *E2EEnv) WriteFile(rel, content string) string {
	e.t.Helper()

	path := filepath.Join(e.tempDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// Cleanup removes the temp directory.
func (e *E2EEnv) Cleanup() {
	if e.cleanedUp {
		return
	}
	e.cleanedUp = true

	if e.tempDir != "" {
		if err := os.RemoveAll(e.tempDir); err != nil {
			e.t.Logf("note: could not remove temp directory: %v", err)
		}
	}
}
