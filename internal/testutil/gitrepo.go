// Package testutil provides test utilities and helpers for scout tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// gitFixtureEnv pins author and committer identity for fixture repositories
// so commits succeed on hosts without a git config.
var gitFixtureEnv = []string{
	"GIT_AUTHOR_NAME=test",
	"GIT_AUTHOR_EMAIL=test@test.com",
	"GIT_COMMITTER_NAME=test",
	"GIT_COMMITTER_EMAIL=test@test.com",
}

// GitRepo is a temporary git repository used as a test fixture.
// It shells out to the real git binary, matching what the vcs package
// invokes in production.
type GitRepo struct {
	t *testing.T
	// Dir is the repository root. Local paths double as clone URLs.
	Dir string
}

// NewGitRepo initializes an empty fixture repository on a "main" branch
// inside a fresh temp directory. The directory is cleaned up with the test.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()

	repo := &GitRepo{t: t, Dir: t.TempDir()}
	repo.Git("init")
	repo.Git("checkout", "-b", "main")
	return repo
}

// Git runs a git subcommand inside the repository and returns its trimmed
// combined output. Failures abort the test.
func (r *GitRepo) Git(args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), gitFixtureEnv...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// WriteFile writes content to a path relative to the repository root,
// creating parent directories as needed.
func (r *GitRepo) WriteFile(relPath, content string) {
	r.t.Helper()

	path := filepath.Join(r.Dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("mkdir for %s: %v", relPath, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", relPath, err)
	}
}

// Symlink creates a symbolic link at a path relative to the repository root.
func (r *GitRepo) Symlink(target, relPath string) {
	r.t.Helper()

	path := filepath.Join(r.Dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("mkdir for %s: %v", relPath, err)
	}
	if err := os.Symlink(target, path); err != nil {
		r.t.Fatalf("symlink %s -> %s: %v", relPath, target, err)
	}
}

// CommitAll stages everything and commits with the given message.
func (r *GitRepo) CommitAll(message string) {
	r.t.Helper()

	r.Git("add", "-A", ".")
	r.Git("commit", "-m", message)
}

// Branch creates and checks out a new branch.
func (r *GitRepo) Branch(name string) {
	r.t.Helper()
	r.Git("checkout", "-b", name)
}

// Checkout switches to an existing branch or ref.
func (r *GitRepo) Checkout(ref string) {
	r.t.Helper()
	r.Git("checkout", ref)
}

// Head returns the full SHA of the current HEAD commit.
func (r *GitRepo) Head() string {
	r.t.Helper()
	return r.Git("rev-parse", "HEAD")
}

// WriteTest writes a minimal test.yaml metadata file under the given test
// directory, with each extra line appended verbatim below the test command.
func (r *GitRepo) WriteTest(relDir, command string, extra ...string) {
	r.t.Helper()

	content := "test: " + command + "\n"
	for _, line := range extra {
		content += line + "\n"
	}
	r.WriteFile(filepath.ToSlash(filepath.Join(relDir, "test.yaml")), content)
}
