//go:build e2e

package e2e

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pipeforge/scout/internal/testutil"
)

// fixtureRepo builds a repository with two tests: /smoke/login (tier 1)
// and /regression/export (tier 2).
func fixtureRepo(t *testing.T) *testutil.GitRepo {
	t.Helper()

	repo := testutil.NewGitRepo(t)
	repo.WriteTest("smoke/login", "./login.sh", "tier: 1")
	repo.WriteTest("regression/export", "./export.sh", "tier: 2")
	repo.CommitAll("add tests")
	return repo
}

func TestE2E_DiscoverLocalTree(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	repo := fixtureRepo(t)
	work := filepath.Join(env.TempDir(), "work")

	result := env.Run("discover", "--path", repo.Dir, "--workdir", work)

	require.Equal(t, 0, result.ExitCode,
		"stdout: %s\nstderr: %s", result.Stdout, result.Stderr)
	require.Contains(t, result.Stdout, "plan default")
	require.Contains(t, result.Stdout, "/smoke/login")
	require.Contains(t, result.Stdout, "/regression/export")
	require.Contains(t, result.Stdout, "summary: 2 tests selected")

	// The selected tests were materialized under the workdir.
	testDir := filepath.Join(work, "default", "discover", "tests")
	require.Contains(t, result.Stdout, "workdir: "+testDir)
}

func TestE2E_DiscoverFilterSelection(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	repo := fixtureRepo(t)
	work := filepath.Join(env.TempDir(), "work")

	result := env.Run("discover", "--path", repo.Dir, "--workdir", work, "-F", "tier:1")

	require.Equal(t, 0, result.ExitCode,
		"stdout: %s\nstderr: %s", result.Stdout, result.Stderr)
	require.Contains(t, result.Stdout, "/smoke/login")
	require.NotContains(t, result.Stdout, "/regression/export")
	require.Contains(t, result.Stdout, "summary: 1 test selected")
}

func TestE2E_DiscoverCloneMode(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	repo := fixtureRepo(t)
	work := filepath.Join(env.TempDir(), "work")

	result := env.Run("discover", "-u", repo.Dir, "--workdir", work)

	require.Equal(t, 0, result.ExitCode,
		"stdout: %s\nstderr: %s", result.Stdout, result.Stderr)
	require.Contains(t, result.Stdout, "url: "+repo.Dir)
	require.Contains(t, result.Stdout, "ref: main")
	require.Contains(t, result.Stdout, "summary: 2 tests selected")
}

func TestE2E_DiscoverWorkdirReuse(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	repo := fixtureRepo(t)
	work := filepath.Join(env.TempDir(), "work")

	// Clone mode leaves read-only git object files behind; a second run
	// into the same workdir must still succeed.
	first := env.Run("discover", "-u", repo.Dir, "--workdir", work)
	require.Equal(t, 0, first.ExitCode,
		"stdout: %s\nstderr: %s", first.Stdout, first.Stderr)

	second := env.Run("discover", "-u", repo.Dir, "--workdir", work)
	require.Equal(t, 0, second.ExitCode,
		"stdout: %s\nstderr: %s", second.Stdout, second.Stderr)
	require.Contains(t, second.Stdout, "summary: 2 tests selected")
}

func TestE2E_InitThenDiscover(t *testing.T) {
	env := testutil.NewE2EEnv(t)

	initResult := env.Run("init")
	require.Equal(t, 0, initResult.ExitCode,
		"stdout: %s\nstderr: %s", initResult.Stdout, initResult.Stderr)
	require.Contains(t, initResult.Stdout, "created plans/default.yaml")
	require.Contains(t, initResult.Stdout, "created tests/example/test.yaml")

	work := filepath.Join(env.TempDir(), "work")
	result := env.Run("discover", "--plan", "plans/default.yaml", "--workdir", work)

	require.Equal(t, 0, result.ExitCode,
		"stdout: %s\nstderr: %s", result.Stdout, result.Stderr)
	require.Contains(t, result.Stdout, "plan default")
	require.Contains(t, result.Stdout, "summary: 1 test selected")
}

func TestE2E_HistoryAfterRuns(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	repo := fixtureRepo(t)

	// No --workdir: runs allocate under HOME and record shared history.
	for i := 0; i < 2; i++ {
		result := env.Run("discover", "--path", repo.Dir)
		require.Equal(t, 0, result.ExitCode,
			"stdout: %s\nstderr: %s", result.Stdout, result.Stderr)
	}

	history := env.Run("history")
	require.Equal(t, 0, history.ExitCode,
		"stdout: %s\nstderr: %s", history.Stdout, history.Stderr)
	require.Contains(t, history.Stdout, "default")
	require.Contains(t, history.Stdout, "2 tests")
	require.Equal(t, 2, strings.Count(history.Stdout, "ok"))
}
