// Package discover tests source acquisition in remote, local, and
// dry-run modes.
// Related: internal/discover/acquire.go
// Tags: discover, clone, copy, workdir

package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipeforge/scout/internal/config"
	"github.com/pipeforge/scout/internal/errors"
	"github.com/pipeforge/scout/internal/testutil"
	"github.com/pipeforge/scout/internal/vcs"
)

func TestAcquire_RemoteMode(t *testing.T) {
	t.Parallel()

	repo := testutil.NewGitRepo(t)
	repo.WriteTest("smoke", "./run.sh")
	repo.CommitAll("add smoke test")

	workdir := t.TempDir()
	acq, err := Acquire(vcs.New(), config.Discover{URL: repo.Dir, Ref: "main"}, AcquireOptions{Workdir: workdir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(workdir, "tests"), acq.TestDir)
	assert.Empty(t, acq.Path)
	assert.Equal(t, acq.TestDir, acq.TreeRoot)
	assert.Equal(t, "/tests", acq.Prefix)
	assert.FileExists(t, filepath.Join(acq.TreeRoot, "smoke", "test.yaml"))
}

func TestAcquire_RemoteModeWithPath(t *testing.T) {
	t.Parallel()

	repo := testutil.NewGitRepo(t)
	repo.WriteTest("plans/smoke/basic", "./run.sh")
	repo.CommitAll("nested tree")

	workdir := t.TempDir()
	cfg := config.Discover{URL: repo.Dir, Ref: "main", Path: "/plans/smoke"}
	acq, err := Acquire(vcs.New(), cfg, AcquireOptions{Workdir: workdir})
	require.NoError(t, err)

	assert.Equal(t, "/plans/smoke", acq.Path)
	assert.Equal(t, filepath.Join(workdir, "tests", "plans", "smoke"), acq.TreeRoot)
	assert.Equal(t, "/tests/plans/smoke", acq.Prefix)
}

func TestAcquire_RemoteMode_ChecksOutRef(t *testing.T) {
	t.Parallel()

	repo := testutil.NewGitRepo(t)
	repo.WriteFile("main-only.txt", "on main\n")
	repo.CommitAll("main content")
	repo.Branch("feature")
	repo.WriteFile("feature-only.txt", "on feature\n")
	repo.CommitAll("feature content")

	workdir := t.TempDir()
	acq, err := Acquire(vcs.New(), config.Discover{URL: repo.Dir, Ref: "main"}, AcquireOptions{Workdir: workdir})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(acq.TestDir, "main-only.txt"))
	assert.NoFileExists(t, filepath.Join(acq.TestDir, "feature-only.txt"),
		"checkout should move the sources off the cloned default branch")
}

func TestAcquire_RemoteMode_CloneFails(t *testing.T) {
	t.Parallel()

	_, err := Acquire(vcs.New(), config.Discover{URL: "/no/such/repository"}, AcquireOptions{Workdir: t.TempDir()})
	require.Error(t, err)

	discErr := errors.AsDiscoveryError(err)
	require.NotNil(t, discErr)
	assert.Equal(t, errors.Acquisition, discErr.Kind)
	assert.Contains(t, discErr.Message, "failed to clone")
}

func TestAcquire_RemoteMode_CheckoutFails(t *testing.T) {
	t.Parallel()

	repo := testutil.NewGitRepo(t)
	repo.WriteFile("a.txt", "a\n")
	repo.CommitAll("initial")

	cfg := config.Discover{URL: repo.Dir, Ref: "no-such-ref"}
	_, err := Acquire(vcs.New(), cfg, AcquireOptions{Workdir: t.TempDir()})
	require.Error(t, err)

	discErr := errors.AsDiscoveryError(err)
	require.NotNil(t, discErr)
	assert.Equal(t, errors.Acquisition, discErr.Kind)
	assert.Contains(t, discErr.Message, "no-such-ref")
}

func TestAcquire_LocalMode_PlanRoot(t *testing.T) {
	t.Parallel()

	repo := testutil.NewGitRepo(t)
	repo.WriteTest("smoke", "./run.sh")
	repo.CommitAll("add smoke test")

	workdir := t.TempDir()
	acq, err := Acquire(vcs.New(), config.Discover{}, AcquireOptions{Workdir: workdir, PlanRoot: repo.Dir})
	require.NoError(t, err)

	assert.Empty(t, acq.Path)
	assert.Equal(t, acq.TestDir, acq.TreeRoot)
	assert.Equal(t, "/tests", acq.Prefix)
	assert.FileExists(t, filepath.Join(acq.TestDir, "smoke", "test.yaml"))
	assert.DirExists(t, filepath.Join(acq.TestDir, ".git"),
		"the repository itself must come along so later diffs can run on the copy")
}

func TestAcquire_LocalMode_PathInsideRepository(t *testing.T) {
	t.Parallel()

	repo := testutil.NewGitRepo(t)
	repo.WriteTest("suite/basic", "./run.sh")
	repo.WriteFile("unrelated.txt", "outside the tree\n")
	repo.CommitAll("layout")

	workdir := t.TempDir()
	cfg := config.Discover{Path: filepath.Join(repo.Dir, "suite")}
	acq, err := Acquire(vcs.New(), cfg, AcquireOptions{Workdir: workdir, PlanRoot: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "suite", acq.Path,
		"metadata root should be recorded relative to the repository root")
	assert.Equal(t, filepath.Join(acq.TestDir, "suite"), acq.TreeRoot)
	assert.Equal(t, "/tests/suite", acq.Prefix)
	assert.FileExists(t, filepath.Join(acq.TestDir, "unrelated.txt"),
		"the whole repository is copied, not just the metadata root")
}

func TestAcquire_LocalMode_NoRepository(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "smoke"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "smoke", "test.yaml"), []byte("test: ./run.sh\n"), 0o644))

	workdir := t.TempDir()
	acq, err := Acquire(vcs.New(), config.Discover{}, AcquireOptions{Workdir: workdir, PlanRoot: src})
	require.NoError(t, err)

	assert.Empty(t, acq.Path, "without a repository the directory itself is the root")
	assert.FileExists(t, filepath.Join(acq.TestDir, "smoke", "test.yaml"))
}

func TestAcquire_LocalMode_PathNotDirectory(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		dryRun bool
	}{
		"real run": {dryRun: false},
		"dry run":  {dryRun: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Discover{Path: filepath.Join(t.TempDir(), "absent")}
			opts := AcquireOptions{Workdir: t.TempDir(), PlanRoot: ".", DryRun: tc.dryRun}
			_, err := Acquire(vcs.New(), cfg, opts)
			require.Error(t, err)

			discErr := errors.AsDiscoveryError(err)
			require.NotNil(t, discErr)
			assert.Equal(t, errors.Configuration, discErr.Kind)
			assert.Contains(t, discErr.Message, "is not a directory")
		})
	}
}

func TestAcquire_LocalMode_PreservesSymlinks(t *testing.T) {
	t.Parallel()

	repo := testutil.NewGitRepo(t)
	repo.WriteTest("smoke", "./run.sh")
	repo.Symlink("smoke", "latest")
	repo.CommitAll("layout with symlink")

	acq, err := Acquire(vcs.New(), config.Discover{}, AcquireOptions{Workdir: t.TempDir(), PlanRoot: repo.Dir})
	require.NoError(t, err)

	target, err := os.Readlink(filepath.Join(acq.TestDir, "latest"))
	require.NoError(t, err)
	assert.Equal(t, "smoke", target)
}

func TestAcquire_TreeRootMissing(t *testing.T) {
	t.Parallel()

	repo := testutil.NewGitRepo(t)
	repo.WriteFile("a.txt", "no metadata here\n")
	repo.CommitAll("initial")

	cfg := config.Discover{URL: repo.Dir, Path: "/no/such/tree"}
	_, err := Acquire(vcs.New(), cfg, AcquireOptions{Workdir: t.TempDir()})
	require.Error(t, err)

	discErr := errors.AsDiscoveryError(err)
	require.NotNil(t, discErr)
	assert.Equal(t, errors.Configuration, discErr.Kind,
		"a configured path that resolves nowhere is the user's configuration problem")
	assert.Contains(t, discErr.Message, "not found")
}

func TestAcquire_DryRun_RemoteMode(t *testing.T) {
	t.Parallel()

	workdir := t.TempDir()
	cfg := config.Discover{URL: "/never/contacted", Ref: "main", Path: "/plans/smoke"}
	acq, err := Acquire(vcs.New(), cfg, AcquireOptions{Workdir: workdir, DryRun: true})
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(workdir, "tests"), "dry run must not clone")
	assert.Equal(t, "/plans/smoke", acq.Path)
	assert.Equal(t, "/tests/plans/smoke", acq.Prefix)
}

func TestAcquire_DryRun_LocalMode(t *testing.T) {
	t.Parallel()

	repo := testutil.NewGitRepo(t)
	repo.WriteTest("suite/basic", "./run.sh")
	repo.CommitAll("layout")

	workdir := t.TempDir()
	cfg := config.Discover{Path: filepath.Join(repo.Dir, "suite")}
	acq, err := Acquire(vcs.New(), cfg, AcquireOptions{Workdir: workdir, PlanRoot: ".", DryRun: true})
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(workdir, "tests"), "dry run must not copy")
	assert.Equal(t, "suite", acq.Path, "path computation still runs read-only")
	assert.Equal(t, "/tests/suite", acq.Prefix)
}

func TestAcquire_DryRun_MissingWorkdir(t *testing.T) {
	t.Parallel()

	repo := testutil.NewGitRepo(t)
	repo.WriteTest("smoke", "./run.sh")
	repo.CommitAll("layout")

	workdir := filepath.Join(t.TempDir(), "never", "created")
	_, err := Acquire(vcs.New(), config.Discover{}, AcquireOptions{Workdir: workdir, PlanRoot: repo.Dir, DryRun: true})
	assert.NoError(t, err, "a dry run must not depend on the working directory existing")
}
