package discover

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pipeforge/scout/internal/config"
	"github.com/pipeforge/scout/internal/errors"
	"github.com/pipeforge/scout/internal/fsutil"
	"github.com/pipeforge/scout/internal/vcs"
)

// testDirName is the subdirectory of the step workdir that holds the
// acquired sources.
const testDirName = "tests"

// prefixRoot is the execution namespace every selected test path moves
// under.
const prefixRoot = "/tests"

// Acquisition describes the working tree produced by Acquire.
type Acquisition struct {
	// TestDir is the directory the sources were materialized into.
	TestDir string
	// Path is the metadata root relative to the repository root, empty
	// when they coincide. In remote mode it is the configured path as
	// given.
	Path string
	// TreeRoot is TestDir joined with Path: where the metadata tree is
	// scanned from.
	TreeRoot string
	// Prefix is the execution namespace prefix applied to selected test
	// paths.
	Prefix string
}

// AcquireOptions carries the per-run inputs of Acquire.
type AcquireOptions struct {
	// Workdir is the step working directory; sources land in its tests
	// subdirectory.
	Workdir string
	// PlanRoot is the local source fallback when no path is configured.
	PlanRoot string
	// DryRun disables every filesystem and version control mutation.
	DryRun bool
	// Reporter receives progress output; nil is allowed.
	Reporter Reporter
}

// Acquire materializes test sources under the working directory. With a
// url configured the repository is cloned; otherwise the repository
// around the local path (or plan root) is copied, symlinks preserved.
// When a ref is configured it is checked out inside the acquired
// sources. Dry runs validate and compute paths but touch nothing.
func Acquire(git *vcs.Git, cfg config.Discover, opts AcquireOptions) (Acquisition, error) {
	reporter := reporterOrNoop(opts.Reporter)
	testDir := filepath.Join(opts.Workdir, testDirName)

	treePath := cfg.Path
	if cfg.URL != "" {
		reporter.Info("url", cfg.URL)
		if !opts.DryRun {
			if err := git.Clone(cfg.URL, testDir); err != nil {
				return Acquisition{}, errors.CloneFailed(cfg.URL, err)
			}
		}
	} else {
		var err error
		treePath, err = acquireLocal(cfg, opts, testDir, reporter)
		if err != nil {
			return Acquisition{}, err
		}
	}

	if cfg.Ref != "" {
		reporter.Info("ref", cfg.Ref)
		if !opts.DryRun {
			if err := git.Checkout(testDir, cfg.Ref); err != nil {
				return Acquisition{}, errors.CheckoutFailed(cfg.Ref, err)
			}
		}
	}

	acq := Acquisition{
		TestDir:  testDir,
		Path:     treePath,
		TreeRoot: filepath.Join(testDir, strings.TrimPrefix(treePath, "/")),
		Prefix:   path.Join(prefixRoot, strings.TrimPrefix(treePath, "/")),
	}

	if !opts.DryRun {
		if info, err := os.Stat(acq.TreeRoot); err != nil || !info.IsDir() {
			return Acquisition{}, errors.TreePathNotFound(acq.TreeRoot, cfg.Path != "")
		}
	}

	return acq, nil
}

// acquireLocal copies the repository around the local source directory
// into testDir and returns the metadata root relative to the repository
// root. Without a repository the source directory itself is copied.
func acquireLocal(cfg config.Discover, opts AcquireOptions, testDir string, reporter Reporter) (string, error) {
	sourceRoot := opts.PlanRoot
	if cfg.Path != "" {
		sourceRoot = cfg.Path
	}

	if info, err := os.Stat(sourceRoot); err != nil || !info.IsDir() {
		return "", errors.PathNotDirectory(sourceRoot)
	}

	// Resolve symlinks up front so the relative path computed against
	// the repository root cannot escape through a linked parent.
	sourceRoot, err := canonicalPath(sourceRoot)
	if err != nil {
		return "", errors.Wrap(err, errors.Acquisition)
	}
	reporter.Info("directory", sourceRoot)

	rootInfo, err := vcs.FindRoot(sourceRoot)
	if err != nil {
		return "", errors.Wrap(err, errors.Acquisition)
	}
	repoRoot := rootInfo.Root
	if !rootInfo.Found {
		repoRoot = sourceRoot
		reporter.Debug("no repository above %s, copying the directory itself", sourceRoot)
	}

	treePath, err := filepath.Rel(repoRoot, sourceRoot)
	if err != nil {
		return "", errors.Wrap(err, errors.Acquisition)
	}
	if treePath == "." {
		treePath = ""
	}

	if !opts.DryRun {
		if err := fsutil.CopyTree(repoRoot, testDir); err != nil {
			return "", errors.CopyFailed(repoRoot, err)
		}
	}

	return treePath, nil
}

// canonicalPath returns the absolute path with symlinks resolved.
func canonicalPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
