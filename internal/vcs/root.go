package vcs

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// RootInfo is the result of a repository root lookup. A directory outside
// any repository yields Found == false rather than an error, so callers can
// fall back to a different root without sniffing error strings.
type RootInfo struct {
	// Root is the absolute path of the repository worktree root.
	// Empty when Found is false.
	Root string
	// Found reports whether dir sits inside a repository worktree.
	Found bool
}

// FindRoot locates the repository root containing dir. The lookup traverses
// parent directories the same way the git CLI does, but stays read-only and
// in-process via go-git. Only genuine failures (bare repository, unreadable
// metadata) produce an error; "not a repository" is a valid result.
func FindRoot(dir string) (RootInfo, error) {
	logDebug("[vcs] looking for repository root above %s", dir)

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		logDebug("[vcs] no repository found above %s", dir)
		return RootInfo{}, nil
	}
	if err != nil {
		return RootInfo{}, fmt.Errorf("opening repository at %s: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return RootInfo{}, fmt.Errorf("getting worktree: %w", err)
	}

	root := worktree.Filesystem.Root()
	logDebug("[vcs] repository root: %s", root)
	return RootInfo{Root: root, Found: true}, nil
}
