package discover

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pipeforge/scout/internal/errors"
	"github.com/pipeforge/scout/internal/vcs"
)

// ReferenceRemote is the remote name the reference repository is
// registered under inside the acquired sources.
const ReferenceRemote = "reference"

// ModifiedPatterns computes name patterns covering everything changed
// since referenceRef. When referenceURL is set, the reference repository
// is first added as a remote and fetched. Each changed file contributes
// the top-level directory it lives under as an anchored pattern; files
// at the repository root have no covering directory and are dropped.
// The result is deduplicated and sorted.
func ModifiedPatterns(git *vcs.Git, dir, referenceURL, referenceRef string) ([]string, error) {
	if referenceURL != "" {
		if err := prepareReference(git, dir, referenceURL); err != nil {
			return nil, err
		}
	}

	files, err := git.ChangedFiles(dir, referenceRef)
	if err != nil {
		return nil, errors.DiffFailed(referenceRef, err)
	}

	return patternsFromFiles(files), nil
}

// prepareReference registers the reference repository as a remote and
// fetches it so referenceRef resolves locally.
func prepareReference(git *vcs.Git, dir, url string) error {
	if err := git.AddRemote(dir, ReferenceRemote, url); err != nil {
		return errors.ReferenceFailed(url, err)
	}
	if err := git.Fetch(dir, ReferenceRemote); err != nil {
		return errors.ReferenceFailed(url, err)
	}
	return nil
}

// patternsFromFiles folds changed file paths into anchored patterns of
// their top-level directories: a/b/x and a/c/y both yield ^/a$.
func patternsFromFiles(files []string) []string {
	seen := make(map[string]struct{})
	var patterns []string

	for _, file := range files {
		idx := strings.IndexByte(file, '/')
		if idx <= 0 {
			continue
		}
		top := file[:idx]
		if _, ok := seen[top]; ok {
			continue
		}
		seen[top] = struct{}{}
		patterns = append(patterns, "^/"+regexp.QuoteMeta(top)+"$")
	}

	sort.Strings(patterns)
	return patterns
}
