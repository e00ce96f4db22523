package discover

import (
	"github.com/pipeforge/scout/internal/errors"
	"github.com/pipeforge/scout/internal/metadata"
)

// DependencyRequest describes one test's library requirements as found
// in its metadata.
type DependencyRequest struct {
	// TestName identifies the test the requirements belong to.
	TestName string
	// Require lists libraries the test cannot run without.
	Require []string
	// Recommend lists libraries the test prefers but tolerates missing.
	Recommend []string
	// Workdir is where the resolver may materialize library sources.
	Workdir string
}

// DependencyResult carries the expanded requirement sets. Libraries
// names the library units that were fetched along the way; the step
// accepts and discards it, the working tree holds the effect.
type DependencyResult struct {
	Require   []string
	Recommend []string
	Libraries []string
}

// DependencyResolver expands test library requirements into their full
// dependency closure. Implementations live outside this package.
type DependencyResolver interface {
	Resolve(DependencyRequest) (DependencyResult, error)
}

// resolveDependencies runs the resolver over the selected tests in
// order, overwriting each test's require/recommend with the expanded
// sets. Tests without requirements are skipped; a nil resolver disables
// expansion entirely. The first resolver failure aborts discovery.
func resolveDependencies(resolver DependencyResolver, tests []*metadata.Test, workdir string) error {
	if resolver == nil {
		return nil
	}

	for _, test := range tests {
		if len(test.Require) == 0 && len(test.Recommend) == 0 {
			continue
		}

		result, err := resolver.Resolve(DependencyRequest{
			TestName:  test.Name,
			Require:   test.Require,
			Recommend: test.Recommend,
			Workdir:   workdir,
		})
		if err != nil {
			return errors.DependencyResolveFailed(test.Name, err)
		}

		test.Require = result.Require
		test.Recommend = result.Recommend
	}

	return nil
}
