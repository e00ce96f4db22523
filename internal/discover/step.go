// Package discover implements the test discovery step: acquire test
// sources, compute the modified set, select tests from the metadata
// tree, rewrite their paths into the execution namespace, and expand
// library dependencies.
//
// A single step is strictly sequential and confined to its working
// directory; running several plans concurrently is RunPlans' job.
package discover

import (
	"fmt"
	"regexp"

	"github.com/pipeforge/scout/internal/config"
	"github.com/pipeforge/scout/internal/errors"
	"github.com/pipeforge/scout/internal/metadata"
	"github.com/pipeforge/scout/internal/vcs"
)

// Tree is the queryable metadata tree the step selects tests from.
type Tree interface {
	// Tests returns tests matching the name patterns and filter
	// expressions, in deterministic tree order.
	Tests(names, filters []string) ([]*metadata.Test, error)
}

// TreeFactory builds a Tree rooted at dir.
type TreeFactory func(dir string) (Tree, error)

// Reporter receives step progress output. It is the step's only output
// path; the step itself never writes to stdout or stderr.
type Reporter interface {
	// Info reports a key/value progress line.
	Info(key, value string)
	// Debug reports a formatted diagnostic line.
	Debug(format string, args ...any)
}

// noopReporter swallows all output. It stands in when no reporter is
// configured so the step never has to nil-check.
type noopReporter struct{}

func (noopReporter) Info(key, value string) {}

func (noopReporter) Debug(format string, args ...any) {}

// reporterOrNoop normalizes a possibly nil reporter.
func reporterOrNoop(r Reporter) Reporter {
	if r == nil {
		return noopReporter{}
	}
	return r
}

// Step runs discovery for a single plan.
type Step struct {
	// cfg is the discovery configuration, read-only for the whole run.
	cfg config.Discover
	// workdir is the step working directory.
	workdir string
	// planRoot is the local source fallback when no path is configured.
	planRoot string
	// dryRun disables mutation and selection.
	dryRun bool
	// reporter receives progress output.
	reporter Reporter
	// git executes version control operations.
	git *vcs.Git
	// newTree builds the metadata tree once sources are acquired.
	newTree TreeFactory
	// resolver expands library dependencies; nil disables expansion.
	resolver DependencyResolver
}

// StepOption configures a Step.
type StepOption func(*Step)

// WithPlanRoot sets the local source fallback directory (default ".").
func WithPlanRoot(dir string) StepOption {
	return func(s *Step) {
		if dir != "" {
			s.planRoot = dir
		}
	}
}

// WithDryRun toggles dry-run mode: validate and report, mutate nothing,
// select nothing.
func WithDryRun(dryRun bool) StepOption {
	return func(s *Step) {
		s.dryRun = dryRun
	}
}

// WithReporter sets the progress reporter. A nil reporter keeps the
// step silent.
func WithReporter(r Reporter) StepOption {
	return func(s *Step) {
		s.reporter = reporterOrNoop(r)
	}
}

// WithGit replaces the version control client, mainly for tests.
func WithGit(g *vcs.Git) StepOption {
	return func(s *Step) {
		if g != nil {
			s.git = g
		}
	}
}

// WithTreeFactory replaces how the metadata tree is built from the
// acquired sources.
func WithTreeFactory(f TreeFactory) StepOption {
	return func(s *Step) {
		if f != nil {
			s.newTree = f
		}
	}
}

// WithDependencyResolver sets the library dependency resolver.
func WithDependencyResolver(r DependencyResolver) StepOption {
	return func(s *Step) {
		s.resolver = r
	}
}

// NewStep creates a discovery step for cfg working under workdir.
func NewStep(cfg config.Discover, workdir string, opts ...StepOption) *Step {
	s := &Step{
		cfg:      cfg,
		workdir:  workdir,
		planRoot: ".",
		reporter: noopReporter{},
		git:      vcs.New(),
		newTree: func(dir string) (Tree, error) {
			return metadata.NewTree(dir)
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Result is the outcome of a discovery run.
type Result struct {
	// Tests are the selected tests in tree order, paths rewritten into
	// the execution namespace. Empty on dry runs.
	Tests []*metadata.Test
	// Acquisition describes the acquired working tree.
	Acquisition Acquisition
	// NamePatterns are the effective name patterns: configured ones
	// plus any derived from the modified set.
	NamePatterns []string
}

// Run executes the discovery step: acquire, diff, select, rewrite,
// resolve. Errors carry a discovery kind describing which stage failed.
func (s *Step) Run() (*Result, error) {
	acq, err := Acquire(s.git, s.cfg, AcquireOptions{
		Workdir:  s.workdir,
		PlanRoot: s.planRoot,
		DryRun:   s.dryRun,
		Reporter: s.reporter,
	})
	if err != nil {
		return nil, err
	}

	namePatterns := append([]string(nil), s.cfg.Tests...)

	if s.dryRun {
		s.reporter.Debug("dry run, skipping selection")
		return &Result{Acquisition: acq, NamePatterns: namePatterns}, nil
	}

	if s.cfg.OnlyModified {
		patterns, err := ModifiedPatterns(s.git, acq.TestDir, s.cfg.ReferenceURL, s.cfg.ReferenceRef)
		if err != nil {
			return nil, err
		}
		s.reporter.Debug("directories changed since %s: %v", s.cfg.ReferenceRef, patterns)
		namePatterns = append(namePatterns, patterns...)
	} else if s.cfg.ReferenceURL != "" {
		if err := prepareReference(s.git, acq.TestDir, s.cfg.ReferenceURL); err != nil {
			return nil, err
		}
	}

	if err := validateSelection(s.cfg.Tests, s.cfg.Filters); err != nil {
		return nil, err
	}

	tree, err := s.newTree(acq.TreeRoot)
	if err != nil {
		return nil, errors.WrapWithMessage(err, errors.Selection, "failed to scan metadata tree")
	}

	tests, err := tree.Tests(namePatterns, s.cfg.Filters)
	if err != nil {
		return nil, errors.WrapWithMessage(err, errors.Selection, "failed to select tests")
	}

	rewriter := Rewriter{Prefix: acq.Prefix}
	for _, test := range tests {
		test.Path = rewriter.Apply(test.Path)
	}

	if err := resolveDependencies(s.resolver, tests, s.workdir); err != nil {
		return nil, err
	}

	s.reporter.Info("tests", fmt.Sprintf("%d found", len(tests)))
	return &Result{Tests: tests, Acquisition: acq, NamePatterns: namePatterns}, nil
}

// validateSelection rejects unusable name patterns and filter
// expressions before any tree work happens.
func validateSelection(names, filters []string) error {
	for _, pattern := range names {
		if _, err := regexp.Compile(pattern); err != nil {
			return errors.InvalidNamePattern(pattern, err)
		}
	}
	for _, filter := range filters {
		if _, err := metadata.ParseFilter(filter); err != nil {
			return errors.InvalidFilter(filter, err)
		}
	}
	return nil
}
