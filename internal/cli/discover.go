package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pipeforge/scout/internal/config"
	"github.com/pipeforge/scout/internal/discover"
	"github.com/pipeforge/scout/internal/errors"
	"github.com/pipeforge/scout/internal/history"
	"github.com/pipeforge/scout/internal/progress"
	"github.com/pipeforge/scout/internal/run"
	"github.com/pipeforge/scout/internal/watch"
)

// planHeader paints per-plan block headers on color terminals.
var planHeader = color.New(color.FgCyan, color.Bold).SprintFunc()

var discoverCmd = newDiscoverCmd()

// newDiscoverCmd builds the discover command. Tests construct their own
// instance so flag state never leaks between cases.
func newDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover tests from a repository or local directory",
		Long: `Discover tests for execution.

Sources are acquired into a working directory first: with --url the
repository is cloned, otherwise the repository around --path (or the
current directory) is copied. The metadata tree inside the sources is
then scanned, tests are selected by --test patterns and --filter
expressions, and selected test paths are rewritten under /tests.

Without --plan a single anonymous plan is assembled from the flags
alone. Each --plan file discovers in its own working directory; flags
override the corresponding setting in every plan.`,
		Example: `  # Discover every test in the current repository
  scout discover

  # Discover tests from a remote repository at a fixed ref
  scout discover -u https://example.com/tests.git -r stable

  # Select tests by name and tier, from a plan file
  scout discover --plan plans/smoke.yaml -t '^/smoke' -F 'tier: 1'

  # Only tests under directories changed since main
  scout discover -m -R main

  # Re-run discovery on every local change
  scout discover --watch`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscoverCommand(cmd, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringArray("plan", nil, "Plan file to discover; repeatable, each plan runs in its own workdir")
	cmd.Flags().StringP("url", "u", "", "Repository to clone tests from (local copy mode when unset)")
	cmd.Flags().StringP("ref", "r", "", "Revision to check out after acquisition")
	cmd.Flags().StringP("path", "p", "", "Metadata tree root inside the sources")
	cmd.Flags().StringArrayP("test", "t", nil, "Regular expression selecting tests by name; repeatable")
	cmd.Flags().StringArrayP("filter", "F", nil, "Attribute filter expression, all must match; repeatable")
	cmd.Flags().BoolP("only-modified", "m", false, "Select only tests under directories changed since the reference ref")
	cmd.Flags().StringP("reference-url", "U", "", "Extra repository fetched under the reference remote before diffing")
	cmd.Flags().StringP("reference-ref", "R", "", "Revision the modified set is computed against")
	cmd.Flags().Bool("dry-run", false, "Validate the configuration and compute paths without touching anything")
	cmd.Flags().String("workdir", "", "Working directory root (default: a fresh run directory under ~/.scout/runs)")
	cmd.Flags().String("root", ".", "Directory local sources fall back to when no path is configured")
	cmd.Flags().Int("max-parallel", discover.DefaultMaxParallel, "Concurrent plan limit")
	cmd.Flags().Bool("watch", false, "Re-run discovery when local sources change; single local plan only")

	return cmd
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

// discoverOptions carries the resolved discover flags through the
// command helpers.
type discoverOptions struct {
	dryRun      bool
	workdir     string
	planRoot    string
	maxParallel int
	watch       bool
	debug       bool
	progress    bool
}

func discoverOptionsFromFlags(cmd *cobra.Command) discoverOptions {
	flags := cmd.Flags()
	dryRun, _ := flags.GetBool("dry-run")
	workdir, _ := flags.GetString("workdir")
	planRoot, _ := flags.GetString("root")
	maxParallel, _ := flags.GetInt("max-parallel")
	watchMode, _ := flags.GetBool("watch")

	return discoverOptions{
		dryRun:      dryRun,
		workdir:     workdir,
		planRoot:    planRoot,
		maxParallel: maxParallel,
		watch:       watchMode,
		debug:       debugFlag,
		progress:    progressFlag && !noColorFlag,
	}
}

// runDiscoverCommand executes the discover command.
func runDiscoverCommand(cmd *cobra.Command, out, errOut io.Writer) error {
	plans, err := loadPlans(cmd)
	if err != nil {
		return err
	}
	opts := discoverOptionsFromFlags(cmd)

	if opts.watch {
		return runWatch(cmd.Context(), plans, opts, out, errOut)
	}

	workdirRoot, historyRoot, err := resolveWorkdirRoot(opts.workdir)
	if err != nil {
		return err
	}
	return runPlansOnce(cmd.Context(), plans, workdirRoot, historyRoot, opts, out, errOut)
}

// loadPlans builds the plan set for one invocation: each --plan file,
// or a single anonymous plan assembled from flags alone. Explicitly set
// flags override the loaded settings in every plan.
func loadPlans(cmd *cobra.Command) ([]*config.Plan, error) {
	planFiles, _ := cmd.Flags().GetStringArray("plan")

	var plans []*config.Plan
	if len(planFiles) == 0 {
		plan, err := config.EmptyPlan()
		if err != nil {
			return nil, err
		}
		plans = []*config.Plan{plan}
	} else {
		for _, path := range planFiles {
			plan, err := config.LoadPlan(path)
			if err != nil {
				return nil, err
			}
			plans = append(plans, plan)
		}
	}

	for _, plan := range plans {
		applyFlagOverrides(cmd, &plan.Discover)
		plan.Discover.Finalize()
	}
	return plans, nil
}

// applyFlagOverrides copies explicitly set flags over the loaded
// configuration; flags the user did not change leave the plan alone.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Discover) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL, _ = flags.GetString("url")
	}
	if flags.Changed("ref") {
		cfg.Ref, _ = flags.GetString("ref")
	}
	if flags.Changed("path") {
		cfg.Path, _ = flags.GetString("path")
	}
	if flags.Changed("test") {
		cfg.Tests, _ = flags.GetStringArray("test")
	}
	if flags.Changed("filter") {
		cfg.Filters, _ = flags.GetStringArray("filter")
	}
	if flags.Changed("only-modified") {
		cfg.OnlyModified, _ = flags.GetBool("only-modified")
	}
	if flags.Changed("reference-url") {
		cfg.ReferenceURL, _ = flags.GetString("reference-url")
	}
	if flags.Changed("reference-ref") {
		cfg.ReferenceRef, _ = flags.GetString("reference-ref")
	}
}

// resolveWorkdirRoot picks where plan working directories nest: the
// --workdir override as given, or a freshly allocated run directory.
// The second return is where run history lands: the runs root when a
// run directory was allocated, else the workdir itself.
func resolveWorkdirRoot(workdir string) (string, string, error) {
	if workdir != "" {
		return workdir, workdir, nil
	}
	root, err := run.DefaultRoot()
	if err != nil {
		return "", "", errors.Wrap(err, errors.Configuration)
	}
	runDir, err := run.NextRunDir(root)
	if err != nil {
		return "", "", errors.WorkdirNotWritable(root, err)
	}
	return runDir, root, nil
}

// runPlansOnce discovers every plan under workdirRoot and prints one
// result block per plan. A non-nil return is always an exitError:
// per-plan failures were already printed with their blocks.
func runPlansOnce(ctx context.Context, plans []*config.Plan, workdirRoot, historyRoot string, opts discoverOptions, out, errOut io.Writer) error {
	stepOpts := []discover.StepOption{discover.WithPlanRoot(opts.planRoot)}
	if opts.dryRun {
		stepOpts = append(stepOpts, discover.WithDryRun(true))
	}

	display := newProgressDisplay(opts.progress, errOut)
	if opts.debug {
		stepOpts = append(stepOpts, discover.WithReporter(&debugReporter{out: errOut, display: display}))
	}

	label := progressLabel(plans)
	started := time.Now()
	display.Start(label)
	results := discover.RunPlans(ctx, plans, workdirRoot, opts.maxParallel, stepOpts...)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		display.Complete(label)
	} else {
		display.Fail(label, fmt.Errorf("%d of %d plans failed", failed, len(results)))
	}

	printResults(results, opts, out, errOut)

	// Dry runs leave no trace, so they are not recorded either.
	if !opts.dryRun {
		recordHistory(historyRoot, results, time.Since(started))
	}

	if failed > 0 {
		return &exitError{code: failureExitCode(results)}
	}
	return nil
}

// recordHistory appends one entry per plan outcome. History is
// best-effort: the writer warns on stderr and never fails the command.
func recordHistory(root string, results []discover.PlanResult, elapsed time.Duration) {
	if root == "" {
		return
	}
	writer := history.NewWriter(root, history.DefaultMaxEntries)
	duration := elapsed.Round(time.Millisecond)
	for _, res := range results {
		if res.Err != nil {
			outcome := "failed"
			if discErr := errors.AsDiscoveryError(res.Err); discErr != nil {
				outcome = discErr.Kind.String()
			}
			writer.LogPlan(res.Plan.Name, outcome, 0, "", duration)
			continue
		}
		writer.LogPlan(res.Plan.Name, "ok", len(res.Result.Tests), res.Result.Acquisition.TestDir, duration)
	}
}

// runWatch re-runs discovery whenever the watched sources change. Watch
// mode is restricted to a single local plan: remote sources have
// nothing to watch, and several plans would fight over the terminal.
func runWatch(ctx context.Context, plans []*config.Plan, opts discoverOptions, out, errOut io.Writer) error {
	if len(plans) != 1 {
		return errors.InvalidFlagCombination("--watch with multiple plans",
			"Watch one plan at a time")
	}
	plan := plans[0]
	if plan.Discover.URL != "" {
		return errors.WatchRequiresLocalSource()
	}

	watchRoot := plan.Discover.Path
	if watchRoot == "" {
		watchRoot = opts.planRoot
	}

	pass := func() {
		workdirRoot, historyRoot, err := resolveWorkdirRoot(opts.workdir)
		if err != nil {
			printPlanError(errOut, err)
			return
		}
		// Failures were printed with the result blocks; watch carries on.
		_ = runPlansOnce(ctx, plans, workdirRoot, historyRoot, opts, out, errOut)
	}

	pass()
	fmt.Fprintf(errOut, "watching %s, press Ctrl-C to stop\n", watchRoot)
	if err := watch.Dirs(ctx, watchRoot, watch.DefaultDebounce, func() {
		fmt.Fprintln(errOut, "change detected, rediscovering")
		pass()
	}); err != nil {
		return errors.WrapWithMessage(err, errors.Configuration, "watching for changes")
	}
	return nil
}

// progressLabel describes the running discovery for the spinner.
func progressLabel(plans []*config.Plan) string {
	if len(plans) == 1 {
		return fmt.Sprintf("discovering tests for plan %s", plans[0].Name)
	}
	return fmt.Sprintf("discovering tests for %d plans", len(plans))
}

// newProgressDisplay builds the spinner display, or nil when progress
// is off. NewDisplay itself returns nil away from a terminal, so every
// caller can rely on nil-safe no-ops under tests and pipes.
func newProgressDisplay(enabled bool, w io.Writer) *progress.Display {
	if !enabled {
		return nil
	}
	return progress.NewDisplay(progress.DetectTerminalCapabilities(), w)
}

// printResults writes one block per plan: a header, the effective
// settings, the selected test names, and a summary line. Failed plans
// print their structured error instead, so parallel runs never
// interleave output.
func printResults(results []discover.PlanResult, opts discoverOptions, out, errOut io.Writer) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, planHeader("plan "+res.Plan.Name))
		if res.Err != nil {
			printPlanError(errOut, res.Err)
			continue
		}
		printPlanResult(out, res.Plan, res.Result, opts.dryRun)
	}
}

func printPlanError(errOut io.Writer, err error) {
	if discErr := errors.AsDiscoveryError(err); discErr != nil {
		errors.FprintError(errOut, discErr)
		return
	}
	fmt.Fprintf(errOut, "Error: %v\n", err)
}

func printPlanResult(out io.Writer, plan *config.Plan, result *discover.Result, dryRun bool) {
	cfg := plan.Discover
	fmt.Fprintf(out, "    workdir: %s\n", result.Acquisition.TestDir)
	if cfg.URL != "" {
		fmt.Fprintf(out, "    url: %s\n", cfg.URL)
	}
	if cfg.Ref != "" {
		fmt.Fprintf(out, "    ref: %s\n", cfg.Ref)
	}
	if dryRun {
		fmt.Fprintln(out, "    summary: dry run, nothing selected")
		return
	}
	for _, test := range result.Tests {
		fmt.Fprintf(out, "    %s\n", test.Name)
	}
	fmt.Fprintf(out, "    summary: %s selected\n", listedTests(len(result.Tests)))
}

// listedTests pluralizes the selection count.
func listedTests(n int) string {
	if n == 1 {
		return "1 test"
	}
	return fmt.Sprintf("%d tests", n)
}

// failureExitCode maps the first failed plan onto an exit code.
func failureExitCode(results []discover.PlanResult) int {
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		if discErr := errors.AsDiscoveryError(res.Err); discErr != nil {
			return exitCodeForKind(discErr.Kind)
		}
		return ExitDiscoveryFailed
	}
	return ExitSuccess
}

// debugReporter streams step progress as debug lines, pausing the
// spinner so each line lands on a clean row. Plans run in parallel, so
// every write is mutex-guarded.
type debugReporter struct {
	mu      sync.Mutex
	out     io.Writer
	display *progress.Display
}

func (r *debugReporter) Info(key, value string) {
	r.write(fmt.Sprintf("[debug] %s: %s", key, value))
}

func (r *debugReporter) Debug(format string, args ...any) {
	r.write(fmt.Sprintf("[debug] "+format, args...))
}

func (r *debugReporter) write(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.display.Pause()
	fmt.Fprintln(r.out, line)
	r.display.Resume()
}
