package discover

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/pipeforge/scout/internal/config"
	"github.com/pipeforge/scout/internal/run"
)

// DefaultMaxParallel is the concurrent plan limit when none is given.
const DefaultMaxParallel = 4

// PlanResult pairs a plan with its discovery outcome. Exactly one of
// Result and Err is meaningful.
type PlanResult struct {
	Plan   *config.Plan
	Result *Result
	Err    error
}

// RunPlans discovers several plans concurrently, at most maxParallel at
// a time. Each plan gets its own working directory under workdirRoot so
// runs never share state. One failing plan does not stop the others;
// errors are reported per plan in the returned slice, which is ordered
// like plans. Context cancellation stops plans that have not started.
func RunPlans(ctx context.Context, plans []*config.Plan, workdirRoot string, maxParallel int, opts ...StepOption) []PlanResult {
	if maxParallel < 1 {
		maxParallel = DefaultMaxParallel
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	workdirs := planWorkdirs(plans, workdirRoot)
	results := make([]PlanResult, len(plans))
	for i, plan := range plans {
		results[i].Plan = plan
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			step := NewStep(plan.Discover, workdirs[i], opts...)
			results[i].Result, results[i].Err = step.Run()
			return nil
		})
	}

	// Workers never return errors; Wait only fences completion.
	g.Wait()
	return results
}

// planWorkdirs allocates one working directory per plan under root.
// Plans that slug to the same name get a numeric suffix so no two steps
// ever share a directory.
func planWorkdirs(plans []*config.Plan, root string) []string {
	seen := make(map[string]int, len(plans))
	dirs := make([]string, len(plans))
	for i, plan := range plans {
		slug := run.Slug(plan.Name)
		seen[slug]++
		if n := seen[slug]; n > 1 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}
		dirs[i] = filepath.Join(root, slug, "discover")
	}
	return dirs
}
