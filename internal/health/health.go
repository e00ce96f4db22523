// Package health provides environment health checks for scout. It validates
// that the git binary is available and the runs root is writable, returning
// structured reports used by the 'scout doctor' command.
package health

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pipeforge/scout/internal/run"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

// RunHealthChecks runs all health checks and returns a report.
func RunHealthChecks() *HealthReport {
	report := &HealthReport{
		Checks: make([]CheckResult, 0),
		Passed: true,
	}

	gitCheck := CheckGitCLI()
	report.Checks = append(report.Checks, gitCheck)
	if !gitCheck.Passed {
		report.Passed = false
	}

	runsCheck := CheckRunsRoot()
	report.Checks = append(report.Checks, runsCheck)
	if !runsCheck.Passed {
		report.Passed = false
	}

	return report
}

// CheckGitCLI checks if the git binary is available. Acquisition shells out
// to git for clone, checkout, fetch and log, so a missing binary fails every
// plan that names a repository.
func CheckGitCLI() CheckResult {
	path, err := exec.LookPath("git")
	if err != nil {
		return CheckResult{
			Name:    "Git CLI",
			Passed:  false,
			Message: "git not found in PATH",
		}
	}

	message := "git found at " + path
	if out, err := exec.Command("git", "--version").Output(); err == nil {
		message = strings.TrimSpace(string(out))
	}

	return CheckResult{
		Name:    "Git CLI",
		Passed:  true,
		Message: message,
	}
}

// CheckRunsRoot checks that the default runs root can be created and
// written. Every run without an explicit --workdir allocates under it.
func CheckRunsRoot() CheckResult {
	root, err := run.DefaultRoot()
	if err != nil {
		return CheckResult{
			Name:    "Runs root",
			Passed:  false,
			Message: fmt.Sprintf("failed to resolve runs root: %v", err),
		}
	}

	return CheckRunsRootAt(root)
}

// CheckRunsRootAt checks that the given runs root is writable, creating it
// if needed. The write probe is a temporary file that is removed again.
func CheckRunsRootAt(root string) CheckResult {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return CheckResult{
			Name:    "Runs root",
			Passed:  false,
			Message: fmt.Sprintf("cannot create %s: %v", root, err),
		}
	}

	probe, err := os.CreateTemp(root, ".doctor-*")
	if err != nil {
		return CheckResult{
			Name:    "Runs root",
			Passed:  false,
			Message: fmt.Sprintf("%s is not writable: %v", root, err),
		}
	}
	probe.Close()
	os.Remove(probe.Name())

	return CheckResult{
		Name:    "Runs root",
		Passed:  true,
		Message: fmt.Sprintf("%s is writable", root),
	}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var output string

	for _, check := range report.Checks {
		if check.Passed {
			output += fmt.Sprintf("✓ %s: %s\n", check.Name, check.Message)
		} else {
			output += fmt.Sprintf("✗ %s: %s\n", check.Name, check.Message)
		}
	}

	return output
}
