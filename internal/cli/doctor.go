package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pipeforge/scout/internal/errors"
	"github.com/pipeforge/scout/internal/health"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the environment can run discovery",
	Long: `Check that the environment can run discovery.

Verifies that the git CLI is installed and that the runs root is
writable. The command exits non-zero when any check fails.`,
	Example: `  # Run all environment checks
  scout doctor`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctorCommand(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// runDoctorCommand prints the health report and fails when any check
// does.
func runDoctorCommand(out io.Writer) error {
	report := health.RunHealthChecks()
	fmt.Fprint(out, health.FormatReport(report))
	if !report.Passed {
		return errors.NewPrerequisiteError(
			"environment checks failed",
			"Fix the failing checks listed above and run 'scout doctor' again",
		)
	}
	return nil
}
