// Package cli implements the scout command line interface: the discover,
// doctor, history, init, and version commands plus the global flags they
// share.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pipeforge/scout/internal/errors"
	"github.com/pipeforge/scout/internal/vcs"
)

var (
	debugFlag    bool
	noColorFlag  bool
	progressFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Discover tests from metadata trees",
	Long: `Scout discovers tests for execution: it acquires test sources from a
git repository or the local filesystem, scans their metadata tree, and
selects tests by name patterns and attribute filters.

Selected test paths are rewritten under the /tests namespace so later
pipeline stages address them uniformly regardless of where the sources
came from.`,
	Example: `  # Discover every test in the current repository
  scout discover

  # Discover tests from a remote repository at a fixed ref
  scout discover -u https://example.com/tests.git -r stable

  # Select tests by name and tier
  scout discover -t '^/smoke' -F 'tier: 1'

  # Re-run discovery on every local change
  scout discover --watch`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColorFlag {
			color.NoColor = true
		}
		if debugFlag {
			vcs.SetDebugLogger(func(format string, args ...any) {
				fmt.Fprintf(os.Stderr, "[debug] "+format+"\n", args...)
			})
		}
	},
}

// Execute runs the root command and folds every failure into an error
// whose ExitCode the caller can hand to os.Exit. Structured discovery
// errors are printed here; commands returning an exitError have already
// printed their own output.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	if _, ok := err.(*exitError); ok {
		return err
	}
	if discErr := errors.AsDiscoveryError(err); discErr != nil {
		errors.PrintError(discErr)
		return &exitError{code: exitCodeForKind(discErr.Kind)}
	}

	// Cobra parse failures: unknown flags, unknown subcommands, bad args.
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	fmt.Fprintf(os.Stderr, "Run 'scout --help' for usage.\n")
	return &exitError{code: ExitUsage}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&progressFlag, "progress", true, "Show a progress spinner on interactive terminals")
}
