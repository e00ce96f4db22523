package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pipeforge/scout/internal/errors"
	"github.com/pipeforge/scout/internal/history"
	"github.com/pipeforge/scout/internal/run"
)

var historyCmd = newHistoryCmd()

// newHistoryCmd builds the history command. Tests construct their own
// instance so flag state never leaks between cases.
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "history",
		Short:         "Show recent discovery runs",
		Long:          `Show a log of recorded discovery runs with timestamp, plan name, selected test count, duration, and outcome.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			if root == "" {
				defaultRoot, err := run.DefaultRoot()
				if err != nil {
					return errors.Wrap(err, errors.Configuration)
				}
				root = defaultRoot
			}
			return runHistoryCommand(cmd, root, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringP("plan", "p", "", "Filter by plan name")
	cmd.Flags().IntP("limit", "n", 0, "Limit to last N entries (most recent)")
	cmd.Flags().BoolP("clear", "c", false, "Clear all recorded runs")
	cmd.Flags().String("root", "", "Directory holding the history file (default: the runs root)")

	return cmd
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

// runHistoryCommand runs the history command against a history root.
func runHistoryCommand(cmd *cobra.Command, root string, out io.Writer) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	planFilter, _ := cmd.Flags().GetString("plan")
	limit, _ := cmd.Flags().GetInt("limit")

	if limit < 0 {
		return errors.NewUsageError(
			fmt.Sprintf("limit must be positive, got %d", limit),
			"Pass a positive entry count: scout history --limit 20")
	}

	if clearFlag {
		if err := history.Clear(root); err != nil {
			return errors.WrapWithMessage(err, errors.Configuration, "clearing history")
		}
		fmt.Fprintln(out, "History cleared.")
		return nil
	}

	file, err := history.Load(root)
	if err != nil {
		return errors.WrapWithMessage(err, errors.Configuration, "loading history")
	}

	entries := filterEntries(file.Entries, planFilter, limit)

	if len(entries) == 0 {
		if planFilter != "" {
			fmt.Fprintf(out, "No recorded runs for plan '%s'.\n", planFilter)
		} else {
			fmt.Fprintln(out, "No discovery runs recorded.")
		}
		return nil
	}

	displayEntries(out, entries)
	return nil
}

// filterEntries filters and limits history entries.
func filterEntries(entries []history.Entry, planFilter string, limit int) []history.Entry {
	var result []history.Entry

	for _, entry := range entries {
		if planFilter == "" || entry.Plan == planFilter {
			result = append(result, entry)
		}
	}

	// Keep the most recent entries
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}

	return result
}

// displayEntries formats and displays history entries, oldest first.
func displayEntries(out io.Writer, entries []history.Entry) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, entry := range entries {
		timestamp := entry.Timestamp.Format("2006-01-02 15:04:05")

		tests := "-"
		outcome := red(entry.Outcome)
		if entry.Outcome == "ok" {
			tests = listedTests(entry.Tests)
			outcome = green(entry.Outcome)
		}

		fmt.Fprintf(out, "%s  %-15s  %-8s  %-10s  %s\n",
			cyan(timestamp),
			entry.Plan,
			tests,
			entry.Duration,
			outcome,
		)
	}
}
