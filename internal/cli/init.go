package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pipeforge/scout/internal/errors"
	"github.com/pipeforge/scout/internal/scaffold"
)

var initCmd = newInitCmd()

// newInitCmd builds the init command. Tests construct their own
// instance so flag state never leaks between cases.
func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Scaffold starter plan and test files",
		Long: `Scaffold starter plan and test files so discovery has something to find.

Templates:
  mini  a minimal local plan (plans/default.yaml)
  base  the mini plan plus an example test (default)
  full  the base set plus a remote plan showing clone mode`,
		Example: `  # Scaffold the base template in the current directory
  scout init

  # Scaffold everything into a new project directory
  scout init --template full path/to/project`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			templateName, _ := cmd.Flags().GetString("template")
			force, _ := cmd.Flags().GetBool("force")
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runInitCommand(root, templateName, force, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("template", "base", "Template to scaffold: mini, base, or full")
	cmd.Flags().Bool("force", false, "Overwrite existing files")

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// runInitCommand executes the init command.
func runInitCommand(root, templateName string, force bool, out io.Writer) error {
	template, err := scaffold.ParseTemplate(templateName)
	if err != nil {
		return errors.NewUsageError(err.Error(),
			"Pick one of the listed templates: scout init --template base")
	}

	result, err := scaffold.Init(scaffold.Options{Root: root, Template: template, Force: force})
	if err != nil {
		return errors.Wrap(err, errors.Configuration)
	}

	for _, path := range result.Created {
		fmt.Fprintf(out, "created %s\n", path)
	}
	for _, path := range result.Skipped {
		fmt.Fprintf(out, "skipped %s (already exists, use --force to overwrite)\n", path)
	}
	if len(result.Created) > 0 {
		fmt.Fprintln(out, "\nRun 'scout discover --plan plans/default.yaml' to try it out.")
	}
	return nil
}
