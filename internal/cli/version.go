package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pipeforge/scout/internal/version"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for scout",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if version.IsDevBuild() {
			fmt.Fprintf(out, "scout %s (built from source)\n", version.Version)
		} else {
			fmt.Fprintf(out, "scout %s\n", version.Version)
		}
		fmt.Fprintf(out, "commit: %s\n", version.Commit)
		fmt.Fprintf(out, "built: %s\n", version.BuildDate)
		fmt.Fprintf(out, "go: %s\n", runtime.Version())
		fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
