package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, overridden at build time:
//
//	go build -ldflags "-X .../cmd.Version=1.2.3 -X .../cmd.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and runtime information",
	Long: `Print the server version together with the git commit, build date, and the
Go runtime it was compiled with. Useful when filing bug reports or checking
which build a container is running.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "slanup server %s\n", Version)
		fmt.Fprintf(out, "  commit:   %s\n", GitCommit)
		fmt.Fprintf(out, "  built:    %s\n", BuildDate)
		fmt.Fprintf(out, "  go:       %s\n", runtime.Version())
		fmt.Fprintf(out, "  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}
