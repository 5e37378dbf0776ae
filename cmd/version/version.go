package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/parksmart/parkctl/cmd/root"
)

// Populated at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("parkctl %s\n", Version)
		fmt.Printf("  commit:     %s\n", Commit)
		fmt.Printf("  built:      %s\n", Date)
		fmt.Printf("  go version: %s\n", runtime.Version())
	},
}

func init() {
	root.RootCmd.AddCommand(versionCmd)
}
