package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gzhole/toolscout/internal/registry"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print toolscout version",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "toolscout %s\n", Version)
		fmt.Fprintf(out, "  Commit:  %s\n", GitCommit)
		fmt.Fprintf(out, "  Built:   %s\n", BuildDate)
		fmt.Fprintf(out, "  Catalog: %s\n", registry.CatalogVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
