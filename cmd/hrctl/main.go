// Command hrctl is the operator CLI: schema migration, admin seeding, badge
// printing and an offline calculator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hrctl",
		Short:         "Operate the attendance backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newCreateAdminCmd(),
		newBadgeCmd(),
		newComputeCmd(),
	)
	return root
}
