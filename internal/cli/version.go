package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pulselogic/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of pulselogic",
		Long:  `Print the version and build profile the binary was compiled with.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pulselogic version %s (%s)\n", buildinfo.Version, buildinfo.Profile())
		},
	}
}
