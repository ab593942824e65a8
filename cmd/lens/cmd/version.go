package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/pogo-lens/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// Works without a readable config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			v, commit, date := version.Info()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "lens version %s\n", v)
			_, _ = fmt.Fprintf(out, "Commit: %s\n", commit)
			_, err := fmt.Fprintf(out, "Built: %s\n", date)
			return err
		},
	}
}
