package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTablesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List configured tables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, table := range opts.cfg.Tables {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", table.Name, table.Options["source"])
			}
			return nil
		},
	}
}
