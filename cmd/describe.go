package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/outputs/formats"
)

func newDescribeCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the declared columns of a table and whether its source serves them.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (outErr error) {
			ctx := cmd.Context()

			a, err := opts.initialize(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil && outErr == nil {
					outErr = err
				}
			}()

			available, err := a.Describe(ctx)
			if err != nil {
				return err
			}
			availableSet := make(map[string]bool, len(available))
			for _, name := range available {
				availableSet[name] = true
			}

			formatter, err := formats.NewFormatter(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			formatter.SetFields([]string{"name", "type", "available"})
			for _, column := range a.Schema().Columns {
				if err := formatter.Write(execution.Row{
					"name":      timelyfdw.NewString(column.Name),
					"type":      timelyfdw.NewString(column.TypeName),
					"available": timelyfdw.NewBoolean(availableSet[column.Name]),
				}); err != nil {
					return errors.Wrap(err, "couldn't write column description")
				}
			}
			return formatter.Close()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, csv or json.")

	return cmd
}
