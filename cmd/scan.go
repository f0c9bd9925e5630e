package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/outputs/formats"
	"github.com/timelyfdw/timelyfdw/parser"
)

func newScanCommand(opts *rootOptions) *cobra.Command {
	var columns []string
	var where string
	var output string

	cmd := &cobra.Command{
		Use:   "scan <table>",
		Short: "Produce the rows of a table.",
		Long: `Produce the rows of a table, projected to the given columns and filtered by the given qualifiers.
Qualifiers the adapter can't honor are reported on stderr and ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (outErr error) {
			ctx := cmd.Context()

			qualifiers, err := parser.ParseWhere(where)
			if err != nil {
				return err
			}

			a, err := opts.initialize(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil && outErr == nil {
					outErr = err
				}
			}()

			if len(columns) == 0 {
				columns = a.Schema().Names()
			}

			formatter, err := formats.NewFormatter(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			res, err := a.Produce(ctx, columns, qualifiers)
			if err != nil {
				return err
			}
			defer res.Close()

			for _, unsupported := range res.Unsupported {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", unsupported)
			}

			formatter.SetFields(columns)
			for {
				row, err := res.Rows.Next(ctx)
				if err == execution.ErrEndOfStream {
					break
				} else if err != nil {
					return errors.Wrap(err, "couldn't get next row")
				}
				if err := formatter.Write(row); err != nil {
					return errors.Wrap(err, "couldn't write row")
				}
			}

			return formatter.Close()
		},
	}

	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "Columns to produce. Defaults to all declared columns.")
	cmd.Flags().StringVarP(&where, "where", "w", "", "Qualifiers, e.g. \"id > 0 AND name LIKE 'j%'\".")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, csv or json.")

	return cmd
}
