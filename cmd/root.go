// Package cmd implements the timelyfdw command line tool, which runs the adapter against configured tables.
package cmd

import (
	"context"
	"io"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/timelyfdw/timelyfdw/adapter"
	"github.com/timelyfdw/timelyfdw/config"
	"github.com/timelyfdw/timelyfdw/datasources"
	"github.com/timelyfdw/timelyfdw/datasources/builtin"
	"github.com/timelyfdw/timelyfdw/logs"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string
	logStderr  bool

	registry  *datasources.Registry
	cfg       *config.Config
	logger    log.Logger
	logCloser io.Closer
}

// NewRootCommand returns the timelyfdw command with all subcommands.
// The registry decides which sources tables may use.
func NewRootCommand(registry *datasources.Registry) *cobra.Command {
	opts := &rootOptions{
		registry: registry,
		logger:   log.NewNopLogger(),
	}

	rootCmd := &cobra.Command{
		Use:   "timelyfdw",
		Short: "Query foreign tables through the timelyfdw row source adapter.",
		Example: `timelyfdw tables
timelyfdw describe metrics
timelyfdw scan metrics --columns metric,value --where "value > 10 AND host LIKE 'r01%'"`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logCloser != nil {
				return opts.logCloser.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the table catalog. Defaults to ~/.timelyfdw/config.yaml.")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error or none.")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "File to write logs to. Defaults to ~/.timelyfdw/logs.txt.")
	rootCmd.PersistentFlags().BoolVar(&opts.logStderr, "log-stderr", false, "Write logs to stderr instead of a file.")

	rootCmd.AddCommand(
		newTablesCommand(opts),
		newDescribeCommand(opts),
		newScanCommand(opts),
	)

	return rootCmd
}

func (opts *rootOptions) setup(cmd *cobra.Command) error {
	var err error
	if opts.logStderr {
		opts.logger, err = logs.New(cmd.ErrOrStderr(), opts.logLevel)
	} else {
		opts.logger, opts.logCloser, err = logs.InitializeFileLogger(opts.logFile, opts.logLevel)
	}
	if err != nil {
		return errors.Wrap(err, "couldn't initialize logger")
	}

	path := opts.configPath
	if path == "" {
		dir, err := logs.Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	opts.cfg, err = config.ReadConfig(path)
	if err != nil {
		return errors.Wrap(err, "couldn't read config")
	}
	level.Debug(opts.logger).Log("msg", "read config", "path", path, "tables", len(opts.cfg.Tables))

	return nil
}

func (opts *rootOptions) initialize(ctx context.Context, table string) (*adapter.Adapter, error) {
	tableConfig, err := opts.cfg.GetTableConfig(table)
	if err != nil {
		return nil, err
	}
	return adapter.Initialize(
		ctx,
		opts.registry,
		tableConfig.Options,
		tableConfig.Columns,
		adapter.WithLogger(log.With(opts.logger, "table", table)),
	)
}

func Execute(ctx context.Context) {
	cobra.CheckErr(NewRootCommand(builtin.DefaultRegistry()).ExecuteContext(ctx))
}
