// Package logs builds the structured loggers used by the command line tool.
package logs

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// Dir returns the timelyfdw home directory, ~/.timelyfdw.
func Dir() (string, error) {
	dir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "couldn't get user home directory")
	}
	return filepath.Join(dir, ".timelyfdw"), nil
}

func levelOption(lvl string) (level.Option, error) {
	switch lvl {
	case "debug":
		return level.AllowDebug(), nil
	case "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none":
		return level.AllowNone(), nil
	default:
		return nil, errors.Errorf("invalid log level '%s', expected one of debug, info, warn, error, none", lvl)
	}
}

// New returns a logfmt logger writing to w, filtered to the given level.
func New(w io.Writer, lvl string) (log.Logger, error) {
	allow, err := levelOption(lvl)
	if err != nil {
		return nil, err
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, allow)
	logger = log.With(logger, "ts", log.TimestampFormat(time.Now, time.RFC3339Nano), "caller", log.DefaultCaller)
	return logger, nil
}

// InitializeFileLogger logs to the given file, or to logs.txt in the timelyfdw home directory if path is empty.
// The returned closer closes the file.
func InitializeFileLogger(path, lvl string) (log.Logger, io.Closer, error) {
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, errors.Wrap(err, "couldn't create ~/.timelyfdw home directory")
		}
		path = filepath.Join(dir, "logs.txt")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "couldn't create logs file")
	}

	logger, err := New(f, lvl)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, f, nil
}
