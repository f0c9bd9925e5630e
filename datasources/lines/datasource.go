// Package lines serves a text file as a table of lines, with the columns "number" and "text".
package lines

import (
	"bufio"
	"bytes"
	"context"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/config"
	"github.com/timelyfdw/timelyfdw/datasources"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

const (
	numberColumn = "number"
	textColumn   = "text"
)

type DataSource struct {
	path, separator string
	schema          physical.Schema
}

func Creator(ctx context.Context, options physical.Options, schema physical.Schema) (datasources.Datasource, error) {
	path, err := config.GetString(options, "path")
	if err != nil {
		return nil, err
	}
	separator, err := config.GetString(options, "sep", config.WithDefault("\n"))
	if err != nil {
		return nil, err
	}

	return &DataSource{
		path:      path,
		separator: separator,
		schema:    schema,
	}, nil
}

func (ds *DataSource) Describe(ctx context.Context) ([]string, error) {
	info, err := os.Stat(ds.path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't check if file exists")
	}
	if info.IsDir() {
		return nil, errors.Errorf("%s is a directory", ds.path)
	}

	return datasources.AvailableFields(ds.schema.Names(), []string{numberColumn, textColumn}), nil
}

// PushDownPredicates uses integer bounds on the line number to skip lines and stop reading early.
func (ds *DataSource) PushDownPredicates(qualifiers []physical.Qualifier) (rejected, pushedDown []physical.Qualifier) {
	for _, q := range qualifiers {
		if q.Column == numberColumn && q.Operator.Ordering() && q.Operator != physical.NotEqual && q.Value.Type.TypeID == timelyfdw.TypeIDInt {
			pushedDown = append(pushedDown, q)
		} else {
			rejected = append(rejected, q)
		}
	}
	return
}

func (ds *DataSource) Scan(ctx context.Context, fields []string, pushedDown []physical.Qualifier) (execution.RecordStream, error) {
	f, err := os.Open(ds.path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}

	sc := bufio.NewScanner(f)
	if ds.separator != "\n" {
		separator := []byte(ds.separator)
		sc.Split(func(data []byte, atEOF bool) (advance int, token []byte, err error) {
			if atEOF && len(data) == 0 {
				return 0, nil, nil
			}
			if i := bytes.Index(data, separator); i >= 0 {
				return i + len(separator), data[0:i], nil
			}
			if atEOF {
				return len(data), data, nil
			}
			return 0, nil, nil
		})
	}

	rs := &RecordStream{
		file:   f,
		sc:     sc,
		fields: fields,
		lower:  0,
		upper:  -1,
	}
	for _, q := range pushedDown {
		n := q.Value.Int
		switch q.Operator {
		case physical.Equal:
			rs.raiseLower(n)
			rs.lowerUpper(n)
		case physical.MoreThan:
			if n == math.MaxInt64 {
				rs.Close()
				continue
			}
			rs.raiseLower(n + 1)
		case physical.GreaterEqual:
			rs.raiseLower(n)
		case physical.LessThan:
			if n <= 0 {
				rs.Close()
				continue
			}
			rs.lowerUpper(n - 1)
		case physical.LessEqual:
			rs.lowerUpper(n)
		}
	}
	return rs, nil
}

type RecordStream struct {
	file   *os.File
	sc     *bufio.Scanner
	fields []string
	line   int64
	// Inclusive line number bounds, upper is unbounded while negative.
	lower, upper int64
	isDone       bool
}

func (rs *RecordStream) raiseLower(n int64) {
	if n > rs.lower {
		rs.lower = n
	}
}

func (rs *RecordStream) lowerUpper(n int64) {
	if n < 0 {
		// Nothing can match, so the stream ends right away.
		rs.Close()
		return
	}
	if rs.upper < 0 || n < rs.upper {
		rs.upper = n
	}
}

func (rs *RecordStream) Next(ctx context.Context) (execution.Row, error) {
	if rs.isDone {
		return nil, execution.ErrEndOfStream
	}
	if err := ctx.Err(); err != nil {
		rs.Close()
		return nil, err
	}

	for {
		if rs.upper >= 0 && rs.line > rs.upper {
			rs.Close()
			return nil, execution.ErrEndOfStream
		}
		if !rs.sc.Scan() {
			err := rs.sc.Err()
			rs.Close()
			if err != nil {
				return nil, errors.Wrap(err, "couldn't read line")
			}
			return nil, execution.ErrEndOfStream
		}
		number := rs.line
		rs.line++
		if number < rs.lower {
			continue
		}

		row := make(execution.Row, len(rs.fields))
		for _, field := range rs.fields {
			switch field {
			case numberColumn:
				row[field] = timelyfdw.NewInt(number)
			case textColumn:
				row[field] = timelyfdw.NewString(rs.sc.Text())
			}
		}
		return row, nil
	}
}

func (rs *RecordStream) Close() error {
	if rs.isDone {
		return nil
	}
	rs.isDone = true
	return rs.file.Close()
}
