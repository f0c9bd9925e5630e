// Package formats prints row streams for humans and other programs.
package formats

import (
	"io"

	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw/execution"
)

type Formatter interface {
	SetFields(fields []string)
	Write(row execution.Row) error
	Close() error
}

var formatters = map[string]func(w io.Writer) Formatter{
	"table": func(w io.Writer) Formatter { return NewTableFormatter(w) },
	"csv":   func(w io.Writer) Formatter { return NewCSVFormatter(w) },
	"json":  func(w io.Writer) Formatter { return NewJSONFormatter(w) },
}

func NewFormatter(name string, w io.Writer) (Formatter, error) {
	create, ok := formatters[name]
	if !ok {
		return nil, errors.Errorf("invalid output format '%s', expected one of table, csv, json", name)
	}
	return create(w), nil
}
