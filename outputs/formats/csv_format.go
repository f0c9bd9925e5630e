package formats

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw/execution"
)

type CSVFormatter struct {
	writer *csv.Writer
	fields []string
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	writer := csv.NewWriter(w)

	return &CSVFormatter{
		writer: writer,
	}
}

func (t *CSVFormatter) SetFields(fields []string) {
	t.fields = fields
	t.writer.Write(fields)
}

// Write prints nulls as empty fields.
func (t *CSVFormatter) Write(row execution.Row) error {
	record := make([]string, len(t.fields))
	for i, field := range t.fields {
		if value := row[field]; !value.IsNull() {
			record[i] = value.Text()
		}
	}
	return t.writer.Write(record)
}

func (t *CSVFormatter) Close() error {
	t.writer.Flush()
	return errors.Wrap(t.writer.Error(), "couldn't flush csv output")
}
