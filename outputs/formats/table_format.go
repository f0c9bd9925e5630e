package formats

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/timelyfdw/timelyfdw/execution"
)

// TableFormatter buffers all rows and renders them on Close.
type TableFormatter struct {
	table  *tablewriter.Table
	fields []string
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	table := tablewriter.NewWriter(w)
	table.SetColWidth(24)
	table.SetRowLine(false)

	return &TableFormatter{
		table: table,
	}
}

func (t *TableFormatter) SetFields(fields []string) {
	t.fields = fields
	t.table.SetHeader(fields)
	t.table.SetAutoFormatHeaders(false)
}

func (t *TableFormatter) Write(row execution.Row) error {
	record := make([]string, len(t.fields))
	for i, field := range t.fields {
		record[i] = row[field].Text()
	}
	t.table.Append(record)
	return nil
}

func (t *TableFormatter) Close() error {
	t.table.Render()
	return nil
}
