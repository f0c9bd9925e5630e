// Package parquet serves the top-level primitive columns of a parquet file.
package parquet

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/segmentio/parquet-go"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/config"
	"github.com/timelyfdw/timelyfdw/datasources"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

type DataSource struct {
	path   string
	schema physical.Schema
}

func Creator(ctx context.Context, options physical.Options, schema physical.Schema) (datasources.Datasource, error) {
	path, err := config.GetString(options, "path")
	if err != nil {
		return nil, err
	}

	return &DataSource{
		path:   path,
		schema: schema,
	}, nil
}

func (ds *DataSource) open() (*os.File, *parquet.File, error) {
	f, err := os.Open(ds.path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "couldn't open file")
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "couldn't stat file")
	}

	pf, err := parquet.OpenFile(f, stat.Size(), &parquet.FileConfig{
		SkipPageIndex:    true,
		SkipBloomFilters: true,
	})
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "couldn't open parquet file")
	}
	return f, pf, nil
}

// leafColumns maps the names of top-level, non-repeated primitive fields to their column index.
// Nested and repeated fields still take up column indices, but can't be served.
func leafColumns(schema *parquet.Schema) map[string]int {
	out := make(map[string]int)
	columnIndex := 0
	for _, field := range schema.Fields() {
		if field.Leaf() && !field.Repeated() {
			out[field.Name()] = columnIndex
		}
		columnIndex += countLeaves(field)
	}
	return out
}

func countLeaves(node parquet.Node) int {
	if node.Leaf() {
		return 1
	}
	count := 0
	for _, field := range node.Fields() {
		count += countLeaves(field)
	}
	return count
}

func (ds *DataSource) Describe(ctx context.Context) ([]string, error) {
	f, pf, err := ds.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	leaves := leafColumns(pf.Schema())
	names := make([]string, 0, len(leaves))
	for name := range leaves {
		names = append(names, name)
	}

	return datasources.AvailableFields(ds.schema.Names(), names), nil
}

func (ds *DataSource) PushDownPredicates(qualifiers []physical.Qualifier) (rejected, pushedDown []physical.Qualifier) {
	return qualifiers, nil
}

func (ds *DataSource) Scan(ctx context.Context, fields []string, pushedDown []physical.Qualifier) (execution.RecordStream, error) {
	f, pf, err := ds.open()
	if err != nil {
		return nil, err
	}

	leaves := leafColumns(pf.Schema())
	columns := make(map[int]physical.Column, len(fields))
	for _, name := range fields {
		column, ok := ds.schema.Lookup(name)
		if !ok {
			continue
		}
		index, ok := leaves[name]
		if !ok {
			continue
		}
		columns[index] = column
	}

	return &RecordStream{
		file:    f,
		reader:  parquet.NewReader(pf),
		columns: columns,
	}, nil
}

type RecordStream struct {
	file    *os.File
	reader  *parquet.Reader
	columns map[int]physical.Column
	row     parquet.Row
	count   int
	isDone  bool
}

func (rs *RecordStream) Next(ctx context.Context) (execution.Row, error) {
	if rs.isDone {
		return nil, execution.ErrEndOfStream
	}
	if err := ctx.Err(); err != nil {
		rs.Close()
		return nil, err
	}

	row, err := rs.reader.ReadRow(rs.row)
	if err != nil {
		rs.Close()
		if err == io.EOF {
			return nil, execution.ErrEndOfStream
		}
		return nil, errors.Wrapf(err, "couldn't read row %d", rs.count)
	}
	rs.row = row[:0]

	record := make(execution.Row, len(rs.columns))
	for _, column := range rs.columns {
		record[column.Name] = timelyfdw.NewNull()
	}
	for _, value := range row {
		column, ok := rs.columns[value.Column()]
		if !ok {
			continue
		}
		out, ok := getValue(value).CoerceTo(column.Type)
		if !ok {
			rs.Close()
			return nil, errors.Errorf("column %s of row %d can't be read as %s", column.Name, rs.count, column.Type)
		}
		record[column.Name] = out
	}
	rs.count++

	return record, nil
}

func (rs *RecordStream) Close() error {
	if rs.isDone {
		return nil
	}
	rs.isDone = true
	return rs.file.Close()
}

func getValue(src parquet.Value) timelyfdw.Value {
	if src.IsNull() {
		return timelyfdw.NewNull()
	}

	switch src.Kind() {
	case parquet.Boolean:
		return timelyfdw.NewBoolean(src.Boolean())
	case parquet.Int32:
		return timelyfdw.NewInt(int64(src.Int32()))
	case parquet.Int64:
		return timelyfdw.NewInt(src.Int64())
	case parquet.Int96:
		return timelyfdw.NewString(src.Int96().String())
	case parquet.Float:
		return timelyfdw.NewFloat(float64(src.Float()))
	case parquet.Double:
		return timelyfdw.NewFloat(src.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return timelyfdw.NewString(string(src.ByteArray()))
	default:
		return timelyfdw.NewNull()
	}
}
