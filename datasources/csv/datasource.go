// Package csv serves the rows of a CSV file.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/config"
	"github.com/timelyfdw/timelyfdw/datasources"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

type DataSource struct {
	path      string
	delimiter rune
	header    bool
	schema    physical.Schema
}

func Creator(ctx context.Context, options physical.Options, schema physical.Schema) (datasources.Datasource, error) {
	path, err := config.GetString(options, "path")
	if err != nil {
		return nil, err
	}
	delimiter, err := config.GetRune(options, "delimiter", config.WithDefault(','))
	if err != nil {
		return nil, err
	}
	header, err := config.GetBool(options, "header", config.WithDefault(true))
	if err != nil {
		return nil, err
	}

	return &DataSource{
		path:      path,
		delimiter: delimiter,
		header:    header,
		schema:    schema,
	}, nil
}

func (ds *DataSource) open() (*os.File, *csv.Reader, []string, error) {
	file, err := os.Open(ds.path)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "couldn't open file")
	}
	rdr := csv.NewReader(bufio.NewReader(file))
	rdr.Comma = ds.delimiter

	if !ds.header {
		rdr.FieldsPerRecord = len(ds.schema.Columns)
		return file, rdr, ds.schema.Names(), nil
	}

	columns, err := rdr.Read()
	if err != nil {
		file.Close()
		return nil, nil, nil, errors.Wrap(err, "couldn't decode csv header row")
	}
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, present := set[c]; present {
			file.Close()
			return nil, nil, nil, errors.Errorf("column name %s not unique", c)
		}
		set[c] = struct{}{}
	}
	rdr.FieldsPerRecord = len(columns)

	return file, rdr, columns, nil
}

func (ds *DataSource) Describe(ctx context.Context) ([]string, error) {
	file, _, columns, err := ds.open()
	if err != nil {
		return nil, err
	}
	file.Close()

	return datasources.AvailableFields(ds.schema.Names(), columns), nil
}

func (ds *DataSource) PushDownPredicates(qualifiers []physical.Qualifier) (rejected, pushedDown []physical.Qualifier) {
	return qualifiers, nil
}

func (ds *DataSource) Scan(ctx context.Context, fields []string, pushedDown []physical.Qualifier) (execution.RecordStream, error) {
	file, rdr, columns, err := ds.open()
	if err != nil {
		return nil, err
	}

	positions := make(map[string]int, len(columns))
	for i, c := range columns {
		positions[c] = i
	}
	outFields := make([]field, 0, len(fields))
	for _, name := range fields {
		column, ok := ds.schema.Lookup(name)
		if !ok {
			continue
		}
		position, ok := positions[name]
		if !ok {
			continue
		}
		outFields = append(outFields, field{name: name, t: column.Type, position: position})
	}

	return &RecordStream{
		file:   file,
		rdr:    rdr,
		fields: outFields,
	}, nil
}

type field struct {
	name     string
	t        timelyfdw.Type
	position int
}

type RecordStream struct {
	file   *os.File
	rdr    *csv.Reader
	fields []field
	line   int
	isDone bool
}

func (rs *RecordStream) Next(ctx context.Context) (execution.Row, error) {
	if rs.isDone {
		return nil, execution.ErrEndOfStream
	}
	if err := ctx.Err(); err != nil {
		rs.Close()
		return nil, err
	}

	line, err := rs.rdr.Read()
	if err == io.EOF {
		rs.Close()
		return nil, execution.ErrEndOfStream
	}
	if err != nil {
		rs.Close()
		return nil, errors.Wrap(err, "couldn't read record")
	}
	rs.line++

	record := make(execution.Row, len(rs.fields))
	for _, f := range rs.fields {
		value, err := timelyfdw.ParseValue(f.t, line[f.position])
		if err != nil {
			rs.Close()
			return nil, errors.Wrapf(err, "couldn't parse field %s of record %d", f.name, rs.line)
		}
		record[f.name] = value
	}

	return record, nil
}

func (rs *RecordStream) Close() error {
	if rs.isDone {
		return nil
	}
	rs.isDone = true
	return rs.file.Close()
}
