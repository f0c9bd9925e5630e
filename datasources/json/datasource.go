// Package json serves the objects of a JSON lines file.
package json

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/config"
	"github.com/timelyfdw/timelyfdw/datasources"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

const maxLineSize = 1024 * 1024

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

// Describe reports every declared column, as objects may omit fields. Missing fields are null.
func (ds *DataSource) Describe(ctx context.Context) ([]string, error) {
	f, err := os.Open(ds.path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	f.Close()

	return ds.schema.Names(), nil
}

func (ds *DataSource) PushDownPredicates(qualifiers []physical.Qualifier) (rejected, pushedDown []physical.Qualifier) {
	return qualifiers, nil
}

func (ds *DataSource) Scan(ctx context.Context, fields []string, pushedDown []physical.Qualifier) (execution.RecordStream, error) {
	f, err := os.Open(ds.path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}

	sc := bufio.NewScanner(bufio.NewReaderSize(f, 4096*1024))
	sc.Buffer(nil, maxLineSize)

	columns := make([]physical.Column, 0, len(fields))
	for _, name := range fields {
		if column, ok := ds.schema.Lookup(name); ok {
			columns = append(columns, column)
		}
	}

	return &RecordStream{
		file:    f,
		sc:      sc,
		columns: columns,
	}, nil
}

type RecordStream struct {
	file    *os.File
	sc      *bufio.Scanner
	p       fastjson.Parser
	columns []physical.Column
	line    int
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

	for rs.sc.Scan() {
		rs.line++
		if len(rs.sc.Bytes()) == 0 {
			continue
		}

		v, err := rs.p.ParseBytes(rs.sc.Bytes())
		if err != nil {
			rs.Close()
			return nil, errors.Wrapf(err, "couldn't parse json on line %d", rs.line)
		}
		o, err := v.Object()
		if err != nil {
			rs.Close()
			return nil, errors.Errorf("expected JSON object on line %d, got '%s'", rs.line, rs.sc.Text())
		}

		record := make(execution.Row, len(rs.columns))
		for _, column := range rs.columns {
			value, ok := getValue(column.Type, o.Get(column.Name))
			if !ok {
				rs.Close()
				return nil, errors.Errorf("field %s on line %d is not of type %s", column.Name, rs.line, column.Type)
			}
			record[column.Name] = value
		}
		return record, nil
	}

	err := rs.sc.Err()
	rs.Close()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read line")
	}
	return nil, execution.ErrEndOfStream
}

func (rs *RecordStream) Close() error {
	if rs.isDone {
		return nil
	}
	rs.isDone = true
	return rs.file.Close()
}

func getValue(t timelyfdw.Type, value *fastjson.Value) (out timelyfdw.Value, ok bool) {
	if value == nil || value.Type() == fastjson.TypeNull {
		return timelyfdw.NewNull(), true
	}

	switch t.TypeID {
	case timelyfdw.TypeIDInt:
		if value.Type() == fastjson.TypeNumber {
			if v, err := value.Int64(); err == nil {
				return timelyfdw.NewInt(v), true
			}
		}
	case timelyfdw.TypeIDFloat:
		if value.Type() == fastjson.TypeNumber {
			v, _ := value.Float64()
			return timelyfdw.NewFloat(v), true
		}
	case timelyfdw.TypeIDBoolean:
		if value.Type() == fastjson.TypeTrue {
			return timelyfdw.NewBoolean(true), true
		} else if value.Type() == fastjson.TypeFalse {
			return timelyfdw.NewBoolean(false), true
		}
	case timelyfdw.TypeIDString:
		switch value.Type() {
		case fastjson.TypeString:
			v, _ := value.StringBytes()
			return timelyfdw.NewString(string(v)), true
		case fastjson.TypeObject, fastjson.TypeArray:
			return timelyfdw.NewString(value.String()), true
		}
	case timelyfdw.TypeIDTime:
		switch value.Type() {
		case fastjson.TypeString:
			v, _ := value.StringBytes()
			if parsed, err := timelyfdw.ParseTime(string(v)); err == nil {
				return timelyfdw.NewTime(parsed), true
			}
		case fastjson.TypeNumber:
			if v, err := value.Int64(); err == nil {
				return timelyfdw.NewTime(time.UnixMilli(v).UTC()), true
			}
		}
	case timelyfdw.TypeIDList:
		if value.Type() == fastjson.TypeArray {
			arr, _ := value.Array()
			values := make([]timelyfdw.Value, len(arr))
			for i := range arr {
				curValue, curOk := getValue(*t.List.Element, arr[i])
				if !curOk {
					return timelyfdw.ZeroValue, false
				}
				values[i] = curValue
			}
			return timelyfdw.Value{Type: t, List: values}, true
		}
	}

	return timelyfdw.ZeroValue, false
}
