package postgres

import (
	"context"

	"github.com/jackc/pgx"
	"github.com/jackc/pgx/pgtype"
	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

type RecordStream struct {
	rows    *pgx.Rows
	columns []physical.Column
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

	if !rs.rows.Next() {
		err := rs.rows.Err()
		rs.Close()
		if err != nil {
			return nil, errors.Wrap(err, "couldn't read row")
		}
		return nil, execution.ErrEndOfStream
	}

	values, err := rs.rows.Values()
	if err != nil {
		rs.Close()
		return nil, errors.Wrap(err, "couldn't get row values")
	}

	record := make(execution.Row, len(rs.columns))
	for i, column := range rs.columns {
		value, err := getValue(values[i])
		if err != nil {
			rs.Close()
			return nil, errors.Wrapf(err, "couldn't decode column %s", column.Name)
		}
		out, ok := value.CoerceTo(column.Type)
		if !ok {
			rs.Close()
			return nil, errors.Errorf("column %s value %s can't be read as %s", column.Name, value, column.Type)
		}
		record[column.Name] = out
	}

	return record, nil
}

func (rs *RecordStream) Close() error {
	if rs.isDone {
		return nil
	}
	rs.isDone = true
	rs.rows.Close()
	return nil
}

func getValue(value interface{}) (timelyfdw.Value, error) {
	switch value := value.(type) {
	case pgtype.Numeric:
		return getValue(&value)
	case *pgtype.Numeric:
		var f float64
		if err := value.AssignTo(&f); err != nil {
			return timelyfdw.ZeroValue, errors.Wrap(err, "couldn't decode numeric")
		}
		return timelyfdw.NewFloat(f), nil
	case *pgtype.VarcharArray:
		var strings []string
		if err := value.AssignTo(&strings); err != nil {
			return timelyfdw.ZeroValue, errors.Wrap(err, "couldn't decode varchar array")
		}
		return stringList(strings), nil
	case *pgtype.TextArray:
		var strings []string
		if err := value.AssignTo(&strings); err != nil {
			return timelyfdw.ZeroValue, errors.Wrap(err, "couldn't decode text array")
		}
		return stringList(strings), nil
	}

	out, ok := timelyfdw.FromRawGoValue(value)
	if !ok {
		return timelyfdw.ZeroValue, errors.Errorf("unsupported postgres value type %T", value)
	}
	return out, nil
}

func stringList(strings []string) timelyfdw.Value {
	values := make([]timelyfdw.Value, len(strings))
	for i := range strings {
		values[i] = timelyfdw.NewString(strings[i])
	}
	return timelyfdw.Value{Type: timelyfdw.ListOf(timelyfdw.String), List: values}
}
