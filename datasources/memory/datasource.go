// Package memory serves rows held in memory, optionally indexed by a key column.
package memory

import (
	"context"
	"math"

	"github.com/google/btree"
	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/config"
	"github.com/timelyfdw/timelyfdw/datasources"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

const btreeDegree = 16

var keyOperators = map[physical.Operator]struct{}{
	physical.Equal:        {},
	physical.LessThan:     {},
	physical.LessEqual:    {},
	physical.MoreThan:     {},
	physical.GreaterEqual: {},
}

type item struct {
	key timelyfdw.Value
	seq int
	row execution.Row
}

func (i *item) Less(than btree.Item) bool {
	other := than.(*item)
	if comp := i.key.Compare(other.key); comp != 0 {
		return comp < 0
	}
	return i.seq < other.seq
}

type DataSource struct {
	rows      []execution.Row
	available []string
	key       string
	index     *btree.BTree
}

// NewFactory returns a factory serving the given rows.
// The optional "key" option names a column to index; range qualifiers on it are pushed down.
func NewFactory(rows []execution.Row) datasources.Factory {
	return func(ctx context.Context, options physical.Options, schema physical.Schema) (datasources.Datasource, error) {
		key, err := config.GetString(options, "key", config.WithDefault(""))
		if err != nil {
			return nil, err
		}
		return New(rows, schema, key)
	}
}

func New(rows []execution.Row, schema physical.Schema, key string) (*DataSource, error) {
	ds := &DataSource{
		rows:      rows,
		available: availableColumns(rows, schema),
		key:       key,
	}
	if key == "" {
		return ds, nil
	}

	if _, ok := schema.Lookup(key); !ok {
		return nil, &config.OptionError{Option: "key", Err: errors.Errorf("column %s is not declared", key)}
	}
	ds.index = btree.New(btreeDegree)
	for i, row := range rows {
		value, ok := row[key]
		if !ok {
			value = timelyfdw.NewNull()
		}
		ds.index.ReplaceOrInsert(&item{key: value, seq: i, row: row})
	}
	return ds, nil
}

func availableColumns(rows []execution.Row, schema physical.Schema) []string {
	if len(rows) == 0 {
		return schema.Names()
	}
	var out []string
	for _, column := range schema.Columns {
		for _, row := range rows {
			if _, ok := row[column.Name]; ok {
				out = append(out, column.Name)
				break
			}
		}
	}
	return out
}

func (ds *DataSource) Describe(ctx context.Context) ([]string, error) {
	return ds.available, nil
}

func (ds *DataSource) PushDownPredicates(qualifiers []physical.Qualifier) (rejected, pushedDown []physical.Qualifier) {
	for _, q := range qualifiers {
		if _, ok := keyOperators[q.Operator]; ok && ds.index != nil && q.Column == ds.key && !q.Value.IsNull() && q.Value.Type.Scalar() {
			pushedDown = append(pushedDown, q)
		} else {
			rejected = append(rejected, q)
		}
	}
	return
}

func (ds *DataSource) Scan(ctx context.Context, fields []string, pushedDown []physical.Qualifier) (execution.RecordStream, error) {
	if ds.index == nil {
		return execution.NewInMemoryStream(ds.rows), nil
	}

	stream := &indexStream{tree: ds.index}
	for _, q := range pushedDown {
		switch q.Operator {
		case physical.Equal:
			stream.lowerBound(q.Value, false)
			stream.upperBound(q.Value, false)
		case physical.MoreThan:
			stream.lowerBound(q.Value, true)
		case physical.GreaterEqual:
			stream.lowerBound(q.Value, false)
		case physical.LessThan:
			stream.upperBound(q.Value, true)
		case physical.LessEqual:
			stream.upperBound(q.Value, false)
		}
	}
	return stream, nil
}

type bound struct {
	value     timelyfdw.Value
	exclusive bool
}

// indexStream walks the key index lazily between the bounds.
type indexStream struct {
	tree   *btree.BTree
	lower  *bound
	upper  *bound
	pivot  *item
	closed bool
}

func (s *indexStream) lowerBound(v timelyfdw.Value, exclusive bool) {
	if s.lower == nil {
		s.lower = &bound{value: v, exclusive: exclusive}
		return
	}
	if comp := v.Compare(s.lower.value); comp > 0 {
		s.lower = &bound{value: v, exclusive: exclusive}
	} else if comp == 0 && exclusive {
		s.lower.exclusive = true
	}
}

func (s *indexStream) upperBound(v timelyfdw.Value, exclusive bool) {
	if s.upper == nil {
		s.upper = &bound{value: v, exclusive: exclusive}
		return
	}
	if comp := v.Compare(s.upper.value); comp < 0 {
		s.upper = &bound{value: v, exclusive: exclusive}
	} else if comp == 0 && exclusive {
		s.upper.exclusive = true
	}
}

func (s *indexStream) pastUpper(key timelyfdw.Value) bool {
	if s.upper == nil {
		return false
	}
	comp := key.Compare(s.upper.value)
	return comp > 0 || (comp == 0 && s.upper.exclusive)
}

func (s *indexStream) Next(ctx context.Context) (execution.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed {
		return nil, execution.ErrEndOfStream
	}

	if s.pivot == nil {
		if s.lower != nil && s.lower.exclusive {
			s.pivot = &item{key: s.lower.value, seq: math.MaxInt}
		} else if s.lower != nil {
			s.pivot = &item{key: s.lower.value, seq: -1}
		} else if min := s.tree.Min(); min != nil {
			s.pivot = min.(*item)
		} else {
			s.closed = true
			return nil, execution.ErrEndOfStream
		}
	}

	var next *item
	s.tree.AscendGreaterOrEqual(s.pivot, func(i btree.Item) bool {
		next = i.(*item)
		return false
	})
	if next == nil || s.pastUpper(next.key) {
		s.closed = true
		return nil, execution.ErrEndOfStream
	}

	s.pivot = &item{key: next.key, seq: next.seq + 1}
	return next.row, nil
}

func (s *indexStream) Close() error {
	s.closed = true
	return nil
}
