package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

func testSchema(t *testing.T) physical.Schema {
	schema, err := physical.NewSchema([]physical.ColumnDefinition{
		{Name: "id", TypeName: "int"},
		{Name: "name", TypeName: "text"},
	})
	require.NoError(t, err)
	return schema
}

func testRows() []execution.Row {
	return []execution.Row{
		{"id": timelyfdw.NewInt(5), "name": timelyfdw.NewString("e")},
		{"id": timelyfdw.NewInt(1), "name": timelyfdw.NewString("a")},
		{"id": timelyfdw.NewInt(3), "name": timelyfdw.NewString("c")},
		{"id": timelyfdw.NewInt(3), "name": timelyfdw.NewString("c2")},
		{"id": timelyfdw.NewNull(), "name": timelyfdw.NewString("nokey")},
	}
}

func names(rows []execution.Row) []string {
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i]["name"].Str
	}
	return out
}

func TestDataSource_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	ds, err := NewFactory(testRows())(ctx, physical.Options{}, testSchema(t))
	require.NoError(t, err)

	rejected, pushedDown := ds.PushDownPredicates([]physical.Qualifier{
		physical.NewQualifier("id", physical.Equal, timelyfdw.NewInt(3)),
	})
	assert.Len(t, rejected, 1)
	assert.Empty(t, pushedDown)

	stream, err := ds.Scan(ctx, []string{"id", "name"}, nil)
	require.NoError(t, err)
	rows, err := execution.ReadAll(ctx, stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "a", "c", "c2", "nokey"}, names(rows))
}

func TestDataSource_KeyRange(t *testing.T) {
	ctx := context.Background()
	ds, err := NewFactory(testRows())(ctx, physical.Options{"key": "id"}, testSchema(t))
	require.NoError(t, err)

	tests := []struct {
		name       string
		qualifiers []physical.Qualifier
		want       []string
	}{
		{
			name: "full scan in key order",
			want: []string{"nokey", "a", "c", "c2", "e"},
		},
		{
			name: "equality",
			qualifiers: []physical.Qualifier{
				physical.NewQualifier("id", physical.Equal, timelyfdw.NewInt(3)),
			},
			want: []string{"c", "c2"},
		},
		{
			name: "range",
			qualifiers: []physical.Qualifier{
				physical.NewQualifier("id", physical.GreaterEqual, timelyfdw.NewInt(2)),
				physical.NewQualifier("id", physical.LessThan, timelyfdw.NewFloat(4.5)),
			},
			want: []string{"c", "c2"},
		},
		{
			name: "exclusive bounds",
			qualifiers: []physical.Qualifier{
				physical.NewQualifier("id", physical.MoreThan, timelyfdw.NewInt(1)),
				physical.NewQualifier("id", physical.LessThan, timelyfdw.NewInt(5)),
			},
			want: []string{"c", "c2"},
		},
		{
			name: "empty range",
			qualifiers: []physical.Qualifier{
				physical.NewQualifier("id", physical.MoreThan, timelyfdw.NewInt(10)),
			},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejected, pushedDown := ds.PushDownPredicates(tt.qualifiers)
			assert.Empty(t, rejected)

			stream, err := ds.Scan(ctx, []string{"id", "name"}, pushedDown)
			require.NoError(t, err)
			rows, err := execution.ReadAll(ctx, stream)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(rows))
		})
	}
}

func TestDataSource_KeyRejections(t *testing.T) {
	ds, err := New(testRows(), testSchema(t), "id")
	require.NoError(t, err)

	rejected, pushedDown := ds.PushDownPredicates([]physical.Qualifier{
		physical.NewQualifier("name", physical.Equal, timelyfdw.NewString("a")),
		physical.NewQualifier("id", physical.In, timelyfdw.NewList([]timelyfdw.Value{timelyfdw.NewInt(1)})),
		physical.NewQualifier("id", physical.Equal, timelyfdw.NewNull()),
	})
	assert.Len(t, rejected, 3)
	assert.Empty(t, pushedDown)

	_, err = New(testRows(), testSchema(t), "score")
	assert.Error(t, err)
}

func TestDataSource_Describe(t *testing.T) {
	ds, err := New([]execution.Row{{"id": timelyfdw.NewInt(1)}}, testSchema(t), "")
	require.NoError(t, err)
	available, err := ds.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, available)
}
