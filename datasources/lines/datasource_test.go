package lines

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

func linesSchema(t *testing.T) physical.Schema {
	schema, err := physical.NewSchema([]physical.ColumnDefinition{
		{Name: "number", TypeName: "bigint"},
		{Name: "text", TypeName: "text"},
		{Name: "other", TypeName: "text"},
	})
	require.NoError(t, err)
	return schema
}

func texts(rows []execution.Row) []string {
	var out []string
	for _, row := range rows {
		out = append(out, row["text"].Str)
	}
	return out
}

func TestRecordStream_Next(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		options    physical.Options
		qualifiers []physical.Qualifier
		want       []string
	}{
		{
			name:    "all lines",
			options: physical.Options{"path": "fixtures/lines.txt"},
			want:    []string{"first", "second", "third", "fourth"},
		},
		{
			name:    "custom separator",
			options: physical.Options{"path": "fixtures/separated.txt", "sep": ";"},
			want:    []string{"a", "b", "c"},
		},
		{
			name:    "range",
			options: physical.Options{"path": "fixtures/lines.txt"},
			qualifiers: []physical.Qualifier{
				physical.NewQualifier("number", physical.MoreThan, timelyfdw.NewInt(0)),
				physical.NewQualifier("number", physical.LessEqual, timelyfdw.NewInt(2)),
			},
			want: []string{"second", "third"},
		},
		{
			name:    "equal",
			options: physical.Options{"path": "fixtures/lines.txt"},
			qualifiers: []physical.Qualifier{
				physical.NewQualifier("number", physical.Equal, timelyfdw.NewInt(3)),
			},
			want: []string{"fourth"},
		},
		{
			name:    "above the largest line number",
			options: physical.Options{"path": "fixtures/lines.txt"},
			qualifiers: []physical.Qualifier{
				physical.NewQualifier("number", physical.MoreThan, timelyfdw.NewInt(math.MaxInt64)),
			},
			want: nil,
		},
		{
			name:    "below the smallest line number",
			options: physical.Options{"path": "fixtures/lines.txt"},
			qualifiers: []physical.Qualifier{
				physical.NewQualifier("number", physical.LessThan, timelyfdw.NewInt(math.MinInt64)),
				physical.NewQualifier("number", physical.GreaterEqual, timelyfdw.NewInt(0)),
			},
			want: nil,
		},
		{
			name:    "upper bound at the largest line number",
			options: physical.Options{"path": "fixtures/lines.txt"},
			qualifiers: []physical.Qualifier{
				physical.NewQualifier("number", physical.LessEqual, timelyfdw.NewInt(math.MaxInt64)),
				physical.NewQualifier("number", physical.MoreThan, timelyfdw.NewInt(2)),
			},
			want: []string{"fourth"},
		},
		{
			name:    "empty range",
			options: physical.Options{"path": "fixtures/lines.txt"},
			qualifiers: []physical.Qualifier{
				physical.NewQualifier("number", physical.LessThan, timelyfdw.NewInt(0)),
			},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Creator(ctx, tt.options, linesSchema(t))
			require.NoError(t, err)

			rejected, pushedDown := ds.PushDownPredicates(tt.qualifiers)
			assert.Empty(t, rejected)

			stream, err := ds.Scan(ctx, []string{"number", "text"}, pushedDown)
			require.NoError(t, err)
			rows, err := execution.ReadAll(ctx, stream)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts(rows))
		})
	}
}

func TestDataSource_Describe(t *testing.T) {
	ctx := context.Background()
	ds, err := Creator(ctx, physical.Options{"path": "fixtures/lines.txt"}, linesSchema(t))
	require.NoError(t, err)

	available, err := ds.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"number", "text"}, available)

	ds, err = Creator(ctx, physical.Options{"path": "fixtures"}, linesSchema(t))
	require.NoError(t, err)
	_, err = ds.Describe(ctx)
	assert.Error(t, err)
}

func TestDataSource_PushDownPredicates(t *testing.T) {
	ds, err := Creator(context.Background(), physical.Options{"path": "fixtures/lines.txt"}, linesSchema(t))
	require.NoError(t, err)

	rejected, pushedDown := ds.PushDownPredicates([]physical.Qualifier{
		physical.NewQualifier("number", physical.NotEqual, timelyfdw.NewInt(1)),
		physical.NewQualifier("text", physical.Equal, timelyfdw.NewString("first")),
		physical.NewQualifier("number", physical.GreaterEqual, timelyfdw.NewInt(1)),
	})
	assert.Len(t, rejected, 2)
	assert.Equal(t, []physical.Qualifier{physical.NewQualifier("number", physical.GreaterEqual, timelyfdw.NewInt(1))}, pushedDown)
}
