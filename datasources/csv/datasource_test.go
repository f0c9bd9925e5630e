package csv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

const exampleDir = "fixtures/"

func metricsSchema(t *testing.T) physical.Schema {
	schema, err := physical.NewSchema([]physical.ColumnDefinition{
		{Name: "metric", TypeName: "text"},
		{Name: "timestamp", TypeName: "timestamptz"},
		{Name: "value", TypeName: "float8"},
		{Name: "host", TypeName: "text"},
		{Name: "tags", TypeName: "text"},
	})
	require.NoError(t, err)
	return schema
}

func idNameSchema(t *testing.T) physical.Schema {
	schema, err := physical.NewSchema([]physical.ColumnDefinition{
		{Name: "id", TypeName: "integer"},
		{Name: "name", TypeName: "text"},
	})
	require.NoError(t, err)
	return schema
}

func TestCreator(t *testing.T) {
	ctx := context.Background()

	_, err := Creator(ctx, physical.Options{}, metricsSchema(t))
	assert.Error(t, err)

	_, err = Creator(ctx, physical.Options{"path": "a.csv", "delimiter": "ab"}, metricsSchema(t))
	assert.Error(t, err)

	_, err = Creator(ctx, physical.Options{"path": "a.csv", "header": "maybe"}, metricsSchema(t))
	assert.Error(t, err)

	_, err = Creator(ctx, physical.Options{"path": "a.csv", "delimiter": ";", "header": "false"}, metricsSchema(t))
	assert.NoError(t, err)
}

func TestDataSource_Describe(t *testing.T) {
	ctx := context.Background()
	ds, err := Creator(ctx, physical.Options{"path": exampleDir + "metrics.csv"}, metricsSchema(t))
	require.NoError(t, err)

	available, err := ds.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"metric", "timestamp", "value", "host"}, available)

	ds, err = Creator(ctx, physical.Options{"path": exampleDir + "missing.csv"}, metricsSchema(t))
	require.NoError(t, err)
	_, err = ds.Describe(ctx)
	assert.Error(t, err)
}

func TestRecordStream_Next(t *testing.T) {
	ctx := context.Background()

	type wanted struct {
		record execution.Row
		error  bool
	}

	tests := []struct {
		name    string
		options physical.Options
		schema  physical.Schema
		fields  []string
		want    []wanted
	}{
		{
			name:    "reading metrics.csv - happy path",
			options: physical.Options{"path": exampleDir + "metrics.csv"},
			schema:  metricsSchema(t),
			fields:  []string{"metric", "value", "host", "timestamp"},
			want: []wanted{
				{record: execution.Row{
					"metric":    timelyfdw.NewString("sys.cpu.user"),
					"timestamp": timelyfdw.NewTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
					"value":     timelyfdw.NewFloat(12.5),
					"host":      timelyfdw.NewString("r01n01"),
				}},
				{record: execution.Row{
					"metric":    timelyfdw.NewString("sys.cpu.user"),
					"timestamp": timelyfdw.NewTime(time.Date(2020, 1, 1, 0, 1, 0, 0, time.UTC)),
					"value":     timelyfdw.NewFloat(17),
					"host":      timelyfdw.NewString("r01n02"),
				}},
				{record: execution.Row{
					"metric":    timelyfdw.NewString("sys.cpu.idle"),
					"timestamp": timelyfdw.NewTime(time.Date(2020, 1, 1, 0, 2, 0, 0, time.UTC)),
					"value":     timelyfdw.NewFloat(80.25),
					"host":      timelyfdw.NewNull(),
				}},
				{record: execution.Row{
					"metric":    timelyfdw.NewString("sys.mem.free"),
					"timestamp": timelyfdw.NewTime(time.Date(2020, 1, 1, 0, 3, 0, 0, time.UTC)),
					"value":     timelyfdw.NewFloat(1024),
					"host":      timelyfdw.NewString("r01n01"),
				}},
			},
		},
		{
			name:    "projection of unavailable field is skipped",
			options: physical.Options{"path": exampleDir + "metrics.csv"},
			schema:  metricsSchema(t),
			fields:  []string{"metric", "tags"},
			want: []wanted{
				{record: execution.Row{"metric": timelyfdw.NewString("sys.cpu.user")}},
				{record: execution.Row{"metric": timelyfdw.NewString("sys.cpu.user")}},
				{record: execution.Row{"metric": timelyfdw.NewString("sys.cpu.idle")}},
				{record: execution.Row{"metric": timelyfdw.NewString("sys.mem.free")}},
			},
		},
		{
			name:    "file without header row",
			options: physical.Options{"path": exampleDir + "noHeaders.csv", "header": "false"},
			schema:  idNameSchema(t),
			fields:  []string{"id", "name"},
			want: []wanted{
				{record: execution.Row{"id": timelyfdw.NewInt(0), "name": timelyfdw.NewString("a")}},
				{record: execution.Row{"id": timelyfdw.NewInt(1), "name": timelyfdw.NewString("b")}},
				{record: execution.Row{"id": timelyfdw.NewInt(2), "name": timelyfdw.NewString("jim")}},
			},
		},
		{
			name:    "wrong numbers of columns in a row",
			options: physical.Options{"path": exampleDir + "wrongCount.csv"},
			schema:  idNameSchema(t),
			fields:  []string{"id", "name"},
			want: []wanted{
				{record: execution.Row{"id": timelyfdw.NewInt(1), "name": timelyfdw.NewString("test")}},
				{error: true},
			},
		},
		{
			name:    "value not matching declared type",
			options: physical.Options{"path": exampleDir + "badValue.csv"},
			schema:  idNameSchema(t),
			fields:  []string{"id", "name"},
			want: []wanted{
				{record: execution.Row{"id": timelyfdw.NewInt(1), "name": timelyfdw.NewString("a")}},
				{error: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Creator(ctx, tt.options, tt.schema)
			require.NoError(t, err)

			stream, err := ds.Scan(ctx, tt.fields, nil)
			require.NoError(t, err)
			defer stream.Close()

			for i, want := range tt.want {
				record, err := stream.Next(ctx)
				if want.error {
					assert.Error(t, err, "record %d", i)
					continue
				}
				require.NoError(t, err, "record %d", i)
				assert.Equal(t, want.record, record, "record %d", i)
			}

			if !tt.want[len(tt.want)-1].error {
				_, err = stream.Next(ctx)
				assert.Equal(t, execution.ErrEndOfStream, err)
			}
			_, err = stream.Next(ctx)
			assert.Equal(t, execution.ErrEndOfStream, err)
		})
	}
}

func TestDataSource_NotUniqueColumns(t *testing.T) {
	ctx := context.Background()
	ds, err := Creator(ctx, physical.Options{"path": exampleDir + "notUnique.csv"}, idNameSchema(t))
	require.NoError(t, err)

	_, err = ds.Scan(ctx, []string{"id"}, nil)
	assert.Error(t, err)
}
