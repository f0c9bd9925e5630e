package config

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timelyfdw/timelyfdw/physical"
)

func TestReadConfig(t *testing.T) {
	type args struct {
		path string
	}
	tests := []struct {
		name    string
		args    args
		want    *Config
		wantErr bool
	}{
		{
			name: "simple parse",
			args: args{
				path: "fixtures/example.yaml",
			},
			want: &Config{
				Tables: []TableConfig{
					{
						Name: "metrics",
						Options: physical.Options{
							"source": "csv",
							"path":   "datasources/csv/fixtures/metrics.csv",
						},
						Columns: []physical.ColumnDefinition{
							{Name: "metric", TypeName: "text"},
							{Name: "timestamp", TypeName: "timestamptz"},
							{Name: "value", TypeName: "float8"},
							{Name: "host", TypeName: "text"},
						},
					},
					{
						Name: "users",
						Options: physical.Options{
							"source":   "postgres",
							"address":  "localhost:5432",
							"user":     "root",
							"password": "toor",
							"database": "mydb",
							"table":    "users",
						},
						Columns: []physical.ColumnDefinition{
							{Name: "id", TypeName: "integer"},
							{Name: "name", TypeName: "text"},
						},
					},
				},
			},
			wantErr: false,
		},
		{
			name: "duplicate table",
			args: args{
				path: "fixtures/duplicate.yaml",
			},
			wantErr: true,
		},
		{
			name: "missing file",
			args: args{
				path: "fixtures/missing.yaml",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadConfig(tt.args.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadConfig() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_GetTableConfig(t *testing.T) {
	cfg, err := ReadConfig("fixtures/example.yaml")
	require.NoError(t, err)

	table, err := cfg.GetTableConfig("users")
	require.NoError(t, err)
	assert.Equal(t, "postgres", table.Options["source"])
	assert.Equal(t, []string{"metrics", "users"}, cfg.TableNames())

	_, err = cfg.GetTableConfig("events")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestGetters(t *testing.T) {
	opts := physical.Options{
		"path":      "a.csv",
		"port":      "5432",
		"header":    "false",
		"delimiter": ";",
		"address":   "localhost:5432",
		"bad_port":  "many",
	}

	path, err := GetString(opts, "path")
	require.NoError(t, err)
	assert.Equal(t, "a.csv", path)

	_, err = GetString(opts, "table")
	var optErr *OptionError
	require.True(t, errors.As(err, &optErr))
	assert.Equal(t, "table", optErr.Option)
	assert.Equal(t, ErrNotFound, errors.Cause(err))

	table, err := GetString(opts, "table", WithDefault("metrics"))
	require.NoError(t, err)
	assert.Equal(t, "metrics", table)

	port, err := GetInt(opts, "port")
	require.NoError(t, err)
	assert.Equal(t, 5432, port)

	_, err = GetInt(opts, "bad_port")
	assert.Error(t, err)

	maxConns, err := GetInt(opts, "max_connections", WithDefault(16))
	require.NoError(t, err)
	assert.Equal(t, 16, maxConns)

	header, err := GetBool(opts, "header", WithDefault(true))
	require.NoError(t, err)
	assert.False(t, header)

	delimiter, err := GetRune(opts, "delimiter", WithDefault(','))
	require.NoError(t, err)
	assert.Equal(t, ';', delimiter)

	host, p, err := GetIPAddress(opts, "address")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)
	assert.Equal(t, 5432, p)
}
