// Package postgres serves a PostgreSQL table, translating qualifiers into a parameterized WHERE clause.
package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto"
	"github.com/jackc/pgx"
	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw/config"
	"github.com/timelyfdw/timelyfdw/datasources"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

type Config struct {
	ConnConfig     pgx.ConnConfig
	Schema         string
	Table          string
	MaxConnections int
}

func ReadConfig(options physical.Options) (*Config, error) {
	var connConfig pgx.ConnConfig
	if dsn, err := config.GetString(options, "dsn"); err == nil {
		connConfig, err = pgx.ParseConnectionString(dsn)
		if err != nil {
			return nil, &config.OptionError{Option: "dsn", Err: err}
		}
	} else if errors.Cause(err) != config.ErrNotFound {
		return nil, err
	} else {
		host, err := config.GetString(options, "host", config.WithDefault("localhost"))
		if err != nil {
			return nil, err
		}
		port, err := config.GetInt(options, "port", config.WithDefault(5432))
		if err != nil {
			return nil, err
		}
		if port <= 0 || port > 65535 {
			return nil, &config.OptionError{Option: "port", Err: errors.Errorf("port %d out of range", port)}
		}
		if options["address"] != "" {
			host, port, err = config.GetIPAddress(options, "address")
			if err != nil {
				return nil, err
			}
		}
		user, err := config.GetString(options, "user", config.WithDefault("postgres"))
		if err != nil {
			return nil, err
		}
		password, err := config.GetString(options, "password", config.WithDefault(""))
		if err != nil {
			return nil, err
		}
		database, err := config.GetString(options, "database")
		if err != nil {
			return nil, err
		}
		connConfig = pgx.ConnConfig{
			Host:     host,
			Port:     uint16(port),
			User:     user,
			Password: password,
			Database: database,
		}
	}

	table, err := config.GetString(options, "table")
	if err != nil {
		return nil, err
	}
	schema, err := config.GetString(options, "schema", config.WithDefault("public"))
	if err != nil {
		return nil, err
	}
	maxConnections, err := config.GetInt(options, "max_connections", config.WithDefault(8))
	if err != nil {
		return nil, err
	}
	if maxConnections < 2 {
		return nil, &config.OptionError{Option: "max_connections", Err: errors.New("at least 2 connections are required")}
	}

	return &Config{
		ConnConfig:     connConfig,
		Schema:         schema,
		Table:          table,
		MaxConnections: maxConnections,
	}, nil
}

type DataSource struct {
	config *Config
	schema physical.Schema

	mu     sync.Mutex
	pool   *pgx.ConnPool
	closed bool

	descriptions *ristretto.Cache
}

// Creator doesn't connect to the database. The connection pool is created on first use.
func Creator(ctx context.Context, options physical.Options, schema physical.Schema) (datasources.Datasource, error) {
	cfg, err := ReadConfig(options)
	if err != nil {
		return nil, err
	}

	descriptions, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 64,
		MaxCost:     16,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't initialize table description cache")
	}

	return &DataSource{
		config:       cfg,
		schema:       schema,
		descriptions: descriptions,
	}, nil
}

func (ds *DataSource) connect() (*pgx.ConnPool, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return nil, errors.New("datasource is closed")
	}
	if ds.pool != nil {
		return ds.pool, nil
	}
	pool, err := pgx.NewConnPool(pgx.ConnPoolConfig{
		ConnConfig:     ds.config.ConnConfig,
		MaxConnections: ds.config.MaxConnections,
	})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open database")
	}
	ds.pool = pool
	return pool, nil
}

func (ds *DataSource) tableIdentifier() string {
	return pgx.Identifier{ds.config.Schema, ds.config.Table}.Sanitize()
}

// Describe returns the declared columns present in the table.
func (ds *DataSource) Describe(ctx context.Context) ([]string, error) {
	key := fmt.Sprintf("%s.%s", ds.config.Schema, ds.config.Table)
	if out, ok := ds.descriptions.Get(key); ok {
		return out.([]string), nil
	}

	pool, err := ds.connect()
	if err != nil {
		return nil, err
	}

	rows, err := pool.QueryEx(ctx, "SELECT column_name FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position", nil, ds.config.Schema, ds.config.Table)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't describe table")
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "couldn't scan table description")
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't describe table")
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("table %s doesn't exist", ds.tableIdentifier())
	}

	available := datasources.AvailableFields(ds.schema.Names(), columns)
	ds.descriptions.Set(key, available, 1)

	return available, nil
}

func (ds *DataSource) PushDownPredicates(qualifiers []physical.Qualifier) (rejected, pushedDown []physical.Qualifier) {
	for _, qualifier := range qualifiers {
		if ds.canPushDown(qualifier) {
			pushedDown = append(pushedDown, qualifier)
		} else {
			rejected = append(rejected, qualifier)
		}
	}
	return
}

func (ds *DataSource) Scan(ctx context.Context, fields []string, pushedDown []physical.Qualifier) (execution.RecordStream, error) {
	columns := make([]physical.Column, 0, len(fields))
	for _, name := range fields {
		if column, ok := ds.schema.Lookup(name); ok {
			columns = append(columns, column)
		}
	}

	query, args := buildQuery(ds.tableIdentifier(), columns, pushedDown)

	pool, err := ds.connect()
	if err != nil {
		return nil, err
	}

	rows, err := pool.QueryEx(ctx, query, nil, args...)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't execute database query")
	}

	return &RecordStream{
		rows:    rows,
		columns: columns,
	}, nil
}

func (ds *DataSource) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return nil
	}
	ds.closed = true
	if ds.pool != nil {
		ds.pool.Close()
		ds.pool = nil
	}
	ds.descriptions.Close()
	return nil
}
