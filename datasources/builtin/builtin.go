// Package builtin registers the file and database sources shipped with timelyfdw.
package builtin

import (
	"github.com/timelyfdw/timelyfdw/datasources"
	"github.com/timelyfdw/timelyfdw/datasources/csv"
	"github.com/timelyfdw/timelyfdw/datasources/json"
	"github.com/timelyfdw/timelyfdw/datasources/lines"
	"github.com/timelyfdw/timelyfdw/datasources/parquet"
	"github.com/timelyfdw/timelyfdw/datasources/postgres"
)

var factories = map[string]datasources.Factory{
	"csv":      csv.Creator,
	"json":     json.Creator,
	"lines":    lines.Creator,
	"parquet":  parquet.Creator,
	"postgres": postgres.Creator,
}

// DefaultRegistry returns a registry with all builtin sources.
func DefaultRegistry() *datasources.Registry {
	registry := datasources.NewRegistry()
	for name, factory := range factories {
		if err := registry.Register(name, factory); err != nil {
			panic(err)
		}
	}
	return registry
}
