// Package datasources defines the read interface the adapter uses to reach external data sets.
package datasources

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

type Datasource interface {
	// Describe returns the declared columns the datasource is able to serve.
	Describe(ctx context.Context) ([]string, error)
	// PushDownPredicates splits the qualifiers into those the datasource can use to narrow its scan and the rest.
	PushDownPredicates(qualifiers []physical.Qualifier) (rejected, pushedDown []physical.Qualifier)
	// Scan streams the given fields of all records, narrowed by the pushed down qualifiers.
	Scan(ctx context.Context, fields []string, pushedDown []physical.Qualifier) (execution.RecordStream, error)
}

// Factory creates a datasource for a table.
// It must not reach the external system, so that a missing or invalid option is the only reason for it to fail.
type Factory func(ctx context.Context, options physical.Options, schema physical.Schema) (Datasource, error)

type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

func (repo *Registry) Get(name string) (Factory, error) {
	factory, ok := repo.factories[name]
	if !ok {
		return nil, errors.Errorf("no such datasource: %s, available datasources: %+v", name, repo.Names())
	}

	return factory, nil
}

func (repo *Registry) Register(name string, factory Factory) error {
	_, ok := repo.factories[name]
	if ok {
		return errors.Errorf("datasource with name %s already registered", name)
	}
	repo.factories[name] = factory
	return nil
}

func (repo *Registry) Names() []string {
	out := make([]string, 0, len(repo.factories))
	for k := range repo.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AvailableFields keeps the fields which are present in available, preserving their order.
func AvailableFields(fields, available []string) []string {
	set := make(map[string]struct{}, len(available))
	for _, field := range available {
		set[field] = struct{}{}
	}
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := set[field]; ok {
			out = append(out, field)
		}
	}
	return out
}
