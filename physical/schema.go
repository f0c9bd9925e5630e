package physical

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw"
)

// ColumnDefinition is a column as declared by the host: a name and a PostgreSQL type name.
type ColumnDefinition struct {
	Name     string `yaml:"name"`
	TypeName string `yaml:"type"`
}

type Column struct {
	Name     string
	TypeName string
	Type     timelyfdw.Type
}

type Schema struct {
	Columns []Column
	index   map[string]int
}

// NewSchema resolves the declared column types.
func NewSchema(definitions []ColumnDefinition) (Schema, error) {
	if len(definitions) == 0 {
		return Schema{}, errors.New("no columns declared")
	}

	schema := Schema{
		Columns: make([]Column, len(definitions)),
		index:   make(map[string]int, len(definitions)),
	}
	for i, def := range definitions {
		if def.Name == "" {
			return Schema{}, errors.Errorf("column %d has no name", i)
		}
		if _, ok := schema.index[def.Name]; ok {
			return Schema{}, errors.Errorf("column %s declared more than once", def.Name)
		}
		t, ok := ParseType(def.TypeName)
		if !ok {
			return Schema{}, errors.Errorf("unsupported type '%s' of column %s", def.TypeName, def.Name)
		}
		schema.Columns[i] = Column{
			Name:     def.Name,
			TypeName: def.TypeName,
			Type:     t,
		}
		schema.index[def.Name] = i
	}
	return schema, nil
}

func (s Schema) Lookup(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.Columns[i], true
}

func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i := range s.Columns {
		out[i] = s.Columns[i].Name
	}
	return out
}

// ParseType maps a PostgreSQL type name to a value type.
func ParseType(typename string) (timelyfdw.Type, bool) {
	typename = strings.ToLower(strings.TrimSpace(typename))
	if i := strings.Index(typename, "("); i != -1 {
		typename = strings.TrimSpace(typename[:i])
	}
	if strings.HasSuffix(typename, "[]") {
		element, ok := ParseType(strings.TrimSuffix(typename, "[]"))
		if !ok {
			return timelyfdw.Type{}, false
		}
		return timelyfdw.ListOf(element), true
	}

	switch typename {
	case "int", "integer", "smallint", "bigint", "int2", "int4", "int8", "serial", "bigserial":
		return timelyfdw.Int, true
	case "text", "character", "character varying", "varchar", "bpchar", "char", "name", "uuid", "jsonb", "json":
		return timelyfdw.String, true
	case "real", "numeric", "decimal", "double precision", "float4", "float8":
		return timelyfdw.Float, true
	case "bool", "boolean":
		return timelyfdw.Boolean, true
	case "timestamptz", "timestamp", "timestamp with time zone", "timestamp without time zone", "date":
		return timelyfdw.Time, true
	default:
		return timelyfdw.Type{}, false
	}
}

// Options are the foreign table options. Every value is a string, as in CREATE FOREIGN TABLE ... OPTIONS.
type Options map[string]string

var secretOptions = map[string]struct{}{
	"password": {},
	"dsn":      {},
}

// Redacted returns a copy safe to log.
func (o Options) Redacted() Options {
	out := make(Options, len(o))
	for k, v := range o {
		if _, ok := secretOptions[k]; ok {
			v = "<redacted>"
		}
		out[k] = v
	}
	return out
}
