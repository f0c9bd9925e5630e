package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/physical"
)

var availableOperators = map[physical.Operator]string{
	physical.Equal:        "=",
	physical.NotEqual:     "<>",
	physical.LessThan:     "<",
	physical.LessEqual:    "<=",
	physical.MoreThan:     ">",
	physical.GreaterEqual: ">=",
	physical.Like:         "LIKE",
	physical.NotLike:      "NOT LIKE",
	physical.ILike:        "ILIKE",
	physical.NotILike:     "NOT ILIKE",
	physical.IsNull:       "IS NULL",
	physical.IsNotNull:    "IS NOT NULL",
	physical.In:           "IN",
	physical.NotIn:        "NOT IN",
}

// canPushDown reports whether the qualifier can be translated to SQL with the same meaning it has in memory.
// Regular expressions are evaluated in memory, as PostgreSQL's dialect differs.
func (ds *DataSource) canPushDown(qualifier physical.Qualifier) bool {
	if _, ok := availableOperators[qualifier.Operator]; !ok {
		return false
	}
	column, ok := ds.schema.Lookup(qualifier.Column)
	if !ok || !column.Type.Scalar() {
		return false
	}

	switch {
	case qualifier.Operator.NullCheck():
		return true
	case qualifier.Operator.SetOperator():
		if qualifier.Value.Type.TypeID != timelyfdw.TypeIDList {
			return false
		}
		for _, element := range qualifier.Value.List {
			if !element.IsNull() && !element.Type.Equal(column.Type) {
				return false
			}
		}
		return true
	default:
		return qualifier.Value.IsNull() || qualifier.Value.Type.Equal(column.Type)
	}
}

// buildQuery translates the scan into a parameterized query.
// Arguments are passed as $n placeholders, never inlined.
func buildQuery(table string, columns []physical.Column, qualifiers []physical.Qualifier) (string, []interface{}) {
	builder := &strings.Builder{}
	builder.WriteString("SELECT ")
	if len(columns) == 0 {
		builder.WriteString("1")
	}
	for i, column := range columns {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(pgx.Identifier{column.Name}.Sanitize())
	}
	builder.WriteString(" FROM ")
	builder.WriteString(table)

	var args []interface{}
	for i, qualifier := range qualifiers {
		if i == 0 {
			builder.WriteString(" WHERE ")
		} else {
			builder.WriteString(" AND ")
		}
		predicateToSQL(builder, &args, qualifier)
	}

	return builder.String(), args
}

func predicateToSQL(builder *strings.Builder, args *[]interface{}, qualifier physical.Qualifier) {
	placeholder := func(value timelyfdw.Value) string {
		*args = append(*args, value.ToRawGoValue())
		return fmt.Sprintf("$%d", len(*args))
	}

	builder.WriteString("(")
	builder.WriteString(pgx.Identifier{qualifier.Column}.Sanitize())
	if byteOrdered(qualifier) {
		// Text is compared in memory byte by byte, so the server must not use the database collation.
		builder.WriteString(` COLLATE "C"`)
	}
	builder.WriteString(" ")
	builder.WriteString(availableOperators[qualifier.Operator])

	switch {
	case qualifier.Operator.NullCheck():

	case qualifier.Operator.SetOperator():
		if len(qualifier.Value.List) == 0 {
			// An empty IN list isn't valid SQL, so compare against an empty set instead.
			builder.WriteString(" (SELECT NULL WHERE FALSE)")
			break
		}
		builder.WriteString(" (")
		for i, element := range qualifier.Value.List {
			if i > 0 {
				builder.WriteString(", ")
			}
			builder.WriteString(placeholder(element))
		}
		builder.WriteString(")")

	default:
		builder.WriteString(" ")
		builder.WriteString(placeholder(qualifier.Value))
	}
	builder.WriteString(")")
}

func byteOrdered(qualifier physical.Qualifier) bool {
	switch qualifier.Operator {
	case physical.LessThan, physical.LessEqual, physical.MoreThan, physical.GreaterEqual:
		return qualifier.Value.Type.TypeID == timelyfdw.TypeIDString
	}
	return false
}
