package physical

import (
	"fmt"

	"github.com/timelyfdw/timelyfdw"
)

// Qualifier is a single filter condition of the form "column operator value".
type Qualifier struct {
	Column   string
	Operator Operator
	Value    timelyfdw.Value
}

func NewQualifier(column string, operator Operator, value timelyfdw.Value) Qualifier {
	return Qualifier{
		Column:   column,
		Operator: operator,
		Value:    value,
	}
}

func (q Qualifier) String() string {
	if q.Operator.NullCheck() {
		return fmt.Sprintf("%s %s", q.Column, q.Operator)
	}
	return fmt.Sprintf("%s %s %s", q.Column, q.Operator, q.Value)
}

// Columns returns the distinct columns referenced by the qualifiers, in order of appearance.
func Columns(qualifiers []Qualifier) []string {
	seen := make(map[string]struct{}, len(qualifiers))
	var out []string
	for _, q := range qualifiers {
		if _, ok := seen[q.Column]; ok {
			continue
		}
		seen[q.Column] = struct{}{}
		out = append(out, q.Column)
	}
	return out
}
