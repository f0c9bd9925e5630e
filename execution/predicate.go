package execution

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/physical"
)

// Predicate is a qualifier prepared for evaluation against rows.
type Predicate struct {
	qualifier physical.Qualifier
	pattern   *regexp.Regexp
}

// NewPredicate prepares the qualifier. The qualifier value must already have
// the type expected by the operator: a list for set operators and a string for pattern operators.
func NewPredicate(qualifier physical.Qualifier) (*Predicate, error) {
	pred := &Predicate{qualifier: qualifier}

	switch op := qualifier.Operator; {
	case !op.Known():
		return nil, errors.Errorf("unknown operator '%s'", op)

	case op.NullCheck(), op.Ordering():

	case op.SetOperator():
		if qualifier.Value.Type.TypeID != timelyfdw.TypeIDList {
			return nil, errors.Errorf("operator '%s' requires a list value, got %s", op, qualifier.Value.Type)
		}

	case op.PatternOperator():
		if qualifier.Value.IsNull() {
			break
		}
		if qualifier.Value.Type.TypeID != timelyfdw.TypeIDString {
			return nil, errors.Errorf("operator '%s' requires a string pattern, got %s", op, qualifier.Value.Type)
		}
		var err error
		switch op {
		case physical.Like, physical.NotLike:
			pred.pattern, err = compilePattern(qualifier.Value.Str, true, false)
		case physical.ILike, physical.NotILike:
			pred.pattern, err = compilePattern(qualifier.Value.Str, true, true)
		case physical.Regexp:
			pred.pattern, err = compilePattern(qualifier.Value.Str, false, false)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "invalid pattern '%s'", qualifier.Value.Str)
		}
	}

	return pred, nil
}

// Apply reports whether the row satisfies the qualifier.
// Comparisons with a null operand are never satisfied.
func (pred *Predicate) Apply(row Row) bool {
	value, ok := row[pred.qualifier.Column]
	if !ok {
		value = timelyfdw.NewNull()
	}

	switch pred.qualifier.Operator {
	case physical.IsNull:
		return value.IsNull()
	case physical.IsNotNull:
		return !value.IsNull()
	}

	if value.IsNull() {
		return false
	}

	switch op := pred.qualifier.Operator; op {
	case physical.In, physical.NotIn:
		found := false
		sawNull := false
		for _, element := range pred.qualifier.Value.List {
			if element.IsNull() {
				sawNull = true
				continue
			}
			if value.Compare(element) == 0 {
				found = true
				break
			}
		}
		if op == physical.In {
			return found
		}
		return !found && !sawNull

	case physical.Like, physical.ILike, physical.Regexp,
		physical.NotLike, physical.NotILike:
		if pred.pattern == nil || value.Type.TypeID != timelyfdw.TypeIDString {
			return false
		}
		matched := pred.pattern.MatchString(value.Str)
		if op == physical.NotLike || op == physical.NotILike {
			return !matched
		}
		return matched
	}

	if pred.qualifier.Value.IsNull() {
		return false
	}
	comp := value.Compare(pred.qualifier.Value)

	switch pred.qualifier.Operator {
	case physical.Equal:
		return comp == 0
	case physical.NotEqual:
		return comp != 0
	case physical.LessThan:
		return comp < 0
	case physical.LessEqual:
		return comp <= 0
	case physical.MoreThan:
		return comp > 0
	case physical.GreaterEqual:
		return comp >= 0
	default:
		panic("invalid operator, checked in NewPredicate")
	}
}
