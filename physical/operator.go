package physical

import (
	"strings"
)

// Operator describes the comparison a qualifier applies to its column.
// Values are the PostgreSQL operator spellings handed down by the planner.
type Operator string

const (
	Equal        Operator = "="
	NotEqual     Operator = "<>"
	LessThan     Operator = "<"
	LessEqual    Operator = "<="
	MoreThan     Operator = ">"
	GreaterEqual Operator = ">="
	Like         Operator = "~~"
	NotLike      Operator = "!~~"
	ILike        Operator = "~~*"
	NotILike     Operator = "!~~*"
	Regexp       Operator = "~"
	IsNull       Operator = "IS NULL"
	IsNotNull    Operator = "IS NOT NULL"
	In           Operator = "= ANY"
	NotIn        Operator = "<> ALL"
)

var operatorAliases = map[string]Operator{
	"=":           Equal,
	"==":          Equal,
	"<>":          NotEqual,
	"!=":          NotEqual,
	"<":           LessThan,
	"<=":          LessEqual,
	">":           MoreThan,
	">=":          GreaterEqual,
	"~~":          Like,
	"like":        Like,
	"!~~":         NotLike,
	"not like":    NotLike,
	"~~*":         ILike,
	"ilike":       ILike,
	"!~~*":        NotILike,
	"not ilike":   NotILike,
	"~":           Regexp,
	"regexp":      Regexp,
	"is null":     IsNull,
	"is not null": IsNotNull,
	"= any":       In,
	"in":          In,
	"<> all":      NotIn,
	"not in":      NotIn,
}

// ParseOperator normalizes an operator spelling. Unknown spellings are kept as they are,
// so that they can be reported back as unsupported.
func ParseOperator(op string) Operator {
	normalized := strings.ToLower(strings.Join(strings.Fields(op), " "))
	if operator, ok := operatorAliases[normalized]; ok {
		return operator
	}
	return Operator(op)
}

// Known reports whether the operator belongs to the supported set.
func (op Operator) Known() bool {
	switch op {
	case Equal, NotEqual, LessThan, LessEqual, MoreThan, GreaterEqual,
		Like, NotLike, ILike, NotILike, Regexp,
		IsNull, IsNotNull, In, NotIn:
		return true
	}
	return false
}

// NullCheck reports whether the operator ignores its value and only checks for null.
func (op Operator) NullCheck() bool {
	return op == IsNull || op == IsNotNull
}

// SetOperator reports whether the operator expects a list value.
func (op Operator) SetOperator() bool {
	return op == In || op == NotIn
}

// PatternOperator reports whether the operator matches strings against a pattern.
func (op Operator) PatternOperator() bool {
	switch op {
	case Like, NotLike, ILike, NotILike, Regexp:
		return true
	}
	return false
}

// Ordering reports whether the operator is one of the comparison operators.
func (op Operator) Ordering() bool {
	switch op {
	case Equal, NotEqual, LessThan, LessEqual, MoreThan, GreaterEqual:
		return true
	}
	return false
}
