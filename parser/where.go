// Package parser reads qualifiers written as a SQL WHERE clause conjunction,
// e.g. `id > 0 AND name NOT LIKE 'j%' AND tags IS NOT NULL`.
package parser

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/physical"
)

type Where struct {
	Conditions []*Condition `parser:"@@ ( 'AND' @@ )*"`
}

type Condition struct {
	Column  string      `parser:"@( Ident | QuotedIdent )"`
	IsNull  *NullCheck  `parser:"( @@"`
	In      *InList     `parser:"| @@"`
	Like    *LikeMatch  `parser:"| @@"`
	Compare *Comparison `parser:"| @@ )"`
}

type NullCheck struct {
	Not bool `parser:"'IS' @'NOT'? 'NULL'"`
}

type InList struct {
	Not    bool       `parser:"@'NOT'? 'IN' '('"`
	Values []*Literal `parser:"( @@ ( ',' @@ )* )? ')'"`
}

type LikeMatch struct {
	Not      bool     `parser:"@'NOT'?"`
	Operator string   `parser:"@( 'LIKE' | 'ILIKE' )"`
	Pattern  *Literal `parser:"@@"`
}

type Comparison struct {
	Operator string   `parser:"@Operator"`
	Value    *Literal `parser:"@@"`
}

type Literal struct {
	Number *string `parser:"  @Number"`
	String *string `parser:"| @String"`
	True   bool    `parser:"| @'TRUE'"`
	False  bool    `parser:"| @'FALSE'"`
	Null   bool    `parser:"| @'NULL'"`
}

var (
	whereLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Keyword", Pattern: `(?i)\b(AND|IS|NOT|NULL|IN|LIKE|ILIKE|TRUE|FALSE)\b`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`},
		{Name: "String", Pattern: `'(?:[^']|'')*'`},
		{Name: "Operator", Pattern: `[=<>!~@&|*^#]+`},
		{Name: "Punct", Pattern: `[(),]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	whereParser = participle.MustBuild[Where](
		participle.Lexer(whereLexer),
		participle.CaseInsensitive("Keyword"),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

// ParseWhere parses the conjunction into qualifiers, in order.
// Operators outside of the known set are kept, so that the adapter can report them as unsupported.
func ParseWhere(input string) ([]physical.Qualifier, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	ast, err := whereParser.ParseString("", input)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't parse qualifiers")
	}

	out := make([]physical.Qualifier, len(ast.Conditions))
	for i, cond := range ast.Conditions {
		qualifier, err := cond.ToQualifier()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid condition %d", i+1)
		}
		out[i] = qualifier
	}
	return out, nil
}

func (c *Condition) ToQualifier() (physical.Qualifier, error) {
	column := c.Column
	if strings.HasPrefix(column, `"`) {
		column = strings.ReplaceAll(column[1:len(column)-1], `""`, `"`)
	}

	switch {
	case c.IsNull != nil:
		op := physical.IsNull
		if c.IsNull.Not {
			op = physical.IsNotNull
		}
		return physical.NewQualifier(column, op, timelyfdw.NewNull()), nil

	case c.In != nil:
		values := make([]timelyfdw.Value, len(c.In.Values))
		for i := range c.In.Values {
			value, err := c.In.Values[i].ToValue()
			if err != nil {
				return physical.Qualifier{}, err
			}
			values[i] = value
		}
		op := physical.In
		if c.In.Not {
			op = physical.NotIn
		}
		return physical.NewQualifier(column, op, timelyfdw.NewList(values)), nil

	case c.Like != nil:
		pattern, err := c.Like.Pattern.ToValue()
		if err != nil {
			return physical.Qualifier{}, err
		}
		operator := strings.ToLower(c.Like.Operator)
		if c.Like.Not {
			operator = "not " + operator
		}
		return physical.NewQualifier(column, physical.ParseOperator(operator), pattern), nil

	case c.Compare != nil:
		value, err := c.Compare.Value.ToValue()
		if err != nil {
			return physical.Qualifier{}, err
		}
		return physical.NewQualifier(column, physical.ParseOperator(c.Compare.Operator), value), nil
	}

	return physical.Qualifier{}, errors.Errorf("empty condition on column %s", column)
}

func (l *Literal) ToValue() (timelyfdw.Value, error) {
	switch {
	case l.Number != nil:
		if i, err := strconv.ParseInt(*l.Number, 10, 64); err == nil {
			return timelyfdw.NewInt(i), nil
		}
		f, err := strconv.ParseFloat(*l.Number, 64)
		if err != nil {
			return timelyfdw.ZeroValue, errors.Wrapf(err, "invalid number %s", *l.Number)
		}
		return timelyfdw.NewFloat(f), nil
	case l.String != nil:
		str := *l.String
		return timelyfdw.NewString(strings.ReplaceAll(str[1:len(str)-1], "''", "'")), nil
	case l.True:
		return timelyfdw.NewBoolean(true), nil
	case l.False:
		return timelyfdw.NewBoolean(false), nil
	default:
		return timelyfdw.NewNull(), nil
	}
}
