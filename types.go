package timelyfdw

import (
	"fmt"
)

type TypeID int

const (
	TypeIDNull TypeID = iota
	TypeIDInt
	TypeIDFloat
	TypeIDBoolean
	TypeIDString
	TypeIDTime
	TypeIDList
)

// Type is the type of a column or of a single value.
// Every column is implicitly nullable, so there is no union type.
type Type struct {
	TypeID TypeID
	List   struct {
		Element *Type
	}
}

var (
	Null    Type = Type{TypeID: TypeIDNull}
	Int     Type = Type{TypeID: TypeIDInt}
	Float   Type = Type{TypeID: TypeIDFloat}
	Boolean Type = Type{TypeID: TypeIDBoolean}
	String  Type = Type{TypeID: TypeIDString}
	Time    Type = Type{TypeID: TypeIDTime}
)

func ListOf(element Type) Type {
	return Type{
		TypeID: TypeIDList,
		List: struct {
			Element *Type
		}{Element: &element},
	}
}

// Numeric reports whether values of this type compare numerically.
func (t Type) Numeric() bool {
	return t.TypeID == TypeIDInt || t.TypeID == TypeIDFloat
}

// Scalar reports whether the type is a single non-list value.
func (t Type) Scalar() bool {
	return t.TypeID != TypeIDList
}

func (t Type) Equal(other Type) bool {
	if t.TypeID != other.TypeID {
		return false
	}
	if t.TypeID == TypeIDList {
		return t.List.Element.Equal(*other.List.Element)
	}
	return true
}

func (t Type) String() string {
	switch t.TypeID {
	case TypeIDNull:
		return "NULL"
	case TypeIDInt:
		return "Int"
	case TypeIDFloat:
		return "Float"
	case TypeIDBoolean:
		return "Boolean"
	case TypeIDString:
		return "String"
	case TypeIDTime:
		return "Time"
	case TypeIDList:
		return fmt.Sprintf("[%s]", *t.List.Element)
	}
	panic("impossible, type switch bug")
}
