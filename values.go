package timelyfdw

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ZeroValue = Value{}

type Value struct {
	Type    Type
	Int     int64
	Float   float64
	Boolean bool
	Str     string
	Time    time.Time
	List    []Value
}

func NewNull() Value {
	return Value{
		Type: Type{TypeID: TypeIDNull},
	}
}

func NewInt(value int64) Value {
	return Value{
		Type: Type{TypeID: TypeIDInt},
		Int:  value,
	}
}

func NewFloat(value float64) Value {
	return Value{
		Type:  Type{TypeID: TypeIDFloat},
		Float: value,
	}
}

func NewBoolean(value bool) Value {
	return Value{
		Type:    Type{TypeID: TypeIDBoolean},
		Boolean: value,
	}
}

func NewString(value string) Value {
	return Value{
		Type: Type{TypeID: TypeIDString},
		Str:  value,
	}
}

func NewTime(value time.Time) Value {
	return Value{
		Type: Type{TypeID: TypeIDTime},
		Time: value,
	}
}

// NewList creates a list value. The element type is taken from the first non-null element.
func NewList(values []Value) Value {
	element := Null
	for i := range values {
		if values[i].Type.TypeID != TypeIDNull {
			element = values[i].Type
			break
		}
	}
	return Value{
		Type: ListOf(element),
		List: values,
	}
}

func (value Value) IsNull() bool {
	return value.Type.TypeID == TypeIDNull
}

// Compare returns -1, 0 or 1. Ints and floats compare numerically with each other,
// other differing types are ordered by their type id.
func (value Value) Compare(other Value) int {
	if value.Type.Numeric() && other.Type.Numeric() && value.Type.TypeID != other.Type.TypeID {
		return compareFloats(value.asFloat(), other.asFloat())
	}
	if value.Type.TypeID != other.Type.TypeID {
		if value.Type.TypeID < other.Type.TypeID {
			return -1
		} else {
			return 1
		}
	}

	switch value.Type.TypeID {
	case TypeIDNull:
		return 0

	case TypeIDInt:
		if value.Int < other.Int {
			return -1
		} else if value.Int > other.Int {
			return 1
		} else {
			return 0
		}

	case TypeIDFloat:
		return compareFloats(value.Float, other.Float)

	case TypeIDBoolean:
		if value.Boolean == other.Boolean {
			return 0
		} else if !value.Boolean {
			return -1
		} else {
			return 1
		}

	case TypeIDString:
		return strings.Compare(value.Str, other.Str)

	case TypeIDTime:
		if value.Time.Before(other.Time) {
			return -1
		} else if value.Time.After(other.Time) {
			return 1
		} else {
			return 0
		}

	case TypeIDList:
		maxLen := len(value.List)
		if len(other.List) > maxLen {
			maxLen = len(other.List)
		}

		for i := 0; i < maxLen; i++ {
			if i == len(value.List) {
				return -1
			} else if i == len(other.List) {
				return 1
			}

			if comp := value.List[i].Compare(other.List[i]); comp != 0 {
				return comp
			}
		}

		return 0

	default:
		panic("impossible, type switch bug")
	}
}

// compareFloats orders NaN above every other number and equal to itself, like PostgreSQL does.
func compareFloats(left, right float64) int {
	if leftNaN, rightNaN := math.IsNaN(left), math.IsNaN(right); leftNaN || rightNaN {
		switch {
		case leftNaN && rightNaN:
			return 0
		case leftNaN:
			return 1
		default:
			return -1
		}
	}
	if left < right {
		return -1
	} else if left > right {
		return 1
	}
	return 0
}

func (value Value) asFloat() float64 {
	if value.Type.TypeID == TypeIDInt {
		return float64(value.Int)
	}
	return value.Float
}

func (value Value) String() string {
	builder := &strings.Builder{}
	value.append(builder)
	return builder.String()
}

func (value Value) append(builder *strings.Builder) {
	switch value.Type.TypeID {
	case TypeIDNull:
		builder.WriteString("null")

	case TypeIDInt:
		builder.WriteString(strconv.FormatInt(value.Int, 10))

	case TypeIDFloat:
		builder.WriteString(fmt.Sprint(value.Float))

	case TypeIDBoolean:
		builder.WriteString(fmt.Sprint(value.Boolean))

	case TypeIDString:
		builder.WriteString(fmt.Sprintf("'%s'", value.Str))

	case TypeIDTime:
		builder.WriteString(value.Time.Format(time.RFC3339Nano))

	case TypeIDList:
		builder.WriteString("[")
		for i, v := range value.List {
			v.append(builder)
			if i != len(value.List)-1 {
				builder.WriteString(", ")
			}
		}
		builder.WriteString("]")

	default:
		panic("impossible, type switch bug")
	}
}

// Text is the unquoted textual form used by row printers.
func (value Value) Text() string {
	if value.Type.TypeID == TypeIDString {
		return value.Str
	}
	return value.String()
}

func (value Value) ToRawGoValue() interface{} {
	switch value.Type.TypeID {
	case TypeIDNull:
		return nil
	case TypeIDInt:
		return value.Int
	case TypeIDFloat:
		return value.Float
	case TypeIDBoolean:
		return value.Boolean
	case TypeIDString:
		return value.Str
	case TypeIDTime:
		return value.Time
	case TypeIDList:
		out := make([]interface{}, len(value.List))
		for i := range value.List {
			out[i] = value.List[i].ToRawGoValue()
		}
		return out
	default:
		panic("invalid timelyfdw.Value to get Raw Go value for")
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime parses the time formats accepted in qualifier values and text sources.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("couldn't parse '%s' as time", str)
}

// ParseValue parses the textual representation of a value of the given type.
// An empty string is null.
func ParseValue(t Type, str string) (Value, error) {
	if str == "" {
		return NewNull(), nil
	}

	switch t.TypeID {
	case TypeIDNull:
		return NewNull(), nil
	case TypeIDInt:
		v, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return ZeroValue, errors.Wrapf(err, "couldn't parse '%s' as int", str)
		}
		return NewInt(v), nil
	case TypeIDFloat:
		v, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return ZeroValue, errors.Wrapf(err, "couldn't parse '%s' as float", str)
		}
		return NewFloat(v), nil
	case TypeIDBoolean:
		v, err := strconv.ParseBool(str)
		if err != nil {
			return ZeroValue, errors.Wrapf(err, "couldn't parse '%s' as boolean", str)
		}
		return NewBoolean(v), nil
	case TypeIDString:
		return NewString(str), nil
	case TypeIDTime:
		v, err := ParseTime(str)
		if err != nil {
			return ZeroValue, err
		}
		return NewTime(v), nil
	default:
		return ZeroValue, errors.Errorf("can't parse text as %s", t)
	}
}

// CoerceTo converts the value so it can be compared with values of type t.
// Ints and floats are left as they are, as they already compare with each other.
func (value Value) CoerceTo(t Type) (Value, bool) {
	if value.IsNull() || value.Type.Equal(t) {
		return value, true
	}
	if value.Type.Numeric() && t.Numeric() {
		return value, true
	}

	switch value.Type.TypeID {
	case TypeIDString:
		if t.TypeID == TypeIDList {
			return ZeroValue, false
		}
		v, err := ParseValue(t, value.Str)
		if err != nil || v.IsNull() {
			return ZeroValue, false
		}
		return v, true

	case TypeIDInt:
		if t.TypeID == TypeIDTime {
			// Timely timestamps are milliseconds since the epoch.
			return NewTime(time.UnixMilli(value.Int).UTC()), true
		}

	case TypeIDList:
		if t.TypeID != TypeIDList {
			return ZeroValue, false
		}
		out := make([]Value, len(value.List))
		for i := range value.List {
			v, ok := value.List[i].CoerceTo(*t.List.Element)
			if !ok {
				return ZeroValue, false
			}
			out[i] = v
		}
		return Value{Type: t, List: out}, true
	}

	return ZeroValue, false
}

// FromRawGoValue converts values returned by database drivers and decoders.
func FromRawGoValue(value interface{}) (Value, bool) {
	switch value := value.(type) {
	case nil:
		return NewNull(), true
	case int:
		return NewInt(int64(value)), true
	case int8:
		return NewInt(int64(value)), true
	case int16:
		return NewInt(int64(value)), true
	case int32:
		return NewInt(int64(value)), true
	case int64:
		return NewInt(value), true
	case uint8:
		return NewInt(int64(value)), true
	case uint16:
		return NewInt(int64(value)), true
	case uint32:
		return NewInt(int64(value)), true
	case uint64:
		return NewInt(int64(value)), true
	case bool:
		return NewBoolean(value), true
	case float32:
		return NewFloat(float64(value)), true
	case float64:
		return NewFloat(value), true
	case string:
		return NewString(value), true
	case []byte:
		return NewString(string(value)), true
	case time.Time:
		return NewTime(value), true
	case []interface{}:
		out := make([]Value, len(value))
		for i := range value {
			v, ok := FromRawGoValue(value[i])
			if !ok {
				return ZeroValue, false
			}
			out[i] = v
		}
		return NewList(out), true
	default:
		return ZeroValue, false
	}
}
