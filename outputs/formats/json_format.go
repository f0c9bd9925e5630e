package formats

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/execution"
)

// JSONFormatter prints one JSON object per line.
type JSONFormatter struct {
	buf    []byte
	arena  *fastjson.Arena
	w      io.Writer
	fields []string
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{
		buf:   make([]byte, 0, 1024),
		arena: new(fastjson.Arena),
		w:     w,
	}
}

func (t *JSONFormatter) SetFields(fields []string) {
	t.fields = fields
}

func (t *JSONFormatter) Write(row execution.Row) error {
	obj := t.arena.NewObject()
	for _, field := range t.fields {
		obj.Set(field, ValueToJson(t.arena, row[field]))
	}

	t.buf = obj.MarshalTo(t.buf)
	t.buf = append(t.buf, '\n')
	_, err := t.w.Write(t.buf)
	t.buf = t.buf[:0]
	t.arena.Reset()
	return errors.Wrap(err, "couldn't write json output")
}

func ValueToJson(arena *fastjson.Arena, value timelyfdw.Value) *fastjson.Value {
	switch value.Type.TypeID {
	case timelyfdw.TypeIDNull:
		return arena.NewNull()
	case timelyfdw.TypeIDInt:
		return arena.NewNumberString(strconv.FormatInt(value.Int, 10))
	case timelyfdw.TypeIDFloat:
		return arena.NewNumberFloat64(value.Float)
	case timelyfdw.TypeIDBoolean:
		if value.Boolean {
			return arena.NewTrue()
		} else {
			return arena.NewFalse()
		}
	case timelyfdw.TypeIDString:
		return arena.NewString(value.Str)
	case timelyfdw.TypeIDTime:
		return arena.NewString(value.Time.Format(time.RFC3339Nano))
	case timelyfdw.TypeIDList:
		arr := arena.NewArray()
		for i := range value.List {
			arr.SetArrayItem(i, ValueToJson(arena, value.List[i]))
		}
		return arr
	default:
		panic(fmt.Sprintf("invalid value type to print: %s", value.Type))
	}
}

func (t *JSONFormatter) Close() error {
	return nil
}
