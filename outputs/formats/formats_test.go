package formats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/execution"
)

var testRows = []execution.Row{
	{
		"id":   timelyfdw.NewInt(1),
		"name": timelyfdw.NewString("jim, \"jr\""),
		"seen": timelyfdw.NewTime(time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)),
		"tags": timelyfdw.NewList([]timelyfdw.Value{timelyfdw.NewString("a")}),
	},
	{
		"id":   timelyfdw.NewInt(2),
		"name": timelyfdw.NewNull(),
		"seen": timelyfdw.NewNull(),
		"tags": timelyfdw.NewNull(),
	},
}

func write(t *testing.T, format string) string {
	var buf bytes.Buffer
	formatter, err := NewFormatter(format, &buf)
	require.NoError(t, err)

	formatter.SetFields([]string{"id", "name", "seen", "tags"})
	for _, row := range testRows {
		require.NoError(t, formatter.Write(row))
	}
	require.NoError(t, formatter.Close())
	return buf.String()
}

func TestCSVFormatter(t *testing.T) {
	assert.Equal(t, "id,name,seen,tags\n"+
		"1,\"jim, \"\"jr\"\"\",2020-01-01T12:00:00Z,['a']\n"+
		"2,,,\n", write(t, "csv"))
}

func TestJSONFormatter(t *testing.T) {
	assert.Equal(t, `{"id":1,"name":"jim, \"jr\"","seen":"2020-01-01T12:00:00Z","tags":["a"]}`+"\n"+
		`{"id":2,"name":null,"seen":null,"tags":null}`+"\n", write(t, "json"))
}

func TestTableFormatter(t *testing.T) {
	out := write(t, "table")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "id")
	assert.Contains(t, lines[3], "jim")
	assert.Contains(t, lines[4], "null")
}

func TestNewFormatter_Invalid(t *testing.T) {
	_, err := NewFormatter("xml", &bytes.Buffer{})
	assert.Error(t, err)
}
