package logs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info")
	require.NoError(t, err)

	level.Debug(logger).Log("msg", "hidden")
	level.Info(logger).Log("msg", "shown", "table", "users")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=info")
	assert.Contains(t, buf.String(), "msg=shown table=users")

	_, err = New(&buf, "verbose")
	assert.Error(t, err)
}

func TestInitializeFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	logger, closer, err := InitializeFileLogger(path, "debug")
	require.NoError(t, err)

	level.Debug(logger).Log("msg", "scanning")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=scanning")
}
