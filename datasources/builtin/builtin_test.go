package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()
	assert.Equal(t, []string{"csv", "json", "lines", "parquet", "postgres"}, registry.Names())

	_, err := registry.Get("timely")
	assert.Error(t, err)
}
