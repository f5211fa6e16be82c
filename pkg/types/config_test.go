package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	cfg := Config{MainURL: InMemoryURL, DataDir: "/tmp/duckpond"}
	require.NoError(t, cfg.Validate())

	assert.ErrorIs(t, Config{DataDir: "/tmp/duckpond"}.Validate(), ErrMainURLEmpty)
	assert.ErrorIs(t, Config{MainURL: InMemoryURL}.Validate(), ErrDataDirEmpty)
}
