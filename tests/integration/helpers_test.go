// Package integration exercises the session manager against the real
// embedded DuckDB engine. Unit tests under internal/ use a fake engine;
// everything here opens actual database files.
package integration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/duckpond/pkg/duckpond"
	"github.com/mesh-intelligence/duckpond/pkg/types"
)

// setupManager opens an in-memory session rooted in an isolated temp data
// directory, with state persistence enabled.
func setupManager(t *testing.T) (*duckpond.Manager, string) {
	t.Helper()
	dataDir := t.TempDir()
	m, err := duckpond.New(types.Config{
		MainURL:   types.InMemoryURL,
		DataDir:   dataDir,
		StatePath: filepath.Join(dataDir, "duckpond_state.json"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m, dataDir
}

// names flattens a database-listing result column into a string slice.
func names(t *testing.T, res *types.Result, col string) []string {
	t.Helper()
	out := make([]string, 0, len(res.Data))
	for _, row := range res.Data {
		s, ok := row[col].(string)
		require.True(t, ok, "column %q missing or not a string", col)
		out = append(out, s)
	}
	return out
}
