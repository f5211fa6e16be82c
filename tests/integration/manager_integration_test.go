package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/duckpond/pkg/duckpond"
	"github.com/mesh-intelligence/duckpond/pkg/types"
)

// TestSessionLifecycle walks the full command surface: create a database,
// switch into it, run DDL and DML there, read the rows back, switch away,
// drop it.
func TestSessionLifecycle(t *testing.T) {
	m, dataDir := setupManager(t)

	res, err := m.ExecuteQuery("CREATE DATABASE sales")
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.AffectedRows)
	require.FileExists(t, filepath.Join(dataDir, "sales.duckdb"))

	_, err = m.ExecuteQuery("USE sales")
	require.NoError(t, err)
	assert.Equal(t, "sales", m.CurrentAlias())

	_, err = m.ExecuteQuery("CREATE TABLE t (x INTEGER)")
	require.NoError(t, err)

	res, err = m.ExecuteQuery("INSERT INTO t VALUES (1), (2), (3)")
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.AffectedRows)

	res, err = m.ExecuteQuery("SELECT count(*) AS n FROM t")
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.EqualValues(t, 3, res.Data[0]["n"])

	_, err = m.ExecuteQuery("USE memory")
	require.NoError(t, err)

	_, err = m.ExecuteQuery("DROP DATABASE sales")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dataDir, "sales.duckdb"))
	assert.NotContains(t, m.DatabaseNames(), "sales")
}

func TestAttachDetach(t *testing.T) {
	m, dataDir := setupManager(t)

	_, err := m.ExecuteQuery("ATTACH DATABASE 'warehouse.duckdb' AS wh")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dataDir, "warehouse.duckdb"))
	assert.Contains(t, m.DatabaseNames(), "wh")

	// Idempotent: attaching the same file under the same alias replaces.
	_, err = m.ExecuteQuery("ATTACH DATABASE 'warehouse.duckdb' AS wh")
	require.NoError(t, err)

	_, err = m.ExecuteQuery("DETACH DATABASE wh")
	require.NoError(t, err)
	assert.NotContains(t, m.DatabaseNames(), "wh")

	// The primary database refuses to detach.
	_, err = m.ExecuteQuery("DETACH DATABASE memory")
	var catalogErr *types.CatalogError
	require.ErrorAs(t, err, &catalogErr)
}

// TestAttachEmptyLeftoverFile attaches a path occupied by a zero-length
// file. The raw engine rejects empty files, so the manager has to clear the
// leftover and let the engine initialize a real database in its place.
func TestAttachEmptyLeftoverFile(t *testing.T) {
	m, dataDir := setupManager(t)

	leftover := filepath.Join(dataDir, "stale.duckdb")
	require.NoError(t, os.WriteFile(leftover, nil, 0o644))

	_, err := m.ExecuteQuery("ATTACH DATABASE 'stale.duckdb' AS stale")
	require.NoError(t, err)

	// The attached database is actually usable.
	_, err = m.ExecuteQuery("USE stale")
	require.NoError(t, err)
	_, err = m.ExecuteQuery("CREATE TABLE t (x INTEGER)")
	require.NoError(t, err)

	info, err := os.Stat(leftover)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestShowDatabases(t *testing.T) {
	m, _ := setupManager(t)

	_, err := m.ExecuteQuery("CREATE DATABASE reporting")
	require.NoError(t, err)

	res, err := m.ExecuteQuery("SHOW DATABASES")
	require.NoError(t, err)
	listed := names(t, res, "database_name")
	assert.Contains(t, listed, "memory")
	assert.Contains(t, listed, "reporting")
}

// TestPersistenceRoundTrip restarts the session and checks that the
// attachment topology and the active database come back.
func TestPersistenceRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	statePath := filepath.Join(dataDir, "duckpond_state.json")
	cfg := types.Config{MainURL: types.InMemoryURL, DataDir: dataDir, StatePath: statePath}

	m1, err := duckpond.New(cfg)
	require.NoError(t, err)
	_, err = m1.ExecuteQuery("CREATE DATABASE sales")
	require.NoError(t, err)
	_, err = m1.ExecuteQuery("USE sales")
	require.NoError(t, err)
	_, err = m1.ExecuteQuery("CREATE TABLE orders (id INTEGER)")
	require.NoError(t, err)
	_, err = m1.ExecuteQuery("INSERT INTO orders VALUES (42)")
	require.NoError(t, err)
	require.NoError(t, m1.Close())

	m2, err := duckpond.New(cfg)
	require.NoError(t, err)
	defer m2.Close()

	assert.Contains(t, m2.DatabaseNames(), "sales")
	assert.Equal(t, "sales", m2.CurrentAlias())

	res, err := m2.ExecuteQuery("SELECT id FROM orders")
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.EqualValues(t, 42, res.Data[0]["id"])
}

// TestAutoDiscovery deletes the snapshot between sessions and checks that
// the data directory scan re-attaches existing database files.
func TestAutoDiscovery(t *testing.T) {
	dataDir := t.TempDir()
	statePath := filepath.Join(dataDir, "duckpond_state.json")
	cfg := types.Config{MainURL: types.InMemoryURL, DataDir: dataDir, StatePath: statePath}

	m1, err := duckpond.New(cfg)
	require.NoError(t, err)
	_, err = m1.ExecuteQuery("CREATE DATABASE inventory")
	require.NoError(t, err)
	require.NoError(t, m1.Close())
	require.NoError(t, os.Remove(statePath))

	m2, err := duckpond.New(cfg)
	require.NoError(t, err)
	defer m2.Close()
	assert.Contains(t, m2.DatabaseNames(), "inventory")
}

// TestFileBackedPrimaryMasking opens a named file as the primary database
// and checks that catalog listings show the user-facing alias instead of
// the engine's internal name.
func TestFileBackedPrimaryMasking(t *testing.T) {
	dataDir := t.TempDir()
	m, err := duckpond.New(types.Config{
		MainURL: filepath.Join(dataDir, "prod.duckdb"),
		DataDir: dataDir,
	})
	require.NoError(t, err)
	defer m.Close()

	res, err := m.ExecuteQuery("SELECT database_name FROM duckdb_databases()")
	require.NoError(t, err)
	listed := names(t, res, "database_name")
	assert.Contains(t, listed, "main")
	assert.NotContains(t, listed, "prod")
}

func TestMySQLSurfaceTranslation(t *testing.T) {
	m, _ := setupManager(t)

	_, err := m.ExecuteQuery("CREATE TABLE `users` (`id` INTEGER, `name` VARCHAR)")
	require.NoError(t, err)

	_, err = m.ExecuteQuery("INSERT INTO `users` VALUES (1, 'ada'), (2, 'brin'), (3, 'carol')")
	require.NoError(t, err)

	res, err := m.ExecuteQuery("SELECT `name` FROM `users` ORDER BY `id` LIMIT 1, 2")
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "brin", res.Data[0]["name"])
}

func TestCloseMakesSessionInert(t *testing.T) {
	m, _ := setupManager(t)
	require.NoError(t, m.Close())

	_, err := m.ExecuteQuery("SELECT 1")
	assert.ErrorIs(t, err, types.ErrManagerClosed)
	require.NoError(t, m.Close())
}
