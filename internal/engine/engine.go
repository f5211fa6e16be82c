// Package engine wraps the embedded DuckDB driver behind a narrow interface
// so the manager treats it as a black-box SQL executor with attach, detach,
// and use primitives.
package engine

// Engine is the execution boundary between the session manager and the
// embedded database. Implementations are not safe for concurrent use.
type Engine interface {
	// Exec runs a non-row-producing statement and returns the engine's
	// affected-row count, zero when unavailable.
	Exec(query string) (int64, error)

	// Query runs a row-producing statement and returns column names plus
	// all rows, fully materialized.
	Query(query string) (cols []string, rows [][]any, err error)

	// Attach registers the database file at path under the given catalog
	// name.
	Attach(path, catalog string) error

	// Detach removes the named catalog from the session.
	Detach(catalog string) error

	// Use switches the active catalog for unqualified statements. The
	// catalog name is quoted unless quoted is false.
	Use(catalog string, quoted bool) error

	// CurrentCatalog reports the engine's own name for the active
	// catalog.
	CurrentCatalog() (string, error)

	// Close releases the underlying connection.
	Close() error
}
