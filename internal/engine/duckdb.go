package engine

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/mesh-intelligence/duckpond/pkg/types"
)

// DuckDB is the production Engine backed by an embedded DuckDB connection.
type DuckDB struct {
	db *sql.DB
}

var _ Engine = (*DuckDB)(nil)

// Open opens or creates the DuckDB database at path. The in-memory marker
// opens a session-local database with no backing file.
func Open(path string) (*DuckDB, error) {
	dsn := path
	if dsn == types.InMemoryURL {
		dsn = ""
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect duckdb: %w", err)
	}
	// A single connection keeps session state (USE, ATTACH) coherent;
	// pooled connections would each carry their own catalog view.
	db.SetMaxOpenConns(1)

	return &DuckDB{db: db}, nil
}

// Exec runs query and returns the engine-reported affected-row count.
func (d *DuckDB) Exec(query string) (int64, error) {
	res, err := d.db.Exec(query)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// Query runs query and materializes every row.
func (d *DuckDB) Query(query string) ([]string, [][]any, error) {
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return cols, out, nil
}

// Attach registers the database file at path under catalog.
func (d *DuckDB) Attach(path, catalog string) error {
	_, err := d.db.Exec(fmt.Sprintf("ATTACH DATABASE '%s' AS %s", escapeString(path), quoteIdent(catalog)))
	return err
}

// Detach removes catalog from the session.
func (d *DuckDB) Detach(catalog string) error {
	_, err := d.db.Exec(fmt.Sprintf("DETACH DATABASE %s", quoteIdent(catalog)))
	return err
}

// Use switches the active catalog.
func (d *DuckDB) Use(catalog string, quoted bool) error {
	name := catalog
	if quoted {
		name = quoteIdent(catalog)
	}
	_, err := d.db.Exec("USE " + name)
	return err
}

// CurrentCatalog reports DuckDB's own name for the active catalog.
func (d *DuckDB) CurrentCatalog() (string, error) {
	var name string
	if err := d.db.QueryRow("SELECT current_database()").Scan(&name); err != nil {
		return "", err
	}
	return name, nil
}

// Close releases the connection.
func (d *DuckDB) Close() error {
	return d.db.Close()
}

// quoteIdent double-quotes an identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// escapeString doubles single quotes for embedding in a SQL string literal.
func escapeString(s string) string {
	return strings.ReplaceAll(s, `'`, `''`)
}
