package types

// Result is the outcome of a single ExecuteQuery call.
type Result struct {
	// Data holds the returned rows for row-producing statements, nil
	// otherwise. Each row maps column name to value.
	Data []map[string]any `json:"data"`

	// AffectedRows is the engine-reported affected-row count for
	// non-row-producing statements, zero when unavailable.
	AffectedRows int64 `json:"affected_rows"`

	// IsDDL marks management commands (ATTACH, DETACH, CREATE DATABASE,
	// DROP DATABASE, USE) and passthrough DDL.
	IsDDL bool `json:"is_ddl"`

	// Command is the leading keyword of the executed statement, such as
	// "SELECT" or "CREATE DATABASE". Empty when unknown.
	Command string `json:"command,omitempty"`
}
