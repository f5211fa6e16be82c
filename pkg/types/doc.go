// Package types defines the configuration, result, and error types shared by
// the duckpond session manager and its callers.
package types
