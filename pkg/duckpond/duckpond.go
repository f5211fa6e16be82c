// Package duckpond provides the public API for the duckpond session
// manager. This package exposes the factory function while keeping
// implementation details internal.
package duckpond

import (
	"github.com/mesh-intelligence/duckpond/internal/manager"
	"github.com/mesh-intelligence/duckpond/pkg/types"
)

// Manager is the session manager handle.
type Manager = manager.Manager

// New constructs a session manager against an embedded DuckDB engine.
//
// Example:
//
//	m, err := duckpond.New(types.Config{
//	    MainURL:   types.InMemoryURL,
//	    DataDir:   ".duckpond-data",
//	    StatePath: ".duckpond-data/duckpond_state.json",
//	})
//	defer m.Close()
func New(cfg types.Config) (*Manager, error) {
	return manager.New(cfg)
}
