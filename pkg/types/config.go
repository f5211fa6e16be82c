package types

import (
	"errors"

	"go.uber.org/zap"
)

// InMemoryURL is the marker accepted wherever a database path is expected.
// A manager whose primary database uses it holds no file on disk.
const InMemoryURL = ":memory:"

// Config holds the parameters for constructing a session Manager.
type Config struct {
	// MainURL is the path of the primary database, or InMemoryURL.
	// Defaults to InMemoryURL when empty.
	MainURL string `json:"main_url" yaml:"main_url"`

	// DataDir is the root directory for relative database files.
	// Created if missing. Defaults to the current working directory.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// StatePath is the location of the JSON state snapshot. When empty,
	// persistence is disabled and the session is purely in-memory.
	StatePath string `json:"state_path" yaml:"state_path"`

	// Logger receives recovery and swallowed-error events. A nil logger
	// is replaced with zap.NewNop().
	Logger *zap.Logger `json:"-" yaml:"-"`
}

// Config validation errors.
var (
	ErrMainURLEmpty = errors.New("main_url must not be empty")
	ErrDataDirEmpty = errors.New("data_dir must not be empty")
)

// Validate checks that the Config is well-formed after defaults have been
// applied. It returns a sentinel error from this package on failure.
func (c Config) Validate() error {
	if c.MainURL == "" {
		return ErrMainURLEmpty
	}
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	return nil
}
