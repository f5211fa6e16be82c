// Package paths resolves configuration, data-directory, and database-file
// locations for duckpond.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mesh-intelligence/duckpond/pkg/types"
)

// DefaultConfigDirName is the CWD-relative config directory name used when
// no override is active.
const DefaultConfigDirName = ".duckpond"

// DefaultStateFileName is the snapshot file name used by the CLI when
// persistence is enabled without an explicit path.
const DefaultStateFileName = "duckpond_state.json"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "DUCKPOND_CONFIG_DIR"
	EnvDataDir   = "DUCKPOND_DATA_DIR"
	EnvStatePath = "DUCKPOND_STATE_PATH"
)

// DefaultSuffix is appended to bare database names to form file names.
const DefaultSuffix = ".duckdb"

// dbSuffixes are the file suffixes recognized as database files.
var dbSuffixes = []string{".duckdb", ".db", ".ddb"}

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// HasDBSuffix reports whether name ends in a recognized database-file suffix.
func HasDBSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range dbSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Resolve maps a database name or path to an absolute file path under
// dataDir. The in-memory marker passes through unchanged. A value with
// neither a path separator nor a recognized database suffix gets
// DefaultSuffix appended. When forCreation is true the parent directory is
// created recursively.
func Resolve(dataDir, nameOrPath string, forCreation bool) (string, error) {
	if nameOrPath == types.InMemoryURL {
		return nameOrPath, nil
	}

	p := nameOrPath
	if !strings.ContainsAny(p, `/\`) && !HasDBSuffix(p) {
		p += DefaultSuffix
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(dataDir, p)
	}
	p, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	if forCreation {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return "", err
		}
	}
	return p, nil
}

// DefaultConfigDir returns the platform-specific default configuration
// directory.
//
// Linux:   $XDG_CONFIG_HOME/duckpond (fallback ~/.config/duckpond)
// macOS:   ~/Library/Application Support/duckpond
// Windows: %APPDATA%/duckpond
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "duckpond"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "duckpond"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "duckpond"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > DUCKPOND_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > DUCKPOND_DATA_DIR env > current working directory.
//
// The CWD default keeps relative database files next to the caller, which is
// the primary single-directory mode of operation.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return os.Getwd()
}

// ResolveStatePath returns the snapshot file path following the precedence
// chain: flag > configYAMLValue > DUCKPOND_STATE_PATH env > disabled (empty).
//
// An empty result means persistence stays off; the manager never guesses a
// snapshot location on its own.
func ResolveStatePath(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvStatePath); env != "" {
		return filepath.Abs(env)
	}
	return "", nil
}
