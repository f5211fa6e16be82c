// Package lockfile implements best-effort recovery of database files left
// locked by a previous, possibly crashed, process. The whole mechanism is
// OS-specific and deliberately isolated behind one narrow function so tests
// and unsupported platforms can stub it out.
package lockfile

import (
	"database/sql"
	"errors"
	"os"
	"regexp"
	"strconv"
	"syscall"

	_ "github.com/marcboeker/go-duckdb/v2"
	"go.uber.org/zap"
)

// pidPattern recognizes the "PID <digits>" fragment DuckDB embeds in its
// conflicting-lock error message.
var pidPattern = regexp.MustCompile(`PID:?\s*(\d+)`)

// openProbe opens and immediately closes a connection to the database at
// path. Overridable in tests.
var openProbe = func(path string) error {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Ping()
}

// ParsePID extracts the holder PID from an engine lock error message.
func ParsePID(msg string) (int, bool) {
	m := pidPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	pid, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return pid, true
}

// ProbeAndClearStaleLock attempts to open the database at path. When the
// engine reports a conflicting lock held by another process, the holder is
// sent SIGTERM. Missing-process and permission errors during the kill are
// logged and swallowed; a lock error carrying no PID is not recoverable and
// is returned to the caller.
//
// The returned bool reports whether a stale lock was detected and a clear
// was attempted.
func ProbeAndClearStaleLock(path string, log *zap.Logger) (bool, error) {
	if log == nil {
		log = zap.NewNop()
	}

	err := openProbe(path)
	if err == nil {
		return false, nil
	}

	pid, ok := ParsePID(err.Error())
	if !ok {
		return false, err
	}

	log.Warn("database locked by another process, attempting recovery",
		zap.String("path", path),
		zap.Int("pid", pid))

	proc, ferr := os.FindProcess(pid)
	if ferr != nil {
		// Process already gone.
		log.Info("lock holder not found", zap.Int("pid", pid), zap.Error(ferr))
		return true, nil
	}
	if serr := proc.Signal(syscall.SIGTERM); serr != nil {
		if errors.Is(serr, os.ErrProcessDone) || errors.Is(serr, syscall.ESRCH) || errors.Is(serr, syscall.EPERM) {
			log.Info("could not signal lock holder", zap.Int("pid", pid), zap.Error(serr))
			return true, nil
		}
		log.Warn("signal to lock holder failed", zap.Int("pid", pid), zap.Error(serr))
		return true, nil
	}

	log.Info("sent SIGTERM to stale lock holder", zap.Int("pid", pid))
	return true, nil
}
