package lockfile

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParsePID(t *testing.T) {
	tests := []struct {
		msg  string
		pid  int
		want bool
	}{
		{`Could not set lock on file "/tmp/x.duckdb": Conflicting lock is held in /usr/bin/foo (PID 4242)`, 4242, true},
		{"lock held (PID: 17)", 17, true},
		{"IO Error: disk full", 0, false},
		{"PID without digits", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		pid, ok := ParsePID(tt.msg)
		assert.Equal(t, tt.want, ok, tt.msg)
		assert.Equal(t, tt.pid, pid, tt.msg)
	}
}

// withProbe swaps the connection probe for the duration of one test.
func withProbe(t *testing.T, fn func(path string) error) {
	t.Helper()
	orig := openProbe
	openProbe = fn
	t.Cleanup(func() { openProbe = orig })
}

func TestProbeAndClearStaleLock_NoLock(t *testing.T) {
	withProbe(t, func(string) error { return nil })

	cleared, err := ProbeAndClearStaleLock("/tmp/x.duckdb", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestProbeAndClearStaleLock_NonLockErrorPropagates(t *testing.T) {
	probeErr := errors.New("IO Error: database file is corrupt")
	withProbe(t, func(string) error { return probeErr })

	cleared, err := ProbeAndClearStaleLock("/tmp/x.duckdb", zap.NewNop())
	require.ErrorIs(t, err, probeErr)
	assert.False(t, cleared)
}

func TestProbeAndClearStaleLock_DeadHolderSwallowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix-only test")
	}

	// Run a process to completion; its PID is guaranteed stale.
	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	deadPID := cmd.Process.Pid

	withProbe(t, func(string) error {
		return fmt.Errorf("Conflicting lock is held in another process (PID %d)", deadPID)
	})

	cleared, err := ProbeAndClearStaleLock("/tmp/x.duckdb", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, cleared)
}
