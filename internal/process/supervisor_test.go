package process

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xedahq/xeda/internal/xerrors"
)

func TestSupervisorRunSuccessStreamsAndLogsLines(t *testing.T) {
	runPath := t.TempDir()
	sup := NewSupervisor(NewResolver())

	var seen []string
	res, err := sup.Run(context.Background(), Invocation{
		Tool:    "sh",
		Args:    []string{"-c", "echo warning: low slack; echo hello"},
		WorkDir: runPath,
		RunPath: runPath,
		OnLine: func(line string, level LineLevel) {
			seen = append(seen, line)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.TimedOut)
	assert.False(t, res.Cancelled)
	assert.Contains(t, seen, "hello")

	logged, readErr := os.ReadFile(runPath + "/sh_stdout.log")
	require.NoError(t, readErr)
	assert.Contains(t, string(logged), "warning: low slack")
}

func TestSupervisorRunNonZeroExit(t *testing.T) {
	sup := NewSupervisor(NewResolver())
	runPath := t.TempDir()

	_, err := sup.Run(context.Background(), Invocation{
		Tool:    "sh",
		Args:    []string{"-c", "exit 3"},
		RunPath: runPath,
	})
	require.Error(t, err)
	var exitErr *xerrors.NonZeroExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
}

func TestSupervisorRunTimeout(t *testing.T) {
	sup := NewSupervisor(NewResolver())
	runPath := t.TempDir()

	_, err := sup.Run(context.Background(), Invocation{
		Tool:    "sh",
		Args:    []string{"-c", "sleep 5"},
		RunPath: runPath,
		Timeout: 50 * time.Millisecond,
	})
	require.Error(t, err)
	var timeoutErr *xerrors.TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
}

func TestSupervisorRunCancellation(t *testing.T) {
	sup := NewSupervisor(NewResolver())
	runPath := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := sup.Run(ctx, Invocation{
			Tool:    "sh",
			Args:    []string{"-c", "sleep 5"},
			RunPath: runPath,
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		var cancelledErr *xerrors.CancelledError
		assert.True(t, errors.As(err, &cancelledErr))
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation did not stop the subprocess in time")
	}
}

func TestSupervisorRunExecutableMissing(t *testing.T) {
	sup := NewSupervisor(NewResolver())
	_, err := sup.Run(context.Background(), Invocation{
		Tool: "definitely-not-a-real-eda-tool-binary",
	})
	require.Error(t, err)
	var missingErr *xerrors.ExecutableMissingError
	assert.True(t, errors.As(err, &missingErr))
}
