package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportsDetectsFailureMarker(t *testing.T) {
	dir := t.TempDir()
	f := &Flow{logPath: filepath.Join(dir, "sim.log")}
	require.NoError(t, os.WriteFile(f.logPath, []byte("running testbench\nASSERTION FAIL at t=10\n"), 0o644))

	results, err := f.ParseReports(nil)
	require.NoError(t, err)
	assert.Equal(t, false, results["testbench_passed"])
}

func TestParseReportsPassesWithoutFailureMarker(t *testing.T) {
	dir := t.TempDir()
	f := &Flow{logPath: filepath.Join(dir, "sim.log")}
	require.NoError(t, os.WriteFile(f.logPath, []byte("running testbench\nall checks ok\n"), 0o644))

	results, err := f.ParseReports(nil)
	require.NoError(t, err)
	assert.Equal(t, true, results["testbench_passed"])
}
