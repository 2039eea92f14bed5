package rundir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveIncrementalOmitsDesignHash(t *testing.T) {
	full := Derive("/runs", "my design!", "yosys_synth", "abcdef0123456789abcdef", "0123456789abcdefabcdef", false)
	assert.Equal(t, filepath.Join("/runs", "my_design__abcdef0123456789", "yosys_synth_0123456789abcdef"), full)

	incr := Derive("/runs", "my design!", "yosys_synth", "abcdef0123456789abcdef", "0123456789abcdefabcdef", true)
	assert.Equal(t, filepath.Join("/runs", "my_design_", "yosys_synth_0123456789abcdef"), incr)
}

func TestCacheHitRequiresMatchingTripleAndSuccess(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSettings(dir, SettingsRecord{FlowName: "yosys_synth", DesignHash: "dh", FlowrunHash: "fh"}))
	require.NoError(t, WriteResults(dir, ResultsRecord{Success: true}))

	hit, rec, err := CacheHit(dir, "yosys_synth", "dh", "fh")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.NotNil(t, rec)

	hit, _, err = CacheHit(dir, "yosys_synth", "dh", "different")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheHitFalseOnMissingFiles(t *testing.T) {
	dir := t.TempDir()
	hit, rec, err := CacheHit(dir, "yosys_synth", "dh", "fh")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, rec)
}

func TestCacheHitFalseWhenPreviousFailed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSettings(dir, SettingsRecord{FlowName: "f", DesignHash: "d", FlowrunHash: "r"}))
	require.NoError(t, WriteResults(dir, ResultsRecord{Success: false}))

	hit, _, err := CacheHit(dir, "f", "d", "r")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestPrepareIncrementalFreshDeletesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("x"), 0o644))

	require.NoError(t, Prepare(dir, ModeIncrementalFresh))
	_, err := os.Stat(filepath.Join(dir, "stale.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestPrepareBackupRenamesExisting(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "run")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	require.NoError(t, Prepare(dir, ModeBackup))
	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	var sawBackup bool
	for _, e := range entries {
		if e.Name() != "run" {
			sawBackup = true
		}
	}
	assert.True(t, sawBackup)
}

func TestCopyResourcesFiltersMissingAndDirs(t *testing.T) {
	parent := t.TempDir()
	dep := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(parent, "netlist.v"), []byte("module m; endmodule"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(parent, "adir"), 0o755))

	copied, err := CopyResources(parent, dep, []string{"netlist.v", "missing.v", "adir"})
	require.NoError(t, err)
	require.Len(t, copied, 1)
	data, err := os.ReadFile(copied[0])
	require.NoError(t, err)
	assert.Equal(t, "module m; endmodule", string(data))
}

func TestScrubRunsRespectsExcludeAndPattern(t *testing.T) {
	parent := t.TempDir()
	keep := filepath.Join(parent, "yosys_synth_0123456789abcdef")
	drop := filepath.Join(parent, "yosys_synth_fedcba9876543210")
	other := filepath.Join(parent, "openroad_0123456789abcdef")
	for _, d := range []string{keep, drop, other} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}

	scrubbed, err := ScrubRuns(parent, "yosys_synth", []string{"yosys_synth_0123456789abcdef"}, func(string) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, []string{drop}, scrubbed)

	_, err = os.Stat(keep)
	assert.NoError(t, err)
	_, err = os.Stat(other)
	assert.NoError(t, err)
}
