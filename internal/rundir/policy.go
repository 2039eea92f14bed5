package rundir

import (
	"fmt"
	"os"
	"time"
)

// Mode selects the preexistence policy applied to a run_path before a flow
// executes.
type Mode int

const (
	// ModeDefault creates run_path if missing, keeps existing contents
	// otherwise (no backup, no deletion).
	ModeDefault Mode = iota
	// ModeIncrementalFresh deletes the directory before recreating it.
	ModeIncrementalFresh
	// ModeIncremental keeps contents (design iterates in place).
	ModeIncremental
	// ModeBackup renames an existing directory aside before recreating.
	ModeBackup
)

// CacheHit reports whether a previous run at runPath can be reused as-is:
// settings.json and results.json both exist, results.success is true, and
// the stored flow_name/design_hash/flowrun_hash triple matches the current
// one.
func CacheHit(runPath, flowName, designHash, flowrunHash string) (bool, *ResultsRecord, error) {
	settingsRec, err := ReadSettings(runPath)
	if err != nil {
		return false, nil, err
	}
	resultsRec, err := ReadResults(runPath)
	if err != nil {
		return false, nil, err
	}
	if settingsRec == nil || resultsRec == nil {
		return false, nil, nil
	}
	if !resultsRec.Success {
		return false, nil, nil
	}
	if settingsRec.FlowName != flowName || settingsRec.DesignHash != designHash || settingsRec.FlowrunHash != flowrunHash {
		return false, nil, nil
	}
	return true, resultsRec, nil
}

// Prepare applies mode to runPath and ensures it exists afterward.
func Prepare(runPath string, mode Mode) error {
	switch mode {
	case ModeIncrementalFresh:
		if err := os.RemoveAll(runPath); err != nil {
			return fmt.Errorf("remove stale run dir: %w", err)
		}
	case ModeBackup:
		if _, err := os.Stat(runPath); err == nil {
			backup := fmt.Sprintf("%s.backup_%d", runPath, time.Now().Unix())
			if err := os.Rename(runPath, backup); err != nil {
				return fmt.Errorf("backup existing run dir: %w", err)
			}
		}
	case ModeIncremental, ModeDefault:
		// keep contents
	}
	return os.MkdirAll(runPath, 0o755)
}
