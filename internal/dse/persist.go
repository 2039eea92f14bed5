package dse

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BestRecord is the JSON document persisted to best.json on every
// improvement, and as the final summary on graceful termination.
type BestRecord struct {
	RunID            string         `json:"run_id"`
	FlowName         string         `json:"flow_name"`
	Best             *FlowOutcome   `json:"best"`
	SuccessfulResults []FlowOutcome `json:"successful_results"`
	CumulativeRuntimeSeconds float64 `json:"cumulative_runtime_seconds"`
	NumIterations    int            `json:"num_iterations"`
	NoImprovements   int            `json:"no_improvements"`
	LoFreq           float64        `json:"lo_freq"`
	HiFreq           float64        `json:"hi_freq"`
	NumVariations    int            `json:"num_variations"`
	Seed             uint64         `json:"seed"`
	WrittenAt        string         `json:"written_at"`
}

// WriteBestAtomic writes rec to <dir>/best.json atomically: it writes to a
// temp file in the same directory, then renames over the destination, so a
// reader never observes a partially-written document even if the process
// is killed mid-write.
func WriteBestAtomic(dir string, rec BestRecord, now time.Time) error {
	rec.WrittenAt = now.UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal best.json: %w", err)
	}
	dest := filepath.Join(dir, "best.json")
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmp, dest, err)
	}
	return nil
}

// ReadBest reads an existing best.json, returning (nil, nil) if absent —
// used to resume reporting cumulative runtime across a restarted DSE run.
func ReadBest(dir string) (*BestRecord, error) {
	data, err := os.ReadFile(filepath.Join(dir, "best.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec BestRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
