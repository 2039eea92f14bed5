// Package settings implements the Settings Model: the FlowSettings schema, its normalizations, validators, and layered
// merge semantics.
//
// Settings travel through the pipeline as a generic map[string]any, the
// same shape cobra-flag wiring builds up in a CLI entrypoint, until
// FromRaw decodes and validates them into the strongly-typed
// struct flows actually read.
package settings

import (
	"encoding/json"
	"fmt"
)

// LibPath is one (path, library-name) pair from a flow's lib_paths setting.
type LibPath struct {
	Path    string  `json:"path"`
	Library *string `json:"library,omitempty"`
}

// ClockSetting is one entry of a Clocks map before PhysicalClock resolution
// (it only carries the fields users may specify; name-to-port resolution and
// freq/period derivation happen in the design package).
type ClockSetting struct {
	Period *float64 `json:"period,omitempty"`
	Freq   *float64 `json:"freq,omitempty"`
}

// FlowSettings is the common schema every flow class declares: a fixed
// common core, the synthesis and FPGA/ASIC variant fields (clock_period,
// fpga, tech, …) as typed fields, and Extra for any other flow-specific
// keys, which are carried through without further validation.
type FlowSettings struct {
	Verbose        bool   `json:"verbose"`
	Debug          bool   `json:"debug"`
	Quiet          bool   `json:"quiet"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	NThreads       int    `json:"nthreads"`
	NCPUs          int    `json:"ncpus"`
	ReportsDir     string `json:"reports_dir"`
	CheckpointsDir string `json:"checkpoints_dir"`
	OutputsDir     string `json:"outputs_dir"`
	LibPaths       []LibPath `json:"lib_paths,omitempty"`
	Dockerized     bool   `json:"dockerized"`
	PrintCommands  bool   `json:"print_commands"`

	// PostCleanupPurge is decoded and validated, and counts toward the
	// flowrun hash, but the runner does not act on it: no run-directory
	// files are deleted after a run.
	PostCleanupPurge bool `json:"post_cleanup_purge"`

	// Synthesis-variant fields.
	ClockPeriod          *float64                `json:"clock_period,omitempty"`
	Clocks               map[string]ClockSetting `json:"clocks,omitempty"`
	BlacklistedResources []string                `json:"blacklisted_resources,omitempty"`

	// FPGA/ASIC variant fields.
	FPGAPart string `json:"fpga,omitempty"`     // non-empty selects an FPGA variant
	Tech     string `json:"tech,omitempty"`     // non-empty selects an ASIC variant (tech kit name)
	Platform string `json:"platform,omitempty"` // non-empty selects an ASIC variant (named platform)

	// Extra carries any remaining, flow-specific keys not promoted above,
	// keyed by their dot-path under the flow's settings root.
	Extra map[string]any `json:"extra,omitempty"`
}

// DefaultFlowSettings returns library defaults — the lowest-priority layer
// of the settings merge order.
func DefaultFlowSettings() FlowSettings {
	return FlowSettings{
		TimeoutSeconds: 3600,
		NThreads:       1,
		NCPUs:          1,
		ReportsDir:     "reports",
		CheckpointsDir: "checkpoints",
		OutputsDir:     "outputs",
		Clocks:         map[string]ClockSetting{},
		Extra:          map[string]any{},
	}
}

// IsFPGA reports whether these settings select an FPGA synthesis variant.
func (s *FlowSettings) IsFPGA() bool { return s.FPGAPart != "" }

// IsASIC reports whether these settings select an ASIC synthesis variant.
func (s *FlowSettings) IsASIC() bool { return s.Tech != "" || s.Platform != "" }

// ToMap round-trips s through JSON to produce the raw map[string]any shape
// Merge/FromRaw operate on, so library defaults can sit at the bottom of
// the same layered-merge pipeline as every other settings source.
func (s FlowSettings) ToMap() map[string]any {
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("settings: marshal FlowSettings: %v", err))
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("settings: unmarshal FlowSettings: %v", err))
	}
	if extra, ok := out["extra"].(map[string]any); ok {
		delete(out, "extra")
		for k, v := range extra {
			out[k] = v
		}
	}
	return out
}
