// Package yosys implements a synthesis flow that drives the yosys RTL
// synthesizer: writes its own synthesis script (read, hierarchy flatten,
// synth, report), runs it under the process supervisor, and parses the
// resulting stat report for cell and LUT counts. Its fmax_mhz result is the
// target frequency derived from clock_period, not a timing-analysis figure.
package yosys

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xedahq/xeda/internal/flow"
	"github.com/xedahq/xeda/internal/registry"
)

func init() {
	registry.Register("yosys_synth", New, "RTL synthesis via yosys, producing a gate-level netlist and timing/area report")
}

// Flow drives one yosys synthesis invocation.
type Flow struct {
	scriptPath  string
	reportPath  string
	netlistPath string
}

// New constructs a yosys synthesis flow.
func New() flow.Flow { return &Flow{} }

// SupportsFPGA reports that this flow can target an FPGA part, selected via
// settings.FPGAPart.
func (f *Flow) SupportsFPGA() bool { return true }

// SupportsASIC reports that this flow can target an ASIC technology kit,
// selected via settings.Tech/Platform.
func (f *Flow) SupportsASIC() bool { return true }

// Init resolves the script/report/netlist paths under the flow's run_path.
// No dependencies are declared: synthesis is a leaf of the dependency
// chain.
func (f *Flow) Init(_ context.Context, fctx *flow.Context) ([]flow.Dependency, error) {
	f.scriptPath = filepath.Join(fctx.RunPath, "synth.ys")
	f.reportPath = filepath.Join(fctx.RunPath, fctx.Settings.ReportsDir, "synth_stat.rpt")
	f.netlistPath = filepath.Join(fctx.RunPath, fctx.Settings.OutputsDir, "netlist.v")
	return nil, nil
}

// Run writes the synthesis script and invokes yosys against it.
func (f *Flow) Run(ctx context.Context, fctx *flow.Context) error {
	for _, dir := range []string{fctx.Settings.ReportsDir, fctx.Settings.OutputsDir} {
		if err := os.MkdirAll(filepath.Join(fctx.RunPath, dir), 0o755); err != nil {
			return fmt.Errorf("yosys_synth: create %s: %w", dir, err)
		}
	}

	script := buildScript(fctx, f.netlistPath, f.reportPath)
	if err := os.WriteFile(f.scriptPath, []byte(script), 0o644); err != nil {
		return fmt.Errorf("yosys_synth: write script: %w", err)
	}

	_, err := fctx.Supervisor.Run(ctx, processInvocation(fctx, f.scriptPath))
	return err
}

// ParseReports extracts num_cells and luts from the yosys stat report and
// sets fmax_mhz to the target frequency 1000/clock_period; no timing is read
// from the report. Without a positive clock_period, fmax_mhz is omitted; when
// the report is missing, only _artifacts is returned.
func (f *Flow) ParseReports(fctx *flow.Context) (map[string]any, error) {
	results := map[string]any{
		"_artifacts": map[string]any{
			"netlist": f.netlistPath,
			"report":  f.reportPath,
		},
	}

	data, err := os.ReadFile(f.reportPath)
	if err != nil {
		return results, nil
	}

	stats := parseStatReport(data)
	for k, v := range stats {
		results[k] = v
	}

	if fctx.Settings.ClockPeriod != nil && *fctx.Settings.ClockPeriod > 0 {
		results["fmax_mhz"] = 1000.0 / *fctx.Settings.ClockPeriod
	}
	return results, nil
}

var numberOfCellsRE = regexp.MustCompile(`Number of cells:\s*(\d+)`)
var lutsRE = regexp.MustCompile(`\$lut\s+(\d+)`)

// parseStatReport extracts a cell count and LUT count from a `yosys stat`
// report's free-form text table.
func parseStatReport(data []byte) map[string]any {
	out := map[string]any{}
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	luts := 0
	for scanner.Scan() {
		line := scanner.Text()
		if m := numberOfCellsRE.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				out["num_cells"] = n
			}
		}
		if m := lutsRE.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				luts += n
			}
		}
	}
	if luts > 0 {
		out["luts"] = luts
	}
	return out
}
