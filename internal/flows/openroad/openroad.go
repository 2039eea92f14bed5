// Package openroad implements a place-and-route flow that depends on a
// prior yosys synthesis, driving the OpenROAD toolchain from the netlist
// yosys produced.
package openroad

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xedahq/xeda/internal/flow"
	"github.com/xedahq/xeda/internal/process"
	"github.com/xedahq/xeda/internal/registry"
	"github.com/xedahq/xeda/internal/rundir"
)

func init() {
	registry.Register("openroad_pnr", New, "place-and-route via OpenROAD, driven from a yosys netlist")
}

// Flow drives one OpenROAD place-and-route invocation.
type Flow struct {
	scriptPath string
	reportPath string
	defPath    string
	netlist    string
}

// New constructs an OpenROAD place-and-route flow.
func New() flow.Flow { return &Flow{} }

// SupportsASIC reports this flow targets an ASIC technology kit; it does
// not support raw FPGA parts.
func (f *Flow) SupportsASIC() bool { return true }

// Init declares a dependency on yosys_synth; Run copies the netlist that
// dependency produced into this flow's copied_resources/ directory.
func (f *Flow) Init(_ context.Context, fctx *flow.Context) ([]flow.Dependency, error) {
	f.scriptPath = filepath.Join(fctx.RunPath, "pnr.tcl")
	f.reportPath = filepath.Join(fctx.RunPath, fctx.Settings.ReportsDir, "pnr_timing.rpt")
	f.defPath = filepath.Join(fctx.RunPath, fctx.Settings.OutputsDir, "design.def")
	f.netlist = filepath.Join(fctx.RunPath, "copied_resources", "netlist.v")

	return []flow.Dependency{{
		FlowName: "yosys_synth",
	}}, nil
}

// Run copies the yosys netlist into copied_resources/, writes the
// place-and-route script and invokes openroad against it.
func (f *Flow) Run(ctx context.Context, fctx *flow.Context) error {
	for _, dir := range []string{fctx.Settings.ReportsDir, fctx.Settings.OutputsDir} {
		if err := os.MkdirAll(filepath.Join(fctx.RunPath, dir), 0o755); err != nil {
			return fmt.Errorf("openroad_pnr: create %s: %w", dir, err)
		}
	}

	if arts, ok := fctx.CompletedDependencies["yosys_synth"]["_artifacts"].(map[string]any); ok {
		if src, ok := arts["netlist"].(string); ok {
			if _, err := rundir.CopyResources(filepath.Dir(src), fctx.RunPath, []string{filepath.Base(src)}); err != nil {
				return fmt.Errorf("openroad_pnr: copy netlist: %w", err)
			}
		}
	}

	script := buildScript(fctx, f.netlist, f.defPath, f.reportPath)
	if err := os.WriteFile(f.scriptPath, []byte(script), 0o644); err != nil {
		return fmt.Errorf("openroad_pnr: write script: %w", err)
	}

	timeout := time.Duration(fctx.Settings.TimeoutSeconds) * time.Second
	_, err := fctx.Supervisor.Run(ctx, process.Invocation{
		Tool:    "openroad",
		Args:    []string{"-exit", f.scriptPath},
		WorkDir: fctx.RunPath,
		Timeout: timeout,
		RunPath: fctx.RunPath,
	})
	return err
}

// ParseReports extracts worst_slack_ns and, when clock_period is set,
// fmax_mhz (derived from the worst slack) from the OpenROAD timing report.
func (f *Flow) ParseReports(fctx *flow.Context) (map[string]any, error) {
	results := map[string]any{
		"_artifacts": map[string]any{
			"def":    f.defPath,
			"report": f.reportPath,
		},
	}
	data, err := os.ReadFile(f.reportPath)
	if err != nil {
		return results, nil
	}
	for k, v := range parseTimingReport(data, fctx.Settings.ClockPeriod) {
		results[k] = v
	}
	return results, nil
}

func buildScript(fctx *flow.Context, netlist, defPath, reportPath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "read_verilog %q\n", netlist)
	fmt.Fprintf(&b, "link_design %s\n", fctx.Design.RTL.Top)
	if fctx.Settings.Platform != "" {
		fmt.Fprintf(&b, "# platform=%s\n", fctx.Settings.Platform)
	}
	if period := fctx.Settings.ClockPeriod; period != nil {
		fmt.Fprintf(&b, "create_clock -period %g [get_ports clk]\n", *period)
	}
	fmt.Fprintf(&b, "global_placement\n")
	fmt.Fprintf(&b, "detailed_placement\n")
	fmt.Fprintf(&b, "global_route\n")
	fmt.Fprintf(&b, "detailed_route\n")
	fmt.Fprintf(&b, "report_worst_slack > %q\n", reportPath)
	fmt.Fprintf(&b, "write_def %q\n", defPath)
	return b.String()
}

var worstSlackRE = regexp.MustCompile(`worst slack\s+(-?[0-9.]+)`)

// parseTimingReport extracts worst_slack_ns from the report's worst-slack
// line, and, when period is set, derives fmax_mhz from it: a target clock
// period with slack s yields an achievable Fmax of 1000/(period-s).
func parseTimingReport(data []byte, period *float64) map[string]any {
	out := map[string]any{}
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		if m := worstSlackRE.FindStringSubmatch(scanner.Text()); m != nil {
			if slack, err := strconv.ParseFloat(m[1], 64); err == nil {
				out["worst_slack_ns"] = slack
				if period != nil && *period > slack {
					out["fmax_mhz"] = 1000.0 / (*period - slack)
				}
			}
		}
	}
	return out
}
