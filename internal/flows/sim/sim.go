// Package sim implements a simulation flow: compiles and runs a design's
// testbench sources under a Verilog simulator, then parses the simulator
// log for a pass/fail verdict.
package sim

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xedahq/xeda/internal/flow"
	"github.com/xedahq/xeda/internal/process"
	"github.com/xedahq/xeda/internal/registry"
)

func init() {
	registry.Register("sim", New, "compiles and runs the testbench under a Verilog simulator")
}

// Flow drives one simulation run.
type Flow struct {
	logPath string
}

// New constructs a simulation flow.
func New() flow.Flow { return &Flow{} }

// Init resolves the simulator log path. No dependencies: simulation reads
// its design's tb sources directly rather than a synthesized netlist.
func (f *Flow) Init(_ context.Context, fctx *flow.Context) ([]flow.Dependency, error) {
	f.logPath = filepath.Join(fctx.RunPath, fctx.Settings.ReportsDir, "sim.log")
	return nil, nil
}

// Run compiles and executes the testbench under iverilog/vvp.
func (f *Flow) Run(ctx context.Context, fctx *flow.Context) error {
	if err := os.MkdirAll(filepath.Join(fctx.RunPath, fctx.Settings.ReportsDir), 0o755); err != nil {
		return fmt.Errorf("sim: create reports dir: %w", err)
	}

	timeout := time.Duration(fctx.Settings.TimeoutSeconds) * time.Second
	outBin := filepath.Join(fctx.RunPath, "sim.out")

	var compileArgs []string
	for _, src := range fctx.Design.RTL.Sources {
		compileArgs = append(compileArgs, src.Path)
	}
	for _, src := range fctx.Design.TB.Sources {
		compileArgs = append(compileArgs, src.Path)
	}
	compileArgs = append(compileArgs, "-o", outBin, "-s", fctx.Design.TB.Top)

	if _, err := fctx.Supervisor.Run(ctx, process.Invocation{
		Tool:    "iverilog",
		Args:    compileArgs,
		WorkDir: fctx.RunPath,
		Timeout: timeout,
		RunPath: fctx.RunPath,
	}); err != nil {
		return err
	}

	logFile, err := os.Create(f.logPath)
	if err != nil {
		return fmt.Errorf("sim: create log: %w", err)
	}
	defer logFile.Close()

	var sawLine string
	_, err = fctx.Supervisor.Run(ctx, process.Invocation{
		Tool:    "vvp",
		Args:    []string{outBin},
		WorkDir: fctx.RunPath,
		Timeout: timeout,
		RunPath: fctx.RunPath,
		OnLine: func(line string, _ process.LineLevel) {
			fmt.Fprintln(logFile, line)
			sawLine = line
		},
	})
	_ = sawLine
	return err
}

// ParseReports scans the simulator log for a pass/fail verdict: a line
// containing "FAIL" anywhere marks the run as failed even if the
// simulator itself exited zero, since testbenches typically report
// failures via $display rather than a non-zero exit code.
func (f *Flow) ParseReports(_ *flow.Context) (map[string]any, error) {
	results := map[string]any{"_artifacts": map[string]any{"log": f.logPath}}

	data, err := os.ReadFile(f.logPath)
	if err != nil {
		return results, nil
	}

	passed := true
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		if strings.Contains(strings.ToUpper(scanner.Text()), "FAIL") {
			passed = false
			break
		}
	}
	results["testbench_passed"] = passed
	return results, nil
}
