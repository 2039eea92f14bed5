package yosys

import (
	"fmt"
	"strings"
	"time"

	"github.com/xedahq/xeda/internal/flow"
	"github.com/xedahq/xeda/internal/process"
)

// buildScript renders a yosys synthesis script: read every rtl source,
// set the hierarchy top, run generic synth (with -flatten when no FPGA part
// is set; no vendor-specific mapping pass or cell library is used), then
// write the stat report and the netlist.
func buildScript(fctx *flow.Context, netlistPath, reportPath string) string {
	var b strings.Builder
	for _, src := range fctx.Design.RTL.Sources {
		fmt.Fprintf(&b, "read_verilog -sv %q\n", src.Path)
	}
	fmt.Fprintf(&b, "hierarchy -check -top %s\n", fctx.Design.RTL.Top)

	if fctx.Settings.IsFPGA() {
		fmt.Fprintf(&b, "synth -top %s\n", fctx.Design.RTL.Top)
	} else {
		fmt.Fprintf(&b, "synth -top %s -flatten\n", fctx.Design.RTL.Top)
	}

	if period := fctx.Settings.ClockPeriod; period != nil {
		fmt.Fprintf(&b, "# target clock_period=%gns\n", *period)
	}

	fmt.Fprintf(&b, "opt_clean\n")
	fmt.Fprintf(&b, "stat > %q\n", reportPath)
	fmt.Fprintf(&b, "write_verilog %q\n", netlistPath)
	return b.String()
}

// processInvocation builds the Supervisor invocation for running yosys
// against a pre-written script file.
func processInvocation(fctx *flow.Context, scriptPath string) process.Invocation {
	timeout := time.Duration(fctx.Settings.TimeoutSeconds) * time.Second
	return process.Invocation{
		Tool:    "yosys",
		Args:    []string{"-s", scriptPath},
		WorkDir: fctx.RunPath,
		Timeout: timeout,
		RunPath: fctx.RunPath,
	}
}
