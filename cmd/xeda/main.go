// xeda — single Go binary driving EDA flow execution and design-space
// exploration against synthesis, place-and-route, and simulation toolchains.
package main

import (
	"fmt"
	"os"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/xedahq/xeda/internal/config"
	"github.com/xedahq/xeda/internal/console"
	"github.com/xedahq/xeda/internal/flow"
	_ "github.com/xedahq/xeda/internal/flows/echo"
	_ "github.com/xedahq/xeda/internal/flows/openroad"
	_ "github.com/xedahq/xeda/internal/flows/sim"
	_ "github.com/xedahq/xeda/internal/flows/yosys"
	"github.com/xedahq/xeda/internal/process"
	"github.com/xedahq/xeda/internal/registry"
	"github.com/xedahq/xeda/internal/xlog"
)

var version = "0.1.0"

func init() {
	// Honor cgroup CPU/memory limits when running in a container, so
	// DefaultMaxWorkers and runtime.NumCPU-derived heuristics see the real
	// budget instead of the host's.
	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintf(os.Stderr, "xeda: automaxprocs: %v\n", err)
	}
	if _, err := memlimit.SetGoMemLimitWithOpts(memlimit.WithRatio(0.9)); err != nil {
		fmt.Fprintf(os.Stderr, "xeda: automemlimit: %v\n", err)
	}
}

func main() {
	var (
		debug   bool
		verbose bool
		quiet   bool
	)

	rootCmd := &cobra.Command{
		Use:     "xeda",
		Short:   "EDA flow runner and design-space explorer",
		Version: version,
		Long: `xeda drives synthesis, place-and-route, and simulation toolchains
through a uniform flow interface, with a bracket-search Fmax optimizer for
design-space exploration and an MCP server for AI-agent control.`,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	env := newEnvBinder("XEDA")

	rootCmd.AddCommand(
		newRunCmd(&debug, &verbose, &quiet, env),
		newDSECmd(&debug, &verbose, &quiet, env),
		newMCPCmd(&verbose),
		newListFlowsCmd(),
		newListSettingsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newDeps wires the shared Runner/Supervisor/logger trio every flow and DSE
// command needs, rooted at the current working directory.
func newDeps(debug, verbose, quiet bool) (*flow.Runner, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getwd: %w", err)
	}
	logger := xlog.Default(debug, verbose)
	progress := console.New(logger, quiet)
	supervisor := process.NewSupervisor(process.NewResolver())
	runner := flow.NewRunner(root, version, registry.GetFlowClass, supervisor, progress)
	return runner, nil
}

func newLoader() *config.Loader {
	return config.NewLoader()
}
