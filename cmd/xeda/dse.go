package main

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xedahq/xeda/internal/dse"
	"github.com/xedahq/xeda/internal/xlog"
)

func newDSECmd(debug, verbose, quiet *bool, env *envBinder) *cobra.Command {
	var (
		projectFile   string
		designName    string
		outFile       string
		maxWorkers    int
		maxRuntimeMin float64
		trialTimeout  int
		initFreqLow   float64
		initFreqHigh  float64
		resolution    float64
		maxLUTs       int
		keepRunDirs   bool
	)

	cmd := &cobra.Command{
		Use:   "dse <flow>",
		Short: "Run Fmax design-space exploration against a design using a given flow",
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.bind(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			flowName := args[0]

			runner, err := newDeps(*debug, *verbose, *quiet)
			if err != nil {
				return err
			}

			loader := newLoader()
			dsn, projectFlows, resolvedProjectFile, err := resolveDesignFile(loader, projectFile, designName)
			if err != nil {
				return err
			}

			cfg := dse.Config{
				MaxWorkers:          maxWorkers,
				MaxRuntimeMinutes:   maxRuntimeMin,
				TrialTimeoutSeconds: trialTimeout,
				KeepOptimalRunDirs:  keepRunDirs,
			}

			state := dse.NewState(cfg, flowName, projectFlows[flowName], nil, initFreqLow, initFreqHigh)
			fmaxCfg := dse.FmaxConfig{
				InitFreqLow:  initFreqLow,
				InitFreqHigh: initFreqHigh,
				Resolution:   resolution,
			}
			if maxLUTs > 0 {
				fmaxCfg.HasMaxLUTs = true
				fmaxCfg.MaxLUTs = maxLUTs
			}
			optimizer := dse.NewFmaxOptimizer(state, fmaxCfg)

			logger := xlog.Default(*debug, *verbose)
			engine := dse.NewEngine(runner, dsn, flowName, cfg, optimizer, state, filepath.Dir(resolvedProjectFile), logger)

			result, err := engine.Run(cmd.Context())
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(data, outFile)
		},
	}

	cmd.Flags().StringVarP(&projectFile, "project-file", "p", "", "Path to an xedaproject or design file (default: autodetect xedaproject.* in cwd)")
	cmd.Flags().StringVarP(&designName, "design", "d", "", "Design name, if the project file declares more than one")
	cmd.Flags().StringVarP(&outFile, "output", "o", "-", "Output file path (- for stdout)")
	cmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Worker pool size; 0 derives from available RAM/CPU")
	cmd.Flags().Float64Var(&maxRuntimeMin, "max-runtime-minutes", 0, "Abort after this many minutes; 0 disables the limit")
	cmd.Flags().IntVar(&trialTimeout, "trial-timeout-seconds", 0, "Per-trial timeout; 0 disables it")
	cmd.Flags().Float64Var(&initFreqLow, "init-freq-low", 50, "Initial lower frequency bound, MHz")
	cmd.Flags().Float64Var(&initFreqHigh, "init-freq-high", 500, "Initial upper frequency bound, MHz")
	cmd.Flags().Float64Var(&resolution, "resolution", 1, "Termination resolution, MHz")
	cmd.Flags().IntVar(&maxLUTs, "max-luts", 0, "Reject trials over this LUT budget; 0 disables the check")
	cmd.Flags().BoolVar(&keepRunDirs, "keep-optimal-run-dirs", true, "Delete non-improving trial run directories as iterations complete")
	return cmd
}
