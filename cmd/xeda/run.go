package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xedahq/xeda/internal/config"
	"github.com/xedahq/xeda/internal/design"
	"github.com/xedahq/xeda/internal/settings"
)

func newRunCmd(debug, verbose, quiet *bool, env *envBinder) *cobra.Command {
	var (
		projectFile string
		designName  string
		settingsStr string
		outFile     string
	)

	cmd := &cobra.Command{
		Use:   "run <flow>",
		Short: "Run a single flow against a design",
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
			dsn, projectFlows, _, err := resolveDesignFile(loader, projectFile, designName)
			if err != nil {
				return err
			}

			overrides, err := settings.ParseDotKV(settingsStr)
			if err != nil {
				return fmt.Errorf("parse --settings: %w", err)
			}

			outcome, err := runner.Run(cmd.Context(), flowRequest(flowName, dsn, projectFlows[flowName], overrides))
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(outcome, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(data, outFile)
		},
	}

	cmd.Flags().StringVarP(&projectFile, "project-file", "p", "", "Path to an xedaproject or design file (default: autodetect xedaproject.* in cwd)")
	cmd.Flags().StringVarP(&designName, "design", "d", "", "Design name, if the project file declares more than one")
	cmd.Flags().StringVarP(&settingsStr, "settings", "s", "", "Comma-separated key=value overrides, dot-path nested")
	cmd.Flags().StringVarP(&outFile, "output", "o", "-", "Output file path (- for stdout)")
	return cmd
}

// resolveDesignFile loads projectFile (autodetecting xedaproject.* in the
// current directory if empty) and builds the named design, returning the
// design, its project-level flow settings, and the resolved project file
// path (useful to callers that need the directory it lives in).
func resolveDesignFile(loader *config.Loader, projectFile, designName string) (*design.Design, map[string]map[string]any, string, error) {
	if projectFile == "" {
		dir, err := os.Getwd()
		if err != nil {
			return nil, nil, "", err
		}
		projectFile = config.FindProjectFile(dir)
		if projectFile == "" {
			return nil, nil, "", fmt.Errorf("no xedaproject.{toml,yaml,yml,json} found in %s; pass --project-file", dir)
		}
	}
	baseDir := filepath.Dir(projectFile)

	proj, err := loader.LoadProject(projectFile)
	if err == nil {
		rec, perr := pickDesignRecord(proj.Designs, designName)
		if perr != nil {
			return nil, nil, "", perr
		}
		built, berr := config.BuildDesign(rec, baseDir)
		if berr != nil {
			return nil, nil, "", berr
		}
		return built, proj.Flows, projectFile, nil
	}

	res, err := loader.LoadDesignFile(projectFile)
	if err != nil {
		return nil, nil, "", fmt.Errorf("load %q: %w", projectFile, err)
	}
	built, err := config.BuildDesign(res.Design, baseDir)
	if err != nil {
		return nil, nil, "", err
	}
	return built, res.Flows, projectFile, nil
}

func pickDesignRecord(designs []config.DesignRecord, name string) (config.DesignRecord, error) {
	if name == "" {
		if len(designs) != 1 {
			return config.DesignRecord{}, fmt.Errorf("project declares %d designs; select one with --design", len(designs))
		}
		return designs[0], nil
	}
	for _, rec := range designs {
		if rec.Name == name {
			return rec, nil
		}
	}
	return config.DesignRecord{}, fmt.Errorf("design %q not found in project file", name)
}

func writeOutput(data []byte, path string) error {
	if path == "" || path == "-" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}
