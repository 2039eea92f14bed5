package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/xedahq/xeda/internal/config"
	"github.com/xedahq/xeda/internal/design"
	"github.com/xedahq/xeda/internal/dse"
	"github.com/xedahq/xeda/internal/flow"
	"github.com/xedahq/xeda/internal/registry"
	"github.com/xedahq/xeda/internal/settings"
)

const runFlowTimeout = 30 * time.Minute

// resolveDesign loads projectFile and builds the named design (or the
// project's only design, if name is empty), returning the design plus the
// project's flow-settings defaults for layering.
func (d toolDeps) resolveDesign(projectFile, name string) (*design.Design, map[string]map[string]any, error) {
	baseDir := filepath.Dir(projectFile)

	if strings.HasPrefix(filepath.Base(projectFile), "xedaproject.") {
		proj, err := d.loader.LoadProject(projectFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load %q: %w", projectFile, err)
		}
		rec, err := pickDesign(proj.Designs, name)
		if err != nil {
			return nil, nil, err
		}
		built, err := config.BuildDesign(rec, baseDir)
		if err != nil {
			return nil, nil, err
		}
		return built, proj.Flows, nil
	}

	res, err := d.loader.LoadDesignFile(projectFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load %q: %w", projectFile, err)
	}
	built, err := config.BuildDesign(res.Design, baseDir)
	if err != nil {
		return nil, nil, err
	}
	return built, res.Flows, nil
}

func pickDesign(designs []config.DesignRecord, name string) (config.DesignRecord, error) {
	if name == "" {
		if len(designs) != 1 {
			return config.DesignRecord{}, fmt.Errorf("project declares %d designs; specify one by name", len(designs))
		}
		return designs[0], nil
	}
	for _, rec := range designs {
		if rec.Name == name {
			return rec, nil
		}
	}
	return config.DesignRecord{}, fmt.Errorf("design %q not found in project", name)
}

func (d toolDeps) handleRunFlow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, runFlowTimeout)
	defer cancel()

	args := getArgs(request)
	flowName := stringArg(args, "flow", "")
	projectFile := stringArg(args, "project_file", "")
	designName := stringArg(args, "design", "")
	overridesStr := stringArg(args, "settings", "")

	if flowName == "" || projectFile == "" {
		return errResult("flow and project_file are required"), nil
	}

	dsn, flows, err := d.resolveDesign(projectFile, designName)
	if err != nil {
		return errResult(err.Error()), nil
	}

	overrides, err := settings.ParseDotKV(overridesStr)
	if err != nil {
		return errResult(fmt.Sprintf("parse settings: %v", err)), nil
	}

	outcome, err := d.runner.Run(ctx, flow.Request{
		FlowName:           flowName,
		Design:             dsn,
		SettingsOverrides:  overrides,
		ProjectSettings:    flows[flowName],
		CachedDependencies: true,
	})
	if err != nil {
		return errResult(err.Error()), nil
	}

	data, err := json.MarshalIndent(outcome.Results, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("marshal results: %v", err)), nil
	}
	return newTextResult(string(data)), nil
}

func (d toolDeps) handleRunDSE(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	flowName := stringArg(args, "flow", "")
	projectFile := stringArg(args, "project_file", "")
	designName := stringArg(args, "design", "")

	if flowName == "" || projectFile == "" {
		return errResult("flow and project_file are required"), nil
	}

	dsn, flows, err := d.resolveDesign(projectFile, designName)
	if err != nil {
		return errResult(err.Error()), nil
	}

	maxWorkers := int(numberArg(args, "max_workers", 0))
	cfg := dse.Config{MaxWorkers: maxWorkers, KeepOptimalRunDirs: true}

	state := dse.NewState(cfg, flowName, flows[flowName], nil,
		numberArg(args, "init_freq_low", 50), numberArg(args, "init_freq_high", 500))
	optimizer := dse.NewFmaxOptimizer(state, dse.FmaxConfig{
		InitFreqLow:  numberArg(args, "init_freq_low", 50),
		InitFreqHigh: numberArg(args, "init_freq_high", 500),
		Resolution:   numberArg(args, "resolution", 1),
	})

	engine := dse.NewEngine(d.runner, dsn, flowName, cfg, optimizer, state, filepath.Dir(projectFile), d.logger)
	result, err := engine.Run(ctx)
	if err != nil {
		return errResult(err.Error()), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return newTextResult(string(data)), nil
}

func (d toolDeps) handleListFlows(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(registry.List(), "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("marshal flow list: %v", err)), nil
	}
	return newTextResult(string(data)), nil
}

func (d toolDeps) handleListSettings(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(settings.DefaultFlowSettings(), "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("marshal settings schema: %v", err)), nil
	}
	return newTextResult(string(data)), nil
}

// getArgs extracts the tool call's argument map, defaulting to empty.
func getArgs(request mcp.CallToolRequest) map[string]interface{} {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// stringArg extracts a string argument with a default value.
func stringArg(args map[string]interface{}, key, defaultVal string) string {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return defaultVal
	}
	return s
}

// numberArg extracts a numeric argument with a default value.
func numberArg(args map[string]interface{}, key string, defaultVal float64) float64 {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	f, ok := val.(float64)
	if !ok {
		return defaultVal
	}
	return f
}

// newTextResult creates a successful MCP tool result with text content.
func newTextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

// errResult creates an MCP tool error result (IsError=true): a tool-level
// error, not a transport-level JSON-RPC error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: msg,
			},
		},
	}
}
