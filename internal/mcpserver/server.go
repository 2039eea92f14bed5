// Package mcpserver exposes run_flow, run_dse, list_flows, and
// list_settings as MCP tools over stdio, so an AI coding agent can drive
// flow execution and design-space exploration the same way a human
// invokes the CLI.
package mcpserver

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/xedahq/xeda/internal/config"
	"github.com/xedahq/xeda/internal/flow"
)

// Server wraps the MCP server instance.
type Server struct {
	mcpServer *server.MCPServer
	deps      toolDeps
}

// toolDeps is what the tool handlers need to actually do anything: a flow
// runner, a config loader, and the repository root project/design files
// are resolved relative to.
type toolDeps struct {
	runner *flow.Runner
	loader *config.Loader
	root   string
	logger zerolog.Logger
}

// NewServer creates an MCP server with run_flow/run_dse/list_flows/
// list_settings registered, backed by runner for flow execution and
// rooted at root for resolving project/design file paths. DSE runs log
// through logger.
func NewServer(version string, runner *flow.Runner, root string, logger zerolog.Logger) *Server {
	s := server.NewMCPServer("xeda", version, server.WithLogging())
	deps := toolDeps{runner: runner, loader: config.NewLoader(), root: root, logger: logger}
	registerTools(s, deps)
	return &Server{mcpServer: s, deps: deps}
}

// Start runs the server in stdio mode (blocking) until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.mcpServer)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func registerTools(s *server.MCPServer, deps toolDeps) {
	runFlowTool := mcp.NewTool("run_flow",
		mcp.WithDescription("Run a single flow against a design, returning its results map. Uses the cache if a matching run_path already succeeded."),
		mcp.WithString("flow", mcp.Required(), mcp.Description("Registered flow name, e.g. yosys_synth, openroad_pnr, sim")),
		mcp.WithString("project_file", mcp.Required(), mcp.Description("Path to an xedaproject or design file")),
		mcp.WithString("design", mcp.Description("Design name to select, if project_file declares more than one")),
		mcp.WithString("settings", mcp.Description("Comma-separated key=value overrides, dot-path nested (e.g. clock_period=5,fpga=xc7a35t)")),
	)
	s.AddTool(runFlowTool, deps.handleRunFlow)

	runDSETool := mcp.NewTool("run_dse",
		mcp.WithDescription("Run Fmax design-space exploration against a design using a given flow, returning the best clock period/frequency found."),
		mcp.WithString("flow", mcp.Required(), mcp.Description("Registered flow name to optimize, e.g. yosys_synth")),
		mcp.WithString("project_file", mcp.Required(), mcp.Description("Path to an xedaproject or design file")),
		mcp.WithString("design", mcp.Description("Design name to select, if project_file declares more than one")),
		mcp.WithNumber("max_workers", mcp.Description("Worker pool size; defaults to a RAM/CPU-derived value if omitted")),
		mcp.WithNumber("init_freq_low", mcp.Description("Initial lower frequency bound, MHz (default 50)")),
		mcp.WithNumber("init_freq_high", mcp.Description("Initial upper frequency bound, MHz (default 500)")),
		mcp.WithNumber("resolution", mcp.Description("Termination resolution, MHz (default 1)")),
	)
	s.AddTool(runDSETool, deps.handleRunDSE)

	listFlowsTool := mcp.NewTool("list_flows",
		mcp.WithDescription("List every registered flow name and its one-line description."),
	)
	s.AddTool(listFlowsTool, deps.handleListFlows)

	listSettingsTool := mcp.NewTool("list_settings",
		mcp.WithDescription("Describe the common FlowSettings schema every flow accepts."),
	)
	s.AddTool(listSettingsTool, deps.handleListSettings)
}
