package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xedahq/xeda/internal/mcpserver"
	"github.com/xedahq/xeda/internal/xlog"
)

// newMCPCmd registers the mcp command, starting a stdio MCP server that
// exposes run_flow/run_dse/list_flows/list_settings to an AI agent.
func newMCPCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start a Model Context Protocol server over stdio",
		Long: `Starts a JSON-RPC server implementing the Model Context Protocol, so an
AI coding agent can drive flow execution and design-space exploration the
same way a human invokes the CLI. Communication happens over stdio.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, err := newDeps(false, *verbose, true)
			if err != nil {
				return err
			}

			srv := mcpserver.NewServer(version, runner, runner.Root, xlog.Default(false, *verbose))
			return srv.Start(ctx)
		},
	}
}
