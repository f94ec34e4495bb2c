package main

import (
	"fmt"

	"github.com/nervelab/neuroplex/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start a Model Context Protocol server exposing the simulation tools
(sim_create, sim_step, sim_stats, sim_experiment, sim_render) over stdio.

With --db, sim_experiment calls can persist runs to the store.

Add to an MCP client configuration:
  {"command": "neuroplex", "args": ["mcp-server"]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "neuroplex",
				Version: version,
				DBPath:  dbPath,
			})
			if err != nil {
				return fmt.Errorf("create MCP server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().String("db", "", "Run store path for persisted experiment runs")

	return cmd
}
