package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/flyerdeck/flyerctl/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the dashboard as MCP tools over stdio",
	Long: `Run an MCP server on stdin/stdout so local agents can list flyers,
correct extractions, generate images, and schedule posts through the same
authenticated client the CLI uses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		mcpSrv := mcptools.NewServer(mcptools.Deps{API: client}, version)
		stdioSrv := server.NewStdioServer(mcpSrv)

		slog.Info("MCP server started (stdio transport)")
		if err := stdioSrv.Listen(cmd.Context(), os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
