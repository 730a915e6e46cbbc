package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/splitmerge/internal/mcp"
)

func stdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants split files, merge fragments and browse recorded
splits. Configuration is loaded from environment variables and .env file.
Logs are written to stderr so stdout carries only protocol messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client, slogger, err := openClient(cfg)
			if err != nil {
				return err
			}
			defer closeClient(client, slogger)

			slogger.Info("starting MCP server",
				slog.String("version", version),
				slog.Bool("catalog", client.Catalog != nil),
			)

			var splits mcp.SplitLister
			if client.Catalog != nil {
				splits = client.Catalog
			}
			server := mcp.NewServer(client, client, splits, client.ChunkSize(), version, slogger)
			return server.ServeStdio()
		},
	}
}
