/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// serve.go implements the "rspace-mcp serve" command for MCP server operation.
//
// Design: serve blocks until the client disconnects or the process is
// signalled. Over stdio nothing but JSON-RPC may reach stdout, so all
// diagnostics go through slog on stderr.

package cmd

import (
	"github.com/jpl-au/rspace-mcp/internal/mcp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server",
		Long: `Start an MCP (Model Context Protocol) server for LLM integration.

  rspace-mcp serve                    # stdio, for Claude Desktop and similar clients
  rspace-mcp serve --http :8080       # streamable HTTP on port 8080`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	c.Flags().String("http", "", "Serve streamable HTTP on this address instead of stdio")
	return c
}

func runServe(c *cobra.Command, _ []string) error {
	addr, _ := c.Flags().GetString("http")

	d, err := newDispatcher("mcp")
	if err != nil {
		return err
	}

	opts := mcp.ServeOptions{Transport: mcp.TransportStdio}
	if addr != "" {
		opts = mcp.ServeOptions{Transport: mcp.TransportHTTP, Addr: addr}
	}
	return mcp.Serve(c.Context(), mcp.NewServer(d), opts)
}
