/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command and CLI execution entry point.
//
// Design: PersistentPreRunE loads configuration and sets up stderr logging
// for every command. Credentials are only read by commands that talk to
// RSpace (serve, call), so tools, config, guide and version work on a
// machine with no server configured. The audit log is opened the same way:
// only for commands in auditedCommands.

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/jpl-au/rspace-mcp/internal/config"
	"github.com/jpl-au/rspace-mcp/internal/log"
	"github.com/spf13/cobra"
)

// cfg is the configuration loaded by PersistentPreRunE.
var cfg *config.Config

// auditedCommands open the audit log before running.
var auditedCommands = map[string]bool{
	"serve": true,
	"call":  true,
	"audit": true,
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rspace-mcp",
		Short: "MCP server for the RSpace electronic lab notebook",
		Long: `Exposes the RSpace ELN and Inventory APIs to LLM clients as MCP tools.

Credentials come from the environment:
  RSPACE_URL       base URL of the RSpace server, e.g. https://rspace.example.org
  RSPACE_API_KEY   API key from your RSpace profile page

Run 'rspace-mcp guide' for setup instructions.`,
		SilenceUsage: true,
		Run: func(c *cobra.Command, _ []string) {
			_ = c.Help()
		},
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			if output != "" && !slices.Contains(validOutputFormats, output) {
				return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
			}

			loaded, err := config.Load()
			if err != nil {
				return PrintJSONError(fmt.Errorf("config load: %w", err))
			}
			if err := loaded.ApplyEnv(os.Getenv); err != nil {
				return PrintJSONError(err)
			}
			if logLevel != "" {
				if err := loaded.Set("log.level", logLevel); err != nil {
					return PrintJSONError(fmt.Errorf("--log-level: %w", err))
				}
			}
			cfg = loaded
			setupLogging(cfg)

			if auditedCommands[topLevelCmdName(c)] && (cfg.AuditEnabled() || topLevelCmdName(c) == "audit") {
				// Best effort: a tool call must not fail because it cannot be recorded.
				if err := log.Open(); err != nil {
					slog.Warn("audit log unavailable", "path", log.DBPath(), "error", err)
				}
			}
			return nil
		},
	}
	bindGlobalFlags(root)

	root.AddCommand(
		newServeCmd(),
		newToolsCmd(),
		newCallCmd(),
		newConfigCmd(),
		newAuditCmd(),
		newGuideCmd(),
		newVersionCmd(),
	)
	return root
}

// setupLogging sends diagnostic logs to stderr. Stdout is reserved for
// command output and, under serve, the JSON-RPC stream.
func setupLogging(c *config.Config) {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if c.LogFormat() == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// topLevelCmdName returns the name of the top-level command (direct child of root).
// For "rspace-mcp call status", returns "call".
func topLevelCmdName(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// Execute runs the root command and handles process lifecycle.
// SIGINT and SIGTERM cancel the command context so serve shuts down cleanly.
// Exit code 1 indicates error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	log.Close()

	if err != nil {
		os.Exit(1)
	}
}
