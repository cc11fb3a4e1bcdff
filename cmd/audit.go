/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// audit.go implements the "rspace-mcp audit" command, reading back the local
// log of tool invocations.
//
// Design: this is the adapter's own record of what it was asked to do.
// RSpace's server-side audit trail is available to LLMs via getAuditEvents;
// this command answers "what did my assistant call, and did it work?".

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/jpl-au/rspace-mcp/internal/duration"
	"github.com/jpl-au/rspace-mcp/internal/format"
	"github.com/jpl-au/rspace-mcp/internal/log"
	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "audit",
		Short: "Show recent tool calls",
		Long: `Show tool calls recorded in the local audit log, newest first.

  rspace-mcp audit                        # last 50 calls
  rspace-mcp audit --tool update_document # one tool only
  rspace-mcp audit --failed --since 24h   # failures in the last day
  rspace-mcp audit --since 7d -o json

The log lives at ~/.rspace-mcp/log/rspace-mcp-log.db. Disable recording
with 'rspace-mcp config audit.enabled false'.`,
		Args: cobra.NoArgs,
		RunE: runAudit,
	}
	c.Flags().IntP("limit", "n", 50, "Maximum entries to show")
	c.Flags().String("tool", "", "Only show calls to this tool")
	c.Flags().String("since", "", "Only show calls newer than this (e.g. 12h, 7d, 4w)")
	c.Flags().Bool("failed", false, "Only show failed calls")
	return c
}

func runAudit(c *cobra.Command, _ []string) error {
	limit, _ := c.Flags().GetInt("limit")
	tool, _ := c.Flags().GetString("tool")
	since, _ := c.Flags().GetString("since")
	failed, _ := c.Flags().GetBool("failed")

	if limit < 1 {
		return PrintJSONError(fmt.Errorf("--limit must be at least 1, got %d", limit))
	}

	f := log.Filter{Limit: limit, FailedOnly: failed}
	if tool != "" {
		f.Source = tool
		if !strings.Contains(tool, ":") {
			f.Source = "mcp:" + tool
		}
	}
	if since != "" {
		t, err := duration.Since(since, time.Now())
		if err != nil {
			return PrintJSONError(fmt.Errorf("--since: %w", err))
		}
		f.Since = t
	}

	entries, err := log.Recent(c.Context(), f)
	if err != nil {
		return PrintJSONError(fmt.Errorf("read audit log %s: %w", log.DBPath(), err))
	}

	if JSON() {
		if entries == nil {
			entries = []log.Entry{}
		}
		return PrintJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(Out(), "no calls recorded")
		return nil
	}
	return format.Audit(Out(), entries)
}
