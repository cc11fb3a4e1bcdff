// Package format provides output formatting utilities for CLI display.
//
// Centralises formatting logic so that command implementations focus on
// calling the catalog and audit log while this package handles presentation
// concerns like column alignment and colourised status.
package format

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jpl-au/rspace-mcp/internal/log"
)

// ToolRow is one line of the tool listing.
type ToolRow struct {
	Name     string
	Group    string
	ReadOnly bool
	Title    string
}

// Tools prints the tool catalog as an aligned table.
func Tools(w io.Writer, rows []ToolRow) error {
	if len(rows) == 0 {
		return nil
	}

	maxName := 4 // minimum "NAME"
	for _, r := range rows {
		maxName = max(maxName, len(r.Name))
	}

	fmt.Fprintf(w, "%-*s  %-9s  %-5s  %s\n", maxName, "NAME", "GROUP", "MODE", "TITLE")
	for _, r := range rows {
		mode := "write"
		if r.ReadOnly {
			mode = "read"
		}
		fmt.Fprintf(w, "%-*s  %-9s  %-5s  %s\n", maxName, r.Name, r.Group, mode, r.Title)
	}
	return nil
}

// Audit prints audit log entries, newest first as given. Failed calls are
// shown in red when colour is enabled.
//
// Column order is TIME, DUR, STATUS, ACTION, SOURCE, TARGET. Fixed-width
// columns come first so variable-length sources do not disrupt alignment.
func Audit(w io.Writer, entries []log.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	maxSource := 6 // minimum "SOURCE"
	for _, e := range entries {
		maxSource = max(maxSource, len(e.Source))
	}

	ok := color.New(color.FgGreen)
	failed := color.New(color.FgRed, color.Bold)
	dim := color.New(color.FgHiBlack)

	fmt.Fprintf(w, "%-19s  %7s  %-6s  %-8s  %-*s  %s\n", "TIME", "DUR", "STATUS", "ACTION", maxSource, "SOURCE", "TARGET")
	for _, e := range entries {
		status := ok.Sprint("ok    ")
		if !e.Success {
			status = failed.Sprint("failed")
		}
		target := e.Target
		if target == "" {
			target = "-"
		}
		fmt.Fprintf(w, "%s  %7s  %s  %-8s  %-*s  %s\n",
			time.UnixMilli(e.Start).Format("2006-01-02 15:04:05"),
			shortDuration(e.Duration()),
			status,
			e.Action,
			maxSource, e.Source,
			target,
		)
		if e.Error != "" {
			fmt.Fprintf(w, "    %s\n", dim.Sprint(firstLine(e.Error)))
		}
	}
	return nil
}

// Config prints key: value pairs sorted by key.
func Config(w io.Writer, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %s\n", k, values[k])
	}
	return nil
}

// shortDuration renders d with millisecond precision, e.g. "1.25s" or "84ms".
func shortDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if len(line) > 100 {
		line = line[:97] + "..."
	}
	return line
}
