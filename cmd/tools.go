/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// tools.go implements the "rspace-mcp tools" command, listing the catalog
// the server would advertise under the current configuration.

package cmd

import (
	"fmt"

	"github.com/jpl-au/rspace-mcp/internal/format"
	"github.com/jpl-au/rspace-mcp/internal/mcp"
	"github.com/spf13/cobra"
)

// toolInfo is the JSON form of one listed tool.
type toolInfo struct {
	Name        string         `json:"name"`
	Group       string         `json:"group"`
	ReadOnly    bool           `json:"read_only"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

func newToolsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		Long: `List the tools the MCP server exposes with the current configuration.

  rspace-mcp tools                  # all tools
  rspace-mcp tools --group eln      # ELN tools only
  rspace-mcp tools -o json          # names, descriptions and input schemas`,
		Args: cobra.NoArgs,
		RunE: runTools,
	}
	c.Flags().String("group", "", "Only list tools in this group: eln or inventory")
	_ = c.RegisterFlagCompletionFunc("group", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(mcp.GroupELN), string(mcp.GroupInventory)}, cobra.ShellCompDirectiveNoFileComp
	})
	return c
}

func runTools(c *cobra.Command, _ []string) error {
	group, _ := c.Flags().GetString("group")
	if group != "" && group != string(mcp.GroupELN) && group != string(mcp.GroupInventory) {
		return PrintJSONError(fmt.Errorf("unknown group %q (use %s or %s)", group, mcp.GroupELN, mcp.GroupInventory))
	}

	// Listing needs no server: handlers are built but never called.
	catalog, err := mcp.BuildCatalog(nil, mcp.OptionsFromConfig(cfg))
	if err != nil {
		return PrintJSONError(err)
	}

	var rows []format.ToolRow
	var infos []toolInfo
	for _, t := range catalog.Tools() {
		if group != "" && string(t.Group) != group {
			continue
		}
		rows = append(rows, format.ToolRow{Name: t.Name(), Group: string(t.Group), ReadOnly: t.ReadOnly, Title: t.Def.Annotations.Title})
		infos = append(infos, toolInfo{
			Name:        t.Name(),
			Group:       string(t.Group),
			ReadOnly:    t.ReadOnly,
			Title:       t.Def.Annotations.Title,
			Description: t.Def.Description,
			InputSchema: schemaMap(t),
		})
	}

	if JSON() {
		return PrintJSON(infos)
	}
	return format.Tools(Out(), rows)
}

func schemaMap(t mcp.Tool) map[string]any {
	return map[string]any{
		"type":       t.Def.InputSchema.Type,
		"properties": t.Def.InputSchema.Properties,
		"required":   t.Def.InputSchema.Required,
	}
}
