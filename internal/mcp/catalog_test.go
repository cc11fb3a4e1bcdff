package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTool(name string) Tool {
	return Tool{
		Def:     mcp.NewTool(name, mcp.WithDescription("stub "+name)),
		Group:   GroupELN,
		Handler: func(context.Context, map[string]any) (any, error) { return name, nil },
	}
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog(stubTool("b"), stubTool("a"), stubTool("c"))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"a", "b", "c"}, c.Names())

	var order []string
	for _, tool := range c.Tools() {
		order = append(order, tool.Name())
	}
	assert.Equal(t, []string{"b", "a", "c"}, order, "Tools keeps registration order")

	tool, ok := c.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "a", tool.Name())

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}

func TestNewCatalog_Rejects(t *testing.T) {
	noHandler := stubTool("x")
	noHandler.Handler = nil

	noDesc := stubTool("y")
	noDesc.Def.Description = ""

	tests := []struct {
		name  string
		tools []Tool
		want  error
	}{
		{"duplicate", []Tool{stubTool("a"), stubTool("a")}, ErrDuplicateTool},
		{"empty name", []Tool{stubTool("")}, ErrInvalidTool},
		{"nil handler", []Tool{noHandler}, ErrInvalidTool},
		{"no description", []Tool{noDesc}, ErrInvalidTool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.tools...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCatalog_ToolsIsACopy(t *testing.T) {
	c, err := NewCatalog(stubTool("a"))
	require.NoError(t, err)

	tools := c.Tools()
	tools[0] = stubTool("z")

	_, ok := c.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, c.Names())
}

// publishedNames are the tool names agents already use.
var publishedNames = []string{
	"status", "get_documents", "get_single_Rspace_document", "update_document",
	"createNewNotebook", "createNotebookEntry", "tagDocumentOrNotebookEntry",
	"renameDocumentOrNotebookEntry", "listNotebookAttachments",
	"get_forms", "get_form", "create_form", "publish_form", "unpublish_form",
	"share_form", "unshare_form", "delete_form", "create_document_from_form",
	"getAuditEvents", "downloadFile",
	"create_sample", "get_sample", "list_samples", "duplicate_sample", "add_note_to_subsample",
	"search_inventory", "create_list_container", "get_container", "list_containers", "get_workbenches",
	"split_subsample", "create_grid_container", "move_items_to_list_container",
	"get_container_summary", "get_container_contents_only",
	"create_sample_template", "get_sample_template", "list_sample_templates",
	"rename_inventory_item", "add_extra_fields_to_item",
}

func TestBuildCatalog(t *testing.T) {
	c, err := BuildCatalog(nil, DefaultOptions())
	require.NoError(t, err)

	assert.ElementsMatch(t, publishedNames, c.Names())
	for _, tool := range c.Tools() {
		assert.NotEmpty(t, tool.Action, "%s has no audit action", tool.Name())
		assert.NotEmpty(t, tool.Def.Annotations.Title, "%s has no title", tool.Name())
		assert.Equal(t, "object", tool.Def.InputSchema.Type, "%s schema", tool.Name())
		if tool.Target != "" {
			assert.Contains(t, tool.Def.InputSchema.Properties, tool.Target, "%s target must be an argument", tool.Name())
		}
		for _, req := range tool.Def.InputSchema.Required {
			assert.Contains(t, tool.Def.InputSchema.Properties, req, "%s requires undeclared %s", tool.Name(), req)
		}
	}
}

func TestBuildCatalog_Filters(t *testing.T) {
	t.Run("inventory off", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Inventory = false
		c, err := BuildCatalog(nil, opts)
		require.NoError(t, err)

		for _, tool := range c.Tools() {
			assert.Equal(t, GroupELN, tool.Group, tool.Name())
		}
		_, ok := c.Lookup("create_sample")
		assert.False(t, ok)
		_, ok = c.Lookup("get_documents")
		assert.True(t, ok)
	})

	t.Run("read only", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ReadOnly = true
		c, err := BuildCatalog(nil, opts)
		require.NoError(t, err)

		for _, tool := range c.Tools() {
			assert.True(t, tool.ReadOnly, tool.Name())
		}
		for _, name := range []string{
			"update_document", "delete_form", "createNotebookEntry", "create_sample",
			"downloadFile", "split_subsample", "move_items_to_list_container", "rename_inventory_item",
		} {
			_, ok := c.Lookup(name)
			assert.False(t, ok, name)
		}
		for _, name := range []string{"getAuditEvents", "get_container_summary", "list_sample_templates"} {
			_, ok := c.Lookup(name)
			assert.True(t, ok, name)
		}
	})
}
