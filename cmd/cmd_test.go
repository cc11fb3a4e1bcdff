package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jpl-au/rspace-mcp/internal/config"
	"github.com/jpl-au/rspace-mcp/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	env.contains(env.run("version"), "Build Tag:")
	env.contains(env.run("version", "-o", "json"), `"build_tag"`)
}

func TestInvalidOutputFormat(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runErr("version", "-o", "yaml")
	assert.Error(t, err)
}

func TestTools(t *testing.T) {
	t.Run("lists all groups", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("tools")
		env.contains(out, "get_documents")
		env.contains(out, "create_sample")
		env.contains(out, "NAME")
	})

	t.Run("group filter", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("tools", "--group", "eln")
		env.contains(out, "getAuditEvents")
		assert.NotContains(t, out, "create_sample")
	})

	t.Run("json includes schemas", func(t *testing.T) {
		env := newTestEnv(t)

		var tools []toolInfo
		require.NoError(t, json.Unmarshal([]byte(env.run("tools", "-o", "json")), &tools))
		assert.Len(t, tools, 40)
		for _, tool := range tools {
			assert.NotEmpty(t, tool.Description, tool.Name)
			assert.Equal(t, "object", tool.InputSchema["type"], tool.Name)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.runErr("tools", "--group", "lims")
		assert.Error(t, err)
	})

	t.Run("no credentials needed", func(t *testing.T) {
		env := newTestEnv(t)
		t.Setenv("RSPACE_API_KEY", "")

		env.contains(env.run("tools"), "status")
	})
}

func TestTools_ReadOnlyConfig(t *testing.T) {
	env := newTestEnv(t)

	env.run("config", "tools.read_only", "true")
	out := env.run("tools")
	env.contains(out, "get_documents")
	assert.NotContains(t, out, "update_document")
	assert.NotContains(t, out, "delete_form")
	assert.NotContains(t, out, "downloadFile")
}

func TestConfig(t *testing.T) {
	t.Run("get all shows keys", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("config")
		env.contains(out, "http.timeout")
		env.contains(out, "tools.inventory")
		env.contains(out, "limits.max_page_size")
	})

	t.Run("set then get", func(t *testing.T) {
		env := newTestEnv(t)

		env.contains(env.run("config", "http.timeout", "45s"), "(global)")
		env.contains(env.run("config", "http.timeout"), "45s")
	})

	t.Run("local scope", func(t *testing.T) {
		env := newTestEnv(t)

		env.contains(env.run("config", "--local", "log.level", "debug"), "(local)")
		env.contains(env.run("config", "log.level"), "debug")
	})
}

func TestConfig_UnknownKeyListsValidKeys(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runErr("config", "author.name")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnknownKey)
	assert.Contains(t, err.Error(), "http.timeout")
}

func TestConfig_SetJSONReportsPath(t *testing.T) {
	env := newTestEnv(t)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(env.run("-o", "json", "config", "log.level", "warn")), &got))
	assert.Equal(t, "global", got["scope"])
	assert.Equal(t, "config.yaml", filepath.Base(got["path"]))
	assert.FileExists(t, got["path"])
}

func TestConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"config", "author.name", "x"}},
		{"timeout out of range", []string{"config", "http.timeout", "1h"}},
		{"not a bool", []string{"config", "tools.inventory", "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.runErr(tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestCall(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		env := newTestEnv(t)

		env.contains(env.run("call", "status"), `"rspaceVersion": "2.0.0"`)
	})

	t.Run("json arguments", func(t *testing.T) {
		env := newTestEnv(t)
		doc := env.srv.AddDocument("Western blot", time.Now())

		out := env.run("call", "get_single_Rspace_document", `{"doc_id": "`+doc.GlobalID+`"}`)
		env.contains(out, "Western blot")
	})

	t.Run("arguments from stdin", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.runStdin(`{"name": "Project Y"}`, "call", "createNewNotebook", "-")
		env.contains(out, "Project Y")
	})

	t.Run("compact with json output", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("call", "status", "-o", "json")
		env.contains(out, `"rspaceVersion":"2.0.0"`)
	})

	t.Run("dry run shows a diff", func(t *testing.T) {
		env := newTestEnv(t)
		doc := env.srv.AddDocument("Assay", time.Now())
		args := fmt.Sprintf(`{"document_id": %q, "name": "Assay v2", "dry_run": true,
			"fields": [{"id": %d, "content": "<p>Assay</p><p>Added line</p>"}]}`, doc.GlobalID, doc.Fields[0].ID)

		out := env.run("call", "update_document", args)
		env.contains(out, "Dry run for "+doc.GlobalID)
		env.contains(out, `name: "Assay" -> "Assay v2"`)
		env.contains(out, "+ <p>Added line</p>")
		assert.NotContains(t, out, `"dry_run"`)

		out = env.run("-o", "json", "call", "update_document", args)
		env.contains(out, `"dry_run":true`)
	})
}

func TestCall_Failures(t *testing.T) {
	t.Run("validation error", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.runErr("call", "get_single_Rspace_document", `{}`)
		assert.ErrorIs(t, err, ErrToolFailed)
		env.contains(out, `"error": "validation"`)
		assert.Zero(t, env.srv.RequestCount())
	})

	t.Run("unknown tool", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.runErr("call", "get_everything")
		assert.ErrorIs(t, err, ErrToolFailed)
		env.contains(out, "tool_not_found")
	})

	t.Run("not a json object", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.runErr("call", "status", `[1, 2]`)
		assert.Error(t, err)
	})

	t.Run("missing credentials", func(t *testing.T) {
		env := newTestEnv(t)
		t.Setenv("RSPACE_API_KEY", "")

		out, err := env.runErr("call", "status")
		assert.Error(t, err)
		env.contains(out, "RSPACE_API_KEY")
	})
}

func TestAudit(t *testing.T) {
	env := newTestEnv(t)

	env.contains(env.run("audit"), "no calls recorded")

	env.run("call", "status")
	_, _ = env.runErr("call", "get_single_Rspace_document", `{"doc_id": "SD404"}`)

	out := env.run("audit")
	env.contains(out, "mcp:status")
	env.contains(out, "mcp:get_single_Rspace_document")
	env.contains(out, "failed")

	out = env.run("audit", "--tool", "status")
	assert.NotContains(t, out, "get_single_Rspace_document")

	var entries []log.Entry
	require.NoError(t, json.Unmarshal([]byte(env.run("audit", "--failed", "-o", "json")), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "mcp:get_single_Rspace_document", entries[0].Source)
	assert.Equal(t, "cli", entries[0].Actor)
	assert.Equal(t, "SD404", entries[0].Target)
}

func TestAudit_Disabled(t *testing.T) {
	env := newTestEnv(t)

	env.run("config", "audit.enabled", "false")
	env.run("call", "status")

	env.contains(env.run("audit"), "no calls recorded")
}

func TestAudit_BadSince(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runErr("audit", "--since", "yesterday")
	assert.Error(t, err)
}

func TestGuide(t *testing.T) {
	t.Run("main guide", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("guide")
		env.contains(out, "rspace-mcp Guide")
		env.contains(out, "Quick Start")
	})

	t.Run("topics", func(t *testing.T) {
		env := newTestEnv(t)

		env.contains(env.run("guide", "config"), "RSPACE_URL")
		env.contains(env.run("guide", "tools"), "get_workbenches")
	})

	t.Run("lists available on not found", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.runErr("guide", "nonexistent")
		assert.Error(t, err)
		env.contains(out, "Available:")
	})
}

func TestParseToolArgs(t *testing.T) {
	m, err := parseToolArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, m)

	m, err = parseToolArgs([]string{"null"})
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = parseToolArgs([]string{"{"})
	assert.Error(t, err)
}
