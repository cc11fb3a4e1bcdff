package format

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/jpl-au/rspace-mcp/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noColour(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func TestTools(t *testing.T) {
	var buf bytes.Buffer
	err := Tools(&buf, []ToolRow{
		{Name: "get_documents", Group: "eln", ReadOnly: true, Title: "List documents"},
		{Name: "create_sample", Group: "inventory", Title: "Create sample"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[1], "read")
	assert.Contains(t, lines[2], "write")
	assert.Equal(t, strings.Index(lines[0], "GROUP"), strings.Index(lines[1], "eln"), "columns align")
}

func TestTools_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tools(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestAudit(t *testing.T) {
	noColour(t)
	start := time.Date(2024, 5, 1, 10, 30, 0, 0, time.Local).UnixMilli()

	var buf bytes.Buffer
	err := Audit(&buf, []log.Entry{
		{Source: "mcp:get_documents", Action: "list", Start: start, End: start + 84, Success: true},
		{Source: "mcp:delete_form", Action: "delete", Target: "FM3", Start: start, End: start + 1250,
			Error: "Only forms in the NEW state can be deleted\nmore"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "2024-05-01 10:30:00")
	assert.Contains(t, out, "84ms")
	assert.Contains(t, out, "1.25s")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "FM3")
	assert.Contains(t, out, "    Only forms in the NEW state can be deleted\n")
	assert.NotContains(t, out, "more")
}

func TestConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Config(&buf, map[string]string{"timeout": "30s", "inventory.enabled": "true"}))
	assert.Equal(t, "inventory.enabled: true\ntimeout: 30s\n", buf.String())
}
