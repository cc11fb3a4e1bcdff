package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpc sends one JSON-RPC request through the server and decodes the reply.
func rpc(t *testing.T, d *Dispatcher, method string, params any) map[string]any {
	t.Helper()
	s := NewServer(d)
	msg, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
	require.NoError(t, err)

	reply := s.HandleMessage(context.Background(), msg)
	raw, err := json.Marshal(reply)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Nil(t, out["error"], string(raw))
	return out["result"].(map[string]any)
}

func TestServer_ListTools(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := rpc(t, d, "tools/list", map[string]any{})
	var names []string
	for _, raw := range res["tools"].([]any) {
		names = append(names, raw.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, d.Catalog().Names(), names)
}

func TestServer_CallTool(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := rpc(t, d, "tools/call", map[string]any{"name": "status", "arguments": map[string]any{}})
	assert.NotEqual(t, true, res["isError"])
	content := res["content"].([]any)
	require.Len(t, content, 1)
	assert.Contains(t, content[0].(map[string]any)["text"], "rspaceVersion")
}

func TestServer_CallToolValidationIsAResult(t *testing.T) {
	d, srv := newTestDispatcher(t)

	res := rpc(t, d, "tools/call", map[string]any{"name": "get_form", "arguments": map[string]any{}})
	assert.Equal(t, true, res["isError"])
	text := res["content"].([]any)[0].(map[string]any)["text"].(string)
	assert.Contains(t, text, `"field":"form_id"`)
	assert.Zero(t, srv.RequestCount())
}

func TestParseDocumentURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
		ok   bool
	}{
		{"rspace://documents/1234", "1234", true},
		{"rspace://documents/SD1234", "SD1234", true},
		{"rspace://documents/", "", false},
		{"rspace://documents/12/fields", "", false},
		{"rspace://forms/12", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := parseDocumentURI(tt.uri)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadDocument(t *testing.T) {
	d, srv := newTestDispatcher(t)
	doc := srv.AddDocument("Assay", time.Now())

	contents, err := readDocument(context.Background(), d, "rspace://documents/"+doc.GlobalID)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "text/html", text.MIMEType)
	assert.Equal(t, "<p>Assay</p>", text.Text)

	_, err = readDocument(context.Background(), d, "rspace://documents/SD1")
	assert.Error(t, err)
}

func TestReadDocument_NotRegisteredWithoutTool(t *testing.T) {
	c, err := NewCatalog(stubTool("status"))
	require.NoError(t, err)
	d := NewDispatcher(c, WithLogger(quiet))

	res := rpc(t, d, "resources/templates/list", map[string]any{})
	assert.Empty(t, res["resourceTemplates"])
}

func TestServe_UnknownTransport(t *testing.T) {
	d, _ := newTestDispatcher(t)

	err := Serve(context.Background(), NewServer(d), ServeOptions{Transport: "carrier-pigeon"})
	assert.ErrorIs(t, err, ErrUnknownTransport)
}

func TestServe_HTTPStopsOnCancel(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, NewServer(d), ServeOptions{Transport: TransportHTTP, Addr: "127.0.0.1:0"}) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
