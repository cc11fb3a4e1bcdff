// Package mcp implements the Model Context Protocol server, exposing the
// RSpace ELN and Inventory APIs to LLMs as tools. The catalog, argument
// checking and dispatch live here so the MCP server and the call command
// share one path to the remote API.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jpl-au/rspace-mcp/internal/version"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Name is advertised to clients during initialisation.
const Name = "rspace-mcp"

// Transports accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// ErrUnknownTransport is returned by Serve for a transport it cannot run.
var ErrUnknownTransport = errors.New("unknown transport")

// shutdownTimeout bounds how long in-flight HTTP requests get on exit.
const shutdownTimeout = 5 * time.Second

const instructions = `Tools for an RSpace electronic lab notebook and inventory.
Record ids may be given as numbers (1234) or global ids (SD1234, NB12, FM3, SA7).
Call status first if unsure the server is reachable. Write tools change shared lab records;
prefer update_document with dry_run to preview edits. Errors are JSON objects whose "error"
field is one of validation, remote, timeout, tool_not_found or execution.`

// ServeOptions selects the transport.
type ServeOptions struct {
	Transport string // stdio (default) or http
	Addr      string // listen address for http
}

// NewServer creates an MCP server exposing every tool in the dispatcher's
// catalog, plus document resources.
func NewServer(d *Dispatcher) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		version.Short(),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	for _, t := range d.Catalog().Tools() {
		s.AddTool(t.Def, d.Handler(t.Name()))
	}
	registerResources(s, d)
	return s
}

// Serve runs s on the selected transport until ctx is cancelled or the
// transport fails.
//
// Design: logging goes to stderr. Over stdio, stdout carries JSON-RPC
// messages and anything else written there corrupts the stream.
func Serve(ctx context.Context, s *server.MCPServer, opts ServeOptions) error {
	switch opts.Transport {
	case "", TransportStdio:
		slog.Info("rspace MCP server ready", "version", version.Short(), "transport", TransportStdio)
		err := server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
		if err == nil || errors.Is(err, context.Canceled) {
			slog.Info("server stopped")
			return nil
		}
		return err
	case TransportHTTP:
		return serveHTTP(ctx, s, opts.Addr)
	default:
		return fmt.Errorf("%w: %q (use %s or %s)", ErrUnknownTransport, opts.Transport, TransportStdio, TransportHTTP)
	}
}

func serveHTTP(ctx context.Context, s *server.MCPServer, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewStreamableHTTPServer(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	slog.Info("rspace MCP server ready", "version", version.Short(), "transport", TransportHTTP, "addr", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// documentURI is the resource template for reading a document's content.
const documentURI = "rspace://documents/{id}"

// registerResources exposes documents by URI so clients can load one as
// context without a tool call. Reads go through the dispatcher and are
// audited like the equivalent tool call.
func registerResources(s *server.MCPServer, d *Dispatcher) {
	if _, ok := d.Catalog().Lookup("get_single_Rspace_document"); !ok {
		return
	}
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			documentURI,
			"RSpace document",
			mcp.WithTemplateDescription("Concatenated HTML content of a document; id is numeric or global (SD1234)"),
			mcp.WithTemplateMIMEType("text/html"),
		),
		func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return readDocument(ctx, d, req.Params.URI)
		},
	)
}

// ErrInvalidURI indicates a malformed resource URI.
var ErrInvalidURI = errors.New("invalid URI")

func readDocument(ctx context.Context, d *Dispatcher, uri string) ([]mcp.ResourceContents, error) {
	id, err := parseDocumentURI(uri)
	if err != nil {
		return nil, err
	}
	v, err := d.Invoke(ctx, "get_single_Rspace_document", map[string]any{"doc_id": id})
	if err != nil {
		return nil, err
	}
	doc, ok := v.(documentView)
	if !ok {
		return nil, fmt.Errorf("read %s: unexpected result %T", uri, v)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/html",
			Text:     doc.Content,
		},
	}, nil
}

// parseDocumentURI extracts the id from rspace://documents/{id}.
func parseDocumentURI(uri string) (string, error) {
	const prefix = "rspace://documents/"
	id, ok := strings.CutPrefix(uri, prefix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	return id, nil
}
