// dispatch.go implements the boundary between a tool request and its handler.
//
// Every call, whether it arrives from an MCP client or from the call command,
// goes through Dispatcher.Invoke: look the tool up, check the arguments
// against its schema, run the handler under a deadline, and record the
// outcome. Call then collapses the (value, error) pair into the MCP result
// envelope so no handler error or panic escapes as a protocol failure.
//
// Design: there is no retry. A failed call is reported once, with enough
// structure (kind, field, remote status) for the agent to decide whether to
// call again.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jpl-au/rspace-mcp/internal/config"
	"github.com/jpl-au/rspace-mcp/internal/log"
	"github.com/jpl-au/rspace-mcp/internal/rspace"
	"github.com/jpl-au/rspace-mcp/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultTimeout bounds a single tool call when no timeout is configured.
const DefaultTimeout = config.DefaultTimeout

var (
	ErrToolNotFound = errors.New("tool not found")
	ErrToolPanic    = errors.New("tool panicked")
)

// NotFoundError names the unknown tool and lists the registered ones.
type NotFoundError struct {
	Name  string
	Known []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %q (known tools: %s)", ErrToolNotFound, e.Name, strings.Join(e.Known, ", "))
}

// Is matches ErrToolNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrToolNotFound }

// Error kinds reported in the "error" field of a failed result.
const (
	KindValidation = "validation"
	KindRemote     = "remote"
	KindTimeout    = "timeout"
	KindNotFound   = "tool_not_found"
	KindExecution  = "execution"
)

// ErrorResult is the JSON body of a failed tool result.
type ErrorResult struct {
	Kind    string   `json:"error"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Status  int      `json:"status,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Known   []string `json:"known_tools,omitempty"`
	Hint    string   `json:"hint,omitempty"`
}

// Dispatcher routes calls to catalog tools.
type Dispatcher struct {
	catalog *Catalog
	timeout time.Duration
	logger  *slog.Logger
	actor   string
}

// DispatchOption configures a Dispatcher.
type DispatchOption func(*Dispatcher)

// WithCallTimeout sets the per-call deadline. Zero or negative keeps the default.
func WithCallTimeout(d time.Duration) DispatchOption {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// WithLogger sets the logger for per-call lines.
func WithLogger(l *slog.Logger) DispatchOption {
	return func(dp *Dispatcher) {
		if l != nil {
			dp.logger = l
		}
	}
}

// WithActor sets who the audit log records as the caller ("mcp" or "cli").
func WithActor(actor string) DispatchOption {
	return func(dp *Dispatcher) {
		dp.actor = actor
	}
}

// NewDispatcher creates a dispatcher over catalog.
func NewDispatcher(catalog *Catalog, opts ...DispatchOption) *Dispatcher {
	d := &Dispatcher{
		catalog: catalog,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		actor:   "mcp",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Catalog returns the catalog the dispatcher serves.
func (d *Dispatcher) Catalog() *Catalog { return d.catalog }

// Invoke runs the named tool and returns its raw value or a typed error:
// *NotFoundError, *validate.FieldError, *rspace.APIError, a context error,
// or any other handler failure.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	tool, ok := d.catalog.Lookup(name)
	if !ok {
		return nil, &NotFoundError{Name: name, Known: d.catalog.Names()}
	}
	if args == nil {
		args = map[string]any{}
	}

	reqID := uuid.NewString()
	ev := log.Event("mcp:"+name, tool.Action).Actor(d.actor).Request(reqID)
	if tool.Target != "" {
		if v, ok := args[tool.Target]; ok && v != nil {
			ev.Target(fmt.Sprint(v))
		}
	}
	for k, v := range auditArgs(args, tool.Target) {
		ev.Detail(k, v)
	}

	start := time.Now()
	value, err := d.run(ctx, tool, args)

	ev.Write(err)
	d.logCall(ctx, name, reqID, time.Since(start), err)
	return value, err
}

func (d *Dispatcher) run(ctx context.Context, tool Tool, args map[string]any) (value any, err error) {
	if err := checkArgs(tool.Def, args); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool panic", "tool", tool.Name(), "panic", r, "stack", string(debug.Stack()))
			value, err = nil, fmt.Errorf("%w: %v", ErrToolPanic, r)
		}
	}()
	return tool.Handler(ctx, args)
}

func (d *Dispatcher) logCall(ctx context.Context, name, reqID string, took time.Duration, err error) {
	attrs := []any{"tool", name, "request_id", reqID, "duration", took.Round(time.Millisecond)}
	if err == nil {
		d.logger.InfoContext(ctx, "tool call", attrs...)
		return
	}
	attrs = append(attrs, "kind", errorKind(err), "error", err)
	d.logger.WarnContext(ctx, "tool call failed", attrs...)
}

// Call runs the named tool and returns the MCP result envelope. Failures are
// results with IsError set, never Go errors.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	value, err := d.Invoke(ctx, name, args)
	if err != nil {
		return errorResult(err)
	}
	return valueResult(value)
}

// Handler adapts the named tool to the mcp-go server.
func (d *Dispatcher) Handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return d.Call(ctx, name, req.GetArguments()), nil
	}
}

// Classify maps an error from Invoke to its ErrorResult.
func Classify(err error) ErrorResult {
	r := ErrorResult{Kind: errorKind(err), Message: err.Error()}

	var nf *NotFoundError
	var fe *validate.FieldError
	var apiErr *rspace.APIError
	switch {
	case errors.As(err, &nf):
		r.Known = nf.Known
	case errors.As(err, &fe):
		r.Field = fe.Field
		r.Message = fe.Err.Error()
	case errors.As(err, &apiErr):
		r.Status = apiErr.StatusCode
		if apiErr.Message != "" {
			r.Message = apiErr.Message
		}
		r.Errors = apiErr.Errors
		r.Hint = remoteHint(err)
	}
	return r
}

// remoteHint suggests what the agent can do about the common RSpace
// failures.
func remoteHint(err error) string {
	switch {
	case rspace.IsUnauthorized(err):
		return "the API key was rejected or lacks access to this record; calling again will not help"
	case rspace.IsRateLimited(err):
		return "RSpace is rate limiting requests; wait before calling again"
	case rspace.IsNotFound(err):
		return "no record with this id; use a list or search tool to find valid ids"
	}
	return ""
}

func errorKind(err error) string {
	var apiErr *rspace.APIError
	switch {
	case errors.Is(err, ErrToolNotFound):
		return KindNotFound
	case errors.Is(err, validate.ErrInvalidArgument):
		return KindValidation
	case errors.As(err, &apiErr):
		return KindRemote
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindExecution
	}
}

func errorResult(err error) *mcp.CallToolResult {
	data, mErr := json.Marshal(Classify(err))
	if mErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(data))
}

// valueResult serialises a handler's value as compact JSON. Strings
// are relayed as-is.
func valueResult(v any) *mcp.CallToolResult {
	if s, ok := v.(string); ok {
		return mcp.NewToolResultText(s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}
	return mcp.NewToolResultText(string(data))
}

// ResultText returns the concatenated text content of a result.
func ResultText(r *mcp.CallToolResult) string {
	var b strings.Builder
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// bodyArgs never reach the audit log; they carry document content.
var bodyArgs = map[string]bool{
	"text_content": true,
	"fields":       true,
	"note":         true,
	"description":  true,
}

// auditArgs returns the arguments worth recording, minus content bodies and
// the target already stored in its own column.
func auditArgs(args map[string]any, target string) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if k == target || bodyArgs[k] {
			continue
		}
		out[k] = v
	}
	return out
}
