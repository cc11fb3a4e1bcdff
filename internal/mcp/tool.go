// tool.go defines the tool descriptor the catalog holds and the typed
// argument binding every handler goes through.
//
// Separated from catalog.go so the descriptor and its handler contract can be
// read without the registry mechanics. Handlers never see the raw argument
// map: bind decodes it into a per-tool struct and runs that struct's
// Validate method before the handler body executes.

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jpl-au/rspace-mcp/internal/rspace"
	"github.com/jpl-au/rspace-mcp/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

// Group partitions the catalog so whole API surfaces can be switched off.
type Group string

const (
	GroupELN       Group = "eln"
	GroupInventory Group = "inventory"
)

// Handler performs a tool's remote call(s). It returns the value to relay to
// the caller or an error; the dispatcher owns the response envelope.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool describes one callable operation.
type Tool struct {
	Def      mcp.Tool // name, description and input schema advertised to clients
	Group    Group
	ReadOnly bool
	Action   string // audit verb: read, list, write, delete, download
	Target   string // argument naming the addressed record, if any
	Handler  Handler
}

// Name returns the tool name.
func (t Tool) Name() string { return t.Def.Name }

// validator is implemented by argument structs with cross-field rules.
type validator interface {
	Validate() error
}

// bind adapts a typed handler to Handler. Arguments are decoded into a fresh
// T; JSON type mismatches become field errors. If *T implements Validate it
// runs before fn.
func bind[T any](fn func(ctx context.Context, args T) (any, error)) Handler {
	return func(ctx context.Context, raw map[string]any) (any, error) {
		var args T
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if v, ok := any(&args).(validator); ok {
			if err := v.Validate(); err != nil {
				return nil, err
			}
		}
		return fn(ctx, args)
	}
}

// decodeArgs round-trips the argument map through JSON into out.
func decodeArgs(raw map[string]any, out any) error {
	if len(raw) == 0 {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: arguments are not JSON: %v", validate.ErrInvalidArgument, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return validate.Fieldf(typeErr.Field, "expected %s, got %s", typeErr.Type, typeErr.Value)
		}
		var fe *validate.FieldError
		if errors.As(err, &fe) {
			return fe
		}
		return fmt.Errorf("%w: %v", validate.ErrInvalidArgument, err)
	}
	return nil
}

// annotate applies the MCP behaviour hints matching a tool's effect.
func annotate(def mcp.Tool, title string, readOnly, destructive bool) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(readOnly),
		mcp.WithDestructiveHintAnnotation(destructive),
		mcp.WithIdempotentHintAnnotation(readOnly),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	for _, opt := range opts {
		opt(&def)
	}
	return def
}

// withID declares an identifier argument that accepts either a number or a
// string global id such as "SD1234".
func withID(name, desc string, required bool) mcp.ToolOption {
	return func(t *mcp.Tool) {
		t.InputSchema.Properties[name] = map[string]any{
			"type":        []any{"integer", "string"},
			"description": desc,
		}
		if required {
			t.InputSchema.Required = append(t.InputSchema.Required, name)
		}
	}
}

// integer narrows a number property to whole numbers.
func integer() mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = "integer"
	}
}

// recordID is an RSpace identifier given as a number or a global id string.
type recordID string

// UnmarshalJSON accepts 123, "123" and "SD123".
func (r *recordID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = recordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: id must be a number or a global id string", validate.ErrInvalidArgument)
	}
	*r = recordID(n.String())
	return nil
}

// resolve parses the id, reporting failures against field.
func (r recordID) resolve(field string) (int64, error) {
	if r == "" {
		return 0, validate.Field(field, validate.ErrMissingArgument)
	}
	id, err := rspace.ParseID(string(r))
	if err != nil {
		return 0, validate.Field(field, err)
	}
	return id, nil
}
