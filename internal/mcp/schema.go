// schema.go checks tool arguments against the tool's declared input schema.
//
// Only the subset of JSON Schema the catalog emits is understood: required,
// type (single or a list), enum, minimum/maximum, minItems/maxItems and the
// type of array items. Anything else in a property is ignored. Failures are
// FieldErrors so the caller learns which argument to fix, and they happen
// before any remote call.

package mcp

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/jpl-au/rspace-mcp/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

// checkArgs validates args against the tool's input schema.
func checkArgs(def mcp.Tool, args map[string]any) error {
	props := def.InputSchema.Properties

	for _, name := range def.InputSchema.Required {
		v, ok := args[name]
		if !ok || v == nil {
			return validate.Field(name, validate.ErrMissingArgument)
		}
	}

	// Sorted so the first reported problem is stable across calls.
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw, known := props[name]
		if !known {
			return validate.Fieldf(name, "unknown argument (accepted: %s)", strings.Join(propertyNames(props), ", "))
		}
		schema, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		v := args[name]
		if v == nil {
			// null is treated as absent for optional arguments
			continue
		}
		if err := checkValue(name, schema, v); err != nil {
			return err
		}
	}
	return nil
}

func propertyNames(props map[string]any) []string {
	names := make([]string, 0, len(props))
	for n := range props {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func checkValue(field string, schema map[string]any, v any) error {
	types := schemaTypes(schema["type"])
	if len(types) > 0 && !slices.ContainsFunc(types, func(t string) bool { return hasType(v, t) }) {
		return validate.Fieldf(field, "expected %s, got %s", strings.Join(types, " or "), jsonType(v))
	}

	if enum := stringList(schema["enum"]); len(enum) > 0 {
		s, _ := v.(string)
		if !slices.Contains(enum, s) {
			return validate.Fieldf(field, "must be one of %s", strings.Join(enum, ", "))
		}
	}

	if n, ok := number(v); ok {
		if lo, ok := number(schema["minimum"]); ok && n < lo {
			return validate.Fieldf(field, "must be at least %v", lo)
		}
		if hi, ok := number(schema["maximum"]); ok && n > hi {
			return validate.Fieldf(field, "must be at most %v", hi)
		}
	}

	if items, ok := asList(v); ok {
		if lo, ok := number(schema["minItems"]); ok && float64(len(items)) < lo {
			return validate.Fieldf(field, "must contain at least %v item(s)", lo)
		}
		if hi, ok := number(schema["maxItems"]); ok && float64(len(items)) > hi {
			return validate.Fieldf(field, "must contain at most %v item(s)", hi)
		}
		if itemSchema, ok := schema["items"].(map[string]any); ok {
			for i, item := range items {
				if err := checkValue(fmt.Sprintf("%s[%d]", field, i), itemSchema, item); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// schemaTypes normalises "type" to a list.
func schemaTypes(t any) []string {
	switch t := t.(type) {
	case string:
		return []string{t}
	default:
		return stringList(t)
	}
}

func stringList(v any) []string {
	switch v := v.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func hasType(v any, t string) bool {
	switch t {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "number":
		_, ok := number(v)
		return ok
	case "integer":
		n, ok := number(v)
		return ok && n == math.Trunc(n)
	case "array":
		_, ok := asList(v)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "null":
		return v == nil
	}
	return true
}

func jsonType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	}
	if _, ok := number(v); ok {
		return "number"
	}
	if _, ok := asList(v); ok {
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

// number accepts the numeric types arguments arrive as: float64 from JSON,
// json.Number from a UseNumber decoder, and Go integers from direct callers.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
