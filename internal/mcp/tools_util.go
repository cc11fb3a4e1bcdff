// tools_util.go provides helpers shared by the tool handlers.
//
// Separated to centralise the argument rules that several tools apply the
// same way: page-size defaults and limits, tag lists, optional ids.
//
// Design: optional arguments default quietly (an omitted page_size becomes
// the tool's default) but a value that is present and wrong is an error.
// LLMs often omit optional parameters; silently replacing a bad value would
// hide the mistake from them.

package mcp

import (
	"fmt"
	"strings"

	"github.com/jpl-au/rspace-mcp/internal/config"
	"github.com/jpl-au/rspace-mcp/internal/rspace"
	"github.com/jpl-au/rspace-mcp/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultPageSize is used by listing tools when page_size is omitted.
const defaultPageSize = 20

// pageSize returns n, or def when n is zero, checked against limit.
func (h *handlers) pageSize(field string, n, def int) (int, error) {
	limit := h.opts.MaxPageSize
	if n == 0 {
		return min(def, limit), nil
	}
	if err := validate.PageSize(field, n, limit); err != nil {
		return 0, err
	}
	return n, nil
}

// tagList validates a tag argument; an absent list stays nil.
func tagList(field string, tags []string) (rspace.Tags, error) {
	if tags == nil {
		return nil, nil
	}
	clean, err := validate.Tags(field, tags)
	if err != nil {
		return nil, err
	}
	return rspace.Tags(clean), nil
}

// optionalID resolves r when given and returns zero otherwise.
func optionalID(field string, r recordID) (int64, error) {
	if r == "" {
		return 0, nil
	}
	return r.resolve(field)
}

// withPageSize declares the page_size argument shared by listing tools.
func withPageSize(def int) mcp.ToolOption {
	return mcp.WithNumber("page_size",
		integer(),
		mcp.Min(1),
		mcp.Max(float64(config.MaxMaxPageSize)),
		mcp.DefaultNumber(float64(def)),
		mcp.Description(fmt.Sprintf("Results per page (1-%d, default %d)", config.MaxMaxPageSize, def)),
	)
}

// withPageNumber declares the zero-based page_number argument.
func withPageNumber() mcp.ToolOption {
	return mcp.WithNumber("page_number",
		integer(),
		mcp.Min(0),
		mcp.Description("Zero-based page to return (default 0)"),
	)
}

// withTags declares an optional list-of-strings tag argument.
func withTags(name, desc string, opts ...mcp.PropertyOption) mcp.ToolOption {
	opts = append([]mcp.PropertyOption{mcp.WithStringItems(), mcp.Description(desc)}, opts...)
	return mcp.WithArray(name, opts...)
}

// requiredName trims a name argument and rejects a blank one.
func requiredName(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if err := validate.Required(field, s); err != nil {
		return "", err
	}
	return s, nil
}
