// catalog.go implements the immutable tool registry.
//
// The catalog is built once at startup and passed explicitly to the
// dispatcher and the server. It has no mutators, so concurrent lookups need
// no locking.

package mcp

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var (
	ErrDuplicateTool = errors.New("duplicate tool name")
	ErrInvalidTool   = errors.New("invalid tool")
)

// Catalog is a fixed set of tools keyed by name.
type Catalog struct {
	tools  []Tool
	byName map[string]int
}

// NewCatalog validates and indexes tools. Registration order is kept for
// listing.
func NewCatalog(tools ...Tool) (*Catalog, error) {
	c := &Catalog{
		tools:  make([]Tool, 0, len(tools)),
		byName: make(map[string]int, len(tools)),
	}
	for _, t := range tools {
		name := t.Name()
		switch {
		case name == "":
			return nil, fmt.Errorf("%w: empty name", ErrInvalidTool)
		case t.Def.Description == "":
			return nil, fmt.Errorf("%w: %s has no description", ErrInvalidTool, name)
		case t.Handler == nil:
			return nil, fmt.Errorf("%w: %s has no handler", ErrInvalidTool, name)
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, name)
		}
		c.byName[name] = len(c.tools)
		c.tools = append(c.tools, t)
	}
	return c, nil
}

// Lookup returns the tool registered under name.
func (c *Catalog) Lookup(name string) (Tool, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Tool{}, false
	}
	return c.tools[i], true
}

// Names returns every tool name, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tools))
	for _, t := range c.tools {
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}

// Tools returns the tools in registration order.
func (c *Catalog) Tools() []Tool {
	return slices.Clone(c.tools)
}

// Len returns the number of tools.
func (c *Catalog) Len() int { return len(c.tools) }
