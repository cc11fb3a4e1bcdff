// Package tag provides document tagging operations shared by the MCP tool
// and the call command.
//
// RSpace stores a document's tags as one comma-separated string and has no
// add-tag endpoint, so tagging is read-modify-write: fetch the current
// tags, merge (or replace), and write the full set back in one update.

package tag

import (
	"context"
	"slices"
	"strings"

	"github.com/jpl-au/rspace-mcp/internal/rspace"
)

// Tagger is the subset of the RSpace client tagging needs.
type Tagger interface {
	Document(ctx context.Context, id int64) (rspace.Document, error)
	UpdateDocument(ctx context.Context, id int64, u rspace.DocumentUpdate) (rspace.Document, error)
}

// Result contains the outcome of a tag operation.
type Result struct {
	ID       int64    `json:"id"`
	GlobalID string   `json:"globalId,omitempty"`
	Name     string   `json:"name,omitempty"`
	Action   string   `json:"action"`
	Added    []string `json:"added"`
	Removed  []string `json:"removed,omitempty"`
	Tags     []string `json:"tags"`
}

// Apply sets tags on a document. By default the new tags are merged with
// those already present, keeping the existing order and appending new ones.
// With replace, the document ends up with exactly tags.
//
// tags must already be validated (non-empty, no commas).
func Apply(ctx context.Context, t Tagger, id int64, tags []string, replace bool) (Result, error) {
	action := "merge"
	if replace {
		action = "replace"
	}
	result := Result{ID: id, Action: action}

	doc, err := t.Document(ctx, id)
	if err != nil {
		return result, err
	}

	current := []string(doc.Tags)
	next := Merge(current, tags)
	if replace {
		next = slices.Clone(tags)
	}
	result.Added = missing(next, current)
	result.Removed = missing(current, next)

	if slices.Equal(current, next) {
		result.GlobalID = doc.GlobalID
		result.Name = doc.Name
		result.Tags = current
		return result, nil
	}

	var u rspace.DocumentUpdate
	u.SetTags(rspace.Tags(next))
	updated, err := t.UpdateDocument(ctx, id, u)
	if err != nil {
		return result, err
	}

	result.GlobalID = updated.GlobalID
	result.Name = updated.Name
	result.Tags = updated.Tags
	return result, nil
}

// Merge returns current followed by every tag in add it does not already
// contain. Tags are compared case-insensitively, as RSpace does; the
// existing spelling wins.
func Merge(current, add []string) []string {
	out := slices.Clone(current)
	for _, t := range add {
		if !contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// missing returns the members of a that are absent from b.
func missing(a, b []string) []string {
	out := []string{}
	for _, t := range a {
		if !contains(b, t) {
			out = append(out, t)
		}
	}
	return out
}

func contains(tags []string, t string) bool {
	return slices.ContainsFunc(tags, func(s string) bool { return strings.EqualFold(s, t) })
}
