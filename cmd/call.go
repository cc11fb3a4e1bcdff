/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// call.go implements the "rspace-mcp call" command, invoking one tool from
// the shell through the same dispatcher the MCP server uses.
//
// Design: arguments are a single JSON object, exactly what an MCP client
// would send, so a failing LLM call can be replayed verbatim. "-" reads the
// object from stdin.

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jpl-au/rspace-mcp/internal/diff"
	"github.com/jpl-au/rspace-mcp/internal/mcp"
	"github.com/spf13/cobra"
)

// ErrToolFailed is returned when a tool call produces an error result.
var ErrToolFailed = errors.New("tool call failed")

// stdin is read when the arguments are "-". Tests can replace it.
var stdin io.Reader = os.Stdin

func newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Invoke a tool",
		Long: `Invoke a tool against the configured RSpace server and print its result.

  rspace-mcp call status
  rspace-mcp call get_documents '{"page_size": 5}'
  echo '{"doc_id": "SD1234"}' | rspace-mcp call get_single_Rspace_document -

Results and errors are printed as JSON. An update_document dry run is
shown as a coloured diff unless -o json is set. The exit code is 1 when the
tool fails.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runCall,
	}
}

func runCall(c *cobra.Command, args []string) error {
	toolArgs, err := parseToolArgs(args[1:])
	if err != nil {
		return PrintJSONError(err)
	}

	d, err := newDispatcher("cli")
	if err != nil {
		return PrintJSONError(err)
	}

	res := d.Call(c.Context(), args[0], toolArgs)
	text := mcp.ResultText(res)
	switch {
	case JSON():
		fmt.Fprintln(Out(), text)
	case !res.IsError && printDryRun(Out(), text):
	default:
		fmt.Fprintln(Out(), indent(text))
	}
	if res.IsError {
		c.SilenceErrors = true
		return fmt.Errorf("%w: %s", ErrToolFailed, args[0])
	}
	return nil
}

// parseToolArgs decodes the optional JSON object argument.
func parseToolArgs(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return map[string]any{}, nil
	}
	raw := []byte(args[0])
	if args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read arguments: %w", err)
		}
		raw = b
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// indent pretty-prints JSON text, returning it unchanged if it is not JSON.
func indent(text string) string {
	var b bytes.Buffer
	if err := json.Indent(&b, []byte(text), "", "  "); err != nil {
		return text
	}
	return strings.TrimRight(b.String(), "\n")
}

// dryRun is the part of an update_document preview shown to a person.
type dryRun struct {
	DryRun   bool        `json:"dry_run"`
	GlobalID string      `json:"globalId"`
	Name     *fromTo     `json:"name"`
	Tags     *fromTo     `json:"tags"`
	FormID   int64       `json:"form_id"`
	Fields   []fieldDiff `json:"fields"`
}

type fieldDiff struct {
	Name string `json:"name"`
	Diff string `json:"diff"`
}

type fromTo struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// printDryRun renders text as a readable preview with coloured field diffs.
// It reports false, printing nothing, when text is not a dry run.
func printDryRun(w io.Writer, text string) bool {
	var p dryRun
	if err := json.Unmarshal([]byte(text), &p); err != nil || !p.DryRun {
		return false
	}
	fmt.Fprintf(w, "Dry run for %s, nothing was written.\n", p.GlobalID)
	if p.Name != nil {
		fmt.Fprintf(w, "name: %q -> %q\n", p.Name.From, p.Name.To)
	}
	if p.Tags != nil {
		fmt.Fprintf(w, "tags: %q -> %q\n", p.Tags.From, p.Tags.To)
	}
	if p.FormID != 0 {
		fmt.Fprintf(w, "form: -> %d\n", p.FormID)
	}
	for _, f := range p.Fields {
		fmt.Fprintf(w, "\nfield %s\n%s", f.Name, diff.Colourise(f.Diff))
	}
	return true
}
