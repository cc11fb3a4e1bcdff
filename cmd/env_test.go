// Testing Strategy Design Decision:
//
// The cmd/ package tests run the real command tree in-process against a fake
// RSpace server (internal/rspace/rspacetest). Each test gets its own config
// directory, working directory and audit database, so commands see exactly
// what a fresh install would.

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jpl-au/rspace-mcp/internal/config"
	"github.com/jpl-au/rspace-mcp/internal/log"
	"github.com/jpl-au/rspace-mcp/internal/rspace/rspacetest"
	"github.com/stretchr/testify/assert"
)

// testEnv holds test environment state.
type testEnv struct {
	t   *testing.T
	srv *rspacetest.Server
}

// newTestEnv points the CLI at a fresh fake server and empty config.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	srv := rspacetest.New(t)
	t.Setenv(config.EnvURL, srv.URL)
	t.Setenv(config.EnvAPIKey, rspacetest.DefaultAPIKey)
	t.Setenv(config.DirEnv, t.TempDir())
	t.Setenv("RSPACE_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Chdir(t.TempDir())

	orig := log.DBPath()
	log.SetDBPath(filepath.Join(t.TempDir(), "audit.db"))
	t.Cleanup(func() {
		log.Close()
		log.SetDBPath(orig)
	})

	return &testEnv{t: t, srv: srv}
}

// run executes the CLI with the given args and returns its output.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("rspace-mcp %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes the CLI and returns output and any error. Each run
// closes the audit log, as a separate process would.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()

	var buf bytes.Buffer
	SetOut(&buf)
	defer SetOut(os.Stdout)

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.ExecuteContext(context.Background())
	log.Close()
	return buf.String(), err
}

// runStdin executes the CLI with stdin input.
func (e *testEnv) runStdin(input string, args ...string) string {
	e.t.Helper()
	orig := stdin
	stdin = strings.NewReader(input)
	defer func() { stdin = orig }()
	return e.run(args...)
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}
