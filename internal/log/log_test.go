package log

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempDB(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	origDBPath := dbPathFunc
	dbPathFunc = func() string {
		return filepath.Join(tmpDir, "log", "test.db")
	}
	t.Cleanup(func() {
		Close()
		dbPathFunc = origDBPath
	})
}

func TestLogger(t *testing.T) {
	useTempDB(t)

	t.Run("open and close", func(t *testing.T) {
		err := Open()
		require.NoError(t, err)
		defer Close()

		assert.FileExists(t, DBPath())
	})

	t.Run("log entry", func(t *testing.T) {
		err := Open()
		require.NoError(t, err)
		defer Close()

		SetInstance("https://rspace.example.org")

		Log(Entry{
			Source:  "mcp:getDocumentContent",
			Actor:   "mcp",
			Action:  "read",
			Target:  "SD1001",
			Success: true,
		})

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM log").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		var source, action, target, instance string
		var success int
		err = db.QueryRow("SELECT source, action, target, instance, success FROM log WHERE id = 1").
			Scan(&source, &action, &target, &instance, &success)
		require.NoError(t, err)
		assert.Equal(t, "mcp:getDocumentContent", source)
		assert.Equal(t, "read", action)
		assert.Equal(t, "SD1001", target)
		assert.Equal(t, hash("https://rspace.example.org"), instance)
		assert.Equal(t, 1, success)
	})

	t.Run("log error entry", func(t *testing.T) {
		Close()

		err := Open()
		require.NoError(t, err)
		defer Close()

		Log(Entry{
			Source:  "mcp:getDocumentContent",
			Action:  "read",
			Target:  "SD42",
			Success: false,
			Error:   "document not found",
		})

		db, err := sql.Open("sqlite", DBPath())
		require.NoError(t, err)
		defer db.Close()

		var success int
		var errMsg string
		err = db.QueryRow("SELECT success, error FROM log ORDER BY id DESC LIMIT 1").
			Scan(&success, &errMsg)
		require.NoError(t, err)
		assert.Equal(t, 0, success)
		assert.Equal(t, "document not found", errMsg)
	})

	t.Run("log without logger is noop", func(t *testing.T) {
		Close()

		// Should not panic
		Log(Entry{
			Source:  "cli:config",
			Action:  "config",
			Success: true,
		})
	})

	t.Run("open is idempotent", func(t *testing.T) {
		err := Open()
		require.NoError(t, err)

		err = Open()
		require.NoError(t, err)

		Close()
	})
}

func TestHash(t *testing.T) {
	h1 := hash("https://rspace.example.org")
	h2 := hash("https://rspace.example.org")
	h3 := hash("https://other.example.org")

	assert.Equal(t, h1, h2, "same input should produce same hash")
	assert.NotEqual(t, h1, h3, "different input should produce different hash")
	assert.Len(t, h1, 16, "BLAKE2b-64 should produce 16 hex chars")
}

func TestDBPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expected := filepath.Join(home, ".rspace-mcp", "log", "rspace-mcp-log.db")

	origDBPath := dbPathFunc
	dbPathFunc = defaultDBPath
	defer func() { dbPathFunc = origDBPath }()

	assert.Equal(t, expected, DBPath())
}

func TestBuilder(t *testing.T) {
	useTempDB(t)

	t.Run("fluent API success", func(t *testing.T) {
		Close()
		require.NoError(t, Open())
		defer Close()

		Event("mcp:tagDocumentOrNotebookEntry", "write").
			Actor("mcp").
			Target("SD7").
			Request("req-1").
			Write(nil)

		entries, err := Recent(context.Background(), Filter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		e := entries[0]
		assert.Equal(t, "mcp:tagDocumentOrNotebookEntry", e.Source)
		assert.Equal(t, "mcp", e.Actor)
		assert.Equal(t, "write", e.Action)
		assert.Equal(t, "SD7", e.Target)
		assert.Equal(t, "req-1", e.RequestID)
		assert.True(t, e.Success)
		assert.GreaterOrEqual(t, e.End, e.Start)
	})

	t.Run("fluent API with error", func(t *testing.T) {
		Close()
		require.NoError(t, Open())
		defer Close()

		testErr := sql.ErrNoRows
		Event("mcp:getDocumentContent", "read").
			Actor("mcp").
			Target("SD404").
			Write(testErr)

		entries, err := Recent(context.Background(), Filter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.False(t, entries[0].Success)
		assert.Equal(t, testErr.Error(), entries[0].Error)
	})

	t.Run("fluent API with Detail", func(t *testing.T) {
		Close()
		require.NoError(t, Open())
		defer Close()

		Event("mcp:get_documents", "list").
			Actor("mcp").
			Detail("page_size", 10).
			Detail("returned", 3).
			Write(nil)

		entries, err := Recent(context.Background(), Filter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.EqualValues(t, 10, entries[0].Detail["page_size"])
		assert.EqualValues(t, 3, entries[0].Detail["returned"])
	})
}

func TestRecentFilters(t *testing.T) {
	useTempDB(t)
	require.NoError(t, Open())

	Log(Entry{Source: "mcp:status", Action: "read", Start: time.Now().Add(-48 * time.Hour).UnixMilli(), Success: true})
	Log(Entry{Source: "mcp:status", Action: "read", Start: time.Now().UnixMilli(), Success: false, Error: "boom"})
	Log(Entry{Source: "mcp:get_documents", Action: "list", Start: time.Now().UnixMilli(), Success: true})

	ctx := context.Background()

	all, err := Recent(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "mcp:get_documents", all[0].Source, "newest first")

	status, err := Recent(ctx, Filter{Source: "mcp:status"})
	require.NoError(t, err)
	assert.Len(t, status, 2)

	recent, err := Recent(ctx, Filter{Since: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	failed, err := Recent(ctx, Filter{FailedOnly: true})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "boom", failed[0].Error)
}

func TestRecentNotOpen(t *testing.T) {
	Close()
	_, err := Recent(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrNotOpen)
}
