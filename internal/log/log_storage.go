// log_storage.go implements SQLite-based persistent audit logging.
//
// Separated from log.go to isolate database concerns. The main log.go provides
// the fluent API for building log entries, while this file handles persistence
// and the queries behind the audit command. The instance field uses a hash of
// the RSpace URL so entries from several servers can share one database.
//
// Design: Errors during logging are reported on stderr and otherwise ignored.
// A tool call should succeed even if we can't record it in the audit log.

package log

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// ErrNotOpen is returned by queries when the audit log has not been opened.
var ErrNotOpen = errors.New("audit log not open")

// Logger writes audit log entries to a SQLite database.
type Logger struct {
	db       *sql.DB
	instance string
}

func (l *Logger) log(e Entry) {
	var detail *string
	if len(e.Detail) > 0 {
		if b, err := json.Marshal(e.Detail); err == nil {
			s := string(b)
			detail = &s
		}
	}

	success := 0
	if e.Success {
		success = 1
	}

	_, err := l.db.Exec(`
		INSERT INTO log (start, end, instance, source, actor, action, target,
		                 request_id, success, error, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Start, e.End, l.instance, e.Source, nilIfEmpty(e.Actor), e.Action,
		nilIfEmpty(e.Target), nilIfEmpty(e.RequestID),
		success, nilIfEmpty(e.Error), detail,
	)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "rspace-mcp: audit log write failed: %v\n", err)
	}
}

// Filter narrows a Recent query.
type Filter struct {
	Limit      int       // maximum entries, newest first (default 50)
	Source     string    // exact source, e.g. "mcp:get_documents"
	Since      time.Time // only entries started at or after this time
	FailedOnly bool
}

// Recent returns logged entries, newest first.
func Recent(ctx context.Context, f Filter) ([]Entry, error) {
	mu.Lock()
	l := global
	mu.Unlock()
	if l == nil {
		return nil, ErrNotOpen
	}

	var where []string
	var args []any
	if f.Source != "" {
		where = append(where, "source = ?")
		args = append(args, f.Source)
	}
	if !f.Since.IsZero() {
		where = append(where, "start >= ?")
		args = append(args, f.Since.UnixMilli())
	}
	if f.FailedOnly {
		where = append(where, "success = 0")
	}
	q := `SELECT id, start, end, instance, source, actor, action, target, request_id, success, error, detail FROM log`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var actor, target, reqID, errMsg, detail sql.NullString
		var success int
		if err := rows.Scan(&e.ID, &e.Start, &e.End, &e.Instance, &e.Source, &actor, &e.Action,
			&target, &reqID, &success, &errMsg, &detail); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.Actor, e.Target, e.RequestID, e.Error = actor.String, target.String, reqID.String, errMsg.String
		e.Success = success == 1
		if detail.Valid {
			_ = json.Unmarshal([]byte(detail.String), &e.Detail)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// dbPathFunc is the function that returns the database path.
// Tests can override this to use a temp directory.
var dbPathFunc = defaultDBPath

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to current directory if home cannot be determined
		return filepath.Join(".rspace-mcp", "log", "rspace-mcp-log.db")
	}
	return filepath.Join(home, ".rspace-mcp", "log", "rspace-mcp-log.db")
}

func dbPath() string {
	return dbPathFunc()
}

// DBPath returns the path to the log database.
func DBPath() string {
	return dbPath()
}

// SetDBPath overrides the database location. Call before Open.
func SetDBPath(p string) {
	mu.Lock()
	defer mu.Unlock()
	dbPathFunc = func() string { return p }
}

// hash creates an instance identifier from the server URL.
func hash(s string) string {
	h, err := blake2b.New(8, nil) // 64-bit = 16 hex chars
	if err != nil {
		// Should never happen with nil key, but don't silently ignore
		panic("blake2b.New failed: " + err.Error())
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// migrate creates the log table if it doesn't exist. Safe for concurrent access.
func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS log (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			start      INTEGER NOT NULL,
			end        INTEGER NOT NULL,
			instance   TEXT NOT NULL,
			source     TEXT NOT NULL,
			actor      TEXT,
			action     TEXT NOT NULL,
			target     TEXT,
			request_id TEXT,
			success    INTEGER NOT NULL,
			error      TEXT,
			detail     TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_log_start ON log(start);
		CREATE INDEX IF NOT EXISTS idx_log_instance ON log(instance);
		CREATE INDEX IF NOT EXISTS idx_log_source ON log(source);
	`)
	return err
}

// nilIfEmpty returns nil for empty strings, reducing NULL checks in queries.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
