// Package log provides the local audit log of rspace-mcp tool invocations.
// Logs are stored in ~/.rspace-mcp/log/rspace-mcp-log.db and record every
// tool call (from an MCP client or the call command), its outcome and its
// timing. Entity payloads such as document content are never recorded.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	log.Event("mcp:get_documents", "list").
//		Actor("mcp").
//		Request(id).
//		Detail("page_size", 10).
//		Write(err)
//
//	log.Event("mcp:tagDocumentOrNotebookEntry", "write").
//		Actor("mcp").
//		Target("SD1234").
//		Write(err)
//
// The source parameter follows the format "mcp:{tool}" for tool calls or
// "cli:{command}" for local commands such as config.
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	ID        int64          `json:"id,omitempty"`
	Source    string         `json:"source"`               // e.g., "mcp:get_documents", "cli:config"
	Actor     string         `json:"actor,omitempty"`      // who initiated the call: "mcp", "cli"
	Action    string         `json:"action"`               // verb: read, list, write, delete
	Target    string         `json:"target,omitempty"`     // RSpace record the call addressed
	RequestID string         `json:"request_id,omitempty"` // correlates with stderr logs
	Instance  string         `json:"instance,omitempty"`   // hash of the RSpace URL

	// Timing, unix milliseconds
	Start int64 `json:"start"`
	End   int64 `json:"end"`

	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// Duration returns how long the call took.
func (e Entry) Duration() time.Duration {
	return time.Duration(e.End-e.Start) * time.Millisecond
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write]
// to write the entry.
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
//
// The source identifies where the operation originated:
//   - Tool calls: "mcp:{tool}" (e.g., "mcp:getAuditEvents")
//   - CLI commands: "cli:{command}" (e.g., "cli:config")
//
// The action describes what kind of operation was performed:
//   - "read", "list", "write", "delete", "download", "config".
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().UnixMilli(),
		},
	}
}

// Actor sets who performed the operation.
func (b *Builder) Actor(actor string) *Builder {
	b.entry.Actor = actor
	return b
}

// Target sets the RSpace record this operation addressed, as given by the
// caller (numeric id or global id).
func (b *Builder) Target(target string) *Builder {
	b.entry.Target = target
	return b
}

// Request sets the request id shared with the stderr log line.
func (b *Builder) Request(id string) *Builder {
	b.entry.RequestID = id
	return b
}

// Detail adds a key-value pair to the log entry's detail map.
//
// Use for operation-specific data that doesn't fit standard fields:
// page sizes, result counts, date ranges. Never pass document content.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry to the database, deriving success/failure from err.
//
// If err is nil, the entry is logged as successful.
// If err is non-nil, the entry is logged as failed with the error message.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().UnixMilli()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetInstance sets the RSpace server identifier for subsequent log entries.
// The URL is hashed so the log can be shared without revealing the server.
func SetInstance(baseURL string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.instance = hash(baseURL)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
