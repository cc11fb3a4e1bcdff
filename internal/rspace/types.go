// types.go defines the RSpace resources this client reads and writes.
//
// Separated from the per-endpoint files because several endpoints share the
// same shapes (a document summary appears in listings, searches and update
// responses). Only the fields the tools need are typed; everything is a
// snapshot of remote state and is never cached.

package rspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Time accepts the timestamp layouts RSpace emits: RFC 3339 with or without
// fractional seconds, a bare date, or epoch milliseconds.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) || len(b) == 0 {
		return nil
	}
	if b[0] != '"' {
		ms, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("rspace: timestamp %s: %w", b, err)
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("rspace: unrecognised timestamp %q", s)
}

// MarshalJSON renders RFC 3339, or null for the zero time.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// Tags is an ordered tag list. RSpace sends ELN tags as one comma-separated
// string and Inventory tags as objects; both decode to plain strings.
type Tags []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tags) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = SplitTags(s)
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("rspace: tags: %w", err)
	}
	out := make(Tags, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(r, &obj); err != nil {
			return fmt.Errorf("rspace: tag %s: %w", r, err)
		}
		out = append(out, obj.Value)
	}
	*t = out
	return nil
}

// MarshalJSON always renders a list, never null.
func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// String joins tags the way the ELN API expects them.
func (t Tags) String() string {
	return strings.Join(t, ",")
}

// SplitTags parses RSpace's comma-separated tag string, trimming blanks.
func SplitTags(s string) Tags {
	var out Tags
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// User is the owner of a record.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Status is the server health response.
type Status struct {
	Message       string `json:"message"`
	RSpaceVersion string `json:"rspaceVersion,omitempty"`
}

// FormRef identifies the form a document was created from.
type FormRef struct {
	ID       int64  `json:"id"`
	GlobalID string `json:"globalId,omitempty"`
	Name     string `json:"name,omitempty"`
}

// DocumentInfo is a document summary as returned by listings.
type DocumentInfo struct {
	ID           int64    `json:"id"`
	GlobalID     string   `json:"globalId"`
	Name         string   `json:"name"`
	Created      Time     `json:"created"`
	LastModified Time     `json:"lastModified"`
	Signed       bool     `json:"signed"`
	Tags         Tags     `json:"tags"`
	Owner        *User    `json:"owner,omitempty"`
	Form         *FormRef `json:"form,omitempty"`
}

// Document is a full document including field content.
type Document struct {
	DocumentInfo
	ParentFolderID int64   `json:"parentFolderId,omitempty"`
	Fields         []Field `json:"fields"`
}

// Content concatenates every field's content in field order.
func (d Document) Content() string {
	var b strings.Builder
	for _, f := range d.Fields {
		b.WriteString(f.Content)
	}
	return b.String()
}

// Field is one field of a structured document.
type Field struct {
	ID           int64  `json:"id"`
	GlobalID     string `json:"globalId,omitempty"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Content      string `json:"content"`
	LastModified Time   `json:"lastModified"`
	Files        []File `json:"files,omitempty"`
}

// DocumentList is one page of documents.
type DocumentList struct {
	TotalHits  int            `json:"totalHits"`
	PageNumber int            `json:"pageNumber"`
	Documents  []DocumentInfo `json:"documents"`
}

// File is a gallery file attached to or referenced by a document.
type File struct {
	ID          int64  `json:"id"`
	GlobalID    string `json:"globalId,omitempty"`
	Name        string `json:"name"`
	Caption     string `json:"caption,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Created     Time   `json:"created"`
	Size        int64  `json:"size"`
}

// Folder is a folder or notebook.
type Folder struct {
	ID             int64  `json:"id"`
	GlobalID       string `json:"globalId"`
	Name           string `json:"name"`
	Created        Time   `json:"created"`
	LastModified   Time   `json:"lastModified"`
	Notebook       bool   `json:"notebook"`
	ParentFolderID int64  `json:"parentFolderId,omitempty"`
}

// TreeRecord is one entry of a folder or notebook listing.
type TreeRecord struct {
	ID           int64  `json:"id"`
	GlobalID     string `json:"globalId"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Created      Time   `json:"created"`
	LastModified Time   `json:"lastModified"`
	OwnerName    string `json:"ownerName,omitempty"`
}

// FolderTree is one page of a folder listing.
type FolderTree struct {
	TotalHits  int          `json:"totalHits"`
	PageNumber int          `json:"pageNumber"`
	Records    []TreeRecord `json:"records"`
}

// Activity is one entry of the server's audit trail.
type Activity struct {
	Username  string          `json:"username"`
	FullName  string          `json:"fullName,omitempty"`
	Domain    string          `json:"domain"`
	Action    string          `json:"action"`
	Timestamp Time            `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

var globalIDPattern = regexp.MustCompile(`"globalId"\s*:\s*"([A-Za-z]{2}\d+(?:v\d+)?)"`)

// Resource returns the global id of the record the event concerns, if the
// payload names one.
func (a Activity) Resource() string {
	m := globalIDPattern.FindSubmatch(a.Payload)
	if m == nil {
		return ""
	}
	return string(m[1])
}

// ActivityList is one page of audit events.
type ActivityList struct {
	TotalHits  int        `json:"totalHits"`
	PageNumber int        `json:"pageNumber"`
	Activities []Activity `json:"activities"`
}

// FormField is one field definition of a form.
type FormField struct {
	ID           int64    `json:"id,omitempty"`
	GlobalID     string   `json:"globalId,omitempty"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Mandatory    bool     `json:"mandatory"`
	DefaultValue any      `json:"defaultValue,omitempty"`
	Options      []string `json:"options,omitempty"`
	LastModified Time     `json:"lastModified"`
}

// Form is a document template.
type Form struct {
	ID            int64       `json:"id"`
	GlobalID      string      `json:"globalId"`
	Name          string      `json:"name"`
	StableID      string      `json:"stableId,omitempty"`
	Version       int         `json:"version"`
	FormState     string      `json:"formState"`
	AccessControl any         `json:"accessControl,omitempty"`
	Tags          Tags        `json:"tags"`
	Fields        []FormField `json:"fields,omitempty"`
}

// FormList is one page of forms.
type FormList struct {
	TotalHits  int    `json:"totalHits"`
	PageNumber int    `json:"pageNumber"`
	Forms      []Form `json:"forms"`
}

// Quantity is an amount of a sample.
type Quantity struct {
	NumericValue float64 `json:"numericValue"`
	UnitID       int     `json:"unitId"`
}

// InventoryItem holds the fields every inventory record shares.
type InventoryItem struct {
	ID           int64        `json:"id"`
	GlobalID     string       `json:"globalId"`
	Name         string       `json:"name"`
	Type         string       `json:"type,omitempty"`
	Description  string       `json:"description,omitempty"`
	Created      Time         `json:"created"`
	LastModified Time         `json:"lastModified"`
	Tags         Tags         `json:"tags"`
	Owner        *User        `json:"owner,omitempty"`
	Quantity     *Quantity    `json:"quantity,omitempty"`
	ExtraFields  []ExtraField `json:"extraFields,omitempty"`
}

// Note is a free-text annotation on a subsample.
type Note struct {
	Content string `json:"content"`
	Created Time   `json:"created"`
}

// SubSample is an aliquot of a sample.
type SubSample struct {
	InventoryItem
	Notes []Note `json:"notes,omitempty"`
}

// Sample is an inventory sample with its subsamples.
type Sample struct {
	InventoryItem
	SubSamples []SubSample `json:"subSamples,omitempty"`
}

// SampleList is one page of samples.
type SampleList struct {
	TotalHits  int      `json:"totalHits"`
	PageNumber int      `json:"pageNumber"`
	Samples    []Sample `json:"samples"`
}

// Container is a list, grid, image or workbench container.
type Container struct {
	InventoryItem
	CType              string          `json:"cType"`
	ContentSummary     json.RawMessage `json:"contentSummary,omitempty"`
	CanStoreSamples    bool            `json:"canStoreSamples"`
	CanStoreContainers bool            `json:"canStoreContainers"`
	GridLayout         *GridLayout     `json:"gridLayout,omitempty"`
	Locations          []Location      `json:"locations,omitempty"`
}

// GridLayout is the size of a grid container.
type GridLayout struct {
	Columns int `json:"columnsNumber"`
	Rows    int `json:"rowsNumber"`
}

// Location is one slot of a container. Grid slots carry coordinates;
// Content is nil for an empty slot.
type Location struct {
	ID      int64          `json:"id"`
	CoordX  int            `json:"coordX,omitempty"`
	CoordY  int            `json:"coordY,omitempty"`
	Content *InventoryItem `json:"content"`
}

// ContainerList is one page of containers.
type ContainerList struct {
	TotalHits  int         `json:"totalHits"`
	PageNumber int         `json:"pageNumber"`
	Containers []Container `json:"containers"`
}

// SearchResult is one page of inventory search hits.
type SearchResult struct {
	TotalHits  int             `json:"totalHits"`
	PageNumber int             `json:"pageNumber"`
	Records    []InventoryItem `json:"records"`
}

// ExtraField is a custom text or number field on an inventory record.
type ExtraField struct {
	ID      int64  `json:"id,omitempty"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// SampleTemplate is a reusable sample definition. Fields are relayed as
// RSpace sends them.
type SampleTemplate struct {
	InventoryItem
	DefaultUnitID int             `json:"defaultUnitId,omitempty"`
	Fields        json.RawMessage `json:"fields,omitempty"`
}

// SampleTemplateList is one page of sample templates.
type SampleTemplateList struct {
	TotalHits  int              `json:"totalHits"`
	PageNumber int              `json:"pageNumber"`
	Templates  []SampleTemplate `json:"templates"`
}

// BulkResult reports a bulk inventory operation record by record.
type BulkResult struct {
	Status     string       `json:"status"`
	ErrorCount int          `json:"errorCount"`
	Results    []BulkRecord `json:"results"`
}

// BulkRecord is the outcome for one record of a bulk operation.
type BulkRecord struct {
	Record *InventoryItem `json:"record,omitempty"`
	Error  *BulkError     `json:"error,omitempty"`
}

// BulkError explains why one record of a bulk operation failed.
type BulkError struct {
	Errors []string `json:"errors"`
}
