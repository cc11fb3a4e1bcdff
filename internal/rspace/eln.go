// eln.go implements the Electronic Lab Notebook endpoints: status,
// documents, folders and notebooks, the activity trail and file downloads.

package rspace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultDocumentOrder lists newest documents first.
const DefaultDocumentOrder = "created desc"

// Status reports whether the server is reachable and the key is accepted.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var s Status
	err := c.do(ctx, http.MethodGet, eln("/status"), nil, nil, &s)
	return s, err
}

// DocumentQuery selects a page of documents.
type DocumentQuery struct {
	PageSize    int
	PageNumber  int
	OrderBy     string    // defaults to DefaultDocumentOrder
	Query       string    // simple full-text query
	CreatedFrom time.Time // inclusive lower bound; zero means unbounded
	CreatedTo   time.Time // upper bound; zero means unbounded
}

func (q DocumentQuery) values() (url.Values, error) {
	v := url.Values{}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.PageNumber > 0 {
		v.Set("pageNumber", strconv.Itoa(q.PageNumber))
	}
	order := q.OrderBy
	if order == "" {
		order = DefaultDocumentOrder
	}
	v.Set("orderBy", order)

	if !q.CreatedFrom.IsZero() || !q.CreatedTo.IsZero() {
		adv, err := createdRangeQuery(q.CreatedFrom, q.CreatedTo)
		if err != nil {
			return nil, err
		}
		v.Set("advancedQuery", adv)
	} else if q.Query != "" {
		v.Set("query", q.Query)
	}
	return v, nil
}

type advancedTerm struct {
	Query     string `json:"query"`
	QueryType string `json:"queryType"`
}

type advancedQuery struct {
	Operator string         `json:"operator"`
	Terms    []advancedTerm `json:"terms"`
}

// createdRangeQuery builds RSpace's "from;to" creation-date search term.
func createdRangeQuery(from, to time.Time) (string, error) {
	var lo, hi string
	if !from.IsZero() {
		lo = from.Format(time.DateOnly)
	}
	if !to.IsZero() {
		hi = to.Format(time.DateOnly)
	}
	b, err := json.Marshal(advancedQuery{
		Operator: "and",
		Terms:    []advancedTerm{{Query: lo + ";" + hi, QueryType: "created"}},
	})
	if err != nil {
		return "", fmt.Errorf("rspace: encode advanced query: %w", err)
	}
	return string(b), nil
}

// ListDocuments returns one page of document summaries.
func (c *Client) ListDocuments(ctx context.Context, q DocumentQuery) (DocumentList, error) {
	var l DocumentList
	v, err := q.values()
	if err != nil {
		return l, err
	}
	err = c.do(ctx, http.MethodGet, eln("/documents"), v, nil, &l)
	return l, err
}

// Document fetches a document with all field content.
func (c *Client) Document(ctx context.Context, id int64) (Document, error) {
	var d Document
	err := c.do(ctx, http.MethodGet, eln("/documents/%d", id), nil, nil, &d)
	return d, err
}

// FieldContent sets the content of one field. ID is omitted when creating.
type FieldContent struct {
	ID      int64  `json:"id,omitempty"`
	Content string `json:"content"`
}

// DocumentUpdate holds the changes to apply to a document. Zero values are
// left untouched; Tags replaces the whole tag set when non-nil.
type DocumentUpdate struct {
	Name   string         `json:"name,omitempty"`
	Tags   *string        `json:"tags,omitempty"`
	FormID int64          `json:"formId,omitempty"`
	Fields []FieldContent `json:"fields,omitempty"`
}

// SetTags stores tags in the comma-separated form the API expects.
func (u *DocumentUpdate) SetTags(t Tags) {
	s := t.String()
	u.Tags = &s
}

// UpdateDocument applies u to the document and returns the new state.
func (c *Client) UpdateDocument(ctx context.Context, id int64, u DocumentUpdate) (Document, error) {
	var d Document
	err := c.do(ctx, http.MethodPut, eln("/documents/%d", id), nil, u, &d)
	return d, err
}

// NewDocument describes a document to create.
type NewDocument struct {
	Name           string         `json:"name,omitempty"`
	ParentFolderID int64          `json:"parentFolderId,omitempty"`
	Tags           string         `json:"tags,omitempty"`
	Form           *FormRef       `json:"form,omitempty"`
	Fields         []FieldContent `json:"fields,omitempty"`
}

// CreateDocument creates a document, in a notebook when ParentFolderID names one.
func (c *Client) CreateDocument(ctx context.Context, n NewDocument) (Document, error) {
	var d Document
	err := c.do(ctx, http.MethodPost, eln("/documents"), nil, n, &d)
	return d, err
}

// NewFolder describes a folder or notebook to create.
type NewFolder struct {
	Name           string `json:"name"`
	Notebook       bool   `json:"notebook"`
	ParentFolderID int64  `json:"parentFolderId,omitempty"`
}

// CreateFolder creates a folder, or a notebook when Notebook is set.
func (c *Client) CreateFolder(ctx context.Context, n NewFolder) (Folder, error) {
	var f Folder
	err := c.do(ctx, http.MethodPost, eln("/folders"), nil, n, &f)
	return f, err
}

// Folder fetches folder or notebook metadata.
func (c *Client) Folder(ctx context.Context, id int64) (Folder, error) {
	var f Folder
	err := c.do(ctx, http.MethodGet, eln("/folders/%d", id), nil, nil, &f)
	return f, err
}

// TreeQuery selects a page of a folder listing.
type TreeQuery struct {
	Types      []string // "document", "notebook", "folder"; empty means all
	PageSize   int
	PageNumber int
}

// FolderTree lists the records inside a folder or notebook.
func (c *Client) FolderTree(ctx context.Context, id int64, q TreeQuery) (FolderTree, error) {
	v := url.Values{}
	if len(q.Types) > 0 {
		v.Set("typesToInclude", strings.Join(q.Types, ","))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.PageNumber > 0 {
		v.Set("pageNumber", strconv.Itoa(q.PageNumber))
	}
	var t FolderTree
	err := c.do(ctx, http.MethodGet, eln("/folders/tree/%d", id), v, nil, &t)
	return t, err
}

// ActivityQuery filters the server's audit trail.
type ActivityQuery struct {
	From       time.Time
	To         time.Time
	Users      []string
	GlobalID   string
	Actions    []string
	Domains    []string
	PageSize   int
	PageNumber int
}

func (q ActivityQuery) values() url.Values {
	v := url.Values{}
	if !q.From.IsZero() {
		v.Set("dateFrom", isoDate(q.From))
	}
	if !q.To.IsZero() {
		v.Set("dateTo", isoDate(q.To))
	}
	if len(q.Users) > 0 {
		v.Set("users", strings.Join(q.Users, ","))
	}
	if q.GlobalID != "" {
		v.Set("oid", q.GlobalID)
	}
	if len(q.Actions) > 0 {
		v.Set("actions", strings.Join(q.Actions, ","))
	}
	if len(q.Domains) > 0 {
		v.Set("domains", strings.Join(q.Domains, ","))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.PageNumber > 0 {
		v.Set("pageNumber", strconv.Itoa(q.PageNumber))
	}
	return v
}

// isoDate renders a bare date when t carries no clock time.
func isoDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

// Activity returns one page of audit events.
func (c *Client) Activity(ctx context.Context, q ActivityQuery) (ActivityList, error) {
	var l ActivityList
	err := c.do(ctx, http.MethodGet, eln("/activity"), q.values(), nil, &l)
	return l, err
}

// File fetches file metadata.
func (c *Client) File(ctx context.Context, id int64) (File, error) {
	var f File
	err := c.do(ctx, http.MethodGet, eln("/files/%d", id), nil, nil, &f)
	return f, err
}

// DownloadFile streams the file's bytes to w and returns the count written.
func (c *Client) DownloadFile(ctx context.Context, id int64, w io.Writer) (int64, error) {
	return c.stream(ctx, eln("/files/%d/file", id), w)
}
