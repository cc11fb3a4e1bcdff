// Package rspacetest provides an in-memory RSpace server for tests.
//
// The fake speaks the same wire format as RSpace (comma-separated ELN tags,
// the JSON error envelope, the apiKey header) for the endpoints the client
// uses, and records every request so tests can assert that validation
// failures never reach the network.
package rspacetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jpl-au/rspace-mcp/internal/rspace"
)

// DefaultAPIKey is the key the fake accepts unless overridden.
const DefaultAPIKey = "test-api-key"

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

type failure struct {
	status int
	msg    string
}

type storedFile struct {
	meta rspace.File
	data []byte
}

// Server is a fake RSpace backed by maps.
type Server struct {
	*httptest.Server
	APIKey string

	mu         sync.Mutex
	nextID     int64
	docs       map[int64]*rspace.Document
	folders    map[int64]*rspace.Folder
	children   map[int64][]int64
	activities []rspace.Activity
	forms      map[int64]*rspace.Form
	files      map[int64]*storedFile
	samples    map[int64]*rspace.Sample
	containers map[int64]*rspace.Container
	templates  map[int64]*rspace.SampleTemplate
	requests   []Request
	failures   map[string]failure
	delay      time.Duration
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		APIKey:     DefaultAPIKey,
		nextID:     1000,
		docs:       make(map[int64]*rspace.Document),
		folders:    make(map[int64]*rspace.Folder),
		children:   make(map[int64][]int64),
		forms:      make(map[int64]*rspace.Form),
		files:      make(map[int64]*storedFile),
		samples:    make(map[int64]*rspace.Sample),
		containers: make(map[int64]*rspace.Container),
		templates:  make(map[int64]*rspace.SampleTemplate),
		failures:   make(map[string]failure),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// Client returns an rspace.Client pointed at the fake, using a copy of the
// test server's HTTP client so options cannot change it for other clients.
func (s *Server) Client(opts ...rspace.Option) *rspace.Client {
	hc := *s.Server.Client()
	return rspace.New(s.URL, s.APIKey, append([]rspace.Option{rspace.WithHTTPClient(&hc)}, opts...)...)
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestCount returns how many requests the fake has received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Fail makes the next and every later request to method+path return status.
func (s *Server) Fail(method, path string, status int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, msg: msg}
}

// Delay makes every response wait d before being written.
func (s *Server) Delay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// AddDocument seeds a single-field document.
func (s *Server) AddDocument(name string, created time.Time, tags ...string) rspace.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	d := &rspace.Document{
		DocumentInfo: rspace.DocumentInfo{
			ID:           id,
			GlobalID:     "SD" + strconv.FormatInt(id, 10),
			Name:         name,
			Created:      rspace.Time{Time: created.UTC()},
			LastModified: rspace.Time{Time: created.UTC()},
			Tags:         rspace.Tags(tags),
		},
		Fields: []rspace.Field{{ID: s.id(), Name: "Data", Type: "text", Content: "<p>" + name + "</p>"}},
	}
	s.docs[id] = d
	return *d
}

// AddNotebook seeds an empty notebook.
func (s *Server) AddNotebook(name string) rspace.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	f := &rspace.Folder{ID: id, GlobalID: "NB" + strconv.FormatInt(id, 10), Name: name, Notebook: true,
		Created: rspace.Time{Time: time.Now().UTC()}}
	s.folders[id] = f
	return *f
}

// AddFolder seeds a plain workspace folder.
func (s *Server) AddFolder(name string) rspace.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	f := &rspace.Folder{ID: id, GlobalID: "FL" + strconv.FormatInt(id, 10), Name: name,
		Created: rspace.Time{Time: time.Now().UTC()}}
	s.folders[id] = f
	return *f
}

// AddFile seeds a gallery file.
func (s *Server) AddFile(name string, data []byte) rspace.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	f := rspace.File{ID: id, GlobalID: "GL" + strconv.FormatInt(id, 10), Name: name,
		ContentType: "application/octet-stream", Size: int64(len(data)), Created: rspace.Time{Time: time.Now().UTC()}}
	s.files[id] = &storedFile{meta: f, data: data}
	return f
}

// AttachFile links a seeded file to the first field of a document.
func (s *Server) AttachFile(docID, fileID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, f := s.docs[docID], s.files[fileID]
	if d == nil || f == nil || len(d.Fields) == 0 {
		return
	}
	d.Fields[0].Files = append(d.Fields[0].Files, f.meta)
}

// AddToNotebook moves a seeded document into a notebook.
func (s *Server) AddToNotebook(notebookID, docID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[notebookID] = append(s.children[notebookID], docID)
	if d := s.docs[docID]; d != nil {
		d.ParentFolderID = notebookID
	}
}

// AddActivity seeds an audit event.
func (s *Server) AddActivity(a rspace.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, a)
}

// AddForm seeds a form in the given state.
func (s *Server) AddForm(name, state string) rspace.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	f := &rspace.Form{ID: id, GlobalID: "FM" + strconv.FormatInt(id, 10), Name: name, FormState: state, Version: 1,
		Fields: []rspace.FormField{{ID: s.id(), Name: "Objective", Type: "String"}}}
	s.forms[id] = f
	return *f
}

// AddSample seeds a sample with one subsample.
func (s *Server) AddSample(name string) rspace.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.newSample(name, "", nil, 1, nil)
}

// AddContainer seeds a top-level container of the given type.
func (s *Server) AddContainer(name, cType string) rspace.Container {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	prefix := "IC"
	if cType == "WORKBENCH" {
		prefix = "BE"
	}
	c := &rspace.Container{InventoryItem: rspace.InventoryItem{ID: id, GlobalID: prefix + strconv.FormatInt(id, 10),
		Name: name, Type: "CONTAINER", Created: rspace.Time{Time: time.Now().UTC()}}, CType: cType}
	s.containers[id] = c
	return *c
}

// Document returns the fake's current copy of a document.
func (s *Server) Document(id int64) (rspace.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return rspace.Document{}, false
	}
	return *d, true
}

// Form returns the fake's current copy of a form.
func (s *Server) Form(id int64) (rspace.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		return rspace.Form{}, false
	}
	return *f, true
}

func (s *Server) newSample(name, desc string, tags rspace.Tags, subs int, q *rspace.Quantity) *rspace.Sample {
	id := s.id()
	now := rspace.Time{Time: time.Now().UTC()}
	sm := &rspace.Sample{InventoryItem: rspace.InventoryItem{ID: id, GlobalID: "SA" + strconv.FormatInt(id, 10),
		Name: name, Description: desc, Type: "SAMPLE", Tags: tags, Created: now, LastModified: now, Quantity: q}}
	for i := 0; i < subs; i++ {
		sid := s.id()
		sm.SubSamples = append(sm.SubSamples, rspace.SubSample{InventoryItem: rspace.InventoryItem{
			ID: sid, GlobalID: "SS" + strconv.FormatInt(sid, 10), Name: name + "." + strconv.Itoa(i+1),
			Type: "SUBSAMPLE", Created: now}})
	}
	s.samples[id] = sm
	return sm
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"status":           strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_")),
		"httpCode":         status,
		"internalCode":     status * 100,
		"message":          msg,
		"errors":           []string{msg},
		"iso8601Timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// elnWire renders v as a JSON object with its tags flattened to a string.
func elnWire(v any, tags rspace.Tags) map[string]any {
	b, _ := json.Marshal(v)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	m["tags"] = tags.String()
	return m
}

func pathID(r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return n, err == nil
}

func intParam(q url.Values, name string, def int) int {
	if n, err := strconv.Atoi(q.Get(name)); err == nil {
		return n
	}
	return def
}
