package rspacetest

import (
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jpl-au/rspace-mcp/internal/rspace"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	const e, i = rspace.ELNPrefix, rspace.InventoryPrefix

	mux.HandleFunc("GET "+e+"/status", s.status)
	mux.HandleFunc("GET "+e+"/documents", s.listDocuments)
	mux.HandleFunc("POST "+e+"/documents", s.createDocument)
	mux.HandleFunc("GET "+e+"/documents/{id}", s.getDocument)
	mux.HandleFunc("PUT "+e+"/documents/{id}", s.updateDocument)
	mux.HandleFunc("POST "+e+"/folders", s.createFolder)
	mux.HandleFunc("GET "+e+"/folders/{id}", s.getFolder)
	mux.HandleFunc("GET "+e+"/folders/tree/{id}", s.folderTree)
	mux.HandleFunc("GET "+e+"/activity", s.activity)
	mux.HandleFunc("GET "+e+"/files/{id}", s.getFile)
	mux.HandleFunc("GET "+e+"/files/{id}/file", s.downloadFile)
	mux.HandleFunc("GET "+e+"/forms", s.listForms)
	mux.HandleFunc("POST "+e+"/forms", s.createForm)
	mux.HandleFunc("GET "+e+"/forms/{id}", s.getForm)
	mux.HandleFunc("DELETE "+e+"/forms/{id}", s.deleteForm)
	mux.HandleFunc("PUT "+e+"/forms/{id}/{action}", s.transitionForm)

	mux.HandleFunc("GET "+i+"/samples", s.listSamples)
	mux.HandleFunc("POST "+i+"/samples", s.createSample)
	mux.HandleFunc("GET "+i+"/samples/{id}", s.getSample)
	mux.HandleFunc("POST "+i+"/samples/{id}/actions/duplicate", s.duplicateSample)
	mux.HandleFunc("POST "+i+"/subSamples/{id}/notes", s.addNote)
	mux.HandleFunc("GET "+i+"/search", s.search)
	mux.HandleFunc("GET "+i+"/containers", s.listContainers)
	mux.HandleFunc("POST "+i+"/containers", s.createContainer)
	mux.HandleFunc("GET "+i+"/containers/{id}", s.getContainer)
	mux.HandleFunc("GET "+i+"/workbenches", s.workbenches)
	mux.HandleFunc("POST "+i+"/subSamples/{id}/actions/split", s.splitSubSample)
	mux.HandleFunc("POST "+i+"/bulk", s.bulk)
	mux.HandleFunc("GET "+i+"/sampleTemplates", s.listTemplates)
	mux.HandleFunc("POST "+i+"/sampleTemplates", s.createTemplate)
	mux.HandleFunc("GET "+i+"/sampleTemplates/{id}", s.getTemplate)
	for _, c := range []string{"samples", "subSamples", "containers", "sampleTemplates"} {
		mux.HandleFunc("PUT "+i+"/"+c+"/{id}", s.updateItem(c))
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: string(body)})
		f, failing := s.failures[r.Method+" "+r.URL.Path]
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if r.Header.Get("apiKey") != s.APIKey {
			writeError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}
		if failing {
			writeError(w, f.status, f.msg)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rspace.Status{Message: "OK", RSpaceVersion: "2.0.0"})
}

// createdRange extracts the "from;to" term of an advancedQuery.
func createdRange(raw string) (from, to time.Time) {
	var q struct {
		Terms []struct {
			Query     string `json:"query"`
			QueryType string `json:"queryType"`
		} `json:"terms"`
	}
	if json.Unmarshal([]byte(raw), &q) != nil {
		return
	}
	for _, t := range q.Terms {
		if t.QueryType != "created" {
			continue
		}
		lo, hi, _ := strings.Cut(t.Query, ";")
		from, _ = time.Parse(time.DateOnly, lo)
		to, _ = time.Parse(time.DateOnly, hi)
	}
	return
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	size := intParam(q, "pageSize", 20)
	page := intParam(q, "pageNumber", 0)
	from, to := createdRange(q.Get("advancedQuery"))

	s.mu.Lock()
	var all []rspace.DocumentInfo
	for _, d := range s.docs {
		c := d.Created.Time
		if !from.IsZero() && c.Before(from) {
			continue
		}
		if !to.IsZero() && c.After(to.Add(24*time.Hour)) {
			continue
		}
		all = append(all, d.DocumentInfo)
	}
	s.mu.Unlock()

	slices.SortFunc(all, func(a, b rspace.DocumentInfo) int {
		if q.Get("orderBy") == rspace.DefaultDocumentOrder {
			return b.Created.Compare(a.Created.Time)
		}
		return int(a.ID - b.ID)
	})

	total := len(all)
	start := min(page*size, total)
	end := min(start+size, total)
	docs := make([]map[string]any, 0, end-start)
	for _, d := range all[start:end] {
		docs = append(docs, elnWire(d, d.Tags))
	}
	writeJSON(w, http.StatusOK, map[string]any{"totalHits": total, "pageNumber": page, "documents": docs})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	d, ok := s.docs[id]
	var out map[string]any
	if ok {
		out = elnWire(d, d.Tags)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Document with id "+r.PathValue("id")+" not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type fieldBody struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

func (s *Server) updateDocument(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var body struct {
		Name   string      `json:"name"`
		Tags   *string     `json:"tags"`
		FormID int64       `json:"formId"`
		Fields []fieldBody `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Document with id "+r.PathValue("id")+" not found")
		return
	}
	if body.Name != "" {
		d.Name = body.Name
	}
	if body.Tags != nil {
		d.Tags = rspace.SplitTags(*body.Tags)
	}
	for _, f := range body.Fields {
		idx := slices.IndexFunc(d.Fields, func(x rspace.Field) bool { return x.ID == f.ID })
		if idx < 0 {
			writeError(w, http.StatusBadRequest, "Field "+strconv.FormatInt(f.ID, 10)+" is not part of this document")
			return
		}
		d.Fields[idx].Content = f.Content
	}
	d.LastModified = rspace.Time{Time: time.Now().UTC()}
	writeJSON(w, http.StatusOK, elnWire(d, d.Tags))
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name           string          `json:"name"`
		ParentFolderID int64           `json:"parentFolderId"`
		Tags           string          `json:"tags"`
		Form           *rspace.FormRef `json:"form"`
		Fields         []fieldBody     `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if body.ParentFolderID != 0 {
		if _, ok := s.folders[body.ParentFolderID]; !ok {
			writeError(w, http.StatusNotFound, "Folder with id "+strconv.FormatInt(body.ParentFolderID, 10)+" not found")
			return
		}
	}
	if body.Form != nil {
		if _, ok := s.forms[body.Form.ID]; !ok {
			writeError(w, http.StatusNotFound, "Form with id "+strconv.FormatInt(body.Form.ID, 10)+" not found")
			return
		}
	}

	id := s.id()
	now := rspace.Time{Time: time.Now().UTC()}
	name := body.Name
	if name == "" {
		name = "Untitled document"
	}
	d := &rspace.Document{
		DocumentInfo: rspace.DocumentInfo{ID: id, GlobalID: "SD" + strconv.FormatInt(id, 10), Name: name,
			Created: now, LastModified: now, Tags: rspace.SplitTags(body.Tags), Form: body.Form},
		ParentFolderID: body.ParentFolderID,
	}
	for _, f := range body.Fields {
		d.Fields = append(d.Fields, rspace.Field{ID: s.id(), Name: "Data", Type: "text", Content: f.Content})
	}
	s.docs[id] = d
	if body.ParentFolderID != 0 {
		s.children[body.ParentFolderID] = append(s.children[body.ParentFolderID], id)
	}
	writeJSON(w, http.StatusCreated, elnWire(d, d.Tags))
}

func (s *Server) createFolder(w http.ResponseWriter, r *http.Request) {
	var body rspace.NewFolder
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	prefix := "FL"
	if body.Notebook {
		prefix = "NB"
	}
	f := &rspace.Folder{ID: id, GlobalID: prefix + strconv.FormatInt(id, 10), Name: body.Name,
		Notebook: body.Notebook, ParentFolderID: body.ParentFolderID, Created: rspace.Time{Time: time.Now().UTC()}}
	s.folders[id] = f
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) getFolder(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	f, ok := s.folders[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Folder with id "+r.PathValue("id")+" not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) folderTree(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	q := r.URL.Query()
	size := intParam(q, "pageSize", 20)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.folders[id]; !ok {
		writeError(w, http.StatusNotFound, "Folder with id "+r.PathValue("id")+" not found")
		return
	}
	kids := s.children[id]
	recs := make([]rspace.TreeRecord, 0, len(kids))
	for _, k := range kids {
		d := s.docs[k]
		recs = append(recs, rspace.TreeRecord{ID: d.ID, GlobalID: d.GlobalID, Name: d.Name, Type: "NORMAL",
			Created: d.Created, LastModified: d.LastModified})
	}
	total := len(recs)
	recs = recs[:min(size, total)]
	writeJSON(w, http.StatusOK, rspace.FolderTree{TotalHits: total, Records: recs})
}

func (s *Server) activity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, _ := time.Parse(time.DateOnly, q.Get("dateFrom"))
	to, _ := time.Parse(time.DateOnly, q.Get("dateTo"))
	var users []string
	if u := q.Get("users"); u != "" {
		users = strings.Split(u, ",")
	}
	oid := q.Get("oid")

	s.mu.Lock()
	var out []rspace.Activity
	for _, a := range s.activities {
		ts := a.Timestamp.Time
		if !from.IsZero() && ts.Before(from) {
			continue
		}
		if !to.IsZero() && !ts.Before(to.Add(24*time.Hour)) {
			continue
		}
		if len(users) > 0 && !slices.Contains(users, a.Username) {
			continue
		}
		if oid != "" && a.Resource() != oid {
			continue
		}
		out = append(out, a)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, rspace.ActivityList{TotalHits: len(out), Activities: out})
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	f, ok := s.files[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "File with id "+r.PathValue("id")+" not found")
		return
	}
	writeJSON(w, http.StatusOK, f.meta)
}

func (s *Server) downloadFile(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	f, ok := s.files[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "File with id "+r.PathValue("id")+" not found")
		return
	}
	w.Header().Set("Content-Type", f.meta.ContentType)
	_, _ = w.Write(f.data)
}
