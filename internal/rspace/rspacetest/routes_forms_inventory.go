package rspacetest

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jpl-au/rspace-mcp/internal/rspace"
)

func (s *Server) listForms(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))
	s.mu.Lock()
	var out []map[string]any
	var ids []int64
	for id := range s.forms {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		f := s.forms[id]
		if query != "" && !strings.Contains(strings.ToLower(f.Name), query) {
			continue
		}
		out = append(out, elnWire(f, f.Tags))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"totalHits": len(out), "pageNumber": 0, "forms": out})
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	f, ok := s.forms[id]
	var out map[string]any
	if ok {
		out = elnWire(f, f.Tags)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Form with id "+r.PathValue("id")+" not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createForm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string           `json:"name"`
		Tags   string           `json:"tags"`
		Fields []map[string]any `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	f := &rspace.Form{ID: id, GlobalID: "FM" + strconv.FormatInt(id, 10), Name: body.Name, FormState: "NEW",
		Version: 0, Tags: rspace.SplitTags(body.Tags)}
	for _, fd := range body.Fields {
		name, _ := fd["name"].(string)
		typ, _ := fd["type"].(string)
		mandatory, _ := fd["mandatory"].(bool)
		f.Fields = append(f.Fields, rspace.FormField{ID: s.id(), Name: name, Type: typ, Mandatory: mandatory,
			DefaultValue: fd["defaultValue"]})
	}
	s.forms[id] = f
	writeJSON(w, http.StatusCreated, elnWire(f, f.Tags))
}

func (s *Server) transitionForm(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Form with id "+r.PathValue("id")+" not found")
		return
	}
	switch rspace.FormAction(r.PathValue("action")) {
	case rspace.FormPublish:
		f.FormState = "PUBLISHED"
	case rspace.FormUnpublish:
		f.FormState = "UNPUBLISHED"
	case rspace.FormShare:
		f.AccessControl = map[string]string{"groupPermissionType": "READ"}
	case rspace.FormUnshare:
		f.AccessControl = map[string]string{"groupPermissionType": "NONE"}
	default:
		writeError(w, http.StatusNotFound, "unknown form action "+r.PathValue("action"))
		return
	}
	writeJSON(w, http.StatusOK, elnWire(f, f.Tags))
}

func (s *Server) deleteForm(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Form with id "+r.PathValue("id")+" not found")
		return
	}
	if f.FormState != "NEW" {
		writeError(w, http.StatusUnprocessableEntity, "Only forms in the NEW state can be deleted")
		return
	}
	delete(s.forms, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSamples(w http.ResponseWriter, r *http.Request) {
	size := intParam(r.URL.Query(), "pageSize", 20)
	s.mu.Lock()
	var out []rspace.Sample
	for _, sm := range s.samples {
		out = append(out, *sm)
	}
	s.mu.Unlock()
	slices.SortFunc(out, func(a, b rspace.Sample) int { return b.LastModified.Compare(a.LastModified.Time) })
	total := len(out)
	writeJSON(w, http.StatusOK, rspace.SampleList{TotalHits: total, Samples: out[:min(size, total)]})
}

func (s *Server) createSample(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Tags        rspace.Tags      `json:"tags"`
		Count       int              `json:"newSampleSubSamplesCount"`
		Quantity    *rspace.Quantity `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if body.Count == 0 {
		body.Count = 1
	}
	s.mu.Lock()
	sm := s.newSample(body.Name, body.Description, body.Tags, body.Count, body.Quantity)
	out := *sm
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) getSample(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	sm, ok := s.samples[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Sample with id "+r.PathValue("id")+" not found")
		return
	}
	writeJSON(w, http.StatusOK, sm)
}

func (s *Server) duplicateSample(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var body struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.samples[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Sample with id "+r.PathValue("id")+" not found")
		return
	}
	name := body.Name
	if name == "" {
		name = src.Name + "_COPY"
	}
	dup := s.newSample(name, src.Description, src.Tags, len(src.SubSamples), src.Quantity)
	writeJSON(w, http.StatusCreated, dup)
}

func (s *Server) addNote(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var note rspace.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil || note.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	note.Created = rspace.Time{Time: time.Now().UTC()}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sm := range s.samples {
		for i := range sm.SubSamples {
			if sm.SubSamples[i].ID == id {
				sm.SubSamples[i].Notes = append(sm.SubSamples[i].Notes, note)
				writeJSON(w, http.StatusCreated, sm.SubSamples[i])
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "SubSample with id "+r.PathValue("id")+" not found")
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.ToLower(q.Get("query"))
	rt := q.Get("resultType")

	s.mu.Lock()
	var out []rspace.InventoryItem
	add := func(kind string, it rspace.InventoryItem) {
		if rt != "" && rt != kind {
			return
		}
		if strings.Contains(strings.ToLower(it.Name), query) {
			out = append(out, it)
		}
	}
	for _, sm := range s.samples {
		add("SAMPLE", sm.InventoryItem)
		for _, ss := range sm.SubSamples {
			add("SUBSAMPLE", ss.InventoryItem)
		}
	}
	for _, c := range s.containers {
		add("CONTAINER", c.InventoryItem)
	}
	for _, t := range s.templates {
		add("TEMPLATE", t.InventoryItem)
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b rspace.InventoryItem) int { return int(a.ID - b.ID) })
	writeJSON(w, http.StatusOK, rspace.SearchResult{TotalHits: len(out), Records: out})
}

func (s *Server) getContainer(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	c, ok := s.containers[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Container with id "+r.PathValue("id")+" not found")
		return
	}
	out := *c
	if r.URL.Query().Get("includeContent") != "true" {
		out.Locations = nil
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) containersOf(keep func(*rspace.Container) bool) []rspace.Container {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []rspace.Container
	for _, c := range s.containers {
		if keep(c) {
			out = append(out, *c)
		}
	}
	slices.SortFunc(out, func(a, b rspace.Container) int { return int(a.ID - b.ID) })
	return out
}

func (s *Server) listContainers(w http.ResponseWriter, r *http.Request) {
	size := intParam(r.URL.Query(), "pageSize", 20)
	out := s.containersOf(func(c *rspace.Container) bool { return c.CType != "WORKBENCH" })
	total := len(out)
	writeJSON(w, http.StatusOK, rspace.ContainerList{TotalHits: total, Containers: out[:min(size, total)]})
}

func (s *Server) workbenches(w http.ResponseWriter, _ *http.Request) {
	out := s.containersOf(func(c *rspace.Container) bool { return c.CType == "WORKBENCH" })
	writeJSON(w, http.StatusOK, rspace.ContainerList{TotalHits: len(out), Containers: out})
}

func (s *Server) createContainer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name               string      `json:"name"`
		Description        string      `json:"description"`
		CType              string      `json:"cType"`
		Tags               rspace.Tags `json:"tags"`
		CanStoreSamples    bool        `json:"canStoreSamples"`
		CanStoreContainers bool        `json:"canStoreContainers"`
		Parents            []struct {
			ID int64 `json:"id"`
		} `json:"parentContainers"`
		GridLayout *rspace.GridLayout `json:"gridLayout"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if body.CType == "GRID" && (body.GridLayout == nil || body.GridLayout.Rows < 1 || body.GridLayout.Columns < 1) {
		writeError(w, http.StatusBadRequest, "gridLayout needs at least one row and one column")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range body.Parents {
		if _, ok := s.containers[p.ID]; !ok {
			writeError(w, http.StatusNotFound, "Container with id "+strconv.FormatInt(p.ID, 10)+" not found")
			return
		}
	}
	id := s.id()
	c := &rspace.Container{
		InventoryItem: rspace.InventoryItem{ID: id, GlobalID: "IC" + strconv.FormatInt(id, 10), Name: body.Name,
			Description: body.Description, Type: "CONTAINER", Tags: body.Tags, Created: rspace.Time{Time: time.Now().UTC()}},
		CType:              body.CType,
		CanStoreSamples:    body.CanStoreSamples,
		CanStoreContainers: body.CanStoreContainers,
		GridLayout:         body.GridLayout,
	}
	s.containers[id] = c
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) splitSubSample(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var body struct {
		Count    int              `json:"numSubSamples"`
		Quantity *rspace.Quantity `json:"quantityPerSubSample"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Count < 1 {
		writeError(w, http.StatusBadRequest, "numSubSamples must be at least 1")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sm := range s.samples {
		if !slices.ContainsFunc(sm.SubSamples, func(ss rspace.SubSample) bool { return ss.ID == id }) {
			continue
		}
		now := rspace.Time{Time: time.Now().UTC()}
		out := make([]rspace.SubSample, 0, body.Count)
		for range body.Count {
			sid := s.id()
			ss := rspace.SubSample{InventoryItem: rspace.InventoryItem{ID: sid, GlobalID: "SS" + strconv.FormatInt(sid, 10),
				Name: sm.Name + "." + strconv.Itoa(len(sm.SubSamples)+1), Type: "SUBSAMPLE", Created: now, Quantity: body.Quantity}}
			sm.SubSamples = append(sm.SubSamples, ss)
			out = append(out, ss)
		}
		writeJSON(w, http.StatusCreated, out)
		return
	}
	writeError(w, http.StatusNotFound, "SubSample with id "+r.PathValue("id")+" not found")
}

// item finds any inventory record. Callers hold s.mu.
func (s *Server) item(collection string, id int64) *rspace.InventoryItem {
	switch collection {
	case "samples", "SAMPLE":
		if sm, ok := s.samples[id]; ok {
			return &sm.InventoryItem
		}
	case "subSamples", "SUBSAMPLE":
		for _, sm := range s.samples {
			for i := range sm.SubSamples {
				if sm.SubSamples[i].ID == id {
					return &sm.SubSamples[i].InventoryItem
				}
			}
		}
	case "containers", "CONTAINER":
		if c, ok := s.containers[id]; ok {
			return &c.InventoryItem
		}
	case "sampleTemplates":
		if t, ok := s.templates[id]; ok {
			return &t.InventoryItem
		}
	}
	return nil
}

func (s *Server) updateItem(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		var body struct {
			Name        string              `json:"name"`
			ExtraFields []rspace.ExtraField `json:"extraFields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		it := s.item(collection, id)
		if it == nil {
			writeError(w, http.StatusNotFound, "Record with id "+r.PathValue("id")+" not found")
			return
		}
		if body.Name != "" {
			it.Name = body.Name
		}
		for _, f := range body.ExtraFields {
			if f.Name == "" {
				writeError(w, http.StatusBadRequest, "extra field name is required")
				return
			}
			f.ID = s.id()
			it.ExtraFields = append(it.ExtraFields, f)
		}
		it.LastModified = rspace.Time{Time: time.Now().UTC()}
		writeJSON(w, http.StatusOK, it)
	}
}

func (s *Server) bulk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OperationType string `json:"operationType"`
		Records       []struct {
			Type    string `json:"type"`
			ID      int64  `json:"id"`
			Parents []struct {
				ID int64 `json:"id"`
			} `json:"parentContainers"`
		} `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.OperationType != "MOVE" {
		writeError(w, http.StatusBadRequest, "only MOVE operations are supported")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res := rspace.BulkResult{Status: "COMPLETED", Results: []rspace.BulkRecord{}}
	fail := func(msg string) {
		res.ErrorCount++
		res.Results = append(res.Results, rspace.BulkRecord{Error: &rspace.BulkError{Errors: []string{msg}}})
	}
	for _, rec := range body.Records {
		it := s.item(rec.Type, rec.ID)
		if it == nil {
			fail(rec.Type + " with id " + strconv.FormatInt(rec.ID, 10) + " not found")
			continue
		}
		if len(rec.Parents) != 1 {
			fail("exactly one target container is required")
			continue
		}
		target, ok := s.containers[rec.Parents[0].ID]
		if !ok || target.CType != "LIST" {
			fail("target is not a list container")
			continue
		}
		for _, c := range s.containers {
			c.Locations = slices.DeleteFunc(c.Locations, func(l rspace.Location) bool {
				return l.Content != nil && l.Content.GlobalID == it.GlobalID
			})
		}
		moved := *it
		target.Locations = append(target.Locations, rspace.Location{ID: s.id(), Content: &moved})
		res.Results = append(res.Results, rspace.BulkRecord{Record: &moved})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name          string          `json:"name"`
		Description   string          `json:"description"`
		DefaultUnitID int             `json:"defaultUnitId"`
		Fields        json.RawMessage `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	now := rspace.Time{Time: time.Now().UTC()}
	t := &rspace.SampleTemplate{
		InventoryItem: rspace.InventoryItem{ID: id, GlobalID: "IT" + strconv.FormatInt(id, 10), Name: body.Name,
			Description: body.Description, Type: "SAMPLE_TEMPLATE", Created: now, LastModified: now},
		DefaultUnitID: body.DefaultUnitID,
		Fields:        body.Fields,
	}
	s.templates[id] = t
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	t, ok := s.templates[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Sample template with id "+r.PathValue("id")+" not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	size := intParam(r.URL.Query(), "pageSize", 20)
	s.mu.Lock()
	out := []rspace.SampleTemplate{}
	for _, t := range s.templates {
		out = append(out, *t)
	}
	s.mu.Unlock()
	slices.SortFunc(out, func(a, b rspace.SampleTemplate) int { return int(a.ID - b.ID) })
	total := len(out)
	writeJSON(w, http.StatusOK, rspace.SampleTemplateList{TotalHits: total, Templates: out[:min(size, total)]})
}
