// inventory.go implements the Inventory endpoints: samples, subsamples,
// containers, workbenches, templates, bulk moves and search.

package rspace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Page selects a page of an inventory listing.
type Page struct {
	Size    int
	Number  int
	OrderBy string // e.g. "lastModified desc"
}

func (p Page) values() url.Values {
	v := url.Values{}
	if p.Size > 0 {
		v.Set("pageSize", strconv.Itoa(p.Size))
	}
	if p.Number > 0 {
		v.Set("pageNumber", strconv.Itoa(p.Number))
	}
	if p.OrderBy != "" {
		v.Set("orderBy", p.OrderBy)
	}
	return v
}

// Quantity unit ids understood by the Inventory API.
var quantityUnits = map[string]int{
	"items": 1,
	"µl":    2,
	"ul":    2,
	"ml":    3,
	"l":     4,
	"µg":    5,
	"ug":    5,
	"mg":    6,
	"g":     7,
}

// UnitID resolves a unit label such as "ml" or "mg".
func UnitID(label string) (int, error) {
	id, ok := quantityUnits[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("unknown quantity unit %q (use items, ul, ml, l, ug, mg or g)", label)
	}
	return id, nil
}

// inventoryTag is the object form Inventory uses for tags.
type inventoryTag struct {
	Value string `json:"value"`
}

func inventoryTags(t Tags) []inventoryTag {
	out := make([]inventoryTag, 0, len(t))
	for _, v := range t {
		out = append(out, inventoryTag{Value: v})
	}
	return out
}

// NewSample describes a sample to create.
type NewSample struct {
	Name           string
	Description    string
	Tags           Tags
	SubSampleCount int
	Quantity       *Quantity
}

// CreateSample creates a sample with SubSampleCount subsamples.
func (c *Client) CreateSample(ctx context.Context, n NewSample) (Sample, error) {
	body := map[string]any{"name": n.Name}
	if n.Description != "" {
		body["description"] = n.Description
	}
	if len(n.Tags) > 0 {
		body["tags"] = inventoryTags(n.Tags)
	}
	if n.SubSampleCount > 0 {
		body["newSampleSubSamplesCount"] = n.SubSampleCount
	}
	if n.Quantity != nil {
		body["quantity"] = n.Quantity
	}
	var s Sample
	err := c.do(ctx, http.MethodPost, inv("/samples"), nil, body, &s)
	return s, err
}

// Sample fetches a sample with its subsamples.
func (c *Client) Sample(ctx context.Context, id int64) (Sample, error) {
	var s Sample
	err := c.do(ctx, http.MethodGet, inv("/samples/%d", id), nil, nil, &s)
	return s, err
}

// ListSamples returns one page of samples.
func (c *Client) ListSamples(ctx context.Context, p Page) (SampleList, error) {
	var l SampleList
	err := c.do(ctx, http.MethodGet, inv("/samples"), p.values(), nil, &l)
	return l, err
}

// DuplicateSample copies a sample, optionally under a new name.
func (c *Client) DuplicateSample(ctx context.Context, id int64, name string) (Sample, error) {
	var body any
	if name != "" {
		body = map[string]string{"name": name}
	}
	var s Sample
	err := c.do(ctx, http.MethodPost, inv("/samples/%d/actions/duplicate", id), nil, body, &s)
	return s, err
}

// AddSubSampleNote appends a note to a subsample.
func (c *Client) AddSubSampleNote(ctx context.Context, id int64, content string) (SubSample, error) {
	var s SubSample
	err := c.do(ctx, http.MethodPost, inv("/subSamples/%d/notes", id), nil, Note{Content: content}, &s)
	return s, err
}

// Inventory search result types.
var ResultTypes = []string{"SAMPLE", "SUBSAMPLE", "CONTAINER", "TEMPLATE"}

// SearchInventory runs a text search across inventory records.
// resultType restricts hits to one of ResultTypes; empty means all.
func (c *Client) SearchInventory(ctx context.Context, query, resultType string, p Page) (SearchResult, error) {
	v := p.values()
	v.Set("query", query)
	if resultType != "" {
		v.Set("resultType", strings.ToUpper(resultType))
	}
	var r SearchResult
	err := c.do(ctx, http.MethodGet, inv("/search"), v, nil, &r)
	return r, err
}

// Container fetches a container, with its contents when includeContent is set.
func (c *Client) Container(ctx context.Context, id int64, includeContent bool) (Container, error) {
	v := url.Values{}
	v.Set("includeContent", strconv.FormatBool(includeContent))
	var ct Container
	err := c.do(ctx, http.MethodGet, inv("/containers/%d", id), v, nil, &ct)
	return ct, err
}

// ListContainers returns one page of top-level containers.
func (c *Client) ListContainers(ctx context.Context, p Page) (ContainerList, error) {
	var l ContainerList
	err := c.do(ctx, http.MethodGet, inv("/containers"), p.values(), nil, &l)
	return l, err
}

// Workbenches returns the workbench of every user visible to the caller.
func (c *Client) Workbenches(ctx context.Context) ([]Container, error) {
	var l ContainerList
	err := c.do(ctx, http.MethodGet, inv("/workbenches"), nil, nil, &l)
	return l.Containers, err
}

// NewContainer describes a container to create. Rows and Columns apply to
// grid containers only.
type NewContainer struct {
	Name               string
	Description        string
	Tags               Tags
	CanStoreSamples    bool
	CanStoreContainers bool
	ParentID           int64 // zero places it on the user's workbench
	Rows               int
	Columns            int
}

// CreateListContainer creates a container without grid positions.
func (c *Client) CreateListContainer(ctx context.Context, n NewContainer) (Container, error) {
	return c.createContainer(ctx, "LIST", n)
}

// CreateGridContainer creates a container of n.Rows by n.Columns positions.
func (c *Client) CreateGridContainer(ctx context.Context, n NewContainer) (Container, error) {
	return c.createContainer(ctx, "GRID", n)
}

func (c *Client) createContainer(ctx context.Context, cType string, n NewContainer) (Container, error) {
	body := map[string]any{
		"name":               n.Name,
		"cType":              cType,
		"canStoreSamples":    n.CanStoreSamples,
		"canStoreContainers": n.CanStoreContainers,
	}
	if n.Description != "" {
		body["description"] = n.Description
	}
	if len(n.Tags) > 0 {
		body["tags"] = inventoryTags(n.Tags)
	}
	if n.ParentID > 0 {
		body["parentContainers"] = []map[string]int64{{"id": n.ParentID}}
	}
	if cType == "GRID" {
		body["gridLayout"] = GridLayout{Columns: n.Columns, Rows: n.Rows}
	}
	var ct Container
	err := c.do(ctx, http.MethodPost, inv("/containers"), nil, body, &ct)
	return ct, err
}

// SplitSubSample divides a subsample into count new subsamples. With per
// set, each new subsample receives that quantity.
func (c *Client) SplitSubSample(ctx context.Context, id int64, count int, per *Quantity) ([]SubSample, error) {
	body := map[string]any{"numSubSamples": count}
	if per != nil {
		body["quantityPerSubSample"] = per
	}
	var out []SubSample
	err := c.do(ctx, http.MethodPost, inv("/subSamples/%d/actions/split", id), nil, body, &out)
	return out, err
}

// ErrNotInventoryID is returned when an operation needs the global id of an
// inventory record (SA, SS, IC or IT) and got something else.
var ErrNotInventoryID = errors.New("not an inventory global id")

// inventoryKinds maps global id prefixes to their API collection and the
// record type bulk operations expect.
var inventoryKinds = map[string]struct{ collection, bulkType string }{
	"SA": {"samples", "SAMPLE"},
	"SS": {"subSamples", "SUBSAMPLE"},
	"IC": {"containers", "CONTAINER"},
	"IT": {"sampleTemplates", "SAMPLE_TEMPLATE"},
}

// InventoryRecord resolves an inventory global id to its collection path.
func InventoryRecord(globalID string) (path string, bulkType string, err error) {
	kind, ok := inventoryKinds[GlobalPrefix(globalID)]
	if !ok {
		return "", "", fmt.Errorf("%w: %q (want SA, SS, IC or IT followed by a number)", ErrNotInventoryID, globalID)
	}
	id, err := ParseID(globalID)
	if err != nil {
		return "", "", err
	}
	return inv("/%s/%d", kind.collection, id), kind.bulkType, nil
}

// RenameItem renames any inventory record identified by its global id.
func (c *Client) RenameItem(ctx context.Context, globalID, name string) (InventoryItem, error) {
	path, _, err := InventoryRecord(globalID)
	if err != nil {
		return InventoryItem{}, err
	}
	var it InventoryItem
	err = c.do(ctx, http.MethodPut, path, nil, map[string]string{"name": name}, &it)
	return it, err
}

// AddExtraFields adds custom fields to an inventory record.
func (c *Client) AddExtraFields(ctx context.Context, globalID string, fields []ExtraField) (InventoryItem, error) {
	path, _, err := InventoryRecord(globalID)
	if err != nil {
		return InventoryItem{}, err
	}
	reqs := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		reqs = append(reqs, map[string]any{
			"name":            f.Name,
			"type":            f.Type,
			"content":         f.Content,
			"newFieldRequest": true,
		})
	}
	var it InventoryItem
	err = c.do(ctx, http.MethodPut, path, nil, map[string]any{"extraFields": reqs}, &it)
	return it, err
}

// MoveToListContainer moves records, given by global id, into a list
// container in one bulk request. Templates cannot be moved.
func (c *Client) MoveToListContainer(ctx context.Context, target int64, globalIDs []string) (BulkResult, error) {
	records := make([]map[string]any, 0, len(globalIDs))
	for _, g := range globalIDs {
		_, kind, err := InventoryRecord(g)
		if err != nil {
			return BulkResult{}, err
		}
		if kind == "SAMPLE_TEMPLATE" {
			return BulkResult{}, fmt.Errorf("%w: %q is a template", ErrNotInventoryID, g)
		}
		id, _ := ParseID(g)
		records = append(records, map[string]any{
			"type":             kind,
			"id":               id,
			"parentContainers": []map[string]int64{{"id": target}},
		})
	}
	body := map[string]any{"operationType": "MOVE", "records": records}
	var r BulkResult
	err := c.do(ctx, http.MethodPost, inv("/bulk"), nil, body, &r)
	return r, err
}

// CreateSampleTemplate creates a template from a definition passed through
// as given: name, description, defaultUnitId and fields.
func (c *Client) CreateSampleTemplate(ctx context.Context, def map[string]any) (SampleTemplate, error) {
	var t SampleTemplate
	err := c.do(ctx, http.MethodPost, inv("/sampleTemplates"), nil, def, &t)
	return t, err
}

// SampleTemplate fetches a sample template with its field definitions.
func (c *Client) SampleTemplate(ctx context.Context, id int64) (SampleTemplate, error) {
	var t SampleTemplate
	err := c.do(ctx, http.MethodGet, inv("/sampleTemplates/%d", id), nil, nil, &t)
	return t, err
}

// ListSampleTemplates returns one page of sample templates.
func (c *Client) ListSampleTemplates(ctx context.Context, p Page) (SampleTemplateList, error) {
	var l SampleTemplateList
	err := c.do(ctx, http.MethodGet, inv("/sampleTemplates"), p.values(), nil, &l)
	return l, err
}
