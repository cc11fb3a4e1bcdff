package rspace_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jpl-au/rspace-mcp/internal/rspace"
	"github.com/jpl-au/rspace-mcp/internal/rspace/rspacetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStatus(t *testing.T) {
	srv := rspacetest.New(t)
	st, err := srv.Client().Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", st.Message)

	req := srv.Requests()
	require.Len(t, req, 1)
	assert.Equal(t, "/api/v1/status", req[0].Path)
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://rspace.example.org", rspace.New("https://rspace.example.org/", "k").BaseURL())
	assert.Equal(t, "https://rspace.example.org", rspace.New("https://rspace.example.org", "k").BaseURL())
}

func TestWithHTTPClient(t *testing.T) {
	srv := rspacetest.New(t)
	var seen int
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen++
		return http.DefaultTransport.RoundTrip(r)
	})}

	_, err := rspace.New(srv.URL, srv.APIKey, rspace.WithHTTPClient(hc)).Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestUnauthorized(t *testing.T) {
	srv := rspacetest.New(t)
	c := rspace.New(srv.URL, "wrong-key")

	_, err := c.Status(context.Background())
	require.Error(t, err)
	assert.True(t, rspace.IsUnauthorized(err))

	var apiErr *rspace.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid API key", apiErr.Message)
}

func TestListDocuments(t *testing.T) {
	srv := rspacetest.New(t)
	srv.AddDocument("old", day("2024-01-01"))
	srv.AddDocument("new", day("2024-03-01"), "a", "b")
	srv.AddDocument("mid", day("2024-02-01"))

	l, err := srv.Client().ListDocuments(context.Background(), rspace.DocumentQuery{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, l.TotalHits)
	require.Len(t, l.Documents, 2)
	assert.Equal(t, "new", l.Documents[0].Name)
	assert.Equal(t, rspace.Tags{"a", "b"}, l.Documents[0].Tags)
	assert.Equal(t, "mid", l.Documents[1].Name)

	req := srv.Requests()[0]
	assert.Equal(t, "created desc", req.Query.Get("orderBy"))
	assert.Equal(t, "2", req.Query.Get("pageSize"))
}

func TestListDocumentsCreatedRange(t *testing.T) {
	srv := rspacetest.New(t)
	srv.AddDocument("jan", day("2024-01-10"))
	srv.AddDocument("feb", day("2024-02-10"))

	l, err := srv.Client().ListDocuments(context.Background(), rspace.DocumentQuery{
		CreatedFrom: day("2024-02-01"),
		CreatedTo:   day("2024-02-28"),
	})
	require.NoError(t, err)
	require.Len(t, l.Documents, 1)
	assert.Equal(t, "feb", l.Documents[0].Name)
	assert.Contains(t, srv.Requests()[0].Query.Get("advancedQuery"), `2024-02-01;2024-02-28`)
}

func TestDocumentNotFound(t *testing.T) {
	srv := rspacetest.New(t)
	_, err := srv.Client().Document(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, rspace.IsNotFound(err))
	assert.Contains(t, err.Error(), "404")
}

func TestUpdateDocumentTags(t *testing.T) {
	srv := rspacetest.New(t)
	d := srv.AddDocument("doc", day("2024-01-01"), "x")

	var u rspace.DocumentUpdate
	u.SetTags(rspace.Tags{"x", "y z"})
	got, err := srv.Client().UpdateDocument(context.Background(), d.ID, u)
	require.NoError(t, err)
	assert.Equal(t, rspace.Tags{"x", "y z"}, got.Tags)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(srv.Requests()[0].Body), &body))
	assert.Equal(t, "x,y z", body["tags"])
	assert.NotContains(t, body, "name")
}

func TestCreateNotebookEntry(t *testing.T) {
	srv := rspacetest.New(t)
	c := srv.Client()
	ctx := context.Background()

	nb, err := c.CreateFolder(ctx, rspace.NewFolder{Name: "Lab book", Notebook: true})
	require.NoError(t, err)
	assert.True(t, nb.Notebook)

	d, err := c.CreateDocument(ctx, rspace.NewDocument{
		Name:           "Day 1",
		ParentFolderID: nb.ID,
		Fields:         []rspace.FieldContent{{Content: "<p>hello</p>"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>hello</p>", d.Content())

	tree, err := c.FolderTree(ctx, nb.ID, rspace.TreeQuery{Types: []string{"document"}})
	require.NoError(t, err)
	require.Len(t, tree.Records, 1)
	assert.Equal(t, d.ID, tree.Records[0].ID)
}

func TestActivity(t *testing.T) {
	srv := rspacetest.New(t)
	srv.AddActivity(rspace.Activity{Username: "alice", Action: "CREATE", Domain: "RECORD",
		Timestamp: rspace.Time{Time: day("2024-05-02")}, Payload: json.RawMessage(`{"id":{"globalId":"SD77"}}`)})
	srv.AddActivity(rspace.Activity{Username: "bob", Action: "READ", Domain: "RECORD",
		Timestamp: rspace.Time{Time: day("2024-06-02")}})

	l, err := srv.Client().Activity(context.Background(), rspace.ActivityQuery{
		From: day("2024-05-01"), To: day("2024-05-31"), Users: []string{"alice"},
	})
	require.NoError(t, err)
	require.Len(t, l.Activities, 1)
	assert.Equal(t, "SD77", l.Activities[0].Resource())

	q := srv.Requests()[0].Query
	assert.Equal(t, "2024-05-01", q.Get("dateFrom"))
	assert.Equal(t, "2024-05-31", q.Get("dateTo"))
	assert.Equal(t, "alice", q.Get("users"))
}

func TestDownloadFile(t *testing.T) {
	srv := rspacetest.New(t)
	f := srv.AddFile("data.csv", []byte("a,b\n1,2\n"))

	var buf bytes.Buffer
	n, err := srv.Client().DownloadFile(context.Background(), f.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "a,b\n1,2\n", buf.String())
}

func TestFormLifecycle(t *testing.T) {
	srv := rspacetest.New(t)
	c := srv.Client()
	ctx := context.Background()

	f, err := c.CreateForm(ctx, rspace.NewForm{Name: "Assay", Tags: "lab", Fields: []map[string]any{
		{"name": "Result", "type": "Text", "mandatory": true},
	}})
	require.NoError(t, err)
	assert.Equal(t, "NEW", f.FormState)
	assert.Equal(t, rspace.Tags{"lab"}, f.Tags)

	f, err = c.TransitionForm(ctx, f.ID, rspace.FormPublish)
	require.NoError(t, err)
	assert.Equal(t, "PUBLISHED", f.FormState)

	err = c.DeleteForm(ctx, f.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, err.(*rspace.APIError).StatusCode)
}

func TestInventory(t *testing.T) {
	srv := rspacetest.New(t)
	c := srv.Client()
	ctx := context.Background()

	ml, err := rspace.UnitID("ml")
	require.NoError(t, err)
	s, err := c.CreateSample(ctx, rspace.NewSample{Name: "Buffer", Tags: rspace.Tags{"pH7"}, SubSampleCount: 2,
		Quantity: &rspace.Quantity{NumericValue: 10, UnitID: ml}})
	require.NoError(t, err)
	assert.Len(t, s.SubSamples, 2)
	assert.Equal(t, rspace.Tags{"pH7"}, s.Tags)
	assert.Contains(t, srv.Requests()[0].Body, `"tags":[{"value":"pH7"}]`)

	sub, err := c.AddSubSampleNote(ctx, s.SubSamples[0].ID, "thawed")
	require.NoError(t, err)
	require.Len(t, sub.Notes, 1)

	hits, err := c.SearchInventory(ctx, "buffer", "sample", rspace.Page{})
	require.NoError(t, err)
	require.Len(t, hits.Records, 1)
	assert.Equal(t, s.GlobalID, hits.Records[0].GlobalID)
}

func TestInventoryMoveAndRename(t *testing.T) {
	srv := rspacetest.New(t)
	c := srv.Client()
	ctx := context.Background()

	plate, err := c.CreateGridContainer(ctx, rspace.NewContainer{Name: "Plate", Rows: 8, Columns: 12,
		CanStoreSamples: true, CanStoreContainers: true})
	require.NoError(t, err)
	assert.Equal(t, "GRID", plate.CType)
	require.NotNil(t, plate.GridLayout)
	assert.Equal(t, 12, plate.GridLayout.Columns)

	box, err := c.CreateListContainer(ctx, rspace.NewContainer{Name: "Box", CanStoreSamples: true})
	require.NoError(t, err)
	s := srv.AddSample("Lysate")

	subs, err := c.SplitSubSample(ctx, s.SubSamples[0].ID, 2, nil)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	res, err := c.MoveToListContainer(ctx, box.ID, []string{s.GlobalID, subs[0].GlobalID})
	require.NoError(t, err)
	assert.Zero(t, res.ErrorCount)
	got, err := c.Container(ctx, box.ID, true)
	require.NoError(t, err)
	assert.Len(t, got.Locations, 2)

	_, err = c.MoveToListContainer(ctx, box.ID, []string{"IT1"})
	assert.ErrorIs(t, err, rspace.ErrNotInventoryID)

	it, err := c.RenameItem(ctx, subs[1].GlobalID, "Aliquot")
	require.NoError(t, err)
	assert.Equal(t, "Aliquot", it.Name)
	assert.Equal(t, "/api/inventory/v1/subSamples/"+subs[1].GlobalID[2:], srv.Requests()[len(srv.Requests())-1].Path)

	it, err = c.AddExtraFields(ctx, s.GlobalID, []rspace.ExtraField{{Name: "pH", Type: "number", Content: "7"}})
	require.NoError(t, err)
	require.Len(t, it.ExtraFields, 1)
	assert.Contains(t, srv.Requests()[len(srv.Requests())-1].Body, `"newFieldRequest":true`)
}

func TestSampleTemplates(t *testing.T) {
	srv := rspacetest.New(t)
	c := srv.Client()
	ctx := context.Background()

	tmpl, err := c.CreateSampleTemplate(ctx, map[string]any{"name": "Antibody", "fields": []any{}})
	require.NoError(t, err)
	assert.Equal(t, "SAMPLE_TEMPLATE", tmpl.Type)

	got, err := c.SampleTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Antibody", got.Name)

	l, err := c.ListSampleTemplates(ctx, rspace.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, l.TotalHits)

	_, err = c.SampleTemplate(ctx, 9999)
	assert.True(t, rspace.IsNotFound(err))
}

func TestInventoryRecord(t *testing.T) {
	tests := []struct {
		in, path, kind string
		ok             bool
	}{
		{"SA12", "/api/inventory/v1/samples/12", "SAMPLE", true},
		{"ss3", "/api/inventory/v1/subSamples/3", "SUBSAMPLE", true},
		{"IC7", "/api/inventory/v1/containers/7", "CONTAINER", true},
		{"IT2", "/api/inventory/v1/sampleTemplates/2", "SAMPLE_TEMPLATE", true},
		{"SD1", "", "", false},
		{"12", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			path, kind, err := rspace.InventoryRecord(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, rspace.ErrNotInventoryID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path, path)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestContextDeadline(t *testing.T) {
	srv := rspacetest.New(t)
	srv.Delay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := srv.Client().Status(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"123", 123, true},
		{"SD123", 123, true},
		{"nb45", 45, true},
		{"SA12v3", 12, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-4", 0, false},
		{"SD", 0, false},
	}
	for _, tc := range tests {
		got, err := rspace.ParseID(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, rspace.ErrInvalidID, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	assert.Equal(t, "SD", rspace.GlobalPrefix("sd1"))
	assert.Equal(t, "", rspace.GlobalPrefix("12"))
}

func TestTagsDecoding(t *testing.T) {
	var fromString, fromObjects, fromList rspace.Tags
	require.NoError(t, json.Unmarshal([]byte(`"a, b,,c"`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`[{"value":"a"},{"value":"b"}]`), &fromObjects))
	require.NoError(t, json.Unmarshal([]byte(`["x"]`), &fromList))
	assert.Equal(t, rspace.Tags{"a", "b", "c"}, fromString)
	assert.Equal(t, rspace.Tags{"a", "b"}, fromObjects)
	assert.Equal(t, rspace.Tags{"x"}, fromList)

	b, err := json.Marshal(rspace.Tags(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
}

func TestTimeDecoding(t *testing.T) {
	var v struct {
		A rspace.Time `json:"a"`
		B rspace.Time `json:"b"`
		C rspace.Time `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2024-01-15T10:30:00.000Z","b":1700000000000,"c":null}`), &v))
	assert.Equal(t, 2024, v.A.Year())
	assert.Equal(t, int64(1700000000000), v.B.UnixMilli())
	assert.True(t, v.C.IsZero())
}
