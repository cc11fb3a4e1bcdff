package tag_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jpl-au/rspace-mcp/internal/rspace"
	"github.com/jpl-au/rspace-mcp/internal/rspace/rspacetest"
	"github.com/jpl-au/rspace-mcp/internal/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Merge(t *testing.T) {
	srv := rspacetest.New(t)
	ctx := context.Background()
	doc := srv.AddDocument("Assay", time.Now(), "existing")

	result, err := tag.Apply(ctx, srv.Client(), doc.ID, []string{"mytag", "existing"}, false)
	require.NoError(t, err)

	assert.Equal(t, "merge", result.Action)
	assert.Equal(t, []string{"existing", "mytag"}, result.Tags)
	assert.Equal(t, []string{"mytag"}, result.Added)
	assert.Empty(t, result.Removed)
	assert.Equal(t, doc.GlobalID, result.GlobalID)

	stored, ok := srv.Document(doc.ID)
	require.True(t, ok)
	assert.Contains(t, []string(stored.Tags), "mytag")
}

func TestApply_Replace(t *testing.T) {
	srv := rspacetest.New(t)
	doc := srv.AddDocument("Assay", time.Now(), "old", "keep")

	result, err := tag.Apply(context.Background(), srv.Client(), doc.ID, []string{"keep", "new"}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"keep", "new"}, result.Tags)
	assert.Equal(t, []string{"new"}, result.Added)
	assert.Equal(t, []string{"old"}, result.Removed)
}

func TestApply_NoChangeSkipsUpdate(t *testing.T) {
	srv := rspacetest.New(t)
	doc := srv.AddDocument("Assay", time.Now(), "a")

	result, err := tag.Apply(context.Background(), srv.Client(), doc.ID, []string{"a"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, result.Tags)

	for _, r := range srv.Requests() {
		assert.NotEqual(t, http.MethodPut, r.Method, "unchanged tags must not be written")
	}
}

func TestApply_NotFound(t *testing.T) {
	srv := rspacetest.New(t)

	_, err := tag.Apply(context.Background(), srv.Client(), 999, []string{"x"}, false)
	require.Error(t, err)
	assert.True(t, rspace.IsNotFound(err))
	assert.Equal(t, 1, srv.RequestCount())
}

func TestMerge(t *testing.T) {
	current := []string{"a", "b"}
	got := tag.Merge(current, []string{"b", "c", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, []string{"a", "b"}, current, "input must not be modified")
}

func TestMerge_IgnoresCase(t *testing.T) {
	assert.Equal(t, []string{"MyTag"}, tag.Merge([]string{"MyTag"}, []string{"mytag"}))
	assert.Equal(t, []string{"PCR", "qpcr"}, tag.Merge([]string{"PCR"}, []string{"pcr", "qpcr", "QPCR"}))
}

func TestApply_MergeCaseVariantSkipsUpdate(t *testing.T) {
	srv := rspacetest.New(t)
	doc := srv.AddDocument("Assay", time.Now(), "MyTag")

	result, err := tag.Apply(context.Background(), srv.Client(), doc.ID, []string{"mytag"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"MyTag"}, result.Tags)
	assert.Empty(t, result.Added)

	for _, r := range srv.Requests() {
		assert.NotEqual(t, http.MethodPut, r.Method)
	}
}
