package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	main, err := Get("")
	require.NoError(t, err)
	assert.Contains(t, main, "rspace-mcp Guide")

	cfg, err := Get("config")
	require.NoError(t, err)
	assert.Contains(t, cfg, "RSPACE_API_KEY")

	_, err = Get("nonexistent")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	names, err := List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"audit", "config", "tools"}, names)
}
