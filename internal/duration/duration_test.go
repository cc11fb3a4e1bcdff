package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"12h", 12 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"4w", 28 * 24 * time.Hour},
		{"3m", 90 * 24 * time.Hour},
		{"0d", 0},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "7", "d", "7y", "-1d", "1.5d", "7 d"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestSince(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	got, err := Since("2d", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC), got)

	_, err = Since("soon", now)
	assert.Error(t, err)
}
