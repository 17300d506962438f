package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-02-28", time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"2024-02-28T10:11:12Z", time.Date(2024, 2, 28, 10, 11, 12, 0, time.UTC)},
		{"2024-02-28 10:11:12", time.Date(2024, 2, 28, 10, 11, 12, 0, time.UTC)},
		{"2024-03-01T10:00:00.123Z", time.Date(2024, 3, 1, 10, 0, 0, 123000000, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
	}

	zero, err := ParseTime("  ")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}
