package progression_test

import (
	"testing"
	"time"

	"github.com/2beens/liftlog/internal/progression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRange(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		token string
		want  time.Time
	}{
		{token: "1m", want: time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)},
		{token: "3m", want: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{token: "6m", want: time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)},
		{token: "1y", want: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{token: "all", want: time.Unix(0, 0).UTC()},
		{token: "", want: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			got, err := progression.ResolveRange(tc.token, now)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}

	_, err := progression.ResolveRange("2w", now)
	assert.ErrorIs(t, err, progression.ErrUnknownRange)
}

func TestResolveRange_SameDaySameStart(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	morning := time.Date(2026, 6, 15, 0, 0, 1, 0, la)
	evening := time.Date(2026, 6, 15, 23, 59, 59, 0, la)
	first, err := progression.ResolveRange("1m", morning)
	require.NoError(t, err)
	second, err := progression.ResolveRange("1m", evening)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	assert.True(t, time.Date(2026, 5, 15, 0, 0, 0, 0, la).Equal(first))

	// the same instant is another day in UTC
	utc, err := progression.ResolveRange("1m", evening.UTC())
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 5, 16, 0, 0, 0, 0, time.UTC).Equal(utc))
}
