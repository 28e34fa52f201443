// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func TestWeekWindow(t *testing.T) {
	loc := berlin(t)

	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
	}{
		{
			name:      "midweek",
			now:       time.Date(2025, 3, 12, 15, 30, 0, 0, loc),
			wantStart: time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
		},
		{
			name:      "exactly monday midnight",
			now:       time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
			wantStart: time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
		},
		{
			name:      "sunday just before midnight",
			now:       time.Date(2025, 3, 16, 23, 59, 59, 0, loc),
			wantStart: time.Date(2025, 3, 10, 0, 0, 0, 0, loc),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			window := weekWindow(tc.now)

			assert.True(t, window.start.Equal(tc.wantStart), "start = %v, want %v", window.start, tc.wantStart)
			assert.Equal(t, time.Monday, window.start.Weekday())
			assert.True(t, window.end.Equal(window.start.AddDate(0, 0, 7)))
			assert.Equal(t, 7*24*time.Hour, window.end.Sub(window.start))
		})
	}
}

func TestWindowContainsHalfOpen(t *testing.T) {
	loc := berlin(t)
	window := weekWindow(time.Date(2025, 3, 12, 12, 0, 0, 0, loc))

	assert.True(t, window.contains(window.start), "window start must be included")
	assert.False(t, window.contains(window.end), "window end must be excluded")
	assert.True(t, window.contains(window.end.Add(-time.Second)))
	assert.False(t, window.contains(window.start.Add(-time.Second)))
}

func TestFutureCutoff(t *testing.T) {
	loc := berlin(t)
	window := weekWindow(time.Date(2025, 3, 12, 12, 0, 0, 0, loc))

	midweek := time.Date(2025, 3, 12, 12, 0, 0, 0, loc)
	assert.True(t, window.futureCutoff(midweek).Equal(midweek), "midweek now moves the cutoff forward")
	assert.True(t, window.futureCutoff(window.start).Equal(window.start), "now at window start keeps the cutoff at start")
}
