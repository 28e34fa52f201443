// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandOccurrencesDaily(t *testing.T) {
	loc := berlin(t)
	window := weekWindow(time.Date(2025, 3, 10, 8, 0, 0, 0, loc))

	base := candidateMeeting{
		id:         "rec-1",
		ownerID:    "123",
		start:      time.Date(2025, 3, 10, 10, 0, 0, 0, loc),
		title:      "Daily Sync",
		recurrence: "FREQ=DAILY;COUNT=5",
		contactIDs: []string{"1"},
	}

	occurrences, err := expandOccurrences(base, window, window.start)
	require.NoError(t, err)
	require.Len(t, occurrences, 5)

	for i, occ := range occurrences {
		wantStart := base.start.AddDate(0, 0, i)
		assert.True(t, occ.start.Equal(wantStart), "occurrence %d = %v, want %v", i, occ.start, wantStart)
		assert.Equal(t, fmt.Sprintf("rec-1:%d", wantStart.Unix()), occ.id)
		assert.Equal(t, base.ownerID, occ.ownerID)
		assert.Equal(t, base.title, occ.title)
		assert.Equal(t, base.contactIDs, occ.contactIDs)
		assert.Empty(t, occ.recurrence, "occurrences must not recurse")
	}
}

func TestExpandOccurrencesClampedToWindow(t *testing.T) {
	loc := berlin(t)
	window := weekWindow(time.Date(2025, 3, 10, 8, 0, 0, 0, loc))

	base := candidateMeeting{
		id:         "rec-2",
		ownerID:    "123",
		start:      time.Date(2025, 3, 10, 10, 0, 0, 0, loc),
		title:      "Endless",
		recurrence: "FREQ=DAILY;COUNT=30",
	}

	occurrences, err := expandOccurrences(base, window, window.start)
	require.NoError(t, err)

	// Only the seven days of the window survive, regardless of how far
	// the rule extends.
	require.Len(t, occurrences, 7)
	last := occurrences[len(occurrences)-1]
	assert.True(t, last.start.Before(window.end))
}

func TestExpandOccurrencesRespectsCutoff(t *testing.T) {
	loc := berlin(t)
	window := weekWindow(time.Date(2025, 3, 10, 8, 0, 0, 0, loc))
	cutoff := time.Date(2025, 3, 12, 12, 0, 0, 0, loc)

	base := candidateMeeting{
		id:         "rec-3",
		ownerID:    "123",
		start:      time.Date(2025, 3, 10, 10, 0, 0, 0, loc),
		title:      "Daily",
		recurrence: "FREQ=DAILY;COUNT=7",
	}

	occurrences, err := expandOccurrences(base, window, cutoff)
	require.NoError(t, err)

	for _, occ := range occurrences {
		assert.False(t, occ.start.Before(cutoff), "occurrence %v precedes the cutoff", occ.start)
	}
	// Mon-Wed mornings are already past the Wednesday-noon cutoff.
	require.Len(t, occurrences, 4)
}

func TestExpandOccurrencesStripsRRulePrefix(t *testing.T) {
	loc := berlin(t)
	window := weekWindow(time.Date(2025, 3, 10, 8, 0, 0, 0, loc))

	base := candidateMeeting{
		id:         "rec-4",
		start:      time.Date(2025, 3, 11, 9, 0, 0, 0, loc),
		recurrence: "RRULE:FREQ=WEEKLY;COUNT=2",
	}

	occurrences, err := expandOccurrences(base, window, window.start)
	require.NoError(t, err)

	// Weekly from Tuesday: only the first occurrence is in this window.
	require.Len(t, occurrences, 1)
	assert.True(t, occurrences[0].start.Equal(base.start))
}

func TestExpandOccurrencesInvalidRule(t *testing.T) {
	loc := berlin(t)
	window := weekWindow(time.Date(2025, 3, 10, 8, 0, 0, 0, loc))

	base := candidateMeeting{
		id:         "rec-5",
		start:      time.Date(2025, 3, 11, 9, 0, 0, 0, loc),
		recurrence: "FREQ=SOMETIMES",
	}

	_, err := expandOccurrences(base, window, window.start)
	require.Error(t, err)
}
