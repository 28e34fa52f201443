// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// Reporting window calculation for the weekly-meeting-digest job.
package main

import "time"

// timeWindow is the half-open [start, end) reporting period for one digest
// run. start is always a Monday at local midnight and end is exactly seven
// calendar days later.
type timeWindow struct {
	start time.Time
	end   time.Time
}

// weekWindow returns the window of the calendar week containing now,
// in now's location. Monday is the first day of the week.
func weekWindow(now time.Time) timeWindow {
	// time.Weekday counts Sunday as 0; shift so Monday is 0.
	daysSinceMonday := (int(now.Weekday()) + 6) % 7

	year, month, day := now.AddDate(0, 0, -daysSinceMonday).Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	return timeWindow{
		start: start,
		end:   start.AddDate(0, 0, 7),
	}
}

// futureCutoff returns the lower bound for "not yet started" filtering:
// the later of the window start and now. Meetings earlier this week that
// have already begun fall below the cutoff and are excluded.
func (w timeWindow) futureCutoff(now time.Time) time.Time {
	if now.After(w.start) {
		return now
	}
	return w.start
}

// contains reports whether t falls inside the half-open window [start, end).
func (w timeWindow) contains(t time.Time) bool {
	return !t.Before(w.start) && t.Before(w.end)
}
