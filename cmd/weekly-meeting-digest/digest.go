// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// Grouping and rendering of the weekly digest text.
//
// The rendered format is an observable contract (teams snapshot it):
// German weekday names, DD.MM.YYYY dates, 24-hour times, and the exact
// separators below must not drift.
package main

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	digestDateFormat = "02.01.2006"
	digestTimeFormat = "15:04"

	digestHeader  = "📅 *Wochenübersicht – Meetings*"
	digestClosing = "Solltet ihr noch offene Themen bei einem Kunden haben, die geklärt werden sollen, dann gebt bitte frühzeitig Bescheid."
	digestEmpty   = "✅ Diese Woche stehen keine anstehenden Meetings an."
)

var weekdayNamesDE = map[time.Weekday]string{
	time.Monday:    "Montag",
	time.Tuesday:   "Dienstag",
	time.Wednesday: "Mittwoch",
	time.Thursday:  "Donnerstag",
	time.Friday:    "Freitag",
	time.Saturday:  "Samstag",
	time.Sunday:    "Sonntag",
}

// meetingEntry is one rendered line's worth of data.
type meetingEntry struct {
	start   time.Time
	contact string
	title   string
}

// ownerGroup holds one owner's meetings, sorted ascending by start time.
// A group never exists with an empty meeting list.
type ownerGroup struct {
	ownerID  string
	meetings []meetingEntry
}

// groupMeetings groups candidates by owner and sorts each group's
// meetings ascending by start time, stable with respect to input order
// for equal instants. Groups are ordered by their earliest meeting time,
// ties broken by owner ID, so output is deterministic across runs.
func groupMeetings(meetings []candidateMeeting, directory contactDirectory) []ownerGroup {
	byOwner := map[string][]meetingEntry{}
	for _, meeting := range meetings {
		contact := directory[meeting.contactIDs[0]]
		if contact == "" {
			contact = "Contact " + meeting.contactIDs[0]
		}

		byOwner[meeting.ownerID] = append(byOwner[meeting.ownerID], meetingEntry{
			start:   meeting.start,
			contact: contact,
			title:   meeting.title,
		})
	}

	groups := make([]ownerGroup, 0, len(byOwner))
	for ownerID, entries := range byOwner {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].start.Before(entries[j].start)
		})
		groups = append(groups, ownerGroup{ownerID: ownerID, meetings: entries})
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].meetings[0].start, groups[j].meetings[0].start
		if !a.Equal(b) {
			return a.Before(b)
		}
		return groups[i].ownerID < groups[j].ownerID
	})

	return groups
}

// renderDigest renders the final digest text. It is a pure function of
// its inputs: the same groups and window yield byte-identical output.
func renderDigest(groups []ownerGroup, window timeWindow, ownerMap map[string]string) string {
	windowStart := window.start.Format(digestDateFormat)
	// Display the window's last calendar day, not the first day of the
	// following week.
	windowEnd := window.end.Add(-time.Second).Format(digestDateFormat)

	if len(groups) == 0 {
		return fmt.Sprintf("%s\n🗓️ Zeitraum: %s – %s\n\n%s", digestHeader, windowStart, windowEnd, digestEmpty)
	}

	lines := []string{
		digestHeader,
		fmt.Sprintf("🗓️ Zeitraum: %s – %s\n", windowStart, windowEnd),
	}

	for _, group := range groups {
		handle := ownerMap[group.ownerID]
		if handle == "" {
			handle = fmt.Sprintf("<ID %s>", group.ownerID)
		}
		lines = append(lines, fmt.Sprintf("*%s* hat diese Woche folgende anstehenden Meetings:", handle))

		for _, entry := range group.meetings {
			lines = append(lines, fmt.Sprintf("• %s | %s | %s, %s, %s",
				entry.contact,
				entry.title,
				weekdayNamesDE[entry.start.Weekday()],
				entry.start.Format(digestDateFormat),
				entry.start.Format(digestTimeFormat),
			))
		}
		lines = append(lines, "")
	}

	lines = append(lines, digestClosing)

	return strings.Join(lines, "\n")
}
