// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// Recurrence expansion for meeting records carrying an iCal RRULE.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// expandOccurrences expands a recurring meeting into one candidate per
// occurrence starting inside [cutoff, window.end). The base record's
// start time anchors the rule; each occurrence keeps the record's owner,
// title and contacts, with the occurrence epoch appended to the ID so
// occurrences stay distinct downstream.
func expandOccurrences(base candidateMeeting, window timeWindow, cutoff time.Time) ([]candidateMeeting, error) {
	ruleStr := strings.TrimPrefix(strings.TrimSpace(base.recurrence), "RRULE:")

	rule, err := rrule.StrToRRule(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recurrence rule %q: %w", base.recurrence, err)
	}
	rule.DTStart(base.start)

	var occurrences []candidateMeeting
	for _, t := range rule.Between(cutoff, window.end, true) {
		start := t.In(base.start.Location())
		if start.Before(cutoff) || !start.Before(window.end) {
			continue
		}

		occurrence := base
		occurrence.id = fmt.Sprintf("%s:%d", base.id, start.Unix())
		occurrence.start = start
		occurrence.recurrence = ""
		occurrences = append(occurrences, occurrence)
	}

	return occurrences, nil
}
