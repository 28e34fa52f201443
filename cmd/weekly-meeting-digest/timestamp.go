// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// Timestamp normalization for heterogeneous HubSpot record shapes.
//
// HubSpot delivers start times in several representations depending on the
// object type and API generation: epoch milliseconds (v1 engagements),
// epoch seconds (some imported records), and ISO-8601 strings (v3 object
// properties), with or without an offset. The normalizer maps any of them
// to an absolute instant in the configured reporting timezone, using an
// ordered decision procedure: numeric-ms, numeric-s, ISO-8601, error.
package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// Values at or above it (10^10, early 2001 in milliseconds) are treated as
// milliseconds; anything smaller is seconds.
const epochMillisThreshold = 10_000_000_000

// isoLayouts are tried in order for string timestamps. Offset-naive values
// are interpreted as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// invalidTimestampError is returned when a raw value is empty or matches
// neither a numeric epoch nor an ISO-8601 shape. Records carrying such
// values are dropped, not fatal.
type invalidTimestampError struct {
	raw any
}

func (e *invalidTimestampError) Error() string {
	return fmt.Sprintf("invalid timestamp value: %v", e.raw)
}

// normalizeTimestamp converts a raw timestamp value of unknown shape into
// an instant in loc.
func normalizeTimestamp(raw any, loc *time.Location) (time.Time, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, &invalidTimestampError{raw: raw}
	case int64:
		return epochToTime(v, loc), nil
	case int:
		return epochToTime(int64(v), loc), nil
	case float64:
		// JSON numbers decode as float64; epoch values are integral and
		// well below the float64 exact-integer limit.
		return epochToTime(int64(v), loc), nil
	case json.Number:
		return normalizeTimestamp(string(v), loc)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, &invalidTimestampError{raw: raw}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return epochToTime(n, loc), nil
		}
		for _, layout := range isoLayouts {
			t, err := time.Parse(layout, s)
			if err != nil {
				continue
			}
			return t.In(loc), nil
		}
		return time.Time{}, &invalidTimestampError{raw: raw}
	default:
		return time.Time{}, &invalidTimestampError{raw: raw}
	}
}

// epochToTime interprets n as epoch milliseconds or seconds based on its
// magnitude and converts it to loc.
func epochToTime(n int64, loc *time.Location) time.Time {
	magnitude := n
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude >= epochMillisThreshold {
		return time.UnixMilli(n).In(loc)
	}
	return time.Unix(n, 0).In(loc)
}
