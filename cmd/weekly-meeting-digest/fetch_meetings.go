// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// Meeting retrieval for the reporting window.
//
// Two strategies are attempted in order:
//  1. v3 object search with a server-side start-time range filter and
//     cursor pagination. The filter is never trusted for correctness:
//     every record's timestamp is re-validated locally, because filters
//     may be absent, ignored, or interpret units differently.
//  2. On search failure, a legacy v1 engagements sweep: newest-first
//     pages, local timestamp filtering, short-circuiting once records
//     fall below the window start.
//
// Both strategies are bounded by the configured page budget. Per-record
// problems (unparseable timestamp, missing owner) drop the record and the
// run continues; failing to list meetings at all is fatal.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// errPageBudget signals runaway pagination: the source never indicated
// completion within the configured page budget. Fatal, since a truncated
// sweep could silently misrepresent the week.
var errPageBudget = errors.New("page budget exceeded before pagination completed")

type meetingFetcher struct {
	client   *hubspotClient
	loc      *time.Location
	maxPages int

	// pagesFetched counts API pages across both strategies for the
	// diagnostic summary. The fetcher is single-run and single-threaded.
	pagesFetched int
}

func newMeetingFetcher(client *hubspotClient, cfg *Config) *meetingFetcher {
	return &meetingFetcher{
		client:   client,
		loc:      cfg.Timezone,
		maxPages: cfg.MaxPages,
	}
}

// fetchWindow retrieves all candidate meetings starting inside
// [cutoff, window.end). Recurring records are expanded into their
// in-window occurrences.
func (f *meetingFetcher) fetchWindow(ctx context.Context, window timeWindow, cutoff time.Time) ([]candidateMeeting, error) {
	meetings, err := f.searchInWindow(ctx, window, cutoff)
	if err == nil {
		return meetings, nil
	}
	if errors.Is(err, errPageBudget) {
		return nil, err
	}

	logger.With(errKey, err).WarnContext(ctx, "meeting search failed, falling back to engagement sweep")

	meetings, err = f.sweepEngagements(ctx, window, cutoff)
	if err != nil {
		return nil, fmt.Errorf("engagement sweep failed: %w", err)
	}

	return meetings, nil
}

// searchInWindow runs the filtered v3 retrieval path.
func (f *meetingFetcher) searchInWindow(ctx context.Context, window timeWindow, cutoff time.Time) ([]candidateMeeting, error) {
	var meetings []candidateMeeting
	var after string

	for page := 1; ; page++ {
		if page > f.maxPages {
			return nil, fmt.Errorf("%w: meeting search exceeded %d pages", errPageBudget, f.maxPages)
		}

		resp, err := f.client.searchMeetingsPage(ctx, window.start.UnixMilli(), window.end.UnixMilli(), after)
		if err != nil {
			return nil, err
		}
		f.pagesFetched++

		for _, obj := range resp.Results {
			candidate, err := candidateFromObject(obj, f.loc)
			if err != nil {
				logger.With(errKey, err, "object_id", obj.ID).DebugContext(ctx, "dropping meeting object")
				continue
			}
			meetings = append(meetings, f.inWindowOccurrences(ctx, candidate, window, cutoff)...)
		}

		if resp.Paging == nil || resp.Paging.Next == nil || resp.Paging.Next.After == "" {
			return meetings, nil
		}
		after = resp.Paging.Next.After
	}
}

// inWindowOccurrences filters a candidate against [cutoff, end) and, for
// recurring records, expands the recurrence rule into every in-window
// occurrence. A bad rule degrades to the base occurrence.
func (f *meetingFetcher) inWindowOccurrences(ctx context.Context, candidate candidateMeeting, window timeWindow, cutoff time.Time) []candidateMeeting {
	if candidate.recurrence != "" {
		occurrences, err := expandOccurrences(candidate, window, cutoff)
		if err == nil {
			return occurrences
		}
		logger.With(errKey, err, "meeting_id", candidate.id).WarnContext(ctx, "failed to expand recurrence rule, using base start time only")
	}

	if candidate.start.Before(cutoff) || !candidate.start.Before(window.end) {
		logger.With("meeting_id", candidate.id, "start", candidate.start).DebugContext(ctx, "dropping meeting outside reporting window")
		return nil
	}

	return []candidateMeeting{candidate}
}

// sweepEngagements runs the unfiltered v1 retrieval path. The listing is
// ordered newest-first, so the sweep stops as soon as a meeting starts
// before the window: every remaining page is older still.
func (f *meetingFetcher) sweepEngagements(ctx context.Context, window timeWindow, cutoff time.Time) ([]candidateMeeting, error) {
	var meetings []candidateMeeting
	var offset int64

	for page := 1; ; page++ {
		if page > f.maxPages {
			return nil, fmt.Errorf("%w: engagement sweep exceeded %d pages", errPageBudget, f.maxPages)
		}

		resp, err := f.client.listEngagementsPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		f.pagesFetched++

		for _, rec := range resp.Results {
			if rec.Engagement.Type != "MEETING" {
				continue
			}

			candidate, err := candidateFromEngagement(rec, f.loc)
			if err != nil {
				logger.With(errKey, err, "engagement_id", rec.Engagement.ID).DebugContext(ctx, "dropping engagement record")
				continue
			}

			if candidate.start.Before(window.start) {
				// Past the window in traversal direction: done.
				return meetings, nil
			}

			if candidate.start.Before(cutoff) || !candidate.start.Before(window.end) {
				logger.With("engagement_id", rec.Engagement.ID, "start", candidate.start).DebugContext(ctx, "dropping engagement outside reporting window")
				continue
			}

			meetings = append(meetings, candidate)
		}

		if !resp.HasMore {
			return meetings, nil
		}
		offset = resp.Offset
	}
}
