// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// Contact association resolution for candidate meetings.
package main

import (
	"context"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
)

const (
	associationCacheExpiry  = 10 * time.Minute
	associationCacheCleanup = 30 * time.Minute
)

type associationResolver struct {
	client *hubspotClient
	cache  *cache.Cache
}

func newAssociationResolver(client *hubspotClient) *associationResolver {
	return &associationResolver{
		client: client,
		cache:  cache.New(associationCacheExpiry, associationCacheCleanup),
	}
}

// resolve fills in contact associations for every meeting that arrived
// without embedded ones and returns the meetings that end up with at
// least one contact. A lookup failure drops only that meeting; the rest
// of the batch continues. Identifier order is preserved so the first
// contact remains "the" contact downstream.
func (r *associationResolver) resolve(ctx context.Context, meetings []candidateMeeting) []candidateMeeting {
	resolved := make([]candidateMeeting, 0, len(meetings))

	for _, meeting := range meetings {
		if len(meeting.contactIDs) == 0 {
			contactIDs, err := r.lookupContacts(ctx, meeting.id)
			if err != nil {
				logger.With(errKey, err, "meeting_id", meeting.id).WarnContext(ctx, "contact association lookup failed, dropping meeting")
				continue
			}
			meeting.contactIDs = contactIDs
		}

		if len(meeting.contactIDs) == 0 {
			logger.With("meeting_id", meeting.id).DebugContext(ctx, "dropping meeting without contact associations")
			continue
		}

		resolved = append(resolved, meeting)
	}

	return resolved
}

// lookupContacts fetches the contact IDs linked to one meeting, caching
// results so recurrence occurrences sharing a record cost one call.
func (r *associationResolver) lookupContacts(ctx context.Context, meetingID string) ([]string, error) {
	// Occurrence IDs carry an epoch suffix; the association lookup is
	// against the underlying record.
	recordID, _, _ := strings.Cut(meetingID, ":")

	if cached, ok := r.cache.Get(recordID); ok {
		return cached.([]string), nil
	}

	contactIDs, err := r.client.meetingContactAssociations(ctx, recordID)
	if err != nil {
		return nil, err
	}

	r.cache.SetDefault(recordID, contactIDs)
	return contactIDs, nil
}
