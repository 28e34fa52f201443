// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// Contact directory resolution: batch-resolves contact IDs into display
// names with a fixed fallback chain.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
)

const (
	contactCacheExpiry  = 10 * time.Minute
	contactCacheCleanup = 30 * time.Minute
)

// contactDirectory maps contact IDs to display names. It is total over
// every ID it was built for: unresolvable IDs get a placeholder so no
// surviving meeting is ever dropped at this stage.
type contactDirectory map[string]string

type contactResolver struct {
	client *hubspotClient
	cache  *cache.Cache
}

func newContactResolver(client *hubspotClient) *contactResolver {
	return &contactResolver{
		client: client,
		cache:  cache.New(contactCacheExpiry, contactCacheCleanup),
	}
}

// displayNames resolves the given contact IDs into a complete directory.
// Already-cached entries are reused; the remainder is fetched in one
// batch call. A failed batch read degrades every unresolved ID to its
// placeholder instead of failing the run.
func (r *contactResolver) displayNames(ctx context.Context, contactIDs []string) contactDirectory {
	directory := make(contactDirectory, len(contactIDs))

	var missing []string
	seen := make(map[string]bool, len(contactIDs))
	for _, id := range contactIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		if cached, ok := r.cache.Get(id); ok {
			directory[id] = cached.(string)
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		records, err := r.client.batchReadContacts(ctx, missing)
		if err != nil {
			logger.With(errKey, err, "contact_count", len(missing)).WarnContext(ctx, "contact batch read failed, using placeholder names")
		} else {
			for _, record := range records {
				name := contactDisplayName(record)
				directory[record.ID] = name
				r.cache.SetDefault(record.ID, name)
			}
		}
	}

	// Whatever is still unresolved gets the synthetic placeholder.
	for _, id := range contactIDs {
		if _, ok := directory[id]; !ok && id != "" {
			directory[id] = "Contact " + id
		}
	}

	return directory
}

// contactDisplayName builds a display name from a contact record:
// "firstname lastname" trimmed, falling back to email, falling back to
// the synthetic placeholder.
func contactDisplayName(record contactRecord) string {
	name := strings.TrimSpace(strings.Join(nonEmpty(
		record.Properties["firstname"],
		record.Properties["lastname"],
	), " "))
	if name != "" {
		return name
	}

	if email := strings.TrimSpace(record.Properties["email"]); email != "" {
		return email
	}

	return fmt.Sprintf("Contact %s", record.ID)
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
