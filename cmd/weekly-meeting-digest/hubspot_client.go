// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// HTTP client for the HubSpot CRM API.
//
// Authentication uses a private app token injected as a bearer credential
// through an oauth2 static token source, so the transport matches the
// token-source wiring used for our other gateway clients.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const (
	meetingsSearchPath      = "crm/v3/objects/meetings/search"
	engagementsPagedPath    = "engagements/v1/engagements/paged"
	contactsBatchReadPath   = "crm/v3/objects/contacts/batch/read"
	meetingAssociationsPath = "crm/v4/objects/meetings/%s/associations/contacts"

	defaultPageLimit = 100
)

// meetingSearchProperties are the v3 object properties the pipeline needs.
var meetingSearchProperties = []string{
	"hs_meeting_start_time",
	"hs_meeting_title",
	"hubspot_owner_id",
	"hs_recurrence_rule",
}

type hubspotClient struct {
	http      *http.Client
	baseURL   *url.URL
	httpDebug bool
}

// newHubSpotClient builds a client whose transport injects the HubSpot
// bearer token on every request.
func newHubSpotClient(cfg *Config) *hubspotClient {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.HubSpotAPIKey,
		TokenType:   "Bearer",
	})

	httpClient := oauth2.NewClient(context.Background(), tokenSource)
	httpClient.Timeout = 30 * time.Second

	return &hubspotClient{
		http:      httpClient,
		baseURL:   cfg.HubSpotAPIURL,
		httpDebug: cfg.HTTPDebug,
	}
}

// doJSON issues one API call and decodes the JSON response into out.
// Non-2xx statuses are returned as errors carrying the response body.
func (c *hubspotClient) doJSON(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if c.httpDebug {
		logger.With("method", method, "path", path, "status", resp.StatusCode, "response_bytes", len(respBody)).DebugContext(ctx, "hubspot api call")
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hubspot returned status %d for %s: %s", resp.StatusCode, path, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response from %s: %w", path, err)
		}
	}

	return nil
}

// searchMeetingsPage fetches one page of v3 meeting objects whose start
// time falls in [startMS, endMS], sorted ascending. The range filter is an
// optimization only; callers re-validate every record locally.
func (c *hubspotClient) searchMeetingsPage(ctx context.Context, startMS, endMS int64, after string) (*objectSearchResponse, error) {
	reqBody := objectSearchRequest{
		FilterGroups: []searchFilterGroup{{
			Filters: []searchFilter{{
				PropertyName: "hs_meeting_start_time",
				Operator:     "BETWEEN",
				Value:        strconv.FormatInt(startMS, 10),
				HighValue:    strconv.FormatInt(endMS, 10),
			}},
		}},
		Sorts: []searchSort{{
			PropertyName: "hs_meeting_start_time",
			Direction:    "ASCENDING",
		}},
		Properties: meetingSearchProperties,
		Limit:      defaultPageLimit,
		After:      after,
	}

	var page objectSearchResponse
	if err := c.doJSON(ctx, http.MethodPost, meetingsSearchPath, nil, reqBody, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// listEngagementsPage fetches one page of the legacy v1 engagements
// listing, which is ordered newest-first.
func (c *hubspotClient) listEngagementsPage(ctx context.Context, offset int64) (*engagementsPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(defaultPageLimit))
	query.Set("offset", strconv.FormatInt(offset, 10))

	var page engagementsPage
	if err := c.doJSON(ctx, http.MethodGet, engagementsPagedPath, query, nil, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// meetingContactAssociations fetches the contact IDs linked to one
// meeting, preserving the order delivered by the API.
func (c *hubspotClient) meetingContactAssociations(ctx context.Context, meetingID string) ([]string, error) {
	path := fmt.Sprintf(meetingAssociationsPath, meetingID)

	var resp associationsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}

	contactIDs := make([]string, 0, len(resp.Results))
	for _, edge := range resp.Results {
		contactIDs = append(contactIDs, strconv.FormatInt(edge.ToObjectID, 10))
	}

	return contactIDs, nil
}

// batchReadContacts resolves contact records for the given IDs in a
// single call, bounding the call count independent of meeting count.
func (c *hubspotClient) batchReadContacts(ctx context.Context, contactIDs []string) ([]contactRecord, error) {
	inputs := make([]contactBatchReadInput, 0, len(contactIDs))
	for _, id := range contactIDs {
		inputs = append(inputs, contactBatchReadInput{ID: id})
	}

	reqBody := contactBatchReadRequest{
		Properties: []string{"firstname", "lastname", "email"},
		Inputs:     inputs,
	}

	var resp contactBatchReadResponse
	if err := c.doJSON(ctx, http.MethodPost, contactsBatchReadPath, nil, reqBody, &resp); err != nil {
		return nil, err
	}

	return resp.Results, nil
}
