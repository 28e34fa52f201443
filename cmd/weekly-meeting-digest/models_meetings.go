// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// Wire models for HubSpot meeting records and their normalization into
// the fixed candidate shape the rest of the pipeline works with.
//
// Two record generations are supported:
//   - v1 engagements: nested engagement/metadata/associations envelope,
//     numeric IDs, epoch-millisecond timestamps
//   - v3 CRM objects: flat string properties, cursor pagination,
//     associations resolved separately
//
// The exact field names are an adapter concern kept to this file; the
// pipeline only ever sees candidateMeeting values.
package main

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

const defaultMeetingTitle = "Meeting"

// Drop reasons for records that cannot become candidates. These are
// expected filtering outcomes, not failures.
var (
	errMissingStart = errors.New("record has no start timestamp")
	errMissingOwner = errors.New("record has no owner")
)

// candidateMeeting is the normalized meeting shape derived from a raw
// record. contactIDs preserves the order delivered by the API; the first
// entry is treated as "the" contact downstream.
type candidateMeeting struct {
	id         string
	ownerID    string
	start      time.Time
	title      string
	recurrence string // iCal RRULE when the record recurs, else empty
	contactIDs []string
}

// engagementsPage is one page of the legacy v1 engagements listing.
type engagementsPage struct {
	Results []engagementRecord `json:"results"`
	HasMore bool               `json:"hasMore"`
	Offset  int64              `json:"offset"`
}

// engagementRecord is the v1 envelope around a single engagement.
type engagementRecord struct {
	Engagement   engagementCore         `json:"engagement"`
	Metadata     engagementMetadata     `json:"metadata"`
	Associations engagementAssociations `json:"associations"`
}

type engagementCore struct {
	ID        int64       `json:"id"`
	Type      string      `json:"type"`
	OwnerID   json.Number `json:"ownerId"`
	Title     string      `json:"title"`
	Timestamp json.Number `json:"timestamp"`
}

type engagementMetadata struct {
	// StartTime is the actual meeting start; the envelope timestamp is
	// only a fallback (it reflects creation time for some record ages).
	StartTime json.Number `json:"startTime"`
}

type engagementAssociations struct {
	ContactIDs []int64 `json:"contactIds"`
}

// rawStartValue returns the engagement's start timestamp in raw form, or
// nil when neither the metadata nor the envelope carries one.
func (r engagementRecord) rawStartValue() any {
	if r.Metadata.StartTime != "" {
		return r.Metadata.StartTime
	}
	if r.Engagement.Timestamp != "" {
		return r.Engagement.Timestamp
	}
	return nil
}

// candidateFromEngagement maps a v1 engagement record into the candidate
// shape. It returns errMissingStart, errMissingOwner, or an
// invalidTimestampError when the record cannot be used.
func candidateFromEngagement(rec engagementRecord, loc *time.Location) (candidateMeeting, error) {
	raw := rec.rawStartValue()
	if raw == nil {
		return candidateMeeting{}, errMissingStart
	}

	start, err := normalizeTimestamp(raw, loc)
	if err != nil {
		return candidateMeeting{}, err
	}

	ownerID := rec.Engagement.OwnerID.String()
	if ownerID == "" || ownerID == "0" {
		return candidateMeeting{}, errMissingOwner
	}

	title := rec.Engagement.Title
	if title == "" {
		title = defaultMeetingTitle
	}

	contactIDs := make([]string, 0, len(rec.Associations.ContactIDs))
	for _, id := range rec.Associations.ContactIDs {
		contactIDs = append(contactIDs, strconv.FormatInt(id, 10))
	}

	return candidateMeeting{
		id:         strconv.FormatInt(rec.Engagement.ID, 10),
		ownerID:    ownerID,
		start:      start,
		title:      title,
		contactIDs: contactIDs,
	}, nil
}

// objectSearchRequest is the body of a v3 CRM object search call.
type objectSearchRequest struct {
	FilterGroups []searchFilterGroup `json:"filterGroups"`
	Sorts        []searchSort        `json:"sorts"`
	Properties   []string            `json:"properties"`
	Limit        int                 `json:"limit"`
	After        string              `json:"after,omitempty"`
}

type searchFilterGroup struct {
	Filters []searchFilter `json:"filters"`
}

type searchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value,omitempty"`
	HighValue    string `json:"highValue,omitempty"`
}

type searchSort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction"`
}

// objectSearchResponse is one page of v3 search results.
type objectSearchResponse struct {
	Total   int64         `json:"total"`
	Results []crmObject   `json:"results"`
	Paging  *searchPaging `json:"paging"`
}

type searchPaging struct {
	Next *pagingNext `json:"next"`
}

type pagingNext struct {
	After string `json:"after"`
}

// crmObject is a v3 CRM object. Property values are kept loose because
// their types vary across portals and API generations.
type crmObject struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

// stringProp returns a property as a trimmed string, tolerating the
// numeric shapes older portals deliver.
func (o crmObject) stringProp(name string) string {
	switch v := o.Properties[name].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

// candidateFromObject maps a v3 meeting object into the candidate shape.
// Contact associations are not part of search responses and stay empty
// here; the association resolver fills them in.
func candidateFromObject(obj crmObject, loc *time.Location) (candidateMeeting, error) {
	rawStart, ok := obj.Properties["hs_meeting_start_time"]
	if !ok || rawStart == nil || rawStart == "" {
		return candidateMeeting{}, errMissingStart
	}

	start, err := normalizeTimestamp(rawStart, loc)
	if err != nil {
		return candidateMeeting{}, err
	}

	ownerID := obj.stringProp("hubspot_owner_id")
	if ownerID == "" {
		return candidateMeeting{}, errMissingOwner
	}

	title := obj.stringProp("hs_meeting_title")
	if title == "" {
		title = defaultMeetingTitle
	}

	return candidateMeeting{
		id:         obj.ID,
		ownerID:    ownerID,
		start:      start,
		title:      title,
		recurrence: obj.stringProp("hs_recurrence_rule"),
	}, nil
}

// associationsResponse is a v4 association listing for one object.
type associationsResponse struct {
	Results []associationEdge `json:"results"`
}

type associationEdge struct {
	ToObjectID int64 `json:"toObjectId"`
}

// contactBatchReadRequest is the body of a v3 contacts batch read.
type contactBatchReadRequest struct {
	Properties []string                `json:"properties"`
	Inputs     []contactBatchReadInput `json:"inputs"`
}

type contactBatchReadInput struct {
	ID string `json:"id"`
}

// contactBatchReadResponse is the result of a v3 contacts batch read.
type contactBatchReadResponse struct {
	Results []contactRecord `json:"results"`
}

type contactRecord struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}
