// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayNamesFallbackChain(t *testing.T) {
	var batchCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("POST /crm/v3/objects/contacts/batch/read", func(w http.ResponseWriter, r *http.Request) {
		batchCalls++

		var req contactBatchReadRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"firstname", "lastname", "email"}, req.Properties)
		assert.Len(t, req.Inputs, 4, "requested IDs are deduplicated")

		writeJSON(t, w, map[string]any{
			"results": []any{
				map[string]any{"id": "1", "properties": map[string]string{"firstname": "Jane", "lastname": "Doe", "email": "jane@example.com"}},
				map[string]any{"id": "2", "properties": map[string]string{"firstname": "", "lastname": "", "email": "max@example.com"}},
				map[string]any{"id": "3", "properties": map[string]string{}},
				// ID "4" has no record at all.
			},
		})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, _ := testClient(t, server.URL)
	resolver := newContactResolver(client)

	directory := resolver.displayNames(t.Context(), []string{"1", "2", "3", "4", "1"})

	assert.Equal(t, contactDirectory{
		"1": "Jane Doe",
		"2": "max@example.com",
		"3": "Contact 3",
		"4": "Contact 4",
	}, directory)
	assert.Equal(t, 1, batchCalls)

	// A second resolution is served from cache for resolved IDs.
	directory = resolver.displayNames(t.Context(), []string{"1", "2"})
	assert.Equal(t, "Jane Doe", directory["1"])
	assert.Equal(t, "max@example.com", directory["2"])
	assert.Equal(t, 1, batchCalls)
}

func TestDisplayNamesBatchFailureDegradesToPlaceholders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := testClient(t, server.URL)
	resolver := newContactResolver(client)

	directory := resolver.displayNames(t.Context(), []string{"7", "8"})

	assert.Equal(t, contactDirectory{
		"7": "Contact 7",
		"8": "Contact 8",
	}, directory)
}

func TestDisplayNamesEmptyInputSkipsAPICall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no API call expected for empty input")
	}))
	defer server.Close()

	client, _ := testClient(t, server.URL)
	resolver := newContactResolver(client)

	directory := resolver.displayNames(t.Context(), nil)
	assert.Empty(t, directory)
}

func TestContactDisplayNameTrimsPartialNames(t *testing.T) {
	assert.Equal(t, "Jane", contactDisplayName(contactRecord{
		ID:         "1",
		Properties: map[string]string{"firstname": "Jane", "lastname": ""},
	}))
	assert.Equal(t, "Doe", contactDisplayName(contactRecord{
		ID:         "1",
		Properties: map[string]string{"firstname": " ", "lastname": "Doe"},
	}))
}
