// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// Configuration management for the weekly-meeting-digest job.
package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// defaultOwnerSlackMap maps HubSpot owner IDs to Slack mention handles.
// Owners missing from the map are rendered with a literal ID fallback,
// never dropped. The whole table can be replaced via OWNER_SLACK_MAP.
var defaultOwnerSlackMap = map[string]string{
	"29202437":   "<@U08N63C58BC>",
	"76287207":   "<@U085X3R20P7>",
	"1331795909": "<@U07G8B29CN5>",
	"303586931":  "<@U07K1NXC4TF>",
	"76160549":   "<@U07M9L6U4SX>",
	"76822495":   "<@U07FY6MUDEG>",
	"380546521":  "<@U083BBL20BF>",
	"1859268659": "<@U07J82VKM9Q>",
	"982419171":  "<@U07K4G7710B>",
	"78899599":   "<@U08KDHHJ7S6>",
	"29454051":   "<@U08TTADV078>",
	"1844730787": "<@U07JAJBKDLL>",
	"29545650":   "<@U091QQP4W85>",
	"29700526":   "<@U095R45NW8H>",
	"30562252":   "<@U09LCQSB081>",
	"30767909":   "<@U09PKAGQUF8>",
	"30840582":   "<@U09QW1PVCCS>",
	"30287832":   "<@U07M9P6JZ5G>",
	"31172664":   "<@U0A0P2V70MC>",
	"30740680":   "<@U09LSSAB3LH>",
}

// Config holds all configuration values for the weekly-meeting-digest job
type Config struct {
	// HubSpot configuration
	HubSpotAPIKey string   // Private app token used as bearer credential
	HubSpotAPIURL *url.URL // HubSpot API base URL

	// Slack configuration
	SlackWebhookURL string

	// Reporting configuration
	Timezone      *time.Location    // Fixed reporting timezone, independent of the host default
	OwnerSlackMap map[string]string // Owner ID to Slack handle table
	MaxPages      int               // Pagination budget per fetch

	// Optional NATS digest mirror
	NATSURL string

	// Logging
	Debug     bool
	HTTPDebug bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	hubspotAPIURLStr := os.Getenv("HUBSPOT_API_URL")

	cfg := &Config{
		HubSpotAPIKey:   os.Getenv("HUBSPOT_API_KEY"),
		SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
		OwnerSlackMap:   defaultOwnerSlackMap,
		NATSURL:         os.Getenv("NATS_URL"),
		Debug:           os.Getenv("DEBUG") != "",
		HTTPDebug:       os.Getenv("HTTP_DEBUG") != "",
	}

	// Validate required credentials
	if cfg.HubSpotAPIKey == "" {
		return nil, fmt.Errorf("HUBSPOT_API_KEY environment variable is required")
	}
	if cfg.SlackWebhookURL == "" {
		return nil, fmt.Errorf("SLACK_WEBHOOK_URL environment variable is required")
	}

	// Set HubSpot API base URL default
	if hubspotAPIURLStr == "" {
		hubspotAPIURLStr = "https://api.hubapi.com/"
	}

	hubspotAPIURL, err := url.Parse(hubspotAPIURLStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HUBSPOT_API_URL: %w", err)
	}
	cfg.HubSpotAPIURL = hubspotAPIURL

	// The reporting timezone is fixed configuration, deliberately not the
	// host default: the digest must render the same wherever it runs.
	timezone := os.Getenv("TIMEZONE")
	if timezone == "" {
		timezone = "Europe/Berlin"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load TIMEZONE %q: %w", timezone, err)
	}
	cfg.Timezone = loc

	// Optional full replacement of the owner mapping table
	if raw := os.Getenv("OWNER_SLACK_MAP"); raw != "" {
		ownerMap := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &ownerMap); err != nil {
			return nil, fmt.Errorf("failed to parse OWNER_SLACK_MAP: %w", err)
		}
		cfg.OwnerSlackMap = ownerMap
	}

	cfg.MaxPages = 10
	if raw := os.Getenv("MAX_PAGES"); raw != "" {
		maxPages, err := strconv.Atoi(raw)
		if err != nil || maxPages < 1 {
			return nil, fmt.Errorf("invalid MAX_PAGES value %q", raw)
		}
		cfg.MaxPages = maxPages
	}

	return cfg, nil
}
