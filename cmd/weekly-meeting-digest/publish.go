// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// Digest publishing: the Slack webhook is the observable contract; the
// NATS mirror is an optional machine-readable copy for internal
// consumers and never fails the run.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	nats "github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"
)

const digestMirrorSubject = "digest.weekly-meetings"

type slackPublisher struct {
	http       *http.Client
	webhookURL string
}

func newSlackPublisher(cfg *Config) *slackPublisher {
	return &slackPublisher{
		http:       &http.Client{Timeout: 10 * time.Second},
		webhookURL: cfg.SlackWebhookURL,
	}
}

// publish delivers one text payload to the webhook. Exactly one publish
// call happens per successful run; failure here is fatal to the caller.
func (p *slackPublisher) publish(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// digestMirror is the structured copy of a digest published to NATS.
type digestMirror struct {
	RunID        string    `msgpack:"run_id"`
	WindowStart  time.Time `msgpack:"window_start"`
	WindowEnd    time.Time `msgpack:"window_end"`
	OwnerCount   int       `msgpack:"owner_count"`
	MeetingCount int       `msgpack:"meeting_count"`
	Digest       string    `msgpack:"digest"`
}

// publishMirror encodes the mirror payload as msgpack and publishes it to
// the digest subject. The connection lives only for this one publish.
func publishMirror(ctx context.Context, natsURL string, mirror digestMirror) error {
	payload, err := msgpack.Marshal(mirror)
	if err != nil {
		return fmt.Errorf("failed to marshal digest mirror: %w", err)
	}

	natsConn, err := nats.Connect(natsURL, nats.Timeout(5*time.Second), nats.MaxReconnects(0))
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer natsConn.Close()

	if err := natsConn.Publish(digestMirrorSubject, payload); err != nil {
		return fmt.Errorf("failed to publish digest mirror: %w", err)
	}
	if err := natsConn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush digest mirror: %w", err)
	}

	logger.With("subject", digestMirrorSubject, "owner_count", mirror.OwnerCount).DebugContext(ctx, "published digest mirror")
	return nil
}
