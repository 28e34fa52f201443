// Copyright the weekly-meeting-digest contributors.
// SPDX-License-Identifier: MIT

// The weekly-meeting-digest job.
//
// One invocation queries HubSpot for the current calendar week's upcoming
// meetings, resolves each meeting's primary contact, groups the result by
// owner, and posts a formatted summary to a Slack channel. Scheduling is
// external (cron or equivalent); the process runs the pipeline once and
// exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const errKey = "error"

var (
	// logger starts as the process default so helpers stay usable before
	// main wires up the JSON handler.
	logger = slog.Default()
	cfg    *Config
	runID  string
)

// main loads configuration, sets up logging, and runs the pipeline once.
func main() {
	// A local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	var err error
	cfg, err = LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	var debug = flag.Bool("d", false, "enable debug logging")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	logOptions := &slog.HandlerOptions{}

	// Optional debug logging.
	if cfg.Debug || *debug {
		cfg.Debug = true
		logOptions.Level = slog.LevelDebug
		logOptions.AddSource = true
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, logOptions))

	// Attach a correlation ID so one run's log lines group together.
	if id, err := uuid.NewV7(); err == nil {
		runID = id.String()
		logger = logger.With("run_id", runID)
	}
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := run(ctx, cfg); err != nil {
		logger.With(errKey, err).Error("digest run failed")
		os.Exit(1)
	}
}

// run executes the full pipeline: window resolution, meeting retrieval,
// association and contact resolution, rendering, and publishing. Stages
// run strictly in sequence; per-record problems were already swallowed
// upstream, so any error here is systemic and aborts before publishing
// a digest that would misrepresent the week.
func run(ctx context.Context, cfg *Config) error {
	now := time.Now().In(cfg.Timezone)
	window := weekWindow(now)
	cutoff := window.futureCutoff(now)

	logger.With("window_start", window.start, "window_end", window.end, "cutoff", cutoff).InfoContext(ctx, "resolved reporting window")

	client := newHubSpotClient(cfg)

	fetcher := newMeetingFetcher(client, cfg)
	fetched, err := fetcher.fetchWindow(ctx, window, cutoff)
	if err != nil {
		return fmt.Errorf("failed to fetch meetings: %w", err)
	}

	meetings := newAssociationResolver(client).resolve(ctx, fetched)

	contactIDs := make([]string, 0, len(meetings))
	for _, meeting := range meetings {
		contactIDs = append(contactIDs, meeting.contactIDs[0])
	}
	directory := newContactResolver(client).displayNames(ctx, contactIDs)

	groups := groupMeetings(meetings, directory)
	digest := renderDigest(groups, window, cfg.OwnerSlackMap)

	logger.With("pages", fetcher.pagesFetched, "fetched", len(fetched), "grouped", len(meetings), "owners", len(groups)).InfoContext(ctx, "digest assembled")

	publisher := newSlackPublisher(cfg)
	if err := publisher.publish(ctx, digest); err != nil {
		return fmt.Errorf("failed to publish digest: %w", err)
	}

	// Optional machine-readable mirror; never fails the run.
	if cfg.NATSURL != "" {
		mirror := digestMirror{
			RunID:        runID,
			WindowStart:  window.start,
			WindowEnd:    window.end,
			OwnerCount:   len(groups),
			MeetingCount: len(meetings),
			Digest:       digest,
		}
		if err := publishMirror(ctx, cfg.NATSURL, mirror); err != nil {
			logger.With(errKey, err).WarnContext(ctx, "failed to publish digest mirror")
		}
	}

	// Diagnostic summary for debugging digest contents, sent as a
	// separate message so the digest itself stays clean.
	if cfg.Debug {
		diagnostic := fmt.Sprintf("🛠 Digest-Diagnose: pages=%d fetched=%d grouped=%d owners=%d",
			fetcher.pagesFetched, len(fetched), len(meetings), len(groups))
		if err := publisher.publish(ctx, diagnostic); err != nil {
			logger.With(errKey, err).WarnContext(ctx, "failed to publish diagnostic message")
		}
	}

	return nil
}
