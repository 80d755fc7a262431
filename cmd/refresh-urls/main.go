package main

import (
	"context"
	"flag"
	"time"

	"socialmap-api/internal/config"
	"socialmap-api/internal/logging"
	"socialmap-api/internal/models"
	"socialmap-api/internal/server"
	"socialmap-api/internal/services"
)

type stats struct {
	refreshed, backfilled, skipped, errors int
}

// Re-signs photo URLs that are about to expire and optionally fills in
// metadata missing from older records.
func processPhotos(ctx context.Context, photos *services.PhotoService, records []models.Photo, within time.Duration, opts services.BackfillOptions, st *stats) {
	deadline := time.Now().Add(within)

	for _, p := range records {
		touched := false

		if p.SignedURLExpiresAt.IsZero() || p.SignedURLExpiresAt.Before(deadline) {
			if opts.DryRun {
				logging.Info().Str("photo_id", p.Id).Time("expires_at", p.SignedURLExpiresAt).Msg("[DRY] Would refresh signed URL")
				st.refreshed++
			} else if _, err := photos.RefreshSignedURL(ctx, p.Id); err != nil {
				logging.Error().Err(err).Str("photo_id", p.Id).Msg("Failed to refresh signed URL")
				st.errors++
				continue
			} else {
				logging.Info().Str("photo_id", p.Id).Msg("Refreshed signed URL")
				st.refreshed++
			}
			touched = true
		}

		if opts.Inspect || opts.Geocode {
			updated, changed, err := photos.BackfillMetadata(ctx, p.Id, opts)
			if err != nil {
				logging.Error().Err(err).Str("photo_id", p.Id).Msg("Failed to backfill metadata")
				st.errors++
				continue
			}
			if changed {
				logging.Info().
					Str("photo_id", p.Id).
					Str("location", updated.LocationName).
					Int("width", updated.Width).
					Bool("dry_run", opts.DryRun).
					Msg("Backfilled metadata")
				st.backfilled++
				touched = true
			}
		}

		if !touched {
			st.skipped++
		}
	}
}

func main() {
	within := flag.Duration("within", 30*24*time.Hour, "Re-sign URLs expiring within this window")
	backfill := flag.Bool("backfill", false, "Fetch objects and fill missing width, height and capture time")
	geocode := flag.Bool("geocode", false, "Fill missing location names")
	dryRun := flag.Bool("dry-run", false, "Preview changes without writing records")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if *dryRun {
		logging.Info().Msg("DRY RUN - no records will be written")
	}
	if *geocode && !cfg.GeocodingEnabled {
		logging.Warn().Msg("Geocoding is disabled, -geocode has no effect")
	}

	ctx := context.Background()

	svcs, err := server.InitServices(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer svcs.Close()

	records, err := svcs.Photos.List(ctx, models.PhotoFilter{})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to list photos")
	}

	var st stats
	opts := services.BackfillOptions{Inspect: *backfill, Geocode: *geocode, DryRun: *dryRun}
	processPhotos(ctx, svcs.Photos, records, *within, opts, &st)

	logging.Info().Msgf("Done: refreshed=%d backfilled=%d skipped=%d errors=%d",
		st.refreshed, st.backfilled, st.skipped, st.errors)
}
