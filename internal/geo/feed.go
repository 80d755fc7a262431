package geo

import (
	"math"
	"slices"

	"socialmap-api/internal/models"
)

// SortFeed orders photos for the feed. With a viewer position, photos are
// sorted nearest first and photos without a computable distance go last.
// Without a position, photos are sorted newest first. Both sorts are stable.
func SortFeed(photos []models.Photo, viewer *Point) []models.FeedPhoto {
	feed := make([]models.FeedPhoto, len(photos))
	for i, p := range photos {
		feed[i] = models.FeedPhoto{Photo: p}
	}

	if viewer == nil {
		SortByRecency(feed)
		return feed
	}

	for i := range feed {
		pos := Point{Lat: feed[i].Latitude, Lng: feed[i].Longitude}
		if !pos.Valid() {
			continue
		}
		d := Haversine(*viewer, pos)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		feed[i].DistanceKm = &d
	}
	SortByDistance(feed)
	return feed
}

// SortByDistance stable-sorts ascending by DistanceKm, nil distances last.
func SortByDistance(feed []models.FeedPhoto) {
	slices.SortStableFunc(feed, func(a, b models.FeedPhoto) int {
		da, db := distanceOrInf(a), distanceOrInf(b)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		default:
			return 0
		}
	})
}

// SortByRecency stable-sorts descending by creation time.
func SortByRecency(feed []models.FeedPhoto) {
	slices.SortStableFunc(feed, func(a, b models.FeedPhoto) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func distanceOrInf(p models.FeedPhoto) float64 {
	if p.DistanceKm == nil {
		return math.Inf(1)
	}
	return *p.DistanceKm
}
