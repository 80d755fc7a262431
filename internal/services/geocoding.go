package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"socialmap-api/internal/geo"
	"socialmap-api/internal/metrics"
	"socialmap-api/internal/models"
)

// ReverseGeocoder resolves coordinates to a display name such as "City, Country".
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, p geo.Point) (string, error)
}

// Performs reverse geocoding and place search using the OpenStreetMap
// Nominatim API with caching and rate limiting.
type GeocodingService struct {
	baseURL     string
	userAgent   string
	cache       *CacheService
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// Models the subset of Nominatim's reverse response that we care about
// (city/town/village + country).
type NominatimResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
}

// A single Nominatim search hit. Coordinates arrive as strings.
type nominatimPlace struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Returns a fully configured geocoder.
// It includes:
//   - shared TTL cache
//   - shared HTTP client
//   - Nominatim-compliant rate limiting (1 request/sec)
func NewGeocodingService(baseURL, userAgent string, cache *CacheService) *GeocodingService {
	return &GeocodingService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		cache:      cache,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		rateLimiter: rate.NewLimiter(
			rate.Limit(1), // 1 request/sec
			1,             // burst size
		),
	}
}

// Performs a coordinate→location lookup.
// The function:
//  1. builds a rounded cache key
//  2. checks the cache
//  3. applies rate limiting (required by Nominatim)
//  4. calls the Nominatim API
//  5. extracts city/town/village + country
//  6. caches & returns the formatted result
func (g *GeocodingService) ReverseGeocode(ctx context.Context, p geo.Point) (string, error) {
	if !p.Valid() {
		return "", fmt.Errorf("invalid coordinates: %s", p)
	}

	// Key rounded to avoid cache fragmentation
	key := fmt.Sprintf("reverse:%.4f,%.4f", p.Lat, p.Lng)
	if cached, ok := g.cache.Get(key); ok {
		metrics.RecordGeocode("reverse", "cache")
		return cached.(string), nil
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(p.Lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(p.Lng, 'f', 6, 64))
	params.Set("zoom", "18")
	params.Set("addressdetails", "1")

	var data NominatimResponse
	if err := g.get(ctx, "/reverse", params, &data); err != nil {
		metrics.RecordGeocode("reverse", "error")
		return "", err
	}
	metrics.RecordGeocode("reverse", "upstream")

	result := extractLocation(data)
	g.cache.Set(key, result)
	return result, nil
}

// Search looks up places matching query, at most limit results.
func (g *GeocodingService) Search(ctx context.Context, query string, limit int) ([]models.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Place{}, nil
	}
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	key := fmt.Sprintf("search:%d:%s", limit, strings.ToLower(query))
	if cached, ok := g.cache.Get(key); ok {
		metrics.RecordGeocode("search", "cache")
		return cached.([]models.Place), nil
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var hits []nominatimPlace
	if err := g.get(ctx, "/search", params, &hits); err != nil {
		metrics.RecordGeocode("search", "error")
		return nil, err
	}
	metrics.RecordGeocode("search", "upstream")

	places := make([]models.Place, 0, len(hits))
	for _, h := range hits {
		lat, errLat := strconv.ParseFloat(h.Lat, 64)
		lng, errLng := strconv.ParseFloat(h.Lon, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		places = append(places, models.Place{
			Id:        strconv.FormatInt(h.PlaceID, 10),
			PlaceName: h.DisplayName,
			Latitude:  lat,
			Longitude: lng,
		})
	}

	g.cache.Set(key, places)
	return places, nil
}

// Performs the rate-limited HTTP request and decodes the JSON response.
func (g *GeocodingService) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, out)
}

// Chooses the most specific available location from the response.
func extractLocation(n NominatimResponse) string {
	city := firstNonEmpty(
		n.Address.City,
		n.Address.Town,
		n.Address.Village,
	)
	country := n.Address.Country

	switch {
	case city != "" && country != "":
		return city + ", " + country
	case city != "":
		return city
	default:
		return country
	}
}

// Returns the first non-empty string in the list.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
