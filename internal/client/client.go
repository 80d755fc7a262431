// Package client is a typed HTTP client for the socialmap API.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-json"

	"socialmap-api/internal/geo"
	"socialmap-api/internal/models"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New returns a client for the API mounted at baseURL, e.g.
// "https://<project>.supabase.co/functions/v1/make-server-ac2b2b01".
// token is sent as a bearer credential on every request.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadInput is a photo to upload from raw bytes.
type UploadInput struct {
	Data      []byte
	Filename  string
	Latitude  float64
	Longitude float64
	UserId    *string
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil, "Health check failed")
}

func (c *Client) ListPhotos(ctx context.Context, filter models.PhotoFilter) ([]models.Photo, error) {
	query := url.Values{}
	if filter.UserId != "" {
		query.Set("userId", filter.UserId)
	}

	var resp models.PhotoListResponse
	if err := c.do(ctx, http.MethodGet, "/photos", query, nil, &resp, "Failed to fetch photos"); err != nil {
		return nil, err
	}
	if resp.Photos == nil {
		resp.Photos = []models.Photo{}
	}
	return resp.Photos, nil
}

// Feed returns photos nearest to viewer first, or newest first when viewer is nil.
func (c *Client) Feed(ctx context.Context, viewer *geo.Point) ([]models.FeedPhoto, error) {
	query := url.Values{}
	if viewer != nil {
		query.Set("lat", strconv.FormatFloat(viewer.Lat, 'f', -1, 64))
		query.Set("lng", strconv.FormatFloat(viewer.Lng, 'f', -1, 64))
	}

	var resp models.FeedResponse
	if err := c.do(ctx, http.MethodGet, "/photos/feed", query, nil, &resp, "Failed to fetch feed"); err != nil {
		return nil, err
	}
	return resp.Photos, nil
}

// UploadPhoto sends the image as a data URL, the same shape a browser
// FileReader produces.
func (c *Client) UploadPhoto(ctx context.Context, in UploadInput) (*models.UploadResponse, error) {
	dataURL := "data:" + mimetype.Detect(in.Data).String() + ";base64," + base64.StdEncoding.EncodeToString(in.Data)
	lat, lng := in.Latitude, in.Longitude

	req := models.UploadRequest{
		Base64Data: dataURL,
		Filename:   in.Filename,
		Latitude:   &lat,
		Longitude:  &lng,
		UserId:     in.UserId,
	}

	var resp models.UploadResponse
	if err := c.do(ctx, http.MethodPost, "/photos/upload", nil, req, &resp, "Failed to upload photo"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeletePhoto(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/photos/"+url.PathEscape(id), nil, nil, nil, "Failed to delete photo")
}

func (c *Client) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(userID), nil, nil, &p, "Failed to fetch profile"); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetMyProfile returns the session user's profile, or nil when none has been
// saved yet.
func (c *Client) GetMyProfile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	err := c.do(ctx, http.MethodGet, "/profiles/me", nil, nil, &p, "Failed to fetch profile")
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateMyProfile(ctx context.Context, update models.ProfileUpdate) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodPut, "/profiles/me", nil, update, &p, "Failed to update profile"); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListMarkers(ctx context.Context) ([]models.Marker, error) {
	var resp models.MarkerListResponse
	if err := c.do(ctx, http.MethodGet, "/markers", nil, nil, &resp, "Failed to fetch markers"); err != nil {
		return nil, err
	}
	return resp.Markers, nil
}

func (c *Client) AddMarker(ctx context.Context, longitude, latitude float64, label *string) (*models.Marker, error) {
	req := models.MarkerRequest{Longitude: &longitude, Latitude: &latitude, Label: label}

	var m models.Marker
	if err := c.do(ctx, http.MethodPost, "/markers", nil, req, &m, "Failed to add marker"); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteMarker(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/markers/"+url.PathEscape(id), nil, nil, nil, "Failed to delete marker")
}

func (c *Client) SearchPlaces(ctx context.Context, query string, limit int) ([]models.Place, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp models.PlaceSearchResponse
	if err := c.do(ctx, http.MethodGet, "/geocode/search", q, nil, &resp, "Failed to search places"); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// do sends one request. Non-2xx responses become *APIError carrying the
// server's error message, or fallback when the body has none.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, fallback string) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", fallback, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: fallback}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", fallback, err)
	}
	return nil
}
