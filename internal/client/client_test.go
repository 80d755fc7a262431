package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"socialmap-api/internal/geo"
	"socialmap-api/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer anon" {
			t.Errorf("Authorization = %q, want Bearer anon", got)
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/make-server-ac2b2b01/", "anon")
}

func TestListPhotos(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/make-server-ac2b2b01/photos" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("userId") != "u1" {
			t.Errorf("userId = %q", r.URL.Query().Get("userId"))
		}
		w.Write([]byte(`{"photos":[{"id":"photo_1","latitude":1,"longitude":2,"userId":null}]}`))
	})

	photos, err := c.ListPhotos(context.Background(), models.PhotoFilter{UserId: "u1"})
	if err != nil {
		t.Fatalf("ListPhotos() unexpected error: %v", err)
	}
	if len(photos) != 1 || photos[0].Id != "photo_1" || photos[0].UserId != nil {
		t.Errorf("ListPhotos() = %+v", photos)
	}
}

func TestListPhotosEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	photos, err := c.ListPhotos(context.Background(), models.PhotoFilter{})
	if err != nil || photos == nil || len(photos) != 0 {
		t.Errorf("ListPhotos() = %v, %v, want empty slice", photos, err)
	}
}

func TestAPIErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "server message", status: http.StatusNotFound, body: `{"error":"Photo not found"}`, wantMessage: "Photo not found"},
		{name: "non json body", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantMessage: "Failed to delete photo"},
		{name: "empty error", status: http.StatusInternalServerError, body: `{"error":""}`, wantMessage: "Failed to delete photo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != "/make-server-ac2b2b01/photos/photo_1" {
					t.Errorf("request = %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := c.DeletePhoto(context.Background(), "photo_1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("DeletePhoto() error = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.wantMessage {
				t.Errorf("APIError = %+v, want status %d message %q", apiErr, tt.status, tt.wantMessage)
			}
		})
	}
}

func TestUploadPhoto(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req models.UploadRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if !strings.HasPrefix(req.Base64Data, "data:image/png;base64,") {
			t.Errorf("base64Data prefix = %.30q", req.Base64Data)
		}
		if req.Latitude == nil || *req.Latitude != 0 || req.Longitude == nil || *req.Longitude != 12.5 {
			t.Errorf("coordinates = %v, %v", req.Latitude, req.Longitude)
		}
		w.Write([]byte(`{"success":true,"photoId":"photo_9","filePath":"9-a.png","signedUrl":"https://x","latitude":0,"longitude":12.5,"userId":null}`))
	})

	resp, err := c.UploadPhoto(context.Background(), UploadInput{Data: png, Filename: "a.png", Latitude: 0, Longitude: 12.5})
	if err != nil {
		t.Fatalf("UploadPhoto() unexpected error: %v", err)
	}
	if resp.PhotoId != "photo_9" || resp.SignedURL != "https://x" {
		t.Errorf("UploadPhoto() = %+v", resp)
	}
}

func TestFeedQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") != "40.7" || r.URL.Query().Get("lng") != "-74" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"photos":[{"id":"photo_1","distanceKm":1.5}]}`))
	})

	feed, err := c.Feed(context.Background(), &geo.Point{Lat: 40.7, Lng: -74})
	if err != nil {
		t.Fatalf("Feed() unexpected error: %v", err)
	}
	if len(feed) != 1 || feed[0].DistanceKm == nil || *feed[0].DistanceKm != 1.5 {
		t.Errorf("Feed() = %+v", feed)
	}
}

func TestGetMyProfileMissing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Profile not found"}`))
	})

	p, err := c.GetMyProfile(context.Background())
	if err != nil || p != nil {
		t.Errorf("GetMyProfile() = %v, %v, want nil, nil", p, err)
	}
}

func TestAddMarker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{"id":"marker_1","longitude":2.35,"latitude":48.85,"label":null}`))
	})

	m, err := c.AddMarker(context.Background(), 2.35, 48.85, nil)
	if err != nil {
		t.Fatalf("AddMarker() unexpected error: %v", err)
	}
	if m.Id != "marker_1" || m.Label != nil {
		t.Errorf("AddMarker() = %+v", m)
	}
}
