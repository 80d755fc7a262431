// Package mapview keeps a set of on-map photo markers in sync with the latest
// photo listing.
package mapview

import (
	"context"
	"errors"
	"sync"

	"socialmap-api/internal/geo"
	"socialmap-api/internal/models"
)

// DeletePrompt is shown before a photo is deleted.
const DeletePrompt = "Delete this photo?"

// DefaultCenter is used when the viewer position is unknown.
var DefaultCenter = geo.Point{Lat: 40, Lng: -74.5}

// ErrUnknownMarker is returned when activating a marker that is not rendered.
var ErrUnknownMarker = errors.New("no marker for photo")

// Button is the kind of interaction with a marker.
type Button int

const (
	Primary   Button = iota // open the viewer
	Secondary               // confirm, then delete
)

// Marker is one rendered photo.
type Marker struct {
	PhotoId   string
	Position  geo.Point
	SignedURL string
}

// PhotoSource lists and deletes photos.
type PhotoSource interface {
	ListPhotos(ctx context.Context, filter models.PhotoFilter) ([]models.Photo, error)
	DeletePhoto(ctx context.Context, id string) error
}

// Surface draws markers and shows the full-screen viewer.
type Surface interface {
	Place(m Marker)
	Remove(photoID string)
	Open(m Marker)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Layer is the set of photo markers currently on the map. It is safe for
// concurrent use.
type Layer struct {
	source  PhotoSource
	surface Surface
	confirm Confirmer

	mu      sync.Mutex
	markers map[string]Marker
	order   []string // render order, one entry per marker
	gen     uint64   // bumped by every Refresh
	closed  bool
}

// NewLayer returns an empty layer drawing on surface.
func NewLayer(source PhotoSource, surface Surface, confirm Confirmer) *Layer {
	return &Layer{
		source:  source,
		surface: surface,
		confirm: confirm,
		markers: make(map[string]Marker),
	}
}

// Render replaces every rendered marker with one marker per photo.
// A later record with a duplicate id replaces the earlier marker.
// Render is a no-op after Close.
func (l *Layer) Render(photos []models.Photo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.render(photos)
}

func (l *Layer) render(photos []models.Photo) {
	l.clear()

	for _, p := range photos {
		m := Marker{
			PhotoId:   p.Id,
			Position:  geo.Point{Lat: p.Latitude, Lng: p.Longitude},
			SignedURL: p.SignedURL,
		}
		if _, dup := l.markers[p.Id]; dup {
			l.surface.Remove(p.Id)
			l.dropOrder(p.Id)
		}
		l.markers[p.Id] = m
		l.order = append(l.order, p.Id)
		l.surface.Place(m)
	}
}

// Refresh fetches the latest photos and renders them. Results of a fetch that
// was superseded by a newer Refresh, or that finished after Close, are
// discarded. On error the rendered markers are left as they were.
func (l *Layer) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	photos, err := l.source.ListPhotos(ctx, models.PhotoFilter{})

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || gen != l.gen {
		return nil
	}
	if err != nil {
		return err
	}
	l.render(photos)
	return nil
}

// Activate handles an interaction with the marker for photoID. Primary opens
// the viewer. Secondary asks for confirmation and deletes the photo; the marker
// is only removed once the delete succeeded.
func (l *Layer) Activate(ctx context.Context, photoID string, button Button) error {
	l.mu.Lock()
	m, ok := l.markers[photoID]
	closed := l.closed
	l.mu.Unlock()

	if closed || !ok {
		return ErrUnknownMarker
	}

	switch button {
	case Primary:
		l.surface.Open(m)
		return nil
	case Secondary:
		if !l.confirm.Confirm(DeletePrompt) {
			return nil
		}
		if err := l.source.DeletePhoto(ctx, photoID); err != nil {
			return err
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if _, still := l.markers[photoID]; still && !l.closed {
			delete(l.markers, photoID)
			l.dropOrder(photoID)
			l.surface.Remove(photoID)
		}
		return nil
	default:
		return errors.New("unknown button")
	}
}

// Markers returns the rendered markers in render order.
func (l *Layer) Markers() []Marker {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Marker, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.markers[id])
	}
	return out
}

// Count returns the number of rendered markers.
func (l *Layer) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.markers)
}

// Close removes every marker. Later renders and refreshes are ignored.
func (l *Layer) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.clear()
	l.closed = true
}

func (l *Layer) clear() {
	for _, id := range l.order {
		l.surface.Remove(id)
	}
	l.markers = make(map[string]Marker)
	l.order = l.order[:0]
}

func (l *Layer) dropOrder(id string) {
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			return
		}
	}
}

// CenterFor returns the viewer position, or DefaultCenter when geolocation
// is unavailable or invalid.
func CenterFor(pos *geo.Point) geo.Point {
	if pos == nil || !pos.Valid() {
		return DefaultCenter
	}
	return *pos
}
