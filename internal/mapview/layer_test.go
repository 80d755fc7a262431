package mapview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"socialmap-api/internal/geo"
	"socialmap-api/internal/models"
)

type recordingSurface struct {
	mu      sync.Mutex
	placed  map[string]Marker
	removed []string
	opened  []Marker
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{placed: make(map[string]Marker)}
}

func (s *recordingSurface) Place(m Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.placed[m.PhotoId] = m
}

func (s *recordingSurface) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.placed, id)
	s.removed = append(s.removed, id)
}

func (s *recordingSurface) Open(m Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, m)
}

func (s *recordingSurface) visible() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.placed)
}

type fakeSource struct {
	photos    []models.Photo
	listErr   error
	deleteErr error
	deleted   []string
	release   chan struct{} // when set, ListPhotos blocks until it receives
}

func (f *fakeSource) ListPhotos(ctx context.Context, filter models.PhotoFilter) ([]models.Photo, error) {
	photos, err := f.photos, f.listErr
	if f.release != nil {
		<-f.release
	}
	return photos, err
}

func (f *fakeSource) DeletePhoto(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type answer bool

func (a answer) Confirm(prompt string) bool { return bool(a) }

func photo(id string, lat, lng float64) models.Photo {
	return models.Photo{Id: id, Latitude: lat, Longitude: lng, SignedURL: "https://cdn/" + id}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		first  []models.Photo
		second []models.Photo
		want   int
	}{
		{name: "replace", first: []models.Photo{photo("a", 1, 1), photo("b", 2, 2)}, second: []models.Photo{photo("c", 3, 3)}, want: 1},
		{name: "same list twice", first: []models.Photo{photo("a", 1, 1), photo("b", 2, 2)}, second: []models.Photo{photo("a", 1, 1), photo("b", 2, 2)}, want: 2},
		{name: "empty clears", first: []models.Photo{photo("a", 1, 1)}, second: nil, want: 0},
		{name: "duplicate ids overwrite", first: nil, second: []models.Photo{photo("a", 1, 1), photo("a", 5, 5)}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := newRecordingSurface()
			l := NewLayer(&fakeSource{}, surface, answer(true))

			l.Render(tt.first)
			l.Render(tt.second)

			if l.Count() != tt.want {
				t.Errorf("Count() = %d, want %d", l.Count(), tt.want)
			}
			if surface.visible() != tt.want {
				t.Errorf("visible markers = %d, want %d", surface.visible(), tt.want)
			}
		})
	}
}

func TestRenderDuplicateKeepsLastPosition(t *testing.T) {
	l := NewLayer(&fakeSource{}, newRecordingSurface(), answer(true))
	l.Render([]models.Photo{photo("a", 1, 1), photo("b", 2, 2), photo("a", 5, 6)})

	markers := l.Markers()
	if len(markers) != 2 {
		t.Fatalf("Markers() = %+v, want 2", markers)
	}
	if markers[1].PhotoId != "a" || markers[1].Position != (geo.Point{Lat: 5, Lng: 6}) {
		t.Errorf("duplicate marker = %+v, want a at 5,6", markers[1])
	}
}

func TestActivatePrimaryOpensViewer(t *testing.T) {
	surface := newRecordingSurface()
	l := NewLayer(&fakeSource{}, surface, answer(true))
	l.Render([]models.Photo{photo("a", 1, 1)})

	if err := l.Activate(context.Background(), "a", Primary); err != nil {
		t.Fatalf("Activate() unexpected error: %v", err)
	}
	if len(surface.opened) != 1 || surface.opened[0].SignedURL != "https://cdn/a" {
		t.Errorf("opened = %+v", surface.opened)
	}

	if err := l.Activate(context.Background(), "missing", Primary); !errors.Is(err, ErrUnknownMarker) {
		t.Errorf("Activate(missing) error = %v, want ErrUnknownMarker", err)
	}
}

func TestActivateSecondary(t *testing.T) {
	tests := []struct {
		name        string
		confirm     bool
		deleteErr   error
		wantErr     bool
		wantCount   int
		wantDeleted int
	}{
		{name: "confirmed", confirm: true, wantCount: 1, wantDeleted: 1},
		{name: "declined", confirm: false, wantCount: 2},
		{name: "delete fails", confirm: true, deleteErr: errors.New("403"), wantErr: true, wantCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{deleteErr: tt.deleteErr}
			surface := newRecordingSurface()
			l := NewLayer(source, surface, answer(tt.confirm))
			l.Render([]models.Photo{photo("a", 1, 1), photo("b", 2, 2)})

			err := l.Activate(context.Background(), "a", Secondary)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Activate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if l.Count() != tt.wantCount || surface.visible() != tt.wantCount {
				t.Errorf("markers = %d (visible %d), want %d", l.Count(), surface.visible(), tt.wantCount)
			}
			if len(source.deleted) != tt.wantDeleted {
				t.Errorf("deleted = %v, want %d deletions", source.deleted, tt.wantDeleted)
			}
		})
	}
}

func TestRefreshKeepsMarkersOnError(t *testing.T) {
	source := &fakeSource{photos: []models.Photo{photo("a", 1, 1)}}
	l := NewLayer(source, newRecordingSurface(), answer(true))

	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() unexpected error: %v", err)
	}

	source.listErr = errors.New("network down")
	source.photos = nil
	if err := l.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() expected error")
	}
	if l.Count() != 1 {
		t.Errorf("Count() = %d after failed refresh, want 1", l.Count())
	}
}

func TestRefreshDropsStaleResults(t *testing.T) {
	slow := &fakeSource{photos: []models.Photo{photo("old", 1, 1)}, release: make(chan struct{})}
	l := NewLayer(slow, newRecordingSurface(), answer(true))

	done := make(chan error)
	go func() { done <- l.Refresh(context.Background()) }()

	// Wait until the first fetch has started, then supersede it.
	for {
		l.mu.Lock()
		started := l.gen == 1
		l.mu.Unlock()
		if started {
			break
		}
	}
	l.mu.Lock()
	l.gen++
	l.mu.Unlock()

	close(slow.release)
	if err := <-done; err != nil {
		t.Fatalf("Refresh() unexpected error: %v", err)
	}
	if l.Count() != 0 {
		t.Errorf("Count() = %d, stale result was rendered", l.Count())
	}
}

func TestCloseClearsAndIgnoresLaterRenders(t *testing.T) {
	surface := newRecordingSurface()
	l := NewLayer(&fakeSource{photos: []models.Photo{photo("b", 2, 2)}}, surface, answer(true))
	l.Render([]models.Photo{photo("a", 1, 1)})

	l.Close()
	if l.Count() != 0 || surface.visible() != 0 {
		t.Fatalf("after Close(): count=%d visible=%d", l.Count(), surface.visible())
	}

	l.Render([]models.Photo{photo("c", 3, 3)})
	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() after Close unexpected error: %v", err)
	}
	if l.Count() != 0 || surface.visible() != 0 {
		t.Errorf("render after Close(): count=%d visible=%d", l.Count(), surface.visible())
	}
	if err := l.Activate(context.Background(), "a", Primary); !errors.Is(err, ErrUnknownMarker) {
		t.Errorf("Activate() after Close error = %v", err)
	}
}

func TestCenterFor(t *testing.T) {
	tests := []struct {
		name string
		pos  *geo.Point
		want geo.Point
	}{
		{name: "no position", pos: nil, want: DefaultCenter},
		{name: "invalid position", pos: &geo.Point{Lat: 120, Lng: 0}, want: DefaultCenter},
		{name: "viewer", pos: &geo.Point{Lat: 51.5, Lng: -0.12}, want: geo.Point{Lat: 51.5, Lng: -0.12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CenterFor(tt.pos); got != tt.want {
				t.Errorf("CenterFor() = %v, want %v", got, tt.want)
			}
		})
	}
}
