package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/photos", "200"))

	RecordAPIRequest("GET", "/photos", "200", 25*time.Millisecond)
	RecordAPIRequest("GET", "/photos", "200", 40*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/photos", "200")) - before; got != 2 {
		t.Errorf("api_requests_total delta = %v, want 2", got)
	}
}

func TestRecordPhotoOperation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{name: "success", err: nil, result: "success"},
		{name: "failure", err: errors.New("bucket unavailable"), result: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := PhotoOperations.WithLabelValues("upload", tt.result)
			before := testutil.ToFloat64(counter)

			RecordPhotoOperation("upload", tt.err)

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("photo_operations_total{result=%q} delta = %v, want 1", tt.result, got)
			}
		})
	}
}

func TestRecordGeocode(t *testing.T) {
	counter := GeocodeRequests.WithLabelValues("reverse", "cache")
	before := testutil.ToFloat64(counter)

	RecordGeocode("reverse", "cache")

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("geocode_requests_total delta = %v, want 1", got)
	}
}
