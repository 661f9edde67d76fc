package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zabloncharles/eventportal/internal/discovery"
	"github.com/zabloncharles/eventportal/internal/geo"
	"github.com/zabloncharles/eventportal/internal/health"
	"github.com/zabloncharles/eventportal/internal/record"
	"github.com/zabloncharles/eventportal/internal/store"
)

func testHandlers(events []record.Event, groups []record.Group) *DiscoveryHandlers {
	src := store.NewMemorySource(events, groups)
	return NewDiscoveryHandlers(src, discovery.NewCoordinator(nil, nil))
}

func testEvents() []record.Event {
	return []record.Event{
		{
			ID:          "evt-concert",
			Name:        "Jazz Concert",
			Category:    "Music",
			Location:    "New York, NY",
			Coordinates: &geo.Coordinate{Lat: 40.71, Lng: -74.00},
			Price:       "25",
			Status:      record.StatusActive,
			ViewCount:   40,
		},
		{
			ID:          "evt-market",
			Name:        "Farmers Market",
			Category:    "Food",
			Location:    "Brooklyn, NY",
			Coordinates: &geo.Coordinate{Lat: 40.68, Lng: -73.94},
			Price:       "free",
			Status:      record.StatusActive,
			ViewCount:   90,
		},
		{
			ID:        "evt-draft",
			Name:      "Unpublished",
			Status:    record.StatusInactive,
			ViewCount: 500,
		},
	}
}

func decodeEvents(t *testing.T, rec *httptest.ResponseRecorder) EventsResponse {
	t.Helper()
	var resp EventsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestDiscoverEvents_Basic(t *testing.T) {
	h := testHandlers(testEvents(), nil)

	rec := httptest.NewRecorder()
	h.DiscoverEvents(rec, httptest.NewRequest(http.MethodGet, "/discover/events", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeEvents(t, rec)
	if resp.Count != 2 {
		t.Fatalf("expected 2 active events, got %d", resp.Count)
	}
	for _, result := range resp.Results {
		if result.ID == "evt-draft" {
			t.Error("inactive event leaked into results")
		}
	}
}

func TestDiscoverEvents_CategoryFilter(t *testing.T) {
	h := testHandlers(testEvents(), nil)

	rec := httptest.NewRecorder()
	h.DiscoverEvents(rec, httptest.NewRequest(http.MethodGet, "/discover/events?category=Music", nil))

	resp := decodeEvents(t, rec)
	if resp.Count != 1 || resp.Results[0].ID != "evt-concert" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestDiscoverEvents_SearchMode(t *testing.T) {
	h := testHandlers(testEvents(), nil)

	rec := httptest.NewRecorder()
	h.DiscoverEvents(rec, httptest.NewRequest(http.MethodGet, "/discover/events?q=jazz", nil))

	resp := decodeEvents(t, rec)
	if resp.Count != 1 || resp.Results[0].ID != "evt-concert" {
		t.Errorf("unexpected search results: %+v", resp.Results)
	}
}

func TestDiscoverEvents_ProximitySort(t *testing.T) {
	h := testHandlers(testEvents(), nil)

	// Reference point next to the Brooklyn market
	rec := httptest.NewRecorder()
	h.DiscoverEvents(rec, httptest.NewRequest(http.MethodGet,
		"/discover/events?sort=proximity&lat=40.68&lng=-73.94", nil))

	resp := decodeEvents(t, rec)
	if resp.Count != 2 || resp.Results[0].ID != "evt-market" {
		t.Errorf("expected market first under proximity sort: %+v", resp.Results)
	}
}

func TestDiscoverEvents_Validation(t *testing.T) {
	h := testHandlers(testEvents(), nil)

	tests := []struct {
		name  string
		query string
	}{
		{"bad lat", "?lat=abc&lng=0"},
		{"lat out of range", "?lat=91&lng=0"},
		{"lng without lat", "?lng=-74"},
		{"radius without point", "?radius_miles=5"},
		{"negative radius", "?lat=40&lng=-74&radius_miles=-1"},
		{"bad price", "?price_min=abc"},
		{"date_from alone", "?date_from=2026-07-01T00:00:00Z"},
		{"bad date", "?date_from=tomorrow&date_to=2026-07-02T00:00:00Z"},
		{"bad timed_only", "?timed_only=maybe"},
		{"negative participants", "?min_participants=-1"},
		{"unknown sort", "?sort=alphabetical"},
		{"zero limit", "?limit=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.DiscoverEvents(rec, httptest.NewRequest(http.MethodGet, "/discover/events"+tt.query, nil))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp := decodeError(t, rec); resp.Error.Code != ErrCodeValidation {
				t.Errorf("error code = %q, want %q", resp.Error.Code, ErrCodeValidation)
			}
		})
	}
}

func TestDiscoverEvents_MethodNotAllowed(t *testing.T) {
	h := testHandlers(testEvents(), nil)

	rec := httptest.NewRecorder()
	h.DiscoverEvents(rec, httptest.NewRequest(http.MethodPost, "/discover/events", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestDiscoverGroups_Basic(t *testing.T) {
	groups := []record.Group{
		{ID: "grp-run", Name: "Run Club", Category: "Sports", MemberCount: 30},
		{ID: "grp-secret", Name: "Private Circle", IsPrivate: true},
	}
	h := testHandlers(nil, groups)

	rec := httptest.NewRecorder()
	h.DiscoverGroups(rec, httptest.NewRequest(http.MethodGet, "/discover/groups", nil))

	var resp GroupsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || resp.Results[0].ID != "grp-run" {
		t.Errorf("unexpected group results: %+v", resp.Results)
	}
}

func TestFeaturedEvents_TopViewed(t *testing.T) {
	h := testHandlers(testEvents(), nil)

	rec := httptest.NewRecorder()
	h.FeaturedEvents(rec, httptest.NewRequest(http.MethodGet, "/discover/featured", nil))

	resp := decodeEvents(t, rec)
	if resp.Count != 2 {
		t.Fatalf("expected 2 featured events, got %d", resp.Count)
	}
	if resp.Results[0].ID != "evt-market" {
		t.Errorf("expected most-viewed active event first, got %q", resp.Results[0].ID)
	}
}

func TestMapVisible(t *testing.T) {
	h := testHandlers(testEvents(), nil)

	rec := httptest.NewRecorder()
	h.MapVisible(rec, httptest.NewRequest(http.MethodGet,
		"/map/visible?bbox=-74.1,40.6,-73.9,40.8", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp MapResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected both located events in viewport, got %d", resp.Count)
	}
	for _, m := range resp.Results {
		if m.CoarseGeohash == "" {
			t.Errorf("marker %s missing coarse geohash", m.ID)
		}
	}
}

func TestMapVisible_Validation(t *testing.T) {
	h := testHandlers(testEvents(), nil)

	tests := []struct {
		name string
		bbox string
	}{
		{"missing", ""},
		{"too few parts", "?bbox=1,2,3"},
		{"not numbers", "?bbox=a,b,c,d"},
		{"longitude out of range", "?bbox=-200,40,-73,41"},
		{"inverted longitude", "?bbox=-73,40,-74,41"},
		{"inverted latitude", "?bbox=-74,41,-73,40"},
		{"area too large", "?bbox=-80,30,-70,45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.MapVisible(rec, httptest.NewRequest(http.MethodGet, "/map/visible"+tt.bbox, nil))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

type fakeChecker struct {
	err error
}

func (f fakeChecker) HealthCheck(ctx context.Context) error {
	return f.err
}

func TestHealth(t *testing.T) {
	h := NewHealthHandlers(nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestReady(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		h := NewHealthHandlers(map[string]health.Checker{
			"database": fakeChecker{},
			"redis":    fakeChecker{},
		})

		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp HealthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Checks["database"] != "ok" || resp.Checks["redis"] != "ok" {
			t.Errorf("unexpected checks: %+v", resp.Checks)
		}
	})

	t.Run("dependency down", func(t *testing.T) {
		h := NewHealthHandlers(map[string]health.Checker{
			"database": fakeChecker{err: errors.New("connection refused")},
		})

		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}

		var resp HealthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Status != "unavailable" {
			t.Errorf("status field = %q", resp.Status)
		}
	})
}
