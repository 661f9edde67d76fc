package discovery

import (
	"testing"
	"time"

	"github.com/go-test/deep"

	"github.com/zabloncharles/eventportal/internal/geo"
	"github.com/zabloncharles/eventportal/internal/record"
)

// TestCoordinator_SearchMode ranks by relevance and drops zero-score
// records.
func TestCoordinator_SearchMode(t *testing.T) {
	strong := activeEvent("strong")
	strong.Name = "Jazz Night"
	strong.Description = "A jazz concert downtown"

	weak := activeEvent("weak")
	weak.Description = "Some jazz in the background"

	miss := activeEvent("miss")
	miss.Name = "Pottery Workshop"

	c := NewCoordinator(nil, nil)
	out := c.Run([]record.Event{weak, miss, strong}, Spec{SearchText: "jazz concert"}, Options{})

	if diff := deep.Equal(ids(out), []string{"strong", "weak"}); diff != nil {
		t.Errorf("unexpected result: %v", diff)
	}
}

// TestCoordinator_SearchAppliesOtherFilters: search mode still runs the
// non-text stages first.
func TestCoordinator_SearchAppliesOtherFilters(t *testing.T) {
	match := activeEvent("match")
	match.Name = "Jazz Night"
	match.Category = "Concert"

	wrongCategory := activeEvent("wrong-category")
	wrongCategory.Name = "Jazz Brunch"
	wrongCategory.Category = "Food"

	inactive := record.Event{ID: "inactive", Name: "Jazz Revival", Category: "Concert", Status: record.StatusInactive}

	c := NewCoordinator(nil, nil)
	out := c.Run(
		[]record.Event{match, wrongCategory, inactive},
		Spec{Category: "Concert", SearchText: "jazz"},
		Options{},
	)

	if diff := deep.Equal(ids(out), []string{"match"}); diff != nil {
		t.Errorf("unexpected result: %v", diff)
	}
}

// TestCoordinator_ProximityMode orders nearest-first from the reference
// point.
func TestCoordinator_ProximityMode(t *testing.T) {
	records := []record.Event{
		locatedEvent("far", 0, 2),
		locatedEvent("near", 0, 1),
	}
	ref := geo.Coordinate{Lat: 0, Lng: 0}

	c := NewCoordinator(nil, nil)
	out := c.Run(records, Spec{}, Options{SortByProximity: true, ReferencePoint: &ref})

	if diff := deep.Equal(ids(out), []string{"near", "far"}); diff != nil {
		t.Errorf("unexpected result: %v", diff)
	}
}

// TestCoordinator_ProximityWithoutReference degrades to input order
// when the location service gave us nothing.
func TestCoordinator_ProximityWithoutReference(t *testing.T) {
	records := []record.Event{
		locatedEvent("far", 0, 2),
		locatedEvent("near", 0, 1),
	}

	c := NewCoordinator(nil, nil)
	out := c.Run(records, Spec{}, Options{SortByProximity: true})

	if diff := deep.Equal(ids(out), []string{"far", "near"}); diff != nil {
		t.Errorf("expected input order fallback: %v", diff)
	}
}

// TestCoordinator_DefaultMode filters in input order.
func TestCoordinator_DefaultMode(t *testing.T) {
	records := []record.Event{
		activeEvent("c"), activeEvent("a"),
		{ID: "gone", Status: record.StatusInactive},
		activeEvent("b"),
	}

	c := NewCoordinator(nil, nil)
	out := c.Run(records, Spec{}, Options{})

	if diff := deep.Equal(ids(out), []string{"c", "a", "b"}); diff != nil {
		t.Errorf("unexpected result: %v", diff)
	}
}

// TestCoordinator_Limit truncates after ordering, never reordering.
func TestCoordinator_Limit(t *testing.T) {
	records := []record.Event{
		locatedEvent("far", 0, 2),
		locatedEvent("near", 0, 1),
		locatedEvent("mid", 0, 1.5),
	}
	ref := geo.Coordinate{Lat: 0, Lng: 0}

	c := NewCoordinator(nil, nil)
	out := c.Run(records, Spec{}, Options{SortByProximity: true, ReferencePoint: &ref, Limit: 2})

	if diff := deep.Equal(ids(out), []string{"near", "mid"}); diff != nil {
		t.Errorf("unexpected result: %v", diff)
	}

	// Zero limit means unbounded.
	out = c.Run(records, Spec{}, Options{Limit: 0})
	if len(out) != 3 {
		t.Errorf("expected unbounded result, got %d", len(out))
	}
}

// TestCoordinator_TopViewed is the landing view: active records by view
// count, top three by default, every user filter bypassed.
func TestCoordinator_TopViewed(t *testing.T) {
	mk := func(id string, views int, status record.Status) record.Event {
		return record.Event{ID: id, ViewCount: views, Status: status}
	}

	records := []record.Event{
		mk("low", 5, record.StatusActive),
		mk("hot-dead", 900, record.StatusInactive),
		mk("top", 500, record.StatusActive),
		mk("mid", 50, record.StatusActive),
		mk("high", 100, record.StatusActive),
	}

	c := NewCoordinator(nil, nil)

	out := c.TopViewed(records, 0)
	if diff := deep.Equal(ids(out), []string{"top", "high", "mid"}); diff != nil {
		t.Errorf("unexpected result: %v", diff)
	}

	out = c.TopViewed(records, 2)
	if diff := deep.Equal(ids(out), []string{"top", "high"}); diff != nil {
		t.Errorf("unexpected result: %v", diff)
	}

	// Ties keep input order.
	tied := []record.Event{
		mk("first", 10, record.StatusActive),
		mk("second", 10, record.StatusActive),
	}
	out = c.TopViewed(tied, 2)
	if diff := deep.Equal(ids(out), []string{"first", "second"}); diff != nil {
		t.Errorf("tie-break not stable: %v", diff)
	}
}

// TestCoordinator_RecommendedMode favors upcoming nearby popular events.
func TestCoordinator_RecommendedMode(t *testing.T) {
	ref := geo.Coordinate{Lat: 0, Lng: 0}
	soon := time.Now().Add(24 * time.Hour)
	distant := time.Now().Add(29 * 24 * time.Hour)

	best := locatedEvent("best", 0, 0.1)
	best.StartDate = soon
	best.ViewCount = 100

	worst := locatedEvent("worst", 0, 5)
	worst.StartDate = distant
	worst.ViewCount = 1

	c := NewCoordinator(nil, nil)
	out := c.Run([]record.Event{worst, best}, Spec{}, Options{Recommended: true, ReferencePoint: &ref})

	if diff := deep.Equal(ids(out), []string{"best", "worst"}); diff != nil {
		t.Errorf("unexpected result: %v", diff)
	}
}

// TestCoordinator_RunGroups covers group search and proximity flows.
func TestCoordinator_RunGroups(t *testing.T) {
	nyc := geo.Coordinate{Lat: 40.7128, Lng: -74.0060}

	chess := record.Group{ID: "chess", Name: "Chess Circle", Category: "Games"}
	hike := record.Group{ID: "hike", Name: "Hiking Club", Category: "Outdoors", Coordinates: &nyc}
	secret := record.Group{ID: "secret", Name: "Chess Cabal", Category: "Games", IsPrivate: true}

	c := NewCoordinator(nil, nil)

	out := c.RunGroups([]record.Group{chess, hike, secret}, Spec{SearchText: "chess"}, Options{})
	if diff := deep.Equal([]string{out[0].ID}, []string{"chess"}); diff != nil || len(out) != 1 {
		t.Errorf("unexpected search result: %+v", out)
	}

	out = c.RunGroups([]record.Group{chess, hike}, Spec{}, Options{SortByProximity: true, ReferencePoint: &nyc})
	if out[0].ID != "hike" {
		t.Errorf("expected located group first, got %s", out[0].ID)
	}
}

// TestTruncate covers the clamping edges.
func TestTruncate(t *testing.T) {
	in := []string{"a", "b", "c"}

	if out := Truncate(in, 2); len(out) != 2 {
		t.Errorf("expected 2, got %d", len(out))
	}
	if out := Truncate(in, 0); len(out) != 3 {
		t.Errorf("limit 0 must be unbounded, got %d", len(out))
	}
	if out := Truncate(in, -1); len(out) != 3 {
		t.Errorf("negative limit must be unbounded, got %d", len(out))
	}
	if out := Truncate(in, 10); len(out) != 3 {
		t.Errorf("limit beyond length must clamp, got %d", len(out))
	}
}
