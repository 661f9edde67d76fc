package discovery

import (
	"sort"
	"strings"
	"time"

	"github.com/zabloncharles/eventportal/internal/geo"
	"github.com/zabloncharles/eventportal/internal/ranking"
	"github.com/zabloncharles/eventportal/internal/record"
)

// DefaultTopViewedCount is how many records the no-filter landing view
// shows.
const DefaultTopViewedCount = 3

// recommendedWindow is the lookahead used for the recency component of
// the recommended ordering.
const recommendedWindow = 30 * 24 * time.Hour

// Options selects the ordering and truncation applied after filtering.
type Options struct {
	// SortByProximity orders results nearest-first from ReferencePoint.
	// Without a reference point (location permission denied or service
	// unavailable) the mode degrades to input order; that is a
	// documented fallback, not an error.
	SortByProximity bool

	// Recommended orders results by the calibrated composite score.
	// Ignored while SearchText is set; search relevance always wins.
	Recommended bool

	// ReferencePoint is the user location, when known.
	ReferencePoint *geo.Coordinate

	// Limit truncates the final ordered list. Zero or negative means
	// unbounded. Truncation never reorders.
	Limit int
}

// Coordinator is the top-level discovery entry point. It owns no record
// state: every call receives the snapshot and spec explicitly, so
// concurrent calls and rapid re-invocation are safe by construction.
type Coordinator struct {
	weights *ranking.Weights
	metrics *Metrics
}

// NewCoordinator builds a Coordinator. Nil weights use the calibration
// defaults; nil metrics disables instrumentation.
func NewCoordinator(weights *ranking.Weights, metrics *Metrics) *Coordinator {
	if weights == nil {
		weights = ranking.DefaultWeights()
	}
	return &Coordinator{weights: weights, metrics: metrics}
}

// Run executes one discovery query over an event snapshot: filter, then
// order, then truncate.
//
// Mode selection: a non-empty SearchText ranks by text relevance
// (dropping zero-relevance records); otherwise Recommended uses the
// calibrated composite ordering; otherwise SortByProximity with a known
// reference point orders nearest-first; otherwise results keep their
// snapshot order.
func (c *Coordinator) Run(records []record.Event, spec Spec, opts Options) []record.Event {
	start := time.Now()

	var out []record.Event
	var mode string

	switch {
	case strings.TrimSpace(spec.SearchText) != "":
		mode = "search"
		// Relevance ranking applies the zero-score exclusion itself,
		// so the text stage is skipped during filtering.
		out = filterEvents(records, spec, false)
		out = RankByRelevance(out, spec.SearchText)

	case opts.Recommended:
		mode = "recommended"
		out = FilterEvents(records, spec)
		out = c.rankRecommended(out, opts.ReferencePoint)

	case opts.SortByProximity && opts.ReferencePoint != nil:
		mode = "proximity"
		out = FilterEvents(records, spec)
		out = RankByDistance(out, *opts.ReferencePoint)

	default:
		mode = "input_order"
		out = FilterEvents(records, spec)
	}

	out = Truncate(out, opts.Limit)
	c.metrics.observe(mode, len(out), time.Since(start))
	return out
}

// RunGroups executes one discovery query over a group snapshot. Groups
// support search, proximity, and input-order modes.
func (c *Coordinator) RunGroups(records []record.Group, spec Spec, opts Options) []record.Group {
	start := time.Now()

	var out []record.Group
	var mode string

	switch {
	case strings.TrimSpace(spec.SearchText) != "":
		mode = "group_search"
		filtered := FilterGroups(records, Spec{
			Category:        spec.Category,
			Radius:          spec.Radius,
			MinParticipants: spec.MinParticipants,
		})
		out = RankByRelevance(filtered, spec.SearchText)

	case opts.SortByProximity && opts.ReferencePoint != nil:
		mode = "group_proximity"
		out = FilterGroups(records, spec)
		out = RankByDistance(out, *opts.ReferencePoint)

	default:
		mode = "group_input_order"
		out = FilterGroups(records, spec)
	}

	out = Truncate(out, opts.Limit)
	c.metrics.observe(mode, len(out), time.Since(start))
	return out
}

// TopViewed returns the n most-viewed active records, bypassing every
// user filter. This drives the default landing view when no search or
// filter is active. n defaults to DefaultTopViewedCount when not
// positive.
func (c *Coordinator) TopViewed(records []record.Event, n int) []record.Event {
	if n <= 0 {
		n = DefaultTopViewedCount
	}

	out := keepEvents(records, func(e record.Event) bool {
		return e.IsActive()
	})

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].ViewCount > out[b].ViewCount
	})

	return Truncate(out, n)
}

// rankRecommended orders events by the calibrated composite of recency,
// proximity, and popularity. Without a reference point, or for records
// without coordinates, the proximity component takes a neutral 0.5.
func (c *Coordinator) rankRecommended(records []record.Event, from *geo.Coordinate) []record.Event {
	now := time.Now()

	maxViews := 0
	for _, e := range records {
		if e.ViewCount > maxViews {
			maxViews = e.ViewCount
		}
	}

	scores := make([]float64, len(records))
	for i, e := range records {
		proximity := 0.5
		if from != nil && e.Coordinates != nil {
			proximity = ranking.ProximityWeight(geo.Distance(*e.Coordinates, *from))
		}

		scores[i] = ranking.CompositeEvent(ranking.EventParams{
			Recency:    ranking.RecencyWeight(e.StartDate, now, recommendedWindow),
			Proximity:  proximity,
			Popularity: ranking.PopularityWeight(e.ViewCount, maxViews),
		}, c.weights)
	}

	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	out := make([]record.Event, len(records))
	for i, j := range idx {
		out[i] = records[j]
	}
	return out
}

// Truncate cuts an ordered list to at most limit entries. A limit of
// zero or below means unbounded.
func Truncate[R any](records []R, limit int) []R {
	if limit <= 0 || limit >= len(records) {
		return records
	}
	return records[:limit]
}
