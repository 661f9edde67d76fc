package discovery

import (
	"math"
	"sort"
	"strings"

	"github.com/zabloncharles/eventportal/internal/geo"
)

// Record is the discovery-facing view of an event or group: an optional
// coordinate for geospatial operations and the fields scanned by text
// search. Both record.Event and record.Group satisfy it.
type Record interface {
	Point() *geo.Coordinate
	SearchFields() []string
}

// RankByDistance orders records ascending by great-circle distance from
// the reference point. Records without usable coordinates sort last,
// keeping their relative input order among themselves; the sort is
// stable throughout so equal distances never reorder.
func RankByDistance[R Record](records []R, from geo.Coordinate) []R {
	out := make([]R, len(records))
	copy(out, records)

	dist := make([]float64, len(out))
	for i, r := range out {
		if p := r.Point(); p != nil {
			dist[i] = geo.Distance(*p, from)
		} else {
			dist[i] = math.Inf(1)
		}
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return dist[idx[a]] < dist[idx[b]]
	})

	ranked := make([]R, len(out))
	for i, j := range idx {
		ranked[i] = out[j]
	}
	return ranked
}

// NearestN returns the n records closest to the reference point.
// n is clamped to [0, len(records)].
func NearestN[R Record](records []R, from geo.Coordinate, n int) []R {
	if n < 0 {
		n = 0
	}
	if n > len(records) {
		n = len(records)
	}
	return RankByDistance(records, from)[:n]
}

// WithinRadius returns the records whose coordinates lie within the
// given great-circle radius of the reference point, preserving input
// order. Records without coordinates are excluded.
func WithinRadius[R Record](records []R, from geo.Coordinate, radiusMiles float64) []R {
	maxMeters := geo.MilesToMeters(radiusMiles)

	out := make([]R, 0, len(records))
	for _, r := range records {
		p := r.Point()
		if p == nil {
			continue
		}
		if geo.Distance(*p, from) <= maxMeters {
			out = append(out, r)
		}
	}
	return out
}

// VisibleInRegion returns the records whose coordinates fall inside the
// map viewport, preserving input order. This is bounding-box
// containment, not a radius check; the two predicates look similar but
// a viewport is a rectangle and must be filtered as one.
func VisibleInRegion[R Record](records []R, region geo.Region) []R {
	out := make([]R, 0, len(records))
	for _, r := range records {
		p := r.Point()
		if p == nil {
			continue
		}
		if region.Contains(*p) {
			out = append(out, r)
		}
	}
	return out
}

// RankByRelevance orders records descending by free-text relevance
// score and drops records that score zero — zero relevance is an
// exclusion, not merely a low sort key. Ties keep their relative input
// order. An empty query returns an unmodified copy: every record
// passes and relevance imposes no order.
func RankByRelevance[R Record](records []R, query string) []R {
	if strings.TrimSpace(query) == "" {
		out := make([]R, len(records))
		copy(out, records)
		return out
	}

	type scored struct {
		rec   R
		score int
	}

	matched := make([]scored, 0, len(records))
	for _, r := range records {
		if s := Score(r.SearchFields(), query); s > 0 {
			matched = append(matched, scored{rec: r, score: s})
		}
	}

	sort.SliceStable(matched, func(a, b int) bool {
		return matched[a].score > matched[b].score
	})

	out := make([]R, len(matched))
	for i, m := range matched {
		out[i] = m.rec
	}
	return out
}
