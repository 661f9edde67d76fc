// Package ranking provides the calibrated scoring components behind the
// "recommended" discovery ordering: proximity decay, date recency, and
// view-count popularity, combined under configurable weights.
package ranking

import (
	"math"
	"time"
)

// ProximityWeight converts a distance in meters to a score in [0, 1]
// using hyperbolic decay: 1.0 at the reference point, 0.5 at 1 km, and
// approaching 0 as distance grows. Negative distances clamp to zero.
func ProximityWeight(distanceMeters float64) float64 {
	if distanceMeters < 0 {
		distanceMeters = 0
	}
	return 1.0 / (1.0 + distanceMeters/1000.0)
}

// RecencyWeight scores how soon an event starts relative to now, over a
// lookahead window. Events already started (or starting now) score 1.0;
// events at or beyond the window edge score 0.0; in between the score
// falls linearly. A non-positive window treats every event as equally
// recent.
func RecencyWeight(start, now time.Time, window time.Duration) float64 {
	if window <= 0 {
		return 1.0
	}

	until := start.Sub(now)
	if until <= 0 {
		return 1.0
	}

	w := 1.0 - float64(until)/float64(window)
	return clamp01(w)
}

// PopularityWeight normalizes a view count against the highest count in
// the snapshot. With no views anywhere, every record scores zero.
func PopularityWeight(views, maxViews int) float64 {
	if maxViews <= 0 || views <= 0 {
		return 0
	}
	return clamp01(float64(views) / float64(maxViews))
}

// EventParams holds the component scores for one event.
type EventParams struct {
	Recency    float64
	Proximity  float64
	Popularity float64
}

// CompositeEvent combines the component scores under the given weights.
// Nil weights fall back to defaults. With default weights the maximum
// composite score is 1.0.
func CompositeEvent(p EventParams, w *Weights) float64 {
	if w == nil {
		w = DefaultWeights()
	}

	return p.Recency*w.Event.Recency +
		p.Proximity*w.Event.Proximity +
		p.Popularity*w.Event.Popularity
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
