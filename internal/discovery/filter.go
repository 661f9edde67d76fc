package discovery

import (
	"strconv"
	"strings"
	"time"

	"github.com/zabloncharles/eventportal/internal/geo"
	"github.com/zabloncharles/eventportal/internal/record"
)

// FilterEvents applies every stage of the spec to the snapshot and
// returns the surviving records in their original relative order. The
// input slice is never mutated.
//
// Stages run as progressive narrowing in a fixed order: status gate,
// category, location, price, date overlap, timed-only, minimum
// participants, free text. All stages are conjunctive, so the result is
// order-independent; the fixed order exists for clarity and early
// narrowing. A stage whose constraint is absent from the spec is
// skipped entirely.
//
// FilterEvents never fails. A record whose price does not parse or
// whose coordinates are missing under radius mode is excluded on its
// own; the rest of the snapshot is unaffected.
func FilterEvents(records []record.Event, spec Spec) []record.Event {
	return filterEvents(records, spec, true)
}

// filterEvents is the stage pipeline. The coordinator disables the text
// stage when relevance ranking will apply the same exclusion itself.
func filterEvents(records []record.Event, spec Spec, includeText bool) []record.Event {
	// Status gate runs unconditionally, before any user constraint.
	out := keepEvents(records, func(e record.Event) bool {
		return e.IsActive()
	})

	if constrained(spec.Category) {
		out = keepEvents(out, func(e record.Event) bool {
			// Exact, case-sensitive equality: category chips emit
			// canonical strings, so "concert" does not match "Concert".
			return e.Category == spec.Category
		})
	}

	if spec.Radius != nil {
		maxMeters := geo.MilesToMeters(spec.Radius.Miles)
		out = keepEvents(out, func(e record.Event) bool {
			if e.Coordinates == nil {
				return false
			}
			return geo.Distance(*e.Coordinates, spec.Radius.Center) <= maxMeters
		})
	} else if constrained(spec.Location) {
		out = keepEvents(out, func(e record.Event) bool {
			return e.Location == spec.Location
		})
	}

	if spec.PriceRange != nil {
		out = keepEvents(out, func(e record.Event) bool {
			price, ok := ParsePrice(e.Price)
			return ok && price >= spec.PriceRange.Min && price <= spec.PriceRange.Max
		})
	}

	if spec.DateRange != nil {
		out = keepEvents(out, func(e record.Event) bool {
			return overlaps(e.StartDate, e.EndDate, *spec.DateRange)
		})
	}

	if spec.TimedOnly {
		out = keepEvents(out, func(e record.Event) bool {
			return e.IsTimedEvent
		})
	}

	if spec.MinParticipants > 0 {
		out = keepEvents(out, func(e record.Event) bool {
			return e.ParticipantCount >= spec.MinParticipants
		})
	}

	if includeText && strings.TrimSpace(spec.SearchText) != "" {
		out = keepEvents(out, func(e record.Event) bool {
			return Score(e.SearchFields(), spec.SearchText) > 0
		})
	}

	return out
}

// FilterGroups applies the group-applicable stages of the spec: the
// privacy gate, category, radius, minimum members, and free text.
// Groups carry no price, dates, or timed flag, so those stages do not
// apply. Same ordering and non-mutation guarantees as FilterEvents.
func FilterGroups(records []record.Group, spec Spec) []record.Group {
	// Private groups are never discoverable, mirroring the event
	// status gate.
	out := keepGroups(records, func(g record.Group) bool {
		return !g.IsPrivate
	})

	if constrained(spec.Category) {
		out = keepGroups(out, func(g record.Group) bool {
			return g.Category == spec.Category
		})
	}

	if spec.Radius != nil {
		maxMeters := geo.MilesToMeters(spec.Radius.Miles)
		out = keepGroups(out, func(g record.Group) bool {
			if g.Coordinates == nil {
				return false
			}
			return geo.Distance(*g.Coordinates, spec.Radius.Center) <= maxMeters
		})
	}

	if spec.MinParticipants > 0 {
		out = keepGroups(out, func(g record.Group) bool {
			return g.MemberCount >= spec.MinParticipants
		})
	}

	if strings.TrimSpace(spec.SearchText) != "" {
		out = keepGroups(out, func(g record.Group) bool {
			return Score(g.SearchFields(), spec.SearchText) > 0
		})
	}

	return out
}

// ParsePrice converts a raw price string to a numeric value. The
// literal "free" (any casing) is price zero. Returns ok == false for
// anything that is neither "free" nor a plain number; the caller
// excludes such records rather than erroring.
func ParsePrice(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, record.PriceFree) {
		return 0, true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// overlaps reports whether [start, end] intersects the filter range.
// A record whose end precedes its start is treated as a zero-duration
// event at its start.
func overlaps(start, end time.Time, dr DateRange) bool {
	if end.Before(start) {
		end = start
	}
	return !start.After(dr.End) && !end.Before(dr.Start)
}

// constrained reports whether a string constraint is actually set,
// treating both the empty string and the "All" sentinel as absent.
func constrained(value string) bool {
	return value != "" && value != CategoryAll
}

func keepEvents(in []record.Event, pred func(record.Event) bool) []record.Event {
	out := make([]record.Event, 0, len(in))
	for _, e := range in {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

func keepGroups(in []record.Group, pred func(record.Group) bool) []record.Group {
	out := make([]record.Group, 0, len(in))
	for _, g := range in {
		if pred(g) {
			out = append(out, g)
		}
	}
	return out
}
