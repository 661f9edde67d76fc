package discovery

import (
	"time"

	"github.com/zabloncharles/eventportal/internal/geo"
)

// CategoryAll is the sentinel category meaning "no category constraint".
const CategoryAll = "All"

// LocationAll is the sentinel location meaning "no location constraint".
const LocationAll = "All"

// PriceRange is a closed numeric interval on the parsed record price.
// An inverted range (Min > Max) is not an error; it simply matches
// nothing.
type PriceRange struct {
	Min float64
	Max float64
}

// DateRange is a closed interval matched by overlap: a record matches
// when its [StartDate, EndDate] interval intersects [Start, End].
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RadiusFilter selects records within a great-circle radius of a center
// point. When present on a Spec it supersedes exact-match location
// filtering.
type RadiusFilter struct {
	Center geo.Coordinate
	Miles  float64
}

// Spec is the immutable bundle of user-chosen constraints for one
// discovery query. The caller builds a fresh Spec per interaction and
// discards it after the query runs; the engine keeps no reference to it.
//
// The zero Spec matches every active record.
type Spec struct {
	// Category constrains by exact, case-sensitive string equality.
	// "All" or empty means unconstrained. Exact matching mirrors the
	// category chips in the client, which emit canonical strings.
	Category string

	// Location constrains by exact string match on the human-readable
	// location. "All" or empty means unconstrained. Ignored when Radius
	// is set.
	Location string

	// Radius enables geospatial radius filtering. Records without
	// usable coordinates are excluded while a radius is active.
	Radius *RadiusFilter

	// PriceRange constrains the parsed price. Nil means unconstrained.
	PriceRange *PriceRange

	// DateRange constrains by interval overlap. Nil means unconstrained.
	DateRange *DateRange

	// TimedOnly excludes ongoing (non-scheduled) records when true.
	TimedOnly bool

	// MinParticipants is a floor on the participant (or member) count.
	MinParticipants int

	// SearchText is the free-text query. Empty means no text constraint.
	SearchText string
}
