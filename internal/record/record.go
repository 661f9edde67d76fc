// Package record defines the discovery-facing event and group value types
// and the decoder that converts raw store documents into them.
package record

import (
	"time"

	"github.com/zabloncharles/eventportal/internal/geo"
)

// Status is the lifecycle tag on an event record. Only active records are
// eligible for discovery.
type Status string

// Known lifecycle states.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// PriceFree is the literal price token meaning a free event.
const PriceFree = "free"

// Event is an immutable snapshot of one event document. Discovery never
// mutates an Event; filters copy into fresh slices.
type Event struct {
	ID          string
	Name        string
	Description string

	// Category is free-form. It is matched against the known category
	// list in the UI but unknown values must flow through filtering
	// untouched rather than fail.
	Category string

	// Location is the human-readable "City, Region" string.
	Location string

	// Coordinates is nil when the source document had no usable
	// coordinate pair. Such records are excluded from proximity ranking
	// and radius filtering but still pass every other filter stage.
	Coordinates *geo.Coordinate

	// Price is kept as the raw string from the document ("free", "0",
	// "25", or garbage). Parsing happens at filter time so a bad value
	// excludes one record instead of failing a whole decode pass.
	Price string

	StartDate time.Time
	EndDate   time.Time

	// IsTimedEvent distinguishes scheduled events from ongoing ones.
	IsTimedEvent bool

	ParticipantCount int
	MaxParticipants  int

	ViewCount int

	Status Status
}

// Group is an immutable snapshot of one group document, structurally
// parallel to Event for discovery purposes.
type Group struct {
	ID               string
	Name             string
	Description      string
	ShortDescription string
	Category         string
	MemberCount      int
	Coordinates      *geo.Coordinate
	IsPrivate        bool
	Tags             []string

	// Membership sets belong to the join-request subsystem but are part
	// of the record identity and travel with the snapshot.
	Members         []string
	Admins          []string
	PendingRequests []string
}

// Point returns the record coordinate, nil when the location is unknown.
func (e Event) Point() *geo.Coordinate {
	return e.Coordinates
}

// SearchFields returns the fields matched by free-text search.
func (e Event) SearchFields() []string {
	return []string{e.Name, e.Description, e.Category, e.Location}
}

// Point returns the record coordinate, nil when the location is unknown.
func (g Group) Point() *geo.Coordinate {
	return g.Coordinates
}

// SearchFields returns the fields matched by free-text search.
func (g Group) SearchFields() []string {
	return []string{g.Name, g.Description, g.ShortDescription, g.Category}
}

// IsActive reports whether the event is eligible for discovery.
func (e Event) IsActive() bool {
	return e.Status == StatusActive
}
