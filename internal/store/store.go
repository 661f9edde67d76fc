// Package store provides the record sources that feed discovery:
// an in-memory source for tests and development, a Postgres-backed
// document source, and a Redis snapshot cache so the UI can re-filter
// without re-fetching.
package store

import (
	"context"

	"github.com/zabloncharles/eventportal/internal/record"
)

// Source supplies flat record snapshots on demand. Implementations
// return fresh slices the caller may hold across queries; the discovery
// engine treats them as immutable.
type Source interface {
	// Events returns the current event snapshot.
	Events(ctx context.Context) ([]record.Event, error)

	// Groups returns the current group snapshot.
	Groups(ctx context.Context) ([]record.Group, error)
}

// MemorySource is an in-memory Source used for testing and development.
type MemorySource struct {
	events []record.Event
	groups []record.Group
}

// NewMemorySource creates a MemorySource over copies of the given
// slices, so later caller mutations cannot leak into snapshots.
func NewMemorySource(events []record.Event, groups []record.Group) *MemorySource {
	s := &MemorySource{
		events: make([]record.Event, len(events)),
		groups: make([]record.Group, len(groups)),
	}
	copy(s.events, events)
	copy(s.groups, groups)
	return s
}

// NewMemorySourceFromDocuments decodes raw store documents into records,
// skipping any document without an id. Malformed optional fields
// default per the record decoder.
func NewMemorySourceFromDocuments(eventDocs, groupDocs []map[string]any) *MemorySource {
	events := make([]record.Event, 0, len(eventDocs))
	for _, doc := range eventDocs {
		if e, ok := record.DecodeEvent(doc); ok {
			events = append(events, e)
		}
	}

	groups := make([]record.Group, 0, len(groupDocs))
	for _, doc := range groupDocs {
		if g, ok := record.DecodeGroup(doc); ok {
			groups = append(groups, g)
		}
	}

	return NewMemorySource(events, groups)
}

// Events returns a copy of the event snapshot.
func (s *MemorySource) Events(ctx context.Context) ([]record.Event, error) {
	out := make([]record.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Groups returns a copy of the group snapshot.
func (s *MemorySource) Groups(ctx context.Context) ([]record.Group, error) {
	out := make([]record.Group, len(s.groups))
	copy(out, s.groups)
	return out, nil
}
