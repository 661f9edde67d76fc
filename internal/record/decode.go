package record

import (
	"strconv"
	"time"

	"github.com/zabloncharles/eventportal/internal/geo"
)

// DecodeEvent converts a raw store document into an Event. The decode
// never fails on malformed optional fields: each one falls back to its
// zero/default and the record stays usable for filtering. The only
// undecodable document is one without a non-empty "id"; those return
// ok == false and should be skipped by the caller.
func DecodeEvent(doc map[string]any) (Event, bool) {
	id := stringField(doc, "id")
	if id == "" {
		return Event{}, false
	}

	e := Event{
		ID:               id,
		Name:             stringField(doc, "name"),
		Description:      stringField(doc, "description"),
		Category:         stringField(doc, "category"),
		Location:         stringField(doc, "location"),
		Coordinates:      coordinateField(doc, "coordinates"),
		Price:            stringField(doc, "price"),
		StartDate:        timeField(doc, "startDate"),
		EndDate:          timeField(doc, "endDate"),
		IsTimedEvent:     boolField(doc, "isTimedEvent"),
		ParticipantCount: intField(doc, "participantCount"),
		MaxParticipants:  intField(doc, "maxParticipants"),
		ViewCount:        viewsField(doc),
		Status:           Status(stringField(doc, "status")),
	}

	return e, true
}

// DecodeGroup converts a raw store document into a Group. Same contract
// as DecodeEvent: only a missing "id" makes the document undecodable.
func DecodeGroup(doc map[string]any) (Group, bool) {
	id := stringField(doc, "id")
	if id == "" {
		return Group{}, false
	}

	g := Group{
		ID:               id,
		Name:             stringField(doc, "name"),
		Description:      stringField(doc, "description"),
		ShortDescription: stringField(doc, "shortDescription"),
		Category:         stringField(doc, "category"),
		MemberCount:      intField(doc, "memberCount"),
		Coordinates:      coordinateField(doc, "coordinates"),
		IsPrivate:        boolField(doc, "isPrivate"),
		Tags:             stringSliceField(doc, "tags"),
		Members:          stringSliceField(doc, "members"),
		Admins:           stringSliceField(doc, "admins"),
		PendingRequests:  stringSliceField(doc, "pendingRequests"),
	}

	return g, true
}

func stringField(doc map[string]any, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

func boolField(doc map[string]any, key string) bool {
	if v, ok := doc[key].(bool); ok {
		return v
	}
	return false
}

// intField reads an integer that may arrive as a JSON number (float64),
// a native int, or a numeric string.
func intField(doc map[string]any, key string) int {
	switch v := doc[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// viewsField reads the view counter. Documents written by older app
// versions store views as a numeric string; a missing field counts as 0.
func viewsField(doc map[string]any) int {
	return intField(doc, "views")
}

// timeField reads a timestamp that may arrive as RFC 3339 text or as
// epoch seconds. Malformed values decode to the zero time.
func timeField(doc map[string]any, key string) time.Time {
	switch v := doc[key].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	case float64:
		return time.Unix(int64(v), 0).UTC()
	case int64:
		return time.Unix(v, 0).UTC()
	}
	return time.Time{}
}

// coordinateField reads a [lat, lng] pair. Anything other than an array
// with at least two numeric elements is treated as "location unknown"
// and decodes to nil rather than an error.
func coordinateField(doc map[string]any, key string) *geo.Coordinate {
	raw, ok := doc[key].([]any)
	if !ok || len(raw) < 2 {
		return nil
	}

	lat, latOK := numeric(raw[0])
	lng, lngOK := numeric(raw[1])
	if !latOK || !lngOK {
		return nil
	}

	return &geo.Coordinate{Lat: lat, Lng: lng}
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func stringSliceField(doc map[string]any, key string) []string {
	raw, ok := doc[key].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
