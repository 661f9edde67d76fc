// Package api provides HTTP handlers for the discovery API.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zabloncharles/eventportal/internal/discovery"
	"github.com/zabloncharles/eventportal/internal/geo"
	"github.com/zabloncharles/eventportal/internal/middleware"
	"github.com/zabloncharles/eventportal/internal/record"
	"github.com/zabloncharles/eventportal/internal/store"
)

// Limits for query parameters.
const (
	MaxBboxAreaDegrees   = 10.0 // Max bbox area in square degrees
	MaxDiscoverLimit     = 50   // Max results per request
	DefaultDiscoverLimit = 20   // Default results if not specified
)

// DiscoveryHandlers holds dependencies for discovery HTTP handlers.
type DiscoveryHandlers struct {
	source      store.Source
	coordinator *discovery.Coordinator
}

// NewDiscoveryHandlers creates a new DiscoveryHandlers instance.
func NewDiscoveryHandlers(source store.Source, coordinator *discovery.Coordinator) *DiscoveryHandlers {
	return &DiscoveryHandlers{
		source:      source,
		coordinator: coordinator,
	}
}

// EventResult is the wire form of one event in a discovery response.
type EventResult struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Category         string          `json:"category,omitempty"`
	Location         string          `json:"location,omitempty"`
	Coordinates      *geo.Coordinate `json:"coordinates,omitempty"`
	Price            string          `json:"price,omitempty"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	IsTimedEvent     bool            `json:"is_timed_event"`
	ParticipantCount int             `json:"participant_count"`
	MaxParticipants  int             `json:"max_participants,omitempty"`
	ViewCount        int             `json:"view_count"`
}

// GroupResult is the wire form of one group in a discovery response.
type GroupResult struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	ShortDescription string          `json:"short_description,omitempty"`
	Category         string          `json:"category,omitempty"`
	MemberCount      int             `json:"member_count"`
	Coordinates      *geo.Coordinate `json:"coordinates,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
}

// MapResult is the wire form of one map marker.
type MapResult struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Coordinates   geo.Coordinate `json:"coordinates"`
	CoarseGeohash string         `json:"coarse_geohash"`
}

// EventsResponse represents the response for event discovery.
type EventsResponse struct {
	Results []EventResult `json:"results"`
	Count   int           `json:"count"`
}

// GroupsResponse represents the response for group discovery.
type GroupsResponse struct {
	Results []GroupResult `json:"results"`
	Count   int           `json:"count"`
}

// MapResponse represents the response for map marker queries.
type MapResponse struct {
	Results []MapResult `json:"results"`
	Count   int         `json:"count"`
}

// DiscoverEvents handles GET /discover/events.
//
// Query parameters: category, location, lat, lng, radius_miles,
// price_min, price_max, date_from, date_to (RFC 3339), timed_only,
// min_participants, q, sort ("proximity" or "recommended"), limit.
func (h *DiscoveryHandlers) DiscoverEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r)
		return
	}

	spec, opts, ok := parseDiscoverQuery(w, r)
	if !ok {
		return
	}

	events, err := h.source.Events(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load event snapshot", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load events")
		return
	}

	results := h.coordinator.Run(events, spec, opts)

	out := make([]EventResult, 0, len(results))
	for _, e := range results {
		out = append(out, toEventResult(e))
	}

	writeJSON(w, r, EventsResponse{Results: out, Count: len(out)})
}

// DiscoverGroups handles GET /discover/groups.
//
// Query parameters: category, lat, lng, radius_miles, min_participants,
// q, sort ("proximity"), limit.
func (h *DiscoveryHandlers) DiscoverGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r)
		return
	}

	spec, opts, ok := parseDiscoverQuery(w, r)
	if !ok {
		return
	}

	groups, err := h.source.Groups(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load group snapshot", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load groups")
		return
	}

	results := h.coordinator.RunGroups(groups, spec, opts)

	out := make([]GroupResult, 0, len(results))
	for _, g := range results {
		out = append(out, toGroupResult(g))
	}

	writeJSON(w, r, GroupsResponse{Results: out, Count: len(out)})
}

// FeaturedEvents handles GET /discover/featured - the most-viewed active
// events shown on the landing view before any filter is applied.
func (h *DiscoveryHandlers) FeaturedEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r)
		return
	}

	n := 0
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		parsed, err := strconv.Atoi(nStr)
		if err != nil || parsed < 1 {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "n must be a positive integer")
			return
		}
		n = parsed
		if n > MaxDiscoverLimit {
			n = MaxDiscoverLimit
		}
	}

	events, err := h.source.Events(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load event snapshot", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load events")
		return
	}

	results := h.coordinator.TopViewed(events, n)

	out := make([]EventResult, 0, len(results))
	for _, e := range results {
		out = append(out, toEventResult(e))
	}

	writeJSON(w, r, EventsResponse{Results: out, Count: len(out)})
}

// MapVisible handles GET /map/visible - returns markers for active events
// inside the map viewport.
//
// The bbox parameter is required, in the format minLng,minLat,maxLng,maxLat.
func (h *DiscoveryHandlers) MapVisible(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r)
		return
	}

	region, ok := parseBbox(w, r)
	if !ok {
		return
	}

	events, err := h.source.Events(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load event snapshot", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load events")
		return
	}

	active := make([]record.Event, 0, len(events))
	for _, e := range events {
		if e.IsActive() {
			active = append(active, e)
		}
	}

	visible := discovery.VisibleInRegion(active, region)

	out := make([]MapResult, 0, len(visible))
	for _, e := range visible {
		out = append(out, MapResult{
			ID:            e.ID,
			Name:          e.Name,
			Coordinates:   *e.Coordinates,
			CoarseGeohash: geo.EncodeGeohash(*e.Coordinates, geo.DefaultGeohashPrecision),
		})
	}

	writeJSON(w, r, MapResponse{Results: out, Count: len(out)})
}

// parseDiscoverQuery parses the shared discovery query parameters. On a
// validation failure it writes the error response and returns ok=false.
func parseDiscoverQuery(w http.ResponseWriter, r *http.Request) (discovery.Spec, discovery.Options, bool) {
	query := r.URL.Query()

	var spec discovery.Spec
	var opts discovery.Options

	spec.Category = strings.TrimSpace(query.Get("category"))
	spec.Location = strings.TrimSpace(query.Get("location"))
	spec.SearchText = query.Get("q")

	// lat/lng give the user reference point. Combined with radius_miles
	// they also define the radius filter.
	var ref *geo.Coordinate
	latStr, lngStr := query.Get("lat"), query.Get("lng")
	if latStr != "" || lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			writeValidation(w, r, "lat and lng must both be valid numbers")
			return spec, opts, false
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			writeValidation(w, r, "lat must be in [-90, 90] and lng in [-180, 180]")
			return spec, opts, false
		}
		ref = &geo.Coordinate{Lat: lat, Lng: lng}
	}
	opts.ReferencePoint = ref

	if radiusStr := query.Get("radius_miles"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			writeValidation(w, r, "radius_miles must be a positive number")
			return spec, opts, false
		}
		if ref == nil {
			writeValidation(w, r, "radius_miles requires lat and lng")
			return spec, opts, false
		}
		spec.Radius = &discovery.RadiusFilter{Center: *ref, Miles: radius}
	}

	minStr, maxStr := query.Get("price_min"), query.Get("price_max")
	if minStr != "" || maxStr != "" {
		pr := discovery.PriceRange{Min: 0, Max: math.MaxFloat64}
		if minStr != "" {
			min, err := strconv.ParseFloat(minStr, 64)
			if err != nil || min < 0 {
				writeValidation(w, r, "price_min must be a non-negative number")
				return spec, opts, false
			}
			pr.Min = min
		}
		if maxStr != "" {
			max, err := strconv.ParseFloat(maxStr, 64)
			if err != nil || max < 0 {
				writeValidation(w, r, "price_max must be a non-negative number")
				return spec, opts, false
			}
			pr.Max = max
		}
		spec.PriceRange = &pr
	}

	fromStr, toStr := query.Get("date_from"), query.Get("date_to")
	if fromStr != "" || toStr != "" {
		if fromStr == "" || toStr == "" {
			writeValidation(w, r, "date_from and date_to must be provided together")
			return spec, opts, false
		}
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			writeValidation(w, r, "date_from must be an RFC 3339 timestamp")
			return spec, opts, false
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			writeValidation(w, r, "date_to must be an RFC 3339 timestamp")
			return spec, opts, false
		}
		spec.DateRange = &discovery.DateRange{Start: from, End: to}
	}

	if timedStr := query.Get("timed_only"); timedStr != "" {
		switch strings.ToLower(timedStr) {
		case "true", "1":
			spec.TimedOnly = true
		case "false", "0":
			spec.TimedOnly = false
		default:
			writeValidation(w, r, "timed_only must be true or false")
			return spec, opts, false
		}
	}

	if mpStr := query.Get("min_participants"); mpStr != "" {
		mp, err := strconv.Atoi(mpStr)
		if err != nil || mp < 0 {
			writeValidation(w, r, "min_participants must be a non-negative integer")
			return spec, opts, false
		}
		spec.MinParticipants = mp
	}

	switch sort := query.Get("sort"); sort {
	case "", "default":
	case "proximity":
		opts.SortByProximity = true
	case "recommended":
		opts.Recommended = true
	default:
		writeValidation(w, r, "sort must be one of: proximity, recommended, default")
		return spec, opts, false
	}

	opts.Limit = DefaultDiscoverLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			writeValidation(w, r, "limit must be a positive integer")
			return spec, opts, false
		}
		if limit > MaxDiscoverLimit {
			limit = MaxDiscoverLimit
		}
		opts.Limit = limit
	}

	return spec, opts, true
}

// parseBbox parses and validates the bbox query parameter. On a
// validation failure it writes the error response and returns ok=false.
func parseBbox(w http.ResponseWriter, r *http.Request) (geo.Region, bool) {
	bboxStr := r.URL.Query().Get("bbox")
	if bboxStr == "" {
		writeValidation(w, r, "bbox is required, in format: minLng,minLat,maxLng,maxLat")
		return geo.Region{}, false
	}

	parts := strings.Split(bboxStr, ",")
	if len(parts) != 4 {
		writeValidation(w, r, "bbox must be in format: minLng,minLat,maxLng,maxLat")
		return geo.Region{}, false
	}

	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			writeValidation(w, r, "bbox values must be valid numbers")
			return geo.Region{}, false
		}
		vals[i] = v
	}
	minLng, minLat, maxLng, maxLat := vals[0], vals[1], vals[2], vals[3]

	if minLng < -180 || minLng > 180 || maxLng < -180 || maxLng > 180 {
		writeValidation(w, r, "Longitude must be between -180 and 180")
		return geo.Region{}, false
	}
	if minLat < -90 || minLat > 90 || maxLat < -90 || maxLat > 90 {
		writeValidation(w, r, "Latitude must be between -90 and 90")
		return geo.Region{}, false
	}
	if minLng >= maxLng {
		writeValidation(w, r, "minLng must be less than maxLng")
		return geo.Region{}, false
	}
	if minLat >= maxLat {
		writeValidation(w, r, "minLat must be less than maxLat")
		return geo.Region{}, false
	}

	// Reject wide scans
	area := (maxLng - minLng) * (maxLat - minLat)
	if area > MaxBboxAreaDegrees {
		writeValidation(w, r, fmt.Sprintf("bbox area too large (max %.1f square degrees)", MaxBboxAreaDegrees))
		return geo.Region{}, false
	}

	return geo.RegionFromBounds(minLat, minLng, maxLat, maxLng), true
}

func toEventResult(e record.Event) EventResult {
	out := EventResult{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		Category:         e.Category,
		Location:         e.Location,
		Coordinates:      e.Coordinates,
		Price:            e.Price,
		IsTimedEvent:     e.IsTimedEvent,
		ParticipantCount: e.ParticipantCount,
		MaxParticipants:  e.MaxParticipants,
		ViewCount:        e.ViewCount,
	}
	if !e.StartDate.IsZero() {
		start := e.StartDate
		out.StartDate = &start
	}
	if !e.EndDate.IsZero() {
		end := e.EndDate
		out.EndDate = &end
	}
	return out
}

func toGroupResult(g record.Group) GroupResult {
	return GroupResult{
		ID:               g.ID,
		Name:             g.Name,
		Description:      g.Description,
		ShortDescription: g.ShortDescription,
		Category:         g.Category,
		MemberCount:      g.MemberCount,
		Coordinates:      g.Coordinates,
		Tags:             g.Tags,
	}
}

func writeValidation(w http.ResponseWriter, r *http.Request, message string) {
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
	WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, message)
}

func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeMethodNotAllowed)
	WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
