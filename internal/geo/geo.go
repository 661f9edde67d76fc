// Package geo provides geolocation primitives for discovery: great-circle
// distance, map viewport containment, and coarse geohash encoding.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle distance.
// A fixed constant keeps distance values reproducible across platforms.
const EarthRadiusMeters = 6371008.8

// MetersPerMile converts statute miles to meters.
const MetersPerMile = 1609.344

// Coordinate is a point on the globe in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance computes the great-circle distance between two coordinates in
// meters using the haversine formula on a spherical Earth.
//
// Inputs are decimal degrees. Out-of-range coordinates are not rejected;
// the formula is defined everywhere and callers own upstream validity.
// Distance is commutative and Distance(a, a) == 0.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(math.Min(1, h)))
}

// MilesToMeters converts a radius in statute miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}

// Region is an axis-aligned map viewport described by its center and the
// full latitude/longitude span, matching how map views report their
// visible area.
type Region struct {
	Center  Coordinate `json:"center"`
	LatSpan float64    `json:"lat_span"`
	LngSpan float64    `json:"lng_span"`
}

// RegionFromBounds builds a Region from bounding-box corners.
func RegionFromBounds(minLat, minLng, maxLat, maxLng float64) Region {
	return Region{
		Center: Coordinate{
			Lat: (minLat + maxLat) / 2,
			Lng: (minLng + maxLng) / 2,
		},
		LatSpan: maxLat - minLat,
		LngSpan: maxLng - minLng,
	}
}

// Contains reports whether the coordinate lies inside the viewport.
// This is a plain bounding-box test (center ± half-span on both axes),
// deliberately distinct from radius filtering: viewport visibility is a
// rectangle, not a circle.
func (r Region) Contains(c Coordinate) bool {
	return math.Abs(c.Lat-r.Center.Lat) <= r.LatSpan/2 &&
		math.Abs(c.Lng-r.Center.Lng) <= r.LngSpan/2
}
