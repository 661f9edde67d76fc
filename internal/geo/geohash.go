package geo

import "strings"

// DefaultGeohashPrecision is the geohash length used for coarse display.
// Six characters is roughly ±0.61 km, enough to place a marker in the
// right neighborhood without exposing an exact venue.
const DefaultGeohashPrecision = 6

// geohashAlphabet is the standard geohash base32 alphabet
// (digits plus lowercase letters excluding a, i, l, o).
const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// EncodeGeohash encodes a coordinate into a geohash of the given length.
// A precision below 1 falls back to DefaultGeohashPrecision.
func EncodeGeohash(c Coordinate, precision int) string {
	if precision < 1 {
		precision = DefaultGeohashPrecision
	}

	latLo, latHi := -90.0, 90.0
	lngLo, lngHi := -180.0, 180.0

	var out strings.Builder
	out.Grow(precision)

	bit := 0
	var cell uint
	useLng := true

	for out.Len() < precision {
		if useLng {
			mid := (lngLo + lngHi) / 2
			if c.Lng >= mid {
				cell |= 1 << (4 - bit)
				lngLo = mid
			} else {
				lngHi = mid
			}
		} else {
			mid := (latLo + latHi) / 2
			if c.Lat >= mid {
				cell |= 1 << (4 - bit)
				latLo = mid
			} else {
				latHi = mid
			}
		}

		useLng = !useLng
		bit++
		if bit == 5 {
			out.WriteByte(geohashAlphabet[cell])
			bit = 0
			cell = 0
		}
	}

	return out.String()
}
