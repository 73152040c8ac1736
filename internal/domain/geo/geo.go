// Package geo holds coordinates and great-circle distance math used by offer search.
package geo

import "math"

// kmPerDegree converts an arc in degrees to kilometers: 60 nautical miles per
// degree, 1.1515 statute miles per nautical mile, 1.609344 km per statute mile.
const kmPerDegree = 60 * 1.1515 * 1.609344

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within latitude/longitude bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DistanceKm returns the spherical law of cosines distance between two points.
// Identical points yield 0 instead of the NaN that acos would produce on
// rounding noise.
func DistanceKm(p1, p2 Coordinate) float64 {
	if p1 == p2 {
		return 0
	}
	radLat1 := math.Pi * p1.Lat / 180
	radLat2 := math.Pi * p2.Lat / 180
	radTheta := math.Pi * (p1.Lon - p2.Lon) / 180

	cosine := math.Sin(radLat1)*math.Sin(radLat2) + math.Cos(radLat1)*math.Cos(radLat2)*math.Cos(radTheta)
	if cosine > 1 {
		cosine = 1
	} else if cosine < -1 {
		cosine = -1
	}
	dist := math.Acos(cosine)
	dist = dist * 180 / math.Pi
	return dist * kmPerDegree
}
