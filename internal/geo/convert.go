package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// EarthRadius is the spherical Earth radius in meters (WGS84 semi-major axis).
	EarthRadius = 6378137.0

	// MetersPerDegree is the length of one degree of latitude.
	MetersPerDegree = 111320.0

	// MaxLatitude is the latitude clamp used across the system.
	// The web map projection degrades towards the poles, so nothing beyond it is drawn or sold.
	MaxLatitude = 85.0
)

// MetersToLatitudeDegrees converts a north/south distance to degrees of latitude.
func MetersToLatitudeDegrees(meters float64) float64 {
	return meters / MetersPerDegree
}

// LatitudeDegreesToMeters is the inverse of MetersToLatitudeDegrees.
func LatitudeDegreesToMeters(degrees float64) float64 {
	return degrees * MetersPerDegree
}

// MetersToLongitudeDegrees converts an east/west distance to degrees of longitude
// at the given latitude. The latitude is clamped to ±MaxLatitude so the cosine never reaches zero.
func MetersToLongitudeDegrees(meters, atLatitude float64) float64 {
	return meters / (MetersPerDegree * math.Cos(toRadians(clampLatitude(atLatitude))))
}

// LongitudeDegreesToMeters is the inverse of MetersToLongitudeDegrees.
func LongitudeDegreesToMeters(degrees, atLatitude float64) float64 {
	return degrees * MetersPerDegree * math.Cos(toRadians(clampLatitude(atLatitude)))
}

// DistanceInMeters returns the great-circle distance between two points (Haversine).
func DistanceInMeters(p1, p2 orb.Point) float64 {
	φ1 := toRadians(p1.Lat())
	φ2 := toRadians(p2.Lat())
	Δφ := toRadians(p2.Lat() - p1.Lat())
	Δλ := toRadians(p2.Lon() - p1.Lon())

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)

	// atan2 keeps the result defined when rounding pushes a slightly past 1
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(math.Max(0, 1-a)))

	return EarthRadius * c
}

// AddMetersToPosition shifts a point on the local tangent plane.
// Both offsets are converted at the latitude of p, so the order of the two moves does not matter.
func AddMetersToPosition(p orb.Point, metersNorth, metersEast float64) orb.Point {
	return orb.Point{
		p.Lon() + MetersToLongitudeDegrees(metersEast, p.Lat()),
		p.Lat() + MetersToLatitudeDegrees(metersNorth),
	}
}

// RotatePointAroundCenter rotates point around center by angle degrees.
//
// Positive angles rotate counter-clockwise (east towards north), using the
// standard matrix [cosθ -sinθ; sinθ cosθ] in a local meter frame centred on center.
func RotatePointAroundCenter(point, center orb.Point, angle float64) orb.Point {
	dx := LongitudeDegreesToMeters(point.Lon()-center.Lon(), center.Lat())
	dy := LatitudeDegreesToMeters(point.Lat() - center.Lat())

	θ := toRadians(angle)
	sin, cos := math.Sincos(θ)

	rx := dx*cos - dy*sin
	ry := dx*sin + dy*cos

	return orb.Point{
		center.Lon() + MetersToLongitudeDegrees(rx, center.Lat()),
		center.Lat() + MetersToLatitudeDegrees(ry),
	}
}

func clampLatitude(lat float64) float64 {
	if lat > MaxLatitude {
		return MaxLatitude
	}
	if lat < -MaxLatitude {
		return -MaxLatitude
	}
	return lat
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
