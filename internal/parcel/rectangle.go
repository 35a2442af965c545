// Package parcel manipulates land parcels drawn on the map as closed rectangular rings.
//
// A parcel ring holds four corners ordered bottom-left, bottom-right, top-right,
// top-left, followed by a copy of the first corner. Map renderers rely on that order.
package parcel

import (
	"errors"
	"fmt"

	"github.com/woozymasta/worldtile/internal/geo"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

const (
	// SideDegrees is the side of a default parcel, roughly one acre at the equator.
	SideDegrees = 0.000571

	// HalfSideDegrees is the distance from the parcel center to each edge.
	HalfSideDegrees = SideDegrees / 2

	// SquareMetersPerAcre is the international acre.
	SquareMetersPerAcre = 4046.8564224

	corners = 4
)

var (
	// ErrTooFewPositions means a rectangle operation got fewer than four corners.
	ErrTooFewPositions = errors.New("rectangle needs at least 4 positions")

	// ErrCornerIndex means a corner index outside [0,3].
	ErrCornerIndex = errors.New("corner index out of range")
)

// DefaultRectangle builds the axis-aligned default parcel around center.
func DefaultRectangle(center orb.Point) orb.Ring {
	minLon, maxLon := center.Lon()-HalfSideDegrees, center.Lon()+HalfSideDegrees
	minLat, maxLat := center.Lat()-HalfSideDegrees, center.Lat()+HalfSideDegrees

	return orb.Ring{
		{minLon, minLat}, // bottom-left
		{maxLon, minLat}, // bottom-right
		{maxLon, maxLat}, // top-right
		{minLon, maxLat}, // top-left
		{minLon, minLat},
	}
}

// EnsureClosed returns a copy of positions that ends with its first point.
// Calling it on an already closed ring returns an equal ring.
func EnsureClosed(positions []orb.Point) orb.Ring {
	ring := make(orb.Ring, len(positions), len(positions)+1)
	copy(ring, positions)

	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}

	return ring
}

// Center returns the mean of the first four corners.
// A closing point and anything after index 3 are ignored.
func Center(positions []orb.Point) (orb.Point, error) {
	if len(positions) < corners {
		return orb.Point{}, fmt.Errorf("center: %w, got %d", ErrTooFewPositions, len(positions))
	}

	var lon, lat float64
	for _, p := range positions[:corners] {
		lon += p.Lon()
		lat += p.Lat()
	}

	return orb.Point{lon / corners, lat / corners}, nil
}

// Translate shifts every position by the given deltas.
// A closed input stays closed because the closing point moves with the rest.
func Translate(positions []orb.Point, deltaLon, deltaLat float64) orb.Ring {
	ring := make(orb.Ring, len(positions))
	for i, p := range positions {
		ring[i] = orb.Point{p.Lon() + deltaLon, p.Lat() + deltaLat}
	}

	return ring
}

// UpdateCorner replaces corner index and re-closes the ring from the first four corners.
// Any fifth point of the input is discarded, never trusted.
func UpdateCorner(positions []orb.Point, index int, p orb.Point) (orb.Ring, error) {
	if index < 0 || index >= corners {
		return nil, fmt.Errorf("update corner: %w: %d", ErrCornerIndex, index)
	}
	if len(positions) < corners {
		return nil, fmt.Errorf("update corner: %w, got %d", ErrTooFewPositions, len(positions))
	}

	quad := make([]orb.Point, corners)
	copy(quad, positions[:corners])
	quad[index] = p

	return EnsureClosed(quad), nil
}

// Rotate turns the rectangle around its center by angle degrees, counter-clockwise for positive angles.
func Rotate(positions []orb.Point, angle float64) (orb.Ring, error) {
	center, err := Center(positions)
	if err != nil {
		return nil, fmt.Errorf("rotate: %w", err)
	}

	quad := make([]orb.Point, corners)
	for i, p := range positions[:corners] {
		quad[i] = geo.RotatePointAroundCenter(p, center, angle)
	}

	return EnsureClosed(quad), nil
}

// Area returns the geodesic area of a ring in square meters.
func Area(ring orb.Ring) float64 {
	return orbgeo.Area(EnsureClosed(ring))
}

// Acres returns the area of a ring in acres.
func Acres(ring orb.Ring) float64 {
	return Area(ring) / SquareMetersPerAcre
}
