// Package geo handles coordinate conversions, projection math and GeoJSON geometry decoding.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// Geometry types understood by ParseGeometry.
const (
	TypePolygon      = "Polygon"
	TypeMultiPolygon = "MultiPolygon"
)

// MinRingSize is the smallest valid closed ring: three corners plus the closing point.
const MinRingSize = 4

var (
	// ErrUnsupportedGeometry is returned for any geometry type other than Polygon and MultiPolygon.
	ErrUnsupportedGeometry = errors.New("unsupported geometry type")

	// ErrMalformedGeometry is returned when coordinates do not form valid polygons.
	ErrMalformedGeometry = errors.New("malformed geometry")
)

// rawGeometry is the wire form of a GeoJSON geometry before its coordinates are typed.
type rawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseGeometry decodes a GeoJSON geometry object into orb.Polygon or orb.MultiPolygon.
// Every coordinate is coerced to a (lon, lat) float pair; extra dimensions are dropped.
//
// Only outer rings are required to be valid. Malformed holes and malformed members of a
// MultiPolygon are left out and reported in dropped; the geometry fails only when no
// usable outer ring remains.
func ParseGeometry(data []byte) (g orb.Geometry, dropped int, err error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, 0, fmt.Errorf("%w: missing geometry", ErrMalformedGeometry)
	}

	var raw rawGeometry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedGeometry, err)
	}

	switch raw.Type {
	case TypePolygon:
		var coords []json.RawMessage
		if err := json.Unmarshal(raw.Coordinates, &coords); err != nil {
			return nil, 0, fmt.Errorf("%w: polygon coordinates: %v", ErrMalformedGeometry, err)
		}
		return toPolygon(coords)

	case TypeMultiPolygon:
		var coords []json.RawMessage
		if err := json.Unmarshal(raw.Coordinates, &coords); err != nil {
			return nil, 0, fmt.Errorf("%w: multipolygon coordinates: %v", ErrMalformedGeometry, err)
		}

		mp := make(orb.MultiPolygon, 0, len(coords))
		for _, polyCoords := range coords {
			var rings []json.RawMessage
			if err := json.Unmarshal(polyCoords, &rings); err != nil {
				dropped++
				continue
			}

			poly, n, err := toPolygon(rings)
			if err != nil {
				dropped++
				continue
			}
			dropped += n
			mp = append(mp, poly)
		}

		if len(mp) == 0 {
			return nil, dropped, fmt.Errorf("%w: multipolygon without usable polygons", ErrMalformedGeometry)
		}
		return mp, dropped, nil

	case "":
		return nil, 0, fmt.Errorf("%w: missing type", ErrMalformedGeometry)
	}

	return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedGeometry, raw.Type)
}

// toPolygon requires a valid outer ring and keeps only the holes that decode.
func toPolygon(coords []json.RawMessage) (orb.Polygon, int, error) {
	if len(coords) == 0 {
		return nil, 0, fmt.Errorf("%w: polygon without rings", ErrMalformedGeometry)
	}

	outer, err := toRing(coords[0])
	if err != nil {
		return nil, 0, fmt.Errorf("outer ring: %w", err)
	}

	dropped := 0
	poly := make(orb.Polygon, 1, len(coords))
	poly[0] = outer
	for _, holeCoords := range coords[1:] {
		hole, err := toRing(holeCoords)
		if err != nil {
			dropped++
			continue
		}
		poly = append(poly, hole)
	}

	return poly, dropped, nil
}

func toRing(data json.RawMessage) (orb.Ring, error) {
	var coords [][]float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return nil, fmt.Errorf("%w: ring coordinates: %v", ErrMalformedGeometry, err)
	}
	if len(coords) < MinRingSize {
		return nil, fmt.Errorf("%w: ring has %d points, need at least %d", ErrMalformedGeometry, len(coords), MinRingSize)
	}

	ring := make(orb.Ring, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			return nil, fmt.Errorf("%w: position with %d values", ErrMalformedGeometry, len(c))
		}
		ring = append(ring, orb.Point{c[0], c[1]})
	}

	return ring, nil
}
