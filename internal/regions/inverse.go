package regions

import (
	"github.com/woozymasta/worldtile/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LockedProperty marks the inverse feature for styling.
const LockedProperty = "locked"

// InverseOptions tune BuildInverse.
type InverseOptions struct {
	// Normalize forces the outer ring counter-clockwise and holes clockwise (RFC 7946 right-hand rule).
	// Without it rings keep the winding they had in the source.
	Normalize bool
}

// ExtractOuterRings returns the outer ring of every polygon in the collection.
// Holes of the open regions are dropped.
func ExtractOuterRings(c *Collection) []orb.Ring {
	var rings []orb.Ring

	for _, f := range c.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) > 0 {
				rings = append(rings, g[0])
			}
		case orb.MultiPolygon:
			for _, poly := range g {
				if len(poly) > 0 {
					rings = append(rings, poly[0])
				}
			}
		}
	}

	return rings
}

// WorldBounds returns the counter-clockwise ring covering every longitude between ±85° latitude.
func WorldBounds() orb.Ring {
	return orb.Ring{
		{-180, -geo.MaxLatitude},
		{180, -geo.MaxLatitude},
		{180, geo.MaxLatitude},
		{-180, geo.MaxLatitude},
		{-180, -geo.MaxLatitude},
	}
}

// InversePolygon returns the locked area: the world bounds with every open region cut out as a hole.
// Rings are copies, the collection is left untouched.
func InversePolygon(c *Collection, opts InverseOptions) orb.Polygon {
	outer := ExtractOuterRings(c)

	poly := make(orb.Polygon, 0, len(outer)+1)
	poly = append(poly, WorldBounds())
	for _, r := range outer {
		poly = append(poly, r.Clone())
	}

	if opts.Normalize {
		NormalizeWinding(poly)
	}

	return poly
}

// BuildInverse wraps InversePolygon into a FeatureCollection with a single locked feature.
func BuildInverse(c *Collection, opts InverseOptions) *geojson.FeatureCollection {
	f := geojson.NewFeature(InversePolygon(c, opts))
	f.Properties[LockedProperty] = true

	return geojson.NewFeatureCollection().Append(f)
}

// NormalizeWinding reverses rings in place so the outer ring is counter-clockwise and holes are clockwise.
// Degenerate rings with zero area are left alone.
func NormalizeWinding(poly orb.Polygon) {
	for i, r := range poly {
		want := orb.CW
		if i == 0 {
			want = orb.CCW
		}

		if o := r.Orientation(); o != 0 && o != want {
			r.Reverse()
		}
	}
}
