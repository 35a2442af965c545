// Package regions loads the open (purchasable) regions and derives the locked overlay from them.
package regions

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/woozymasta/worldtile/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/rs/zerolog/log"
)

// ErrInvalidCollection is returned when a document is not a usable FeatureCollection.
var ErrInvalidCollection = errors.New("invalid feature collection")

// Feature is an open region with its typed geometry (orb.Polygon or orb.MultiPolygon).
type Feature struct {
	Geometry   orb.Geometry
	Properties map[string]interface{}
	Bound      orb.Bound
}

// Collection is a parsed set of open regions.
type Collection struct {
	Features []Feature

	// Skipped counts features dropped because of missing, malformed or unsupported geometry.
	Skipped int

	// DroppedParts counts malformed holes and MultiPolygon members left out of kept features.
	DroppedParts int
}

type rawCollection struct {
	Type     string             `json:"type"`
	Features *[]json.RawMessage `json:"features"`
}

type rawFeature struct {
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Parse decodes a GeoJSON FeatureCollection of Polygon and MultiPolygon regions.
//
// The document itself must be a FeatureCollection with a features array.
// A single bad feature does not fail the whole document: it is skipped and counted.
// Within a feature only outer rings must be valid; bad holes and members are dropped.
func Parse(data []byte) (*Collection, error) {
	var raw rawCollection
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCollection, err)
	}
	if raw.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: type is %q, want \"FeatureCollection\"", ErrInvalidCollection, raw.Type)
	}
	if raw.Features == nil {
		return nil, fmt.Errorf("%w: features array is missing", ErrInvalidCollection)
	}

	c := &Collection{Features: make([]Feature, 0, len(*raw.Features))}
	for i, item := range *raw.Features {
		var rf rawFeature
		if err := json.Unmarshal(item, &rf); err != nil {
			log.Debug().Err(err).Int("feature", i).Msg("Skipping feature: not an object")
			c.Skipped++
			continue
		}

		g, dropped, err := geo.ParseGeometry(rf.Geometry)
		c.DroppedParts += dropped
		if err != nil {
			log.Debug().Err(err).Int("feature", i).Msg("Skipping feature: unusable geometry")
			c.Skipped++
			continue
		}
		if dropped > 0 {
			log.Debug().Int("feature", i).Int("dropped", dropped).Msg("Dropped malformed rings from feature")
		}

		c.Features = append(c.Features, Feature{
			Geometry:   g,
			Properties: rf.Properties,
			Bound:      g.Bound(),
		})
	}

	return c, nil
}

// Key returns the identifier of a region: its "key" property, falling back to "name".
func (f Feature) Key() string {
	if k := stringProp(f.Properties, "key"); k != "" {
		return k
	}
	return normalizeKey(stringProp(f.Properties, "name"))
}

// Name returns the human readable region name.
func (f Feature) Name() string {
	return stringProp(f.Properties, "name")
}

// Contains reports whether p lies inside the region.
func (f Feature) Contains(p orb.Point) bool {
	if !f.Bound.Contains(p) {
		return false
	}

	switch g := f.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	}

	return false
}

// RegionAt returns the open region containing p.
func (c *Collection) RegionAt(p orb.Point) (Feature, bool) {
	for _, f := range c.Features {
		if f.Contains(p) {
			return f, true
		}
	}
	return Feature{}, false
}

// Covers reports whether every vertex of ring lies in some open region.
// Parcels are far smaller than regions, so vertex checks are enough here.
func (c *Collection) Covers(ring orb.Ring) bool {
	if len(ring) == 0 {
		return false
	}

	for _, p := range ring {
		if _, ok := c.RegionAt(p); !ok {
			return false
		}
	}
	return true
}

// GeoJSON converts the collection back into a FeatureCollection for clients.
func (c *Collection) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range c.Features {
		gf := geojson.NewFeature(f.Geometry)
		for k, v := range f.Properties {
			gf.Properties[k] = v
		}
		fc.Append(gf)
	}
	return fc
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "_"))
}
