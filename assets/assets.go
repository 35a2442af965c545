// Package assets bundles static data shipped inside the binaries.
package assets

import _ "embed"

// OpenStates is the minified GeoJSON FeatureCollection of regions open for purchase.
// It is produced from src/open_states.geojson by cmd/minify.
//
//go:embed open_states.geojson
var OpenStates []byte
