package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectMercator(t *testing.T) {
	x, y := ProjectMercator(0, 0)
	assert.InDelta(t, 0.5, x, 1e-12)
	assert.InDelta(t, 0.5, y, 1e-12)

	x, y = ProjectMercator(-180, MaxMercatorLatitude)
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 0, y, 1e-6)

	// beyond the projection limit values are clamped
	_, yPole := ProjectMercator(0, 90)
	assert.InDelta(t, 0, yPole, 1e-6)
}

func TestUnprojectMercatorRoundTrip(t *testing.T) {
	for _, ll := range [][2]float64{{0, 0}, {-104.05, 41}, {155.5, -33.9}, {12, 84.9}} {
		x, y := ProjectMercator(ll[0], ll[1])
		lon, lat := UnprojectMercator(x, y)
		assert.InDelta(t, ll[0], lon, 1e-9)
		assert.InDelta(t, ll[1], lat, 1e-9)
	}
}

func TestTileBound(t *testing.T) {
	b := TileBound(0, 0, 0)
	assert.InDelta(t, -180, b.Min.Lon(), 1e-9)
	assert.InDelta(t, 180, b.Max.Lon(), 1e-9)
	assert.InDelta(t, -MaxMercatorLatitude, b.Min.Lat(), 1e-6)
	assert.InDelta(t, MaxMercatorLatitude, b.Max.Lat(), 1e-6)

	ne := TileBound(1, 1, 0)
	assert.InDelta(t, 0, ne.Min.Lon(), 1e-9)
	assert.InDelta(t, 0, ne.Min.Lat(), 1e-9)
}

func TestTilePixel(t *testing.T) {
	px, py := TilePixel(0, 0, 0, 0, 0)
	assert.InDelta(t, 128, px, 1e-9)
	assert.InDelta(t, 128, py, 1e-9)

	// the same point is the top-left corner of tile 1/1/1
	px, py = TilePixel(0, 0, 1, 1, 1)
	assert.InDelta(t, 0, px, 1e-9)
	assert.InDelta(t, 0, py, 1e-9)
}
