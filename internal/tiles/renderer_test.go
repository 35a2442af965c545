package tiles

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/woozymasta/worldtile/internal/regions"

	"github.com/chai2010/webp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a large open region around null island, wound counter-clockwise like the outer ring
const openCenter = `{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"key":"center"},"geometry":{"type":"Polygon","coordinates":[
		[[-90,-60],[90,-60],[90,60],[-90,60],[-90,-60]]
	]}}
]}`

var red = color.NRGBA{R: 255, A: 255}

func parse(t *testing.T, doc string) *regions.Collection {
	t.Helper()
	c, err := regions.Parse([]byte(doc))
	require.NoError(t, err)
	return c
}

func TestRenderHoleStaysClear(t *testing.T) {
	r := NewRenderer(parse(t, openCenter), red)

	img, err := r.Render(0, 0, 0)
	require.NoError(t, err)

	// null island is open
	assert.Zero(t, img.RGBAAt(128, 128).A)
	// the far north is locked
	assert.Equal(t, uint8(255), img.RGBAAt(128, 20).A)
}

func TestRenderOverlappingRegionsStayClear(t *testing.T) {
	c := parse(t, `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"key":"west"},"geometry":{"type":"Polygon","coordinates":[
			[[-60,-30],[20,-30],[20,30],[-60,30],[-60,-30]]
		]}},
		{"type":"Feature","properties":{"key":"east"},"geometry":{"type":"Polygon","coordinates":[
			[[-20,-30],[60,-30],[60,30],[-20,30],[-20,-30]]
		]}}
	]}`)

	_, open := c.RegionAt(orb.Point{0, 0})
	require.True(t, open)

	img, err := NewRenderer(c, red).Render(0, 0, 0)
	require.NoError(t, err)

	// null island lies in both regions
	assert.Zero(t, img.RGBAAt(128, 128).A)
	assert.Equal(t, uint8(255), img.RGBAAt(10, 128).A)
}

func TestRenderWithoutOpenRegionsLocksEverything(t *testing.T) {
	r := NewRenderer(&regions.Collection{}, red)

	img, err := r.Render(2, 1, 1)
	require.NoError(t, err)
	assert.False(t, IsEmpty(img))
	assert.Equal(t, uint8(255), img.RGBAAt(100, 100).A)
}

func TestRenderTileInsideHoleIsEmpty(t *testing.T) {
	r := NewRenderer(parse(t, openCenter), red)

	// zoom 3 tile just south-east of null island, fully inside the open region
	img, err := r.Render(3, 4, 4)
	require.NoError(t, err)
	assert.True(t, IsEmpty(img))
}

func TestRenderRejectsBadTiles(t *testing.T) {
	r := NewRenderer(&regions.Collection{}, red)

	for _, c := range []TileCoordinate{{-1, 0, 0}, {MaxZoom + 1, 0, 0}, {1, 2, 0}, {1, 0, -1}} {
		_, err := r.Render(c.Z, c.X, c.Y)
		assert.Error(t, err, "%v", c)
	}
}

func TestTransparentTile(t *testing.T) {
	r := NewRenderer(&regions.Collection{}, red)

	data, err := r.Transparent()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	again, err := r.Transparent()
	require.NoError(t, err)
	assert.Equal(t, data, again)

	img, err := webp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#10141c99")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x14, B: 0x1c, A: 0x99}, c)

	c, err = ParseHexColor("f00")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, c)

	_, err = ParseHexColor("#12345")
	assert.Error(t, err)
	_, err = ParseHexColor("#zzzzzz")
	assert.Error(t, err)
}
