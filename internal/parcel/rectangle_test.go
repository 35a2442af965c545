package parcel

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var centers = []orb.Point{
	{0, 0},
	{-104.9903, 39.7392},
	{139.6917, 35.6895},
	{17.4287, -62.4210},
	{179.9998, 84.9},
}

func TestDefaultRectangle(t *testing.T) {
	for _, c := range centers {
		r := DefaultRectangle(c)

		require.Len(t, r, 5)
		assert.Equal(t, r[0], r[4])

		// bottom-left, bottom-right, top-right, top-left
		assert.Less(t, r[0].Lon(), r[1].Lon())
		assert.Equal(t, r[0].Lat(), r[1].Lat())
		assert.Equal(t, r[1].Lon(), r[2].Lon())
		assert.Less(t, r[1].Lat(), r[2].Lat())
		assert.Equal(t, r[2].Lat(), r[3].Lat())
		assert.Equal(t, r[0].Lon(), r[3].Lon())

		assert.InDelta(t, SideDegrees, r[1].Lon()-r[0].Lon(), 1e-9)
		assert.InDelta(t, SideDegrees, r[3].Lat()-r[0].Lat(), 1e-9)
	}
}

func TestDefaultRectangleCenter(t *testing.T) {
	for _, c := range centers {
		got, err := Center(DefaultRectangle(c))
		require.NoError(t, err)
		assert.InDelta(t, c.Lon(), got.Lon(), 1e-9)
		assert.InDelta(t, c.Lat(), got.Lat(), 1e-9)
	}
}

func TestEnsureClosed(t *testing.T) {
	open := []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	once := EnsureClosed(open)
	assert.Len(t, once, 5)
	assert.Equal(t, once[0], once[4])
	assert.Len(t, open, 4, "input must not be modified")

	twice := EnsureClosed(once)
	assert.Equal(t, once, twice)

	single := EnsureClosed([]orb.Point{{3, 4}})
	assert.Equal(t, orb.Ring{{3, 4}}, single)
	assert.Equal(t, single, EnsureClosed(single))

	assert.Empty(t, EnsureClosed(nil))
}

func TestCenterIgnoresExtraPoints(t *testing.T) {
	ring := []orb.Point{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}, {100, 100}}

	got, err := Center(ring)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1, 1}, got)
}

func TestCenterTooFewPositions(t *testing.T) {
	_, err := Center([]orb.Point{{0, 0}, {1, 0}, {1, 1}})
	assert.ErrorIs(t, err, ErrTooFewPositions)
}

func TestTranslateKeepsClosure(t *testing.T) {
	r := DefaultRectangle(orb.Point{10, 20})

	moved := Translate(r, 0.5, -0.25)
	require.Len(t, moved, 5)
	assert.Equal(t, moved[0], moved[4])
	assert.InDelta(t, r[2].Lon()+0.5, moved[2].Lon(), 1e-12)
	assert.InDelta(t, r[2].Lat()-0.25, moved[2].Lat(), 1e-12)

	// the source ring is untouched
	assert.Equal(t, DefaultRectangle(orb.Point{10, 20}), r)
}

func TestUpdateCornerPreservesCount(t *testing.T) {
	base := DefaultRectangle(orb.Point{-73.98, 40.75})

	for i := 0; i < 4; i++ {
		p := orb.Point{-73.97, 40.76}

		got, err := UpdateCorner(base, i, p)
		require.NoError(t, err)
		require.Len(t, got, 5)
		assert.Equal(t, got[0], got[4])
		assert.Equal(t, p, got[i])
	}
}

func TestUpdateCornerRecomputesClosure(t *testing.T) {
	// a stale fifth point must not survive
	ring := []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {9, 9}}

	got, err := UpdateCorner(ring, 0, orb.Point{-1, -1})
	require.NoError(t, err)
	assert.Equal(t, orb.Ring{{-1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, -1}}, got)

	// the input is not modified
	assert.Equal(t, orb.Point{0, 0}, ring[0])
}

func TestUpdateCornerErrors(t *testing.T) {
	r := DefaultRectangle(orb.Point{0, 0})

	_, err := UpdateCorner(r, 4, orb.Point{})
	assert.ErrorIs(t, err, ErrCornerIndex)

	_, err = UpdateCorner(r, -1, orb.Point{})
	assert.ErrorIs(t, err, ErrCornerIndex)

	_, err = UpdateCorner(r[:3], 0, orb.Point{})
	assert.ErrorIs(t, err, ErrTooFewPositions)
}

func TestRotateQuarterTurn(t *testing.T) {
	c := orb.Point{8.54, 47.37}
	r := DefaultRectangle(c)

	got, err := Rotate(r, 90)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, got[0], got[4])

	center, err := Center(got)
	require.NoError(t, err)
	assert.InDelta(t, c.Lon(), center.Lon(), 1e-9)
	assert.InDelta(t, c.Lat(), center.Lat(), 1e-9)

	// a quarter turn keeps the footprint, so the area does not change
	assert.InEpsilon(t, Area(r), Area(got), 1e-3)
}

func TestRotateTooFewPositions(t *testing.T) {
	_, err := Rotate([]orb.Point{{0, 0}}, 45)
	assert.ErrorIs(t, err, ErrTooFewPositions)
}

func TestDefaultRectangleIsAboutOneAcre(t *testing.T) {
	acres := Acres(DefaultRectangle(orb.Point{0, 0}))
	assert.InDelta(t, 1, acres, 0.01)

	// meridians converge, so the same square in degrees covers less ground up north
	assert.Less(t, Acres(DefaultRectangle(orb.Point{0, 60})), acres)
}
