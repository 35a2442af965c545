package tiles

import (
	"errors"
	"image"
	"io"
	"os"
	"testing"

	"github.com/woozymasta/worldtile/internal/regions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreRender(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(&regions.Collection{}, red)

	stats := PreRender(r, dir, 1, 4, false)
	assert.Equal(t, 5, stats.Written)
	assert.Zero(t, stats.Failed)

	info, err := os.Stat(Path(dir, TileCoordinate{Z: 1, X: 1, Y: 0}))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// a second run keeps existing files
	stats = PreRender(r, dir, 1, 4, false)
	assert.Equal(t, 5, stats.Skipped)
	assert.Zero(t, stats.Written)

	stats = PreRender(r, dir, 1, 2, true)
	assert.Equal(t, 5, stats.Written)
}

func TestPreRenderSkipsEmptyTiles(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(parse(t, openCenter), red)

	stats := PreRender(r, dir, 3, 8, false)
	assert.Positive(t, stats.Empty)
	assert.Equal(t, 1+4+16+64, stats.Written+stats.Empty)

	_, err := os.Stat(Path(dir, TileCoordinate{Z: 3, X: 4, Y: 4}))
	assert.True(t, os.IsNotExist(err))
}

func TestPreRenderForceRemovesTilesThatOpened(t *testing.T) {
	dir := t.TempDir()
	opened := TileCoordinate{Z: 3, X: 4, Y: 4}

	stats := PreRender(NewRenderer(&regions.Collection{}, red), dir, 3, 4, false)
	require.Zero(t, stats.Failed)
	_, err := os.Stat(Path(dir, opened))
	require.NoError(t, err)

	// without force the old tile is kept as is
	PreRender(NewRenderer(parse(t, openCenter), red), dir, 3, 4, false)
	_, err = os.Stat(Path(dir, opened))
	require.NoError(t, err)

	stats = PreRender(NewRenderer(parse(t, openCenter), red), dir, 3, 4, true)
	assert.Positive(t, stats.Empty)
	assert.Zero(t, stats.Failed)

	_, err = os.Stat(Path(dir, opened))
	assert.True(t, os.IsNotExist(err))
}

func TestPreRenderRemovesPartialFileOnEncodeError(t *testing.T) {
	orig := encodeTile
	t.Cleanup(func() { encodeTile = orig })

	encodeTile = func(w io.Writer, _ image.Image) error {
		_, _ = w.Write([]byte("RIFF"))
		return errors.New("encoder exploded")
	}

	dir := t.TempDir()
	stats := PreRender(NewRenderer(&regions.Collection{}, red), dir, 0, 1, false)
	assert.Equal(t, 1, stats.Failed)

	_, err := os.Stat(Path(dir, TileCoordinate{}))
	assert.True(t, os.IsNotExist(err))
}
