// Package tiles paints the locked overlay into raster map tiles.
package tiles

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/woozymasta/worldtile/internal/geo"
	"github.com/woozymasta/worldtile/internal/regions"

	"github.com/chai2010/webp"
	"github.com/paulmach/orb"
	"golang.org/x/image/vector"
)

// MaxZoom is the deepest zoom level the renderer accepts.
const MaxZoom = 18

// Renderer rasterizes the locked polygon into 256x256 tiles.
// It is safe for concurrent use.
type Renderer struct {
	polygon orb.Polygon
	fill    *image.Uniform

	transparentOnce sync.Once
	transparent     []byte
	transparentErr  error
}

// NewRenderer prepares a renderer for the locked area of c.
//
// Holes are cleared in their own pass and all wind the same way after
// normalization, so overlapping open regions stay clear.
func NewRenderer(c *regions.Collection, fill color.Color) *Renderer {
	return &Renderer{
		polygon: regions.InversePolygon(c, regions.InverseOptions{Normalize: true}),
		fill:    image.NewUniform(fill),
	}
}

// Render paints tile z/x/y.
func (r *Renderer) Render(z, x, y int) (*image.RGBA, error) {
	if err := ValidTile(z, x, y); err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, geo.TileSize, geo.TileSize))
	tb := geo.TileBound(z, x, y)

	if len(r.polygon) == 0 {
		return dst, nil
	}

	// paint the world bounds, then clear every open region on top of it
	ras := vector.NewRasterizer(geo.TileSize, geo.TileSize)
	addRing(ras, r.polygon[0], z, x, y)
	ras.Draw(dst, dst.Bounds(), r.fill, image.Point{})

	holes := 0
	ras.Reset(geo.TileSize, geo.TileSize)
	for _, ring := range r.polygon[1:] {
		if !ring.Bound().Intersects(tb) {
			continue
		}
		addRing(ras, ring, z, x, y)
		holes++
	}

	if holes > 0 {
		ras.DrawOp = draw.Src
		ras.Draw(dst, dst.Bounds(), image.Transparent, image.Point{})
	}

	return dst, nil
}

// Transparent returns an empty WebP tile, encoded once.
func (r *Renderer) Transparent() ([]byte, error) {
	r.transparentOnce.Do(func() {
		var buf bytes.Buffer
		img := image.NewRGBA(image.Rect(0, 0, geo.TileSize, geo.TileSize))
		r.transparentErr = EncodeWebP(&buf, img)
		r.transparent = buf.Bytes()
	})
	return r.transparent, r.transparentErr
}

// EncodeWebP writes img as a lossy WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: 80})
}

// IsEmpty reports whether no pixel of img is painted.
func IsEmpty(img *image.RGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// ValidTile checks that z/x/y addresses an existing tile.
func ValidTile(z, x, y int) error {
	if z < 0 || z > MaxZoom {
		return fmt.Errorf("zoom %d out of range [0,%d]", z, MaxZoom)
	}

	n := 1 << z
	if x < 0 || x >= n || y < 0 || y >= n {
		return fmt.Errorf("tile %d/%d/%d out of range", z, x, y)
	}

	return nil
}

// ParseHexColor parses #RGB, #RRGGBB or #RRGGBBAA.
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")

	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

func addRing(ras *vector.Rasterizer, ring orb.Ring, z, x, y int) {
	for i, p := range ring {
		px, py := geo.TilePixel(p.Lon(), p.Lat(), z, x, y)
		if i == 0 {
			ras.MoveTo(float32(px), float32(py))
			continue
		}
		ras.LineTo(float32(px), float32(py))
	}
	ras.ClosePath()
}
