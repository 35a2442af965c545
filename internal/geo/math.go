package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// MaxMercatorLatitude is the latitude at which the Web Mercator world becomes square.
const MaxMercatorLatitude = 85.05112878

// TileSize is the edge length of a slippy map tile in pixels.
const TileSize = 256

// ProjectMercator converts WGS84 Lon/Lat to normalized Web Mercator world
// coordinates, where (0,0) is the north-west corner and (1,1) the south-east.
func ProjectMercator(lon, lat float64) (x, y float64) {
	if lat > MaxMercatorLatitude {
		lat = MaxMercatorLatitude
	} else if lat < -MaxMercatorLatitude {
		lat = -MaxMercatorLatitude
	}

	x = (lon + 180.0) / 360.0

	latRad := lat * (math.Pi / 180.0)
	y = (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0

	return x, y
}

// UnprojectMercator is the inverse of ProjectMercator.
func UnprojectMercator(x, y float64) (lon, lat float64) {
	lon = x*360.0 - 180.0

	// y: [0..1] -> mercatorY: [PI..-PI]
	mercatorY := math.Pi * (1.0 - 2.0*y)

	// Inverse Mercator projection
	latRad := (2.0 * math.Atan(math.Exp(mercatorY))) - (math.Pi * 0.5)
	lat = latRad * (180.0 / math.Pi)

	if lat > MaxMercatorLatitude {
		lat = MaxMercatorLatitude
	} else if lat < -MaxMercatorLatitude {
		lat = -MaxMercatorLatitude
	}

	return lon, lat
}

// TilePixel returns the pixel position of Lon/Lat inside tile z/x/y.
// Values outside [0, TileSize) belong to neighbouring tiles.
func TilePixel(lon, lat float64, z, x, y int) (px, py float64) {
	wx, wy := ProjectMercator(lon, lat)
	scale := float64(int(1) << z)

	px = (wx*scale - float64(x)) * TileSize
	py = (wy*scale - float64(y)) * TileSize

	return px, py
}

// TileBound returns the Lon/Lat bounds covered by tile z/x/y.
func TileBound(z, x, y int) orb.Bound {
	scale := float64(int(1) << z)

	minLon, maxLat := UnprojectMercator(float64(x)/scale, float64(y)/scale)
	maxLon, minLat := UnprojectMercator(float64(x+1)/scale, float64(y+1)/scale)

	return orb.Bound{
		Min: orb.Point{minLon, minLat},
		Max: orb.Point{maxLon, maxLat},
	}
}
