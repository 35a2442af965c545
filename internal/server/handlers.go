// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/worldtile/internal/geo"
	"github.com/woozymasta/worldtile/internal/metrics"
	"github.com/woozymasta/worldtile/internal/tiles"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

const etagCap = 64

// HandleHealth reports liveness.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleConfig serves the client-facing part of the configuration:
// map attribution and how the locked overlay is painted.
func (s *ServerContext) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Config)
}

// HandleOpenRegions serves the open regions as GeoJSON.
func (s *ServerContext) HandleOpenRegions(w http.ResponseWriter, r *http.Request) {
	o, ok := s.mustOverlay(w)
	if !ok {
		return
	}
	serveCached(w, r, o.open, o.openETag)
}

// HandleLockedRegions serves the inverse of the open regions: one polygon
// covering the world with every open region cut out.
func (s *ServerContext) HandleLockedRegions(w http.ResponseWriter, r *http.Request) {
	o, ok := s.mustOverlay(w)
	if !ok {
		return
	}
	serveCached(w, r, o.locked, o.lockedETag)
}

// HandleResolveRegion maps a display name or alias to a region key.
func (s *ServerContext) HandleResolveRegion(w http.ResponseWriter, r *http.Request) {
	o, ok := s.mustOverlay(w)
	if !ok {
		return
	}

	key, found := o.resolver.Resolve(chi.URLParam(r, "name"))
	if !found {
		writeError(w, http.StatusNotFound, "unknown region")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// HandleRegionAt tells whether a point lies in an open region.
func (s *ServerContext) HandleRegionAt(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	if errLon != nil || errLat != nil {
		writeError(w, http.StatusBadRequest, "lon and lat must be numbers")
		return
	}

	o, ok := s.mustOverlay(w)
	if !ok {
		return
	}

	resp := struct {
		Key  string `json:"key,omitempty"`
		Open bool   `json:"open"`
	}{}
	if f, found := o.collection.RegionAt(orb.Point{lon, lat}); found {
		resp.Key = f.Key()
		resp.Open = true
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDistance returns the great-circle distance between two points.
func (s *ServerContext) HandleDistance(w http.ResponseWriter, r *http.Request) {
	from, err := parsePosition(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from: "+err.Error())
		return
	}
	to, err := parsePosition(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"meters": geo.DistanceInMeters(from, to)})
}

// HandleLockedTile serves a raster tile of the locked overlay.
// Pre-rendered files win; otherwise the tile is painted on demand.
func (s *ServerContext) HandleLockedTile(w http.ResponseWriter, r *http.Request) {
	z, errZ := strconv.Atoi(chi.URLParam(r, "z"))
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errZ != nil || errX != nil || errY != nil {
		http.NotFound(w, r)
		return
	}
	if err := tiles.ValidTile(z, x, y); err != nil {
		http.NotFound(w, r)
		return
	}

	path := tiles.Path(s.Config.Tiles.Dir, tiles.TileCoordinate{Z: z, X: x, Y: y})
	if s.serveFile(w, r, path, "image/webp") {
		metrics.TilesRenderedTotal.WithLabelValues("disk").Inc()
		return
	}

	o, ok := s.mustOverlay(w)
	if !ok {
		return
	}

	img, err := o.renderer.Render(z, x, y)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if tiles.IsEmpty(img) {
		data, err := o.renderer.Transparent()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "render failed")
			return
		}
		metrics.TilesRenderedTotal.WithLabelValues("transparent").Inc()
		_, _ = w.Write(data)
		return
	}

	metrics.TilesRenderedTotal.WithLabelValues("render").Inc()
	if err := tiles.EncodeWebP(w, img); err != nil {
		log.Error().Err(err).Int("z", z).Int("x", x).Int("y", y).Msg("Failed to encode tile")
	}
}

// mustOverlay writes a 500 when the open regions cannot be loaded.
// An empty overlay would unlock the whole world, so there is no fallback.
func (s *ServerContext) mustOverlay(w http.ResponseWriter) (*overlay, bool) {
	o, err := s.overlay()
	if err != nil {
		log.Error().Err(err).Msg("Open regions unavailable")
		writeError(w, http.StatusInternalServerError, "open regions unavailable")
		return nil, false
	}
	return o, true
}

// serveCached writes an in-memory GeoJSON document with its ETag.
func serveCached(w http.ResponseWriter, r *http.Request, data []byte, etag string) {
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(data)
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	w.Header().Set("Content-Type", contentType)

	http.ServeFile(w, r, path)
	return true
}

// parsePosition reads "lon,lat".
func parsePosition(s string) (orb.Point, error) {
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return orb.Point{}, errors.New(`want "lon,lat"`)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("latitude: %w", err)
	}

	return orb.Point{lon, lat}, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
