package server

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/woozymasta/worldtile/internal/config"
	"github.com/woozymasta/worldtile/internal/metrics"
	"github.com/woozymasta/worldtile/internal/parcel"
	"github.com/woozymasta/worldtile/internal/regions"
	"github.com/woozymasta/worldtile/internal/tiles"

	"github.com/rs/zerolog/log"
)

// CollectionSource provides the open regions; *regions.Loader satisfies it.
type CollectionSource interface {
	Load() (*regions.Collection, error)
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config *config.Config
	Drafts *parcel.Store

	source  CollectionSource
	fill    color.NRGBA
	current atomic.Pointer[overlay]
	mu      sync.Mutex
}

// overlay is everything derived from one loaded collection.
type overlay struct {
	collection *regions.Collection
	resolver   *regions.Resolver
	renderer   *tiles.Renderer

	open       []byte
	openETag   string
	locked     []byte
	lockedETag string
}

// NewServerContext wires the handlers to their dependencies.
// The open regions are not read until Warmup or the first request needing them.
func NewServerContext(cfg *config.Config, src CollectionSource, drafts *parcel.Store) (*ServerContext, error) {
	fill, err := tiles.ParseHexColor(cfg.Overlay.Color)
	if err != nil {
		return nil, fmt.Errorf("overlay color: %w", err)
	}

	return &ServerContext{
		Config: cfg,
		Drafts: drafts,
		source: src,
		fill:   fill,
	}, nil
}

// Warmup loads the open regions and builds the locked overlay.
func (s *ServerContext) Warmup() error {
	_, err := s.overlay()
	return err
}

// overlay returns the derived overlay, building it on first success.
// Failures are not remembered, so a later request retries the load.
func (s *ServerContext) overlay() (*overlay, error) {
	if o := s.current.Load(); o != nil {
		return o, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if o := s.current.Load(); o != nil {
		return o, nil
	}

	c, err := s.source.Load()
	if err != nil {
		return nil, err
	}

	o, err := s.build(c)
	if err != nil {
		return nil, err
	}

	s.current.Store(o)
	return o, nil
}

func (s *ServerContext) build(c *regions.Collection) (*overlay, error) {
	open, err := c.GeoJSON().MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode open regions: %w", err)
	}

	opts := regions.InverseOptions{Normalize: s.Config.Overlay.Normalize}
	locked, err := regions.BuildInverse(c, opts).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode locked overlay: %w", err)
	}

	metrics.OpenRegions.Set(float64(len(c.Features)))
	metrics.SkippedFeatures.Set(float64(c.Skipped))

	log.Info().
		Int("regions", len(c.Features)).
		Int("skipped", c.Skipped).
		Int("dropped_parts", c.DroppedParts).
		Int("locked_bytes", len(locked)).
		Bool("normalized", opts.Normalize).
		Msg("Locked overlay built")

	return &overlay{
		collection: c,
		resolver:   regions.NewResolver(c, s.Config.Aliases()),
		renderer:   tiles.NewRenderer(c, s.fill),
		open:       open,
		openETag:   contentETag(open),
		locked:     locked,
		lockedETag: contentETag(locked),
	}, nil
}

func contentETag(data []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return fmt.Sprintf(`"%x-%x"`, len(data), h.Sum64())
}
