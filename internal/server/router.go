package server

import (
	"net/http"

	"github.com/woozymasta/worldtile/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// NewRouter mounts every route of the service.
func NewRouter(s *ServerContext) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.Config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "If-None-Match"},
		ExposedHeaders: []string{"ETag"},
	}).Handler)

	r.Get("/health", s.HandleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.Config.RateLimit.RPS > 0 {
			r.Use(RateLimit(rate.NewLimiter(rate.Limit(s.Config.RateLimit.RPS), s.Config.RateLimit.Burst)))
		}

		r.Get("/config", s.HandleConfig)
		r.Get("/regions/open", s.HandleOpenRegions)
		r.Get("/regions/locked", s.HandleLockedRegions)
		r.Get("/regions/resolve/{name}", s.HandleResolveRegion)
		r.Get("/regions/at", s.HandleRegionAt)
		r.Get("/distance", s.HandleDistance)

		r.Post("/parcels", s.HandleCreateParcel)
		r.Route("/parcels/{id}", func(r chi.Router) {
			r.Get("/", s.HandleGetParcel)
			r.Delete("/", s.HandleDeleteParcel)
			r.Put("/corners/{index}", s.HandleMoveCorner)
			r.Post("/translate", s.HandleTranslateParcel)
			r.Post("/rotate", s.HandleRotateParcel)
		})
	})

	r.Get("/tiles/locked/{z}/{x}/{y}.webp", s.HandleLockedTile)

	return r
}

// RateLimit rejects requests beyond the limiter's budget with 429.
func RateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				metrics.RateLimitedTotal.Inc()
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
