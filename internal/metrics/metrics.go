// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worldtile_requests_total",
		Help: "Total number of HTTP requests by route and status code",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worldtile_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "worldtile_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	})
	OpenRegions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "worldtile_open_regions",
		Help: "Number of open regions in the loaded dataset",
	})
	SkippedFeatures = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "worldtile_open_regions_skipped",
		Help: "Number of features skipped while loading the open regions",
	})
	DraftsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "worldtile_parcel_drafts",
		Help: "Number of parcel drafts held in memory",
	})
	TilesRenderedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worldtile_tiles_rendered_total",
		Help: "Locked overlay tiles served by origin",
	}, []string{"origin"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(OpenRegions)
	prometheus.MustRegister(SkippedFeatures)
	prometheus.MustRegister(DraftsActive)
	prometheus.MustRegister(TilesRenderedTotal)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler { return promhttp.Handler() }
