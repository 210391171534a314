// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "andcook_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "andcook_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RatingWrites counts rating operations by op (submit, update, delete).
	RatingWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "andcook_rating_writes_total",
			Help: "Rating writes by operation.",
		},
		[]string{"op"},
	)

	FavoriteToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "andcook_favorite_toggles_total",
			Help: "Favorite toggles by resulting state.",
		},
		[]string{"state"},
	)

	SlugCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "andcook_slug_collisions_total",
		Help: "Generated slugs that needed a uniqueness suffix.",
	})

	RecipeCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "andcook_recipe_cache_requests_total",
			Help: "Recipe cache lookups by result.",
		},
		[]string{"result"},
	)

	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "andcook_uploads_total",
			Help: "Image uploads by result.",
		},
		[]string{"result"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "andcook_rate_limited_total",
			Help: "Requests rejected by the rate limiter by scope.",
		},
		[]string{"scope"},
	)
)
