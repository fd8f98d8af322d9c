package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Toggle kinds and outcomes reported by EngagementToggles.
const (
	kindFilmLike    = "film_like"
	kindFilmDislike = "film_dislike"
	kindReviewVote  = "review_vote"
	kindReviewClear = "review_vote_remove"

	resultChanged = "changed"
	resultNoop    = "noop"
	resultError   = "error"
)

var (
	EngagementToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_toggles_total",
			Help: "Like and vote toggles by kind and outcome",
		},
		[]string{"kind", "result"},
	)

	PopularCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popular_cache_lookups_total",
			Help: "Popular ranking cache lookups by outcome",
		},
		[]string{"result"},
	)

	registerOnce sync.Once
)

// RegisterMetrics adds the service collectors to the default registry.
// Safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(EngagementToggles)
		prometheus.MustRegister(PopularCacheLookups)
	})
}

func observeToggle(kind string, changed bool, err error) {
	switch {
	case err != nil:
		EngagementToggles.WithLabelValues(kind, resultError).Inc()
	case changed:
		EngagementToggles.WithLabelValues(kind, resultChanged).Inc()
	default:
		EngagementToggles.WithLabelValues(kind, resultNoop).Inc()
	}
}
