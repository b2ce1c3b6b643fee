package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_gateway_actions_total",
			Help: "Gateway actions by name and result (success, declined, error).",
		},
		[]string{"action", "result"},
	)

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_gateway_upload_bytes_total",
		Help: "Bytes of album files stored through the gateway.",
	})

	albumCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_gateway_album_cache_hits_total",
		Help: "Album folder lookups answered from the cache.",
	})
	albumCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_gateway_album_cache_misses_total",
		Help: "Album folder lookups that went to the blob store.",
	})
)
