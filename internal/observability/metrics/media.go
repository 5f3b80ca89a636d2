package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Total number of media uploads by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	MediaUploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_upload_bytes_total",
			Help: "Total bytes handed off to the media host",
		},
	)

	MediaUploadDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_upload_duration_seconds",
			Help:    "Duration of media host uploads in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	VideoViewsFlushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_views_flushed_total",
			Help: "Total view increments flushed from the counter to storage",
		},
	)
)
