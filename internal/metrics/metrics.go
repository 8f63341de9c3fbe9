package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	NotificationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partner_notifications_served_total",
			Help: "Partner notifications returned by the random endpoint",
		},
		[]string{"page"},
	)

	NotificationViews = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "partner_notification_views_total",
			Help: "Partner notification views recorded",
		},
	)

	ImageBytesSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_optimize_bytes_saved_total",
			Help: "Bytes saved by the image optimizer",
		},
	)
)
