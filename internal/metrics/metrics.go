package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LayoutFallbacks counts seat maps rendered with the hard-coded
	// default layout because the backend payload was unusable
	LayoutFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boxoffice_layout_fallbacks_total",
		Help: "Seat maps served with the default layout",
	})

	BookingsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boxoffice_bookings_submitted_total",
		Help: "Booking submissions sent to the theatre backend",
	})

	BookingsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boxoffice_bookings_confirmed_total",
		Help: "Bookings confirmed by the theatre backend",
	})

	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boxoffice_booking_conflicts_total",
		Help: "Submissions rejected because seats were claimed concurrently",
	})

	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boxoffice_upstream_errors_total",
		Help: "Failed requests to the theatre backend by operation",
	}, []string{"operation"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boxoffice_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Handler exposes the prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}
