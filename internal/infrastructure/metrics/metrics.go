package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Sensor metrics
	StatusUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firealert_status_updates_total",
			Help: "Accepted status updates by status and source",
		},
		[]string{"status", "source"},
	)

	FireEventsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firealert_fire_events_created_total",
			Help: "Fire events written to the store by origin",
		},
		[]string{"origin"},
	)

	LocationMergesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firealert_location_merges_total",
			Help: "Location updates by outcome (merged, created, already_located, missing_target)",
		},
		[]string{"result"},
	)

	// Broadcast metrics
	BroadcastMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firealert_broadcast_messages_total",
			Help: "Messages published on the broadcast hub by event",
		},
		[]string{"event"},
	)

	BroadcastDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "firealert_broadcast_dropped_total",
			Help: "Messages dropped because a subscriber buffer was full",
		},
	)

	Subscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "firealert_subscribers",
			Help: "Currently connected broadcast subscribers",
		},
	)

	// Geocoder metrics
	GeocodeLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firealert_geocode_lookups_total",
			Help: "Reverse geocode lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	// API metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firealert_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "firealert_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(StatusUpdatesTotal)
	prometheus.MustRegister(FireEventsCreatedTotal)
	prometheus.MustRegister(LocationMergesTotal)
	prometheus.MustRegister(BroadcastMessagesTotal)
	prometheus.MustRegister(BroadcastDroppedTotal)
	prometheus.MustRegister(Subscribers)
	prometheus.MustRegister(GeocodeLookupsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
