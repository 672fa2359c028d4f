package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "umrah",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "umrah",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "umrah",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "umrah",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Bookings submitted, by trip type.",
		},
		[]string{"trip_type"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "umrah",
			Subsystem: "bookings",
			Name:      "status_changes_total",
			Help:      "Booking status transitions.",
		},
		[]string{"to"},
	)

	quotesComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "umrah",
			Subsystem: "pricing",
			Name:      "quotes_total",
			Help:      "Quotes computed, by outcome.",
		},
		[]string{"outcome"},
	)

	draftsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "umrah",
			Subsystem: "drafts",
			Name:      "saved_total",
			Help:      "Draft autosaves accepted.",
		},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "umrah",
			Subsystem: "notify",
			Name:      "messages_total",
			Help:      "Outgoing notifications by channel and result.",
		},
		[]string{"channel", "result"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "umrah",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Scheduled job runs.",
		},
		[]string{"job", "success"},
	)

	liveClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "umrah",
			Subsystem: "realtime",
			Name:      "clients",
			Help:      "Connected admin live-feed clients.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		bookingsCreated,
		bookingTransitions,
		quotesComputed,
		draftsSaved,
		notifications,
		jobRuns,
		liveClients,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func InFlight(delta float64) {
	httpInFlight.Add(delta)
}

func BookingCreated(tripType string) {
	bookingsCreated.WithLabelValues(tripType).Inc()
}

func BookingTransition(to string) {
	bookingTransitions.WithLabelValues(to).Inc()
}

func QuoteComputed(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "rejected"
	}
	quotesComputed.WithLabelValues(outcome).Inc()
}

func DraftSaved() {
	draftsSaved.Inc()
}

func Notification(channel string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	notifications.WithLabelValues(channel, result).Inc()
}

func JobRun(job string, err error) {
	jobRuns.WithLabelValues(job, strconv.FormatBool(err == nil)).Inc()
}

func LiveClients(delta float64) {
	liveClients.Add(delta)
}
