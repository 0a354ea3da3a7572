package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     prometheus.CounterVec
	HTTPRequestDuration   prometheus.HistogramVec
	HTTPActiveConnections prometheus.GaugeVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec

	// Community activity metrics
	ChatMessagesTotal    prometheus.CounterVec
	DirectMessagesTotal  prometheus.CounterVec
	PostsCreatedTotal    prometheus.CounterVec
	RequestsCreatedTotal prometheus.CounterVec
	BlocksTotal          prometheus.CounterVec
	ReportsFiledTotal    prometheus.CounterVec

	// Presence metrics
	TypingSignalsTotal    prometheus.CounterVec
	TypingSweepRemovals   prometheus.CounterVec
	GuestMigrationsTotal  prometheus.CounterVec
	SessionsSyncedTotal   prometheus.CounterVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limited requests",
				},
				[]string{"endpoint", "method"},
			),

			ChatMessagesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_messages_total",
					Help: "Total number of room chat messages sent",
				},
				[]string{"room_type"},
			),
			DirectMessagesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "direct_messages_total",
					Help: "Total number of direct messages sent",
				},
				[]string{},
			),
			PostsCreatedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "posts_created_total",
					Help: "Total number of trail reports created",
				},
				[]string{},
			),
			RequestsCreatedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "trek_requests_created_total",
					Help: "Total number of trek buddy requests created",
				},
				[]string{},
			),
			BlocksTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "user_blocks_total",
					Help: "Total number of block and unblock actions",
				},
				[]string{"action"},
			),
			ReportsFiledTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "reports_filed_total",
					Help: "Total number of moderation reports filed",
				},
				[]string{},
			),

			TypingSignalsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "typing_signals_total",
					Help: "Total number of typing indicator signals",
				},
				[]string{"conversation_type"},
			),
			TypingSweepRemovals: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "typing_sweep_removals_total",
					Help: "Total number of expired typing indicators swept",
				},
				[]string{},
			),
			GuestMigrationsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "guest_migrations_total",
					Help: "Total number of guest to authenticated migrations",
				},
				[]string{"outcome"},
			),
			SessionsSyncedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "sessions_synced_total",
					Help: "Total number of session sync calls",
				},
				[]string{"kind"},
			),

			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing on first use
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
