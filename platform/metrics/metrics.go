// Package metrics holds the process-wide Prometheus collectors and the gin
// middleware that feeds the HTTP ones.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of in-flight HTTP requests",
		},
	)

	realtimeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_sessions",
			Help: "Number of open realtime sessions",
		},
	)

	realtimeDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_messages_dropped_total",
			Help: "Refresh messages dropped because a session buffer was full",
		},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notification deliveries by kind, channel and outcome",
		},
		[]string{"kind", "channel", "outcome"},
	)

	heartbeatFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_heartbeat_failures_total",
			Help: "Heartbeats that could not be persisted",
		},
	)

	idleLeadsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idle_leads_detected_total",
			Help: "Idle leads reported by escalation checks",
		},
		[]string{"kind"},
	)

	activityEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_activity_entries_total",
			Help: "Activity entries appended",
		},
	)
)

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func SessionOpened()  { realtimeSessions.Inc() }
func SessionClosed()  { realtimeSessions.Dec() }
func MessageDropped() { realtimeDropped.Inc() }

func RecordNotification(kind, channel string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	notificationsSent.WithLabelValues(kind, channel, outcome).Inc()
}

func RecordHeartbeatFailure() { heartbeatFailures.Inc() }

func RecordIdleLeads(kind string, n int) {
	idleLeadsFound.WithLabelValues(kind).Add(float64(n))
}

func RecordActivityEntry() { activityEntries.Inc() }
