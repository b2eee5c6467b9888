package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "providerdash_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "providerdash_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	pushMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "providerdash_push_messages_total",
		Help: "Push messages received from the push gateway.",
	})

	notificationsShownTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "providerdash_notifications_shown_total",
		Help: "Notifications displayed to foreground clients.",
	})

	refreshSignalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "providerdash_refresh_signals_total",
		Help: "REFRESH_DATA signals delivered to a foreground client.",
	})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "providerdash_upstream_errors_total",
		Help: "Failed calls to the WordPress backend.",
	}, []string{"operation"})
)

// Middleware records request counts and latencies per route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}

func PushMessageReceived()    { pushMessagesTotal.Inc() }
func NotificationShown()      { notificationsShownTotal.Inc() }
func RefreshSignalSent()      { refreshSignalsTotal.Inc() }
func UpstreamError(op string) { upstreamErrorsTotal.WithLabelValues(op).Inc() }
