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
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "libraryhub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "libraryhub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	authzDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "libraryhub_authz_decisions_total",
		Help: "Authorization checks by outcome",
	}, []string{"decision"})

	bookMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "libraryhub_book_mutations_total",
		Help: "Book writes by operation and result",
	}, []string{"operation", "result"})

	identityCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "libraryhub_identity_cache_lookups_total",
		Help: "Identity cache lookups by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAuthzDecision counts one "allow" or "deny".
func ObserveAuthzDecision(decision string) {
	authzDecisions.WithLabelValues(decision).Inc()
}

// ObserveBookMutation counts a create/update/delete attempt.
func ObserveBookMutation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	bookMutations.WithLabelValues(operation, result).Inc()
}

// ObserveIdentityCache counts a "hit", "miss" or "error".
func ObserveIdentityCache(result string) {
	identityCache.WithLabelValues(result).Inc()
}

// Middleware records every request under its route template, so
// /api/books/1 and /api/books/2 share a series.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		ObserveHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
