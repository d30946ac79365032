package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics records request latency by matched route. Unmatched paths are
// grouped under "unmatched" to keep label cardinality bounded.
func Metrics(namespace string, reg prom.Registerer) (gin.HandlerFunc, error) {
	requests := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route, method and status.",
		Buckets:   prom.DefBuckets,
	}, []string{"route", "method", "status"})

	if err := reg.Register(requests); err != nil {
		var are prom.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		requests = are.ExistingCollector.(*prom.HistogramVec)
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}, nil
}
