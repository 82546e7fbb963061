package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(c.Request.Method, path, status, time.Since(start), int64(c.Writer.Size()))
	}
}

// Timer measures a provider call
type Timer struct {
	start    time.Time
	metrics  *Metrics
	provider string
}

// NewTimer creates a new timer. A nil metrics makes Stop a no-op.
func NewTimer(metrics *Metrics, provider string) *Timer {
	return &Timer{
		start:    time.Now(),
		metrics:  metrics,
		provider: provider,
	}
}

// Stop records the duration with the given status
func (t *Timer) Stop(status string) {
	if t.metrics == nil {
		return
	}
	t.metrics.RecordProviderRequest(t.provider, status, time.Since(t.start))
}
