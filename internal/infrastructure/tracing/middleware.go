package tracing

import (
	"github.com/gin-gonic/gin"
)

// HTTPMiddleware opens a span per request and echoes the trace id
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.Start(c.Request.Context(), c.Request.Method+" "+name, c.GetHeader(Header))
		c.Request = c.Request.WithContext(ctx)
		c.Header(Header, span.TraceID)

		c.Next()

		var err error
		if len(c.Errors) > 0 {
			err = c.Errors.Last()
		}
		tracer.Finish(span, c.Writer.Status(), err)
	}
}
