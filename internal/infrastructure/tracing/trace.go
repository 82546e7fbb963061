package tracing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/id"
)

// Header carries the trace id between the UI and the backend
const Header = "X-Trace-ID"

type contextKey string

const traceIDKey contextKey = "trace_id"

// Span times one request
type Span struct {
	TraceID    string
	Name       string
	StartTime  time.Time
	Duration   time.Duration
	StatusCode int
	Err        error
}

// Tracer logs finished spans
type Tracer struct {
	logger *zap.Logger
	slow   time.Duration
}

// New creates a tracer. Spans slower than slow are logged at Warn; zero
// disables the slow-span warning.
func New(logger *zap.Logger, slow time.Duration) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracer{logger: logger, slow: slow}
}

// Start opens a span, reusing the trace id already in ctx or given by the caller
func (t *Tracer) Start(ctx context.Context, name, traceID string) (*Span, context.Context) {
	if !validTraceID(traceID) {
		traceID = FromContext(ctx)
	}
	if traceID == "" {
		traceID = id.NewRequestID()
	}
	span := &Span{TraceID: traceID, Name: name, StartTime: time.Now()}
	return span, WithTraceID(ctx, traceID)
}

// Finish closes the span and logs it
func (t *Tracer) Finish(span *Span, status int, err error) {
	span.Duration = time.Since(span.StartTime)
	span.StatusCode = status
	span.Err = err

	fields := []zap.Field{
		zap.String("trace_id", span.TraceID),
		zap.String("operation", span.Name),
		zap.Int("status", status),
		zap.Duration("duration", span.Duration),
	}
	switch {
	case err != nil || status >= 500:
		t.logger.Error("request failed", append(fields, zap.Error(err))...)
	case t.slow > 0 && span.Duration > t.slow:
		t.logger.Warn("slow request", fields...)
	default:
		t.logger.Debug("request completed", fields...)
	}
}

// validTraceID accepts short ids of letters, digits, '-' and '_'
func validTraceID(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// WithTraceID stores a trace id in ctx
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// FromContext returns the trace id of ctx or ""
func FromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey).(string)
	return traceID
}

// Logger returns base annotated with the trace id of ctx
func Logger(ctx context.Context, base *zap.Logger) *zap.Logger {
	if traceID := FromContext(ctx); traceID != "" {
		return base.With(zap.String("trace_id", traceID))
	}
	return base
}
