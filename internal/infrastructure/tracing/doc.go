// Package tracing assigns each HTTP request a trace id, propagates it
// through the request context and logs the request's span when it ends.
//
// A client may pass its own id in the X-Trace-ID header; otherwise a ULID
// is generated. Domain code that logs with Logger(ctx, base) gets the trace
// id attached to every line.
package tracing
