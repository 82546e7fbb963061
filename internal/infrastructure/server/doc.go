// Package server assembles the desktop backend: it restores the saved
// desktop from the store, wires the domain services to the event bus and
// exposes them through gin with tracing, metrics, CORS and rate limiting.
package server
