// Package middleware provides the HTTP middleware of the desktop API.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing for the desktop UI origins
//   - RateLimit: Per-IP token bucket rate limiting with idle eviction
//   - GlobalRateLimit: One token bucket shared by all clients
//
// Example Usage:
//
//	router.Use(middleware.CORS([]string{"http://localhost:5173"}))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
