/*
Package monitoring provides Prometheus metrics for the desktop backend.

# Overview

Every Metrics value owns a private registry, so tests and multiple servers
in one process never collide on registration.

# Features

- HTTP request metrics (latency, status, response size)
- Desktop metrics (open windows, workspaces, state writes, branches)
- Provider request metrics (latency, status per provider)
- WebSocket connection metrics

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "anthropic")
	// ... call provider ...
	timer.Stop("success")
*/
package monitoring
