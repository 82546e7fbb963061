package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics on a private registry
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Desktop metrics
	WindowsOpen    prometheus.Gauge
	WindowsCreated *prometheus.CounterVec
	Workspaces     prometheus.Gauge
	PersistWrites  *prometheus.CounterVec
	StateRecovered prometheus.Counter
	Branches       *prometheus.CounterVec
	DragCommits    *prometheus.CounterVec

	// Provider metrics
	ProviderRequests *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	ProviderBreaker  *prometheus.GaugeVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON stats endpoint
type Snapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	OpenWindows       int64   `json:"open_windows"`
	ActiveConnections int64   `json:"active_connections"`
	PersistFailures   int64   `json:"persist_failures"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		Registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		WindowsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktop_windows_open",
				Help: "Number of open windows across all workspaces",
			},
		),
		WindowsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_windows_created_total",
				Help: "Total number of windows created",
			},
			[]string{"type"},
		),
		Workspaces: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktop_workspaces",
				Help: "Number of workspaces",
			},
		),
		PersistWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_persist_writes_total",
				Help: "State writes to the local store",
			},
			[]string{"result"},
		),
		StateRecovered: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "desktop_state_recovered_total",
				Help: "Times stored state was discarded at startup",
			},
		),
		Branches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_branches_total",
				Help: "Conversation branch attempts by outcome",
			},
			[]string{"outcome"},
		),
		DragCommits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_drag_commits_total",
				Help: "Geometry writes from drag sessions",
			},
			[]string{"phase"},
		),

		ProviderRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_provider_requests_total",
				Help: "Language model provider requests",
			},
			[]string{"provider", "status"},
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_provider_duration_seconds",
				Help:    "Language model provider latency in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider"},
		),
		ProviderBreaker: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "desktop_provider_breaker_state",
				Help: "Provider circuit state: 0 closed, 1 half-open, 2 open",
			},
			[]string{"provider"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktop_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "desktop_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// SetDesktop records current window and workspace counts
func (m *Metrics) SetDesktop(windows, workspaces int) {
	m.WindowsOpen.Set(float64(windows))
	m.Workspaces.Set(float64(workspaces))

	m.mu.Lock()
	m.snapshot.OpenWindows = int64(windows)
	m.mu.Unlock()
}

// IncWindowsCreated increments the created-windows counter
func (m *Metrics) IncWindowsCreated(windowType string) {
	m.WindowsCreated.WithLabelValues(windowType).Inc()
}

// RecordPersist records the result of a state write
func (m *Metrics) RecordPersist(err error) {
	if err == nil {
		m.PersistWrites.WithLabelValues("success").Inc()
		return
	}
	m.PersistWrites.WithLabelValues("error").Inc()

	m.mu.Lock()
	m.snapshot.PersistFailures++
	m.mu.Unlock()
}

// IncStateRecovered records a discarded stored state
func (m *Metrics) IncStateRecovered() {
	m.StateRecovered.Inc()
}

// RecordBranch records a branch attempt
func (m *Metrics) RecordBranch(outcome string) {
	m.Branches.WithLabelValues(outcome).Inc()
}

// RecordDragCommit records a geometry write from a drag session
func (m *Metrics) RecordDragCommit(phase string) {
	m.DragCommits.WithLabelValues(phase).Inc()
}

// RecordProviderRequest records a provider call
func (m *Metrics) RecordProviderRequest(provider, status string, duration time.Duration) {
	m.ProviderRequests.WithLabelValues(provider, status).Inc()
	m.ProviderDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// SetProviderBreaker records a provider circuit transition
func (m *Metrics) SetProviderBreaker(provider string, state int) {
	m.ProviderBreaker.WithLabelValues(provider).Set(float64(state))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns a copy of the tracked values
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
