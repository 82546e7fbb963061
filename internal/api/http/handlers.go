package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/branch"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/chat"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/drag"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/markdown"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/settings"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Deps are the services the handlers expose
type Deps struct {
	Windows  *workspace.Manager
	Chat     *chat.Service
	Branches *branch.Engine
	Drags    *drag.Tracker
	Settings *settings.Store
	Renderer *markdown.Renderer
	Metrics  *monitoring.Metrics
	Logger   *zap.Logger
	// Circuits reports provider breaker states; optional
	Circuits CircuitReporter
}

// CircuitReporter exposes the circuit state of each provider family
type CircuitReporter interface {
	BreakerStates() map[string]string
}

// Handlers contains all HTTP handlers
type Handlers struct {
	windows  *workspace.Manager
	chat     *chat.Service
	branches *branch.Engine
	drags    *drag.Tracker
	settings *settings.Store
	renderer *markdown.Renderer
	metrics  *monitoring.Metrics
	circuits CircuitReporter
	logger   *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		windows:  d.Windows,
		chat:     d.Chat,
		branches: d.Branches,
		drags:    d.Drags,
		settings: d.Settings,
		renderer: d.Renderer,
		metrics:  d.Metrics,
		circuits: d.Circuits,
		logger:   logger,
	}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/state", h.State)

	// Workspaces
	r.GET("/workspaces", h.ListWorkspaces)
	r.POST("/workspaces", h.CreateWorkspace)
	r.DELETE("/workspaces/:id", h.DeleteWorkspace)
	r.POST("/workspaces/:id/activate", h.SwitchWorkspace)

	// Windows
	r.GET("/windows", h.ListWindows)
	r.POST("/windows", h.CreateWindow)
	r.GET("/windows/:id", h.GetWindow)
	r.DELETE("/windows/:id", h.CloseWindow)
	r.POST("/windows/:id/focus", h.FocusWindow)
	r.PUT("/windows/:id/data", h.UpdateWindowData)
	r.PATCH("/windows/:id/geometry", h.SetGeometry)
	r.POST("/windows/:id/submit", h.SubmitWorkspaceForm)

	// Chat
	r.POST("/windows/:id/messages", h.SendMessage)
	r.DELETE("/windows/:id/messages", h.ClearMessages)
	r.GET("/windows/:id/messages/:index/blocks", h.MessageBlocks)
	r.POST("/windows/:id/branch", h.Branch)
	r.GET("/windows/:id/operators", h.ListOperators)
	r.PUT("/windows/:id/operator", h.SelectOperator)
	r.GET("/windows/:id/export", h.Export)

	// Drag and resize
	r.POST("/drags", h.BeginDrag)
	r.PATCH("/drags/:sid", h.MoveDrag)
	r.POST("/drags/:sid/end", h.EndDrag)
	r.DELETE("/drags/:sid", h.CancelDrag)

	// Settings
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.ApplySettings)
	r.PUT("/settings/credentials/:provider", h.SetCredential)
	r.DELETE("/settings/credentials/:provider", h.DeleteCredential)
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "AgentDesk",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"desktop": h.windows.Stats(),
		"drags":   h.drags.Active(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	if h.circuits != nil {
		body["providers"] = h.circuits.BreakerStates()
	}
	c.JSON(http.StatusOK, body)
}

// State returns the full desktop state. The ETag lets pollers skip
// unchanged snapshots with If-None-Match.
func (h *Handlers) State(c *gin.Context) {
	state := h.windows.Snapshot()
	fp, err := utils.Fingerprint(state)
	if err != nil {
		h.fail(c, err)
		return
	}

	etag := `"` + utils.ShortHash(fp) + `"`
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, state)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}
