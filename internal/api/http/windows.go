package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// GeometryRequest moves and/or resizes a window
type GeometryRequest struct {
	Position *types.Position `json:"position,omitempty"`
	Size     *types.Size     `json:"size,omitempty"`
}

// ListWindows lists the windows of ?workspace=<id>, or of the active workspace
func (h *Handlers) ListWindows(c *gin.Context) {
	wsID := h.windows.ActiveWorkspaceID()
	if raw := c.Query("workspace"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workspace"})
			return
		}
		wsID = v
	}

	windows, err := h.windows.Windows(wsID)
	if err != nil {
		h.fail(c, err)
		return
	}

	body := gin.H{"workspace_id": wsID, "windows": windows}
	if focused, ok := h.windows.Focused(wsID); ok {
		body["focused_window_id"] = focused.ID
	}
	c.JSON(http.StatusOK, body)
}

// CreateWindow opens a window
func (h *Handlers) CreateWindow(c *gin.Context) {
	var req types.CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.windows.CreateWindow(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// GetWindow returns one window
func (h *Handlers) GetWindow(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	w, found := h.windows.Window(windowID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "window not found"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// CloseWindow closes a window
func (h *Handlers) CloseWindow(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.windows.CloseWindow(c.Request.Context(), windowID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "window_id": windowID})
}

// FocusWindow brings a window to the front
func (h *Handlers) FocusWindow(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.windows.BringToFront(c.Request.Context(), windowID); err != nil {
		h.fail(c, err)
		return
	}
	w, _ := h.windows.Window(windowID)
	c.JSON(http.StatusOK, w)
}

// UpdateWindowData replaces a window's payload
func (h *Handlers) UpdateWindowData(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload types.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.windows.UpdateWindowData(c.Request.Context(), windowID, payload); err != nil {
		h.fail(c, err)
		return
	}
	w, _ := h.windows.Window(windowID)
	c.JSON(http.StatusOK, w)
}

// SetGeometry moves and/or resizes a window
func (h *Handlers) SetGeometry(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req GeometryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.windows.SetGeometry(c.Request.Context(), windowID, req.Position, req.Size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// SubmitWorkspaceForm creates the workspace named in a workspace-creation window
func (h *Handlers) SubmitWorkspaceForm(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ws, err := h.windows.SubmitWorkspaceForm(c.Request.Context(), windowID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}
