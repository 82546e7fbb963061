package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateWorkspaceRequest names a new workspace
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListWorkspaces lists workspaces with the active one
func (h *Handlers) ListWorkspaces(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"workspaces":          h.windows.Workspaces(),
		"active_workspace_id": h.windows.ActiveWorkspaceID(),
	})
}

// CreateWorkspace creates a workspace and switches to it
func (h *Handlers) CreateWorkspace(c *gin.Context) {
	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws, err := h.windows.CreateWorkspace(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

// DeleteWorkspace deletes a workspace and its windows
func (h *Handlers) DeleteWorkspace(c *gin.Context) {
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.windows.DeleteWorkspace(c.Request.Context(), wsID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"active_workspace_id": h.windows.ActiveWorkspaceID(),
	})
}

// SwitchWorkspace makes a workspace active
func (h *Handlers) SwitchWorkspace(c *gin.Context) {
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.windows.SwitchWorkspace(c.Request.Context(), wsID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_workspace_id": wsID})
}
