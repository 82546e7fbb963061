package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/drag"
)

// BeginDragRequest starts a move or resize session
type BeginDragRequest struct {
	WindowID int64      `json:"windowId" binding:"required"`
	Kind     drag.Kind  `json:"kind" binding:"required"`
	Pointer  drag.Point `json:"pointer"`
}

// PointerRequest reports the pointer during a session
type PointerRequest struct {
	Pointer drag.Point `json:"pointer"`
}

// BeginDrag starts a drag session on pointer press
func (h *Handlers) BeginDrag(c *gin.Context) {
	var req BeginDragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sid, err := h.drags.Begin(c.Request.Context(), req.WindowID, req.Kind, req.Pointer)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": sid})
}

// MoveDrag reports a pointer move; committed says whether it was written
func (h *Handlers) MoveDrag(c *gin.Context) {
	var req PointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	committed, err := h.drags.Move(c.Request.Context(), c.Param("sid"), req.Pointer)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"committed": committed})
}

// EndDrag commits the final geometry on pointer release
func (h *Handlers) EndDrag(c *gin.Context) {
	var req PointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.drags.End(c.Request.Context(), c.Param("sid"), req.Pointer)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// CancelDrag drops a session without a final write
func (h *Handlers) CancelDrag(c *gin.Context) {
	h.drags.Cancel(c.Param("sid"))
	c.Status(http.StatusNoContent)
}
