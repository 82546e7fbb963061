package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/branch"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/chat"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// SelectOperatorRequest picks a window's operator
type SelectOperatorRequest struct {
	OperatorID string `json:"operatorId" binding:"required"`
}

// SendMessage sends a user message and waits for the reply
func (h *Handlers) SendMessage(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.chat.Send(c.Request.Context(), windowID, req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// ClearMessages removes messages; ?scope=all|user|assistant, default all
func (h *Handlers) ClearMessages(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	scope := chat.ClearScope(c.DefaultQuery("scope", string(chat.ClearAll)))

	w, err := h.chat.Clear(c.Request.Context(), windowID, scope)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// MessageBlocks renders a message into its clickable blocks
func (h *Handlers) MessageBlocks(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}

	w, found := h.windows.Window(windowID)
	if !found || w.Data.Chat == nil {
		h.fail(c, fmt.Errorf("%w: %d", chat.ErrNotChatWindow, windowID))
		return
	}
	if index < 0 || index >= len(w.Data.Chat.Messages) {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}

	blocks := h.renderer.Render(w.Data.Chat.Messages[index].Content)
	if blocks == nil {
		blocks = []types.Block{}
	}
	c.JSON(http.StatusOK, gin.H{"message_index": index, "blocks": blocks})
}

// Branch forks a chat at a clicked block
func (h *Handlers) Branch(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req types.BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		res branch.Result
		err error
	)
	switch {
	case req.Block != nil:
		res, err = h.branches.Branch(c.Request.Context(), windowID, req.MessageIndex, *req.Block)
	case req.BlockIndex != nil:
		res, err = h.branches.BranchAt(c.Request.Context(), windowID, req.MessageIndex, *req.BlockIndex)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "block or blockIndex is required"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	status := http.StatusOK
	if res.Outcome == branch.OutcomeCreated {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// ListOperators lists the operators selectable for a window
func (h *Handlers) ListOperators(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ops, err := h.chat.Operators(windowID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if ops == nil {
		ops = []chat.OperatorView{}
	}
	c.JSON(http.StatusOK, gin.H{"operators": ops})
}

// SelectOperator switches a window's operator
func (h *Handlers) SelectOperator(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req SelectOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.chat.SelectOperator(c.Request.Context(), windowID, req.OperatorID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// Export downloads a conversation; ?format=text|json|markdown|yaml, default markdown
func (h *Handlers) Export(c *gin.Context) {
	windowID, ok := paramID(c, "id")
	if !ok {
		return
	}
	format := chat.Format(c.DefaultQuery("format", string(chat.FormatMarkdown)))

	data, contentType, err := h.chat.Export(windowID, format)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="chat-%d.%s"`, windowID, extension(format)))
	c.Data(http.StatusOK, contentType, data)
}

func extension(f chat.Format) string {
	switch f {
	case chat.FormatJSON:
		return "json"
	case chat.FormatYAML:
		return "yaml"
	case chat.FormatMarkdown:
		return "md"
	}
	return "txt"
}
