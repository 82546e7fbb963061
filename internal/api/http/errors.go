package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/branch"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/chat"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/drag"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/providers/llm"
)

var statuses = []struct {
	err    error
	status int
}{
	{workspace.ErrInvalidWorkspace, http.StatusNotFound},
	{workspace.ErrUnknownWindow, http.StatusNotFound},
	{drag.ErrUnknownSession, http.StatusNotFound},
	{workspace.ErrProtectedWorkspace, http.StatusForbidden},
	{workspace.ErrDuplicateName, http.StatusConflict},
	{chat.ErrAwaitingResponse, http.StatusConflict},
	{workspace.ErrInvalidName, http.StatusBadRequest},
	{workspace.ErrInvalidWindowType, http.StatusBadRequest},
	{workspace.ErrPayloadMismatch, http.StatusBadRequest},
	{chat.ErrNotChatWindow, http.StatusBadRequest},
	{chat.ErrEmptyMessage, http.StatusBadRequest},
	{chat.ErrMessageTooLong, http.StatusRequestEntityTooLarge},
	{chat.ErrUnknownOperator, http.StatusBadRequest},
	{chat.ErrUnsupportedFormat, http.StatusBadRequest},
	{chat.ErrInvalidScope, http.StatusBadRequest},
	{chat.ErrOperatorUnavailable, http.StatusUnprocessableEntity},
	{branch.ErrInvalidSource, http.StatusBadRequest},
	{branch.ErrUnknownBlock, http.StatusBadRequest},
	{drag.ErrInvalidKind, http.StatusBadRequest},
	{llm.ErrUnknownProvider, http.StatusBadRequest},
	{llm.ErrCredentialMissing, http.StatusUnprocessableEntity},
	{llm.ErrRequestFailed, http.StatusBadGateway},
}

// statusFor maps a domain error to an HTTP status
func statusFor(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		tracing.Logger(c.Request.Context(), h.logger).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
