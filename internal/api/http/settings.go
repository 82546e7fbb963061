package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/shared/types"
)

// CredentialRequest sets one provider key
type CredentialRequest struct {
	Key string `json:"key" binding:"required"`
}

// GetSettings reports which providers have keys, masked
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": h.settings.Providers(),
		"apiKeys":   h.settings.Masked(),
	})
}

// ApplySettings saves the credentials of a settings window
func (h *Handlers) ApplySettings(c *gin.Context) {
	var payload types.SettingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settings.Apply(c.Request.Context(), payload); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": h.settings.Providers()})
}

// SetCredential stores one provider key
func (h *Handlers) SetCredential(c *gin.Context) {
	var req CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settings.SetCredential(c.Request.Context(), c.Param("provider"), req.Key); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": h.settings.Providers()})
}

// DeleteCredential removes one provider key
func (h *Handlers) DeleteCredential(c *gin.Context) {
	if err := h.settings.DeleteCredential(c.Request.Context(), c.Param("provider")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": h.settings.Providers()})
}
