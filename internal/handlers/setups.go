package handlers

import (
	"net/http"

	"rigtally/internal/models"

	"github.com/gin-gonic/gin"
)

type setupRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	Parts       []models.SetupPartInput `json:"parts"`
}

func (h *Handlers) handleListSetups(c *gin.Context) {
	setups, err := h.svc.ListSetups()
	if err != nil {
		h.renderServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"setups": setups})
}

func (h *Handlers) handleCreateSetup(c *gin.Context) {
	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	setup, state, err := h.svc.CreateSetup(req.Name, req.Description, req.Parts)
	if err != nil {
		h.renderServiceError(c, err)
		return
	}
	if setup == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        "Failed to create setup",
			"commit_state": state.String(),
		})
		return
	}

	c.JSON(http.StatusCreated, setup)
}

func (h *Handlers) handleGetSetupParts(c *gin.Context) {
	parts, err := h.svc.GetSetupParts(c.Param("id"))
	if err != nil {
		h.renderServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"parts": parts})
}

func (h *Handlers) handleLoadSetup(c *gin.Context) {
	loaded, err := h.svc.LoadSetupIntoParts(c.Param("id"))
	if err != nil {
		h.renderServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loaded": loaded})
}

func (h *Handlers) handleUpdateSetup(c *gin.Context) {
	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	ok, err := h.svc.UpdateSetup(c.Param("id"), req.Name, req.Description, req.Parts)
	if err != nil {
		h.renderServiceError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update setup"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) handleDeleteSetup(c *gin.Context) {
	ok, err := h.svc.DeleteSetup(c.Param("id"))
	if err != nil {
		h.renderServiceError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Setup not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
