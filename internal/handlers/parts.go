package handlers

import (
	"errors"
	"net/http"

	"rigtally/internal/models"
	"rigtally/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type savePartRequest struct {
	Component string          `json:"component" binding:"required"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	SortOrder *int            `json:"sort_order"`
}

type partOrdersRequest struct {
	Parts []models.Part `json:"parts" binding:"required"`
}

func (h *Handlers) handleListParts(c *gin.Context) {
	parts, err := h.svc.ListParts()
	if err != nil {
		h.renderServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"parts": parts})
}

func (h *Handlers) handleSavePart(c *gin.Context) {
	var req savePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Component is required"})
		return
	}

	part, err := h.svc.SavePart(req.Component, req.Name, req.Amount, req.SortOrder)
	if err != nil {
		h.renderServiceError(c, err)
		return
	}
	if part == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save part"})
		return
	}

	c.JSON(http.StatusOK, part)
}

func (h *Handlers) handleUpdatePartOrders(c *gin.Context) {
	var req partOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parts are required"})
		return
	}

	ok, err := h.svc.UpdatePartOrders(req.Parts)
	if err != nil {
		h.renderServiceError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update part orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) handleDeletePart(c *gin.Context) {
	ok, err := h.svc.DeletePart(c.Param("id"))
	if err != nil {
		h.renderServiceError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Part not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) handleSeedParts(c *gin.Context) {
	if err := h.svc.SeedDefaultParts(); err != nil {
		h.renderServiceError(c, err)
		return
	}

	parts, err := h.svc.ListParts()
	if err != nil {
		h.renderServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"parts": parts})
}

func (h *Handlers) renderServiceError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrNotAuthenticated) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}
