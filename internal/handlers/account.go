package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type currencyRequest struct {
	Currency string `json:"currency" binding:"required"`
}

func (h *Handlers) handleGetCurrency(c *gin.Context) {
	currency, err := h.svc.GetCurrency()
	if err != nil {
		h.renderServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"currency": currency})
}

func (h *Handlers) handleSetCurrency(c *gin.Context) {
	var req currencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency is required"})
		return
	}

	currency := strings.TrimSpace(req.Currency)
	if len(currency) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency must be a three-letter code"})
		return
	}

	ok, err := h.svc.SetCurrency(strings.ToUpper(currency))
	if err != nil {
		h.renderServiceError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update currency"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
