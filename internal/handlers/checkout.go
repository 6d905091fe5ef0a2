package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"boxoffice/internal/booking"
	"boxoffice/internal/handoff"

	"github.com/gin-gonic/gin"
)

// StartCheckout - POST /api/screenings/:id/checkout
// Persists the current selection across the navigation to the checkout
// screen. An empty selection is a precondition failure and persists nothing.
func (h *Handlers) StartCheckout(c *gin.Context) {
	id, ok := screeningID(c)
	if !ok {
		return
	}

	view, err := h.services.Checkout.Begin(c.Request.Context(), sessionID(c), id)
	if err != nil {
		if errors.Is(err, booking.ErrEmptySelection) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "select at least one seat before checkout"})
			return
		}
		slog.Error("Failed to start checkout", "error", err, "screening_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start checkout"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetCheckout - GET /api/screenings/:id/checkout
// Reconstructs the carried-over selection. A missing or corrupt handoff
// sends the user back to seat selection; checkout never proceeds with an
// empty or partial selection.
func (h *Handlers) GetCheckout(c *gin.Context) {
	id, ok := screeningID(c)
	if !ok {
		return
	}

	view, err := h.services.Checkout.Resume(c.Request.Context(), sessionID(c), id)
	if err != nil {
		if errors.Is(err, handoff.ErrNoHandoff) {
			c.JSON(http.StatusConflict, gin.H{
				"error":    "no checkout in progress",
				"redirect": "seat-selection",
			})
			return
		}
		slog.Error("Failed to resume checkout", "error", err, "screening_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resume checkout"})
		return
	}

	c.JSON(http.StatusOK, view)
}
