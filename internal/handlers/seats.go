package handlers

import (
	"log/slog"
	"net/http"

	"boxoffice/internal/models"
	"boxoffice/internal/seatmap"

	"github.com/gin-gonic/gin"
)

// ToggleSeat - POST /api/screenings/:id/seats/toggle
// Toggling a booked seat is a no-op; the response always carries the
// resulting selection and its synchronously recomputed quote.
func (h *Handlers) ToggleSeat(c *gin.Context) {
	id, ok := screeningID(c)
	if !ok {
		return
	}

	var req models.ToggleSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seatID, ok := seatmap.ParseSeatID(req.SeatID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seat id"})
		return
	}

	view, err := h.services.Screenings.Toggle(c.Request.Context(), sessionID(c), id, seatID)
	if err != nil {
		slog.Error("Failed to toggle seat", "error", err, "screening_id", id, "seat_id", seatID)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to toggle seat"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// ClearSeats - POST /api/screenings/:id/seats/clear
func (h *Handlers) ClearSeats(c *gin.Context) {
	id, ok := screeningID(c)
	if !ok {
		return
	}

	view, err := h.services.Screenings.ClearSelection(c.Request.Context(), sessionID(c), id)
	if err != nil {
		slog.Error("Failed to clear selection", "error", err, "screening_id", id)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to clear selection"})
		return
	}

	c.JSON(http.StatusOK, view)
}
