package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetScreening - GET /api/screenings/:id
func (h *Handlers) GetScreening(c *gin.Context) {
	id, ok := screeningID(c)
	if !ok {
		return
	}

	screening, err := h.services.Screenings.Get(c.Request.Context(), id)
	if err != nil {
		slog.Error("Failed to get screening", "error", err, "screening_id", id)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load screening"})
		return
	}

	c.JSON(http.StatusOK, screening)
}

// GetSeatMap - GET /api/screenings/:id/seatmap
// Returns the normalized layout, known-booked seats, the session's current
// selection and its quote. Layout and booked-seat shape problems never fail
// this endpoint; they degrade to defaults with an advisory notice.
func (h *Handlers) GetSeatMap(c *gin.Context) {
	id, ok := screeningID(c)
	if !ok {
		return
	}

	view, err := h.services.Screenings.SeatMap(c.Request.Context(), sessionID(c), id)
	if err != nil {
		slog.Error("Failed to build seat map", "error", err, "screening_id", id)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load seat map"})
		return
	}

	c.JSON(http.StatusOK, view)
}
