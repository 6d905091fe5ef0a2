package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"boxoffice/internal/booking"
	"boxoffice/internal/handoff"
	"boxoffice/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateBooking - POST /api/screenings/:id/bookings
// Drives the submission state machine for the persisted checkout selection.
func (h *Handlers) CreateBooking(c *gin.Context) {
	id, ok := screeningID(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.services.Checkout.Submit(c.Request.Context(), sessionID(c), id, req.PaymentMethod)
	if err != nil {
		if errors.Is(err, handoff.ErrNoHandoff) {
			c.JSON(http.StatusConflict, gin.H{
				"error":    "no checkout in progress",
				"redirect": "seat-selection",
			})
			return
		}
		slog.Error("Failed to submit booking", "error", err, "screening_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit booking"})
		return
	}

	switch outcome.Phase {
	case booking.PhaseConfirmed:
		if errors.Is(outcome.Err, booking.ErrAlreadyConfirmed) {
			c.JSON(http.StatusConflict, gin.H{"error": "this booking was already confirmed"})
			return
		}
		c.JSON(http.StatusCreated, outcome.Result)

	case booking.PhaseConflict:
		c.JSON(http.StatusConflict, gin.H{
			"error":             "some seats were booked by another customer",
			"conflicting_seats": outcome.Conflicts,
			"selection":         outcome.Selection,
			"retryable":         true,
		})

	case booking.PhaseFailed:
		slog.Error("Booking submission failed", "error", outcome.Err, "screening_id", id)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "booking could not be completed, please try again",
			"retryable": true,
		})

	default:
		// Preconditions and re-entrancy violations resolve locally,
		// without a network call
		switch {
		case errors.Is(outcome.Err, booking.ErrEmptySelection):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no seats selected"})
		case errors.Is(outcome.Err, booking.ErrNoPaymentMethod):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "choose a payment method"})
		case errors.Is(outcome.Err, booking.ErrSubmitInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "a submission is already in progress"})
		case errors.Is(outcome.Err, booking.ErrAlreadyConfirmed):
			c.JSON(http.StatusConflict, gin.H{"error": "this booking was already confirmed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit booking"})
		}
	}
}
