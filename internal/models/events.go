package models

import "time"

// NATS Event Types
const (
	EventCheckoutStarted   = "checkout.started"
	EventBookingConfirmed  = "booking.confirmed"
	EventBookingConflicted = "booking.conflicted"
	EventBookingFailed     = "booking.failed"
)

// CheckoutStartedEvent is published when a selection is handed off to checkout
type CheckoutStartedEvent struct {
	SessionID   string    `json:"session_id"`
	ScreeningID int64     `json:"screening_id"`
	Seats       []string  `json:"seats"`
	TotalPrice  float64   `json:"total_price"`
	Timestamp   time.Time `json:"timestamp"`
}

// BookingConfirmedEvent is published after the backend accepts a submission
type BookingConfirmedEvent struct {
	SessionID     string    `json:"session_id"`
	ScreeningID   int64     `json:"screening_id"`
	BookingNumber string    `json:"booking_number"`
	Seats         []string  `json:"seats"`
	TotalAmount   float64   `json:"total_amount"`
	Timestamp     time.Time `json:"timestamp"`
}

// BookingConflictedEvent is published when the backend rejects seats that were
// claimed by another booking after the client's last read
type BookingConflictedEvent struct {
	SessionID        string    `json:"session_id"`
	ScreeningID      int64     `json:"screening_id"`
	ConflictingSeats []string  `json:"conflicting_seats"`
	Timestamp        time.Time `json:"timestamp"`
}

// BookingFailedEvent is published on any other submission failure
type BookingFailedEvent struct {
	SessionID   string    `json:"session_id"`
	ScreeningID int64     `json:"screening_id"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}
