package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexibleFloat tolerates prices that arrive as numbers or quoted strings.
// The theatre backend is not consistent about this across endpoints.
type FlexibleFloat float64

// UnmarshalJSON accepts numeric and string-encoded values. Empty and null
// decode to zero.
func (ff *FlexibleFloat) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == "" || str == "null" {
		*ff = 0
		return nil
	}

	value, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return err
	}
	*ff = FlexibleFloat(value)
	return nil
}

// Float64 returns the float64 value
func (ff FlexibleFloat) Float64() float64 {
	return float64(ff)
}

// Screening - a scheduled showing of a movie on a specific screen
type Screening struct {
	ID          int64   `json:"id"`
	MovieTitle  string  `json:"movieTitle"`
	TheatreName string  `json:"theatreName"`
	ScreenName  string  `json:"screenName"`
	StartTime   string  `json:"startTime"`
	Format      string  `json:"format"`
	BasePrice   float64 `json:"basePrice"`
}

// screeningAlias carries the field spellings the backend has been observed to
// use. Camel case wins when both spellings are present.
type screeningAlias struct {
	ID            int64         `json:"id"`
	MovieTitle    string        `json:"movieTitle"`
	MovieTitleAlt string        `json:"movie_title"`
	Title         string        `json:"title"`
	TheatreName   string        `json:"theatreName"`
	TheatreAlt    string        `json:"theatre_name"`
	ScreenName    string        `json:"screenName"`
	ScreenAlt     string        `json:"screen_name"`
	StartTime     string        `json:"startTime"`
	StartTimeAlt  string        `json:"start_time"`
	Format        string        `json:"format"`
	BasePrice     FlexibleFloat `json:"basePrice"`
	BasePriceAlt  FlexibleFloat `json:"base_price"`
	Price         FlexibleFloat `json:"price"`
}

// UnmarshalJSON normalizes the backend's inconsistent field names
func (s *Screening) UnmarshalJSON(data []byte) error {
	var alias screeningAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	s.ID = alias.ID
	s.MovieTitle = firstNonEmpty(alias.MovieTitle, alias.MovieTitleAlt, alias.Title)
	s.TheatreName = firstNonEmpty(alias.TheatreName, alias.TheatreAlt)
	s.ScreenName = firstNonEmpty(alias.ScreenName, alias.ScreenAlt)
	s.StartTime = firstNonEmpty(alias.StartTime, alias.StartTimeAlt)
	s.Format = alias.Format
	s.BasePrice = firstPositive(alias.BasePrice.Float64(), alias.BasePriceAlt.Float64(), alias.Price.Float64())
	return nil
}

// BookingResult - server-issued confirmation record. Produced exactly once per
// successful submission and never mutated afterwards.
type BookingResult struct {
	BookingNumber string     `json:"bookingNumber"`
	ScreeningID   int64      `json:"screeningId"`
	Seats         []string   `json:"seats"`
	TotalAmount   float64    `json:"totalAmount"`
	PaymentMethod string     `json:"paymentMethod"`
	BookedAt      string     `json:"bookedAt"`
	Screening     *Screening `json:"screening,omitempty"`
}

type bookingResultAlias struct {
	BookingNumber    string        `json:"bookingNumber"`
	BookingNumberAlt string        `json:"booking_number"`
	ConfirmationCode string        `json:"confirmationCode"`
	ScreeningID      int64         `json:"screeningId"`
	ScreeningIDAlt   int64         `json:"screening_id"`
	Seats            []string      `json:"seats"`
	BookedSeats      []string      `json:"bookedSeats"`
	TotalAmount      FlexibleFloat `json:"totalAmount"`
	TotalAmountAlt   FlexibleFloat `json:"total_amount"`
	Amount           FlexibleFloat `json:"amount"`
	PaymentMethod    string        `json:"paymentMethod"`
	PaymentMethodAlt string        `json:"payment_method"`
	BookedAt         string        `json:"bookedAt"`
	BookedAtAlt      string        `json:"booked_at"`
	Screening        *Screening    `json:"screening"`
}

// UnmarshalJSON normalizes the backend's inconsistent field names
func (br *BookingResult) UnmarshalJSON(data []byte) error {
	var alias bookingResultAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	br.BookingNumber = firstNonEmpty(alias.BookingNumber, alias.BookingNumberAlt, alias.ConfirmationCode)
	br.ScreeningID = alias.ScreeningID
	if br.ScreeningID == 0 {
		br.ScreeningID = alias.ScreeningIDAlt
	}
	br.Seats = alias.Seats
	if len(br.Seats) == 0 {
		br.Seats = alias.BookedSeats
	}
	br.TotalAmount = firstPositive(alias.TotalAmount.Float64(), alias.TotalAmountAlt.Float64(), alias.Amount.Float64())
	br.PaymentMethod = firstNonEmpty(alias.PaymentMethod, alias.PaymentMethodAlt)
	br.BookedAt = firstNonEmpty(alias.BookedAt, alias.BookedAtAlt)
	br.Screening = alias.Screening
	return nil
}

// ToggleSeatRequest - request to toggle one seat in the current selection
type ToggleSeatRequest struct {
	SeatID string `json:"seat_id" binding:"required"`
}

// CreateBookingRequest - request to finalize the booking for the persisted
// checkout selection. Payment method presence is validated by the submission
// machine, not by binding, so the failure surfaces as a precondition error.
type CreateBookingRequest struct {
	PaymentMethod string `json:"payment_method"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
