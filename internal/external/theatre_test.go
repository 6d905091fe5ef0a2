package external

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetScreeningNormalizesFieldNames(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/screenings/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": 42,
			"movie_title": "The Seventh Seal",
			"theatre_name": "Grand",
			"screen_name": "Screen 2",
			"start_time": "2026-09-01T19:30:00Z",
			"format": "2D",
			"base_price": "12.50"
		}`))
	}))
	defer backend.Close()

	client := NewTheatreClient(TheatreConfig{BaseURL: backend.URL})

	screening, err := client.GetScreening(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), screening.ID)
	assert.Equal(t, "The Seventh Seal", screening.MovieTitle)
	assert.Equal(t, "Grand", screening.TheatreName)
	assert.Equal(t, "Screen 2", screening.ScreenName)
	assert.Equal(t, 12.50, screening.BasePrice)
}

func TestGetScreeningUpstreamError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer backend.Close()

	client := NewTheatreClient(TheatreConfig{BaseURL: backend.URL})

	_, err := client.GetScreening(context.Background(), 42)
	assert.Error(t, err)
}

func TestGetLayoutReturnsRawPayload(t *testing.T) {
	payload := `{"rows":[{"name":"A","seatCount":8}]}`
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/screenings/7/layout", r.URL.Path)
		w.Write([]byte(payload))
	}))
	defer backend.Close()

	client := NewTheatreClient(TheatreConfig{BaseURL: backend.URL})

	raw, err := client.GetLayout(context.Background(), 7)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(raw))
}

func TestCreateBookingConfirmed(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bookings", r.URL.Path)

		var body CreateBookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(7), body.ScreeningID)
		assert.Equal(t, []string{"A1", "B1"}, body.SelectedSeats)
		assert.Equal(t, "CARD", body.PaymentMethod)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"booking_number":"BK-99","bookedSeats":["A1","B1"],"total_amount":"22.00"}`))
	}))
	defer backend.Close()

	client := NewTheatreClient(TheatreConfig{BaseURL: backend.URL})

	result, err := client.CreateBooking(context.Background(), 7, []string{"A1", "B1"}, "CARD")
	require.NoError(t, err)
	assert.Equal(t, "BK-99", result.BookingNumber)
	assert.Equal(t, []string{"A1", "B1"}, result.Seats)
	assert.Equal(t, 22.00, result.TotalAmount)
}

func TestCreateBookingConflict(t *testing.T) {
	bodies := map[string][]string{
		`{"conflictingSeats":["B1"]}`:              {"B1"},
		`{"conflicting_seats":["A1","B1"]}`:        {"A1", "B1"},
		`{"seats":["C3"],"message":"unavailable"}`: {"C3"},
		`{"error":"conflict"}`:                     nil,
		`not json`:                                 nil,
	}

	for body, wantSeats := range bodies {
		t.Run(body, func(t *testing.T) {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(body))
			}))
			defer backend.Close()

			client := NewTheatreClient(TheatreConfig{BaseURL: backend.URL})

			_, err := client.CreateBooking(context.Background(), 7, []string{"A1", "B1"}, "CARD")
			var conflict *ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, wantSeats, conflict.Seats)
		})
	}
}

func TestCreateBookingServerError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	client := NewTheatreClient(TheatreConfig{BaseURL: backend.URL})

	_, err := client.CreateBooking(context.Background(), 7, []string{"A1"}, "CARD")
	require.Error(t, err)
	var conflict *ConflictError
	assert.False(t, errors.As(err, &conflict))
}

func TestCalculatePrice(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body CalculatePriceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"A1", "B1"}, body.SelectedSeats)

		w.Write([]byte(`{"basePrice":10,"totalPrice":"22.00"}`))
	}))
	defer backend.Close()

	client := NewTheatreClient(TheatreConfig{BaseURL: backend.URL})

	calc, err := client.CalculatePrice(context.Background(), 7, []string{"A1", "B1"})
	require.NoError(t, err)
	assert.Equal(t, 10.00, calc.BasePrice.Float64())
	assert.Equal(t, 22.00, calc.TotalPrice.Float64())
}
