package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"boxoffice/internal/models"
)

// TheatreClient talks to the external theatre backend. The backend is the
// sole arbiter of seat inventory; this client only reads snapshots and
// proposes bookings.
type TheatreClient struct {
	baseURL    string
	httpClient *http.Client
}

type TheatreConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CalculatePriceRequest - payload for the server-side price calculation,
// used only when no layout is available locally
type CalculatePriceRequest struct {
	ScreeningID   int64    `json:"screeningId"`
	SelectedSeats []string `json:"selectedSeats"`
}

// PriceCalculation - server-side price calculation result
type PriceCalculation struct {
	BasePrice  models.FlexibleFloat `json:"basePrice"`
	TotalPrice models.FlexibleFloat `json:"totalPrice"`
}

// CreateBookingRequest - payload for booking creation
type CreateBookingRequest struct {
	ScreeningID   int64    `json:"screeningId"`
	SelectedSeats []string `json:"selectedSeats"`
	PaymentMethod string   `json:"paymentMethod"`
}

// ConflictError reports that one or more requested seats were claimed by
// another booking between the client's last read and submission. This is an
// expected outcome, not an exceptional failure.
type ConflictError struct {
	Seats []string
}

func (e *ConflictError) Error() string {
	if len(e.Seats) == 0 {
		return "seats no longer available"
	}
	return fmt.Sprintf("seats no longer available: %s", strings.Join(e.Seats, ", "))
}

func NewTheatreClient(cfg TheatreConfig) *TheatreClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &TheatreClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (tc *TheatreClient) GetScreening(ctx context.Context, id int64) (*models.Screening, error) {
	url := fmt.Sprintf("%s/api/screenings/%d", tc.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get screening: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result models.Screening
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// GetLayout returns the raw layout payload. The shape varies by theatre, so
// interpretation is left to the normalizer.
func (tc *TheatreClient) GetLayout(ctx context.Context, id int64) (json.RawMessage, error) {
	return tc.getRaw(ctx, fmt.Sprintf("%s/api/screenings/%d/layout", tc.baseURL, id), "layout")
}

// GetBookedSeats returns the raw booked-seats payload, shape-tolerant for the
// same reason as GetLayout.
func (tc *TheatreClient) GetBookedSeats(ctx context.Context, id int64) (json.RawMessage, error) {
	return tc.getRaw(ctx, fmt.Sprintf("%s/api/screenings/%d/booked-seats", tc.baseURL, id), "booked seats")
}

func (tc *TheatreClient) getRaw(ctx context.Context, url, what string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", what, err)
	}

	return json.RawMessage(body), nil
}

func (tc *TheatreClient) CalculatePrice(ctx context.Context, screeningID int64, seats []string) (*PriceCalculation, error) {
	reqBody := CalculatePriceRequest{ScreeningID: screeningID, SelectedSeats: seats}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tc.baseURL+"/api/bookings/calculate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result PriceCalculation
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// CreateBooking submits the finalized selection. An HTTP 409 response is
// returned as *ConflictError carrying the seats the backend named, so the
// caller can reduce the selection and let the user retry.
func (tc *TheatreClient) CreateBooking(ctx context.Context, screeningID int64, seats []string, paymentMethod string) (*models.BookingResult, error) {
	reqBody := CreateBookingRequest{ScreeningID: screeningID, SelectedSeats: seats, PaymentMethod: paymentMethod}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tc.baseURL+"/api/bookings", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		body, _ := io.ReadAll(resp.Body)
		return nil, &ConflictError{Seats: parseConflictSeats(body)}
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result models.BookingResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// parseConflictSeats extracts the conflicting seat list from a 409 body,
// tolerating the field spellings the backend has used. An unparsable body
// yields an empty list, which reduces nothing and leaves a plain retry.
func parseConflictSeats(body []byte) []string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}

	for _, key := range []string{"conflictingSeats", "conflicting_seats", "seats"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var seats []string
		if err := json.Unmarshal(raw, &seats); err == nil && len(seats) > 0 {
			return seats
		}
	}
	return nil
}
