// Package booking holds the submission state machine for the terminal step
// of the purchase flow. The phases are an explicit enum so illegal
// combinations ("complete" and "submitting" at once) are unrepresentable,
// and a fresh machine is always Idle — reloading mid-flow degrades to "no
// active submission", never to a duplicate charge.
package booking

import (
	"context"
	"errors"
	"sync"

	"boxoffice/internal/external"
	"boxoffice/internal/models"
	"boxoffice/internal/seatmap"
)

// Phase of a booking submission
type Phase string

const (
	PhaseIdle       Phase = "IDLE"
	PhaseValidating Phase = "VALIDATING"
	PhaseSubmitting Phase = "SUBMITTING"
	PhaseConfirmed  Phase = "CONFIRMED"
	PhaseConflict   Phase = "CONFLICT"
	PhaseFailed     Phase = "FAILED"
)

// Precondition and re-entrancy errors. Precondition failures never issue a
// network call.
var (
	ErrEmptySelection   = errors.New("no seats selected")
	ErrNoPaymentMethod  = errors.New("no payment method chosen")
	ErrSubmitInFlight   = errors.New("a submission is already in flight")
	ErrAlreadyConfirmed = errors.New("booking already confirmed")
)

// SubmitFunc performs the actual booking-creation request
type SubmitFunc func(ctx context.Context, seats []seatmap.SeatID, paymentMethod string) (*models.BookingResult, error)

// Machine drives one booking attempt for a selection. Conflict and Failed
// are retryable; Confirmed is terminal.
type Machine struct {
	mu        sync.Mutex
	phase     Phase
	selection []seatmap.SeatID
	result    *models.BookingResult
	conflicts []seatmap.SeatID
	lastErr   error
}

// NewMachine starts Idle with the given selection
func NewMachine(selection []seatmap.SeatID) *Machine {
	return &Machine{
		phase:     PhaseIdle,
		selection: append([]seatmap.SeatID(nil), selection...),
	}
}

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Selection returns the current selection. After a conflict it excludes the
// seats the backend rejected.
func (m *Machine) Selection() []seatmap.SeatID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]seatmap.SeatID(nil), m.selection...)
}

// Conflicts returns the seats named by the most recent conflict outcome
func (m *Machine) Conflicts() []seatmap.SeatID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]seatmap.SeatID(nil), m.conflicts...)
}

// Result returns the confirmation record, nil unless Confirmed
func (m *Machine) Result() *models.BookingResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// LastError returns the error behind a Failed phase
func (m *Machine) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Submit runs one attempt: validate, issue the request, settle the outcome.
// Exactly one request may be in flight; a re-entrant Submit while Submitting
// is rejected rather than queued. If ctx is cancelled while the request is
// in flight the response is discarded on arrival and the machine returns to
// Idle, so an abandoned submission can neither confirm nor double-clear
// anything downstream.
func (m *Machine) Submit(ctx context.Context, paymentMethod string, submit SubmitFunc) (Phase, error) {
	m.mu.Lock()
	switch m.phase {
	case PhaseSubmitting:
		m.mu.Unlock()
		return PhaseSubmitting, ErrSubmitInFlight
	case PhaseConfirmed:
		m.mu.Unlock()
		return PhaseConfirmed, ErrAlreadyConfirmed
	}

	m.phase = PhaseValidating
	if len(m.selection) == 0 {
		m.phase = PhaseIdle
		m.mu.Unlock()
		return PhaseIdle, ErrEmptySelection
	}
	if paymentMethod == "" {
		m.phase = PhaseIdle
		m.mu.Unlock()
		return PhaseIdle, ErrNoPaymentMethod
	}

	m.phase = PhaseSubmitting
	seats := append([]seatmap.SeatID(nil), m.selection...)
	m.mu.Unlock()

	result, err := submit(ctx, seats, paymentMethod)

	m.mu.Lock()
	defer m.mu.Unlock()

	if ctx.Err() != nil {
		m.phase = PhaseIdle
		return PhaseIdle, ctx.Err()
	}

	if err != nil {
		var conflict *external.ConflictError
		if errors.As(err, &conflict) {
			m.conflicts = toSeatIDs(conflict.Seats)
			m.selection = removeSeats(m.selection, m.conflicts)
			m.phase = PhaseConflict
			return PhaseConflict, err
		}
		m.lastErr = err
		m.phase = PhaseFailed
		return PhaseFailed, err
	}

	m.result = result
	m.phase = PhaseConfirmed
	return PhaseConfirmed, nil
}

func toSeatIDs(raw []string) []seatmap.SeatID {
	ids := make([]seatmap.SeatID, 0, len(raw))
	for _, s := range raw {
		if id, ok := seatmap.ParseSeatID(s); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func removeSeats(selection, drop []seatmap.SeatID) []seatmap.SeatID {
	dropped := make(map[seatmap.SeatID]struct{}, len(drop))
	for _, id := range drop {
		dropped[id] = struct{}{}
	}

	kept := selection[:0]
	for _, id := range selection {
		if _, ok := dropped[id]; !ok {
			kept = append(kept, id)
		}
	}
	return kept
}
