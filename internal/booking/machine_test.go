package booking

import (
	"context"
	"errors"
	"testing"

	"boxoffice/internal/external"
	"boxoffice/internal/models"
	"boxoffice/internal/seatmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmingSubmit(result *models.BookingResult) SubmitFunc {
	return func(ctx context.Context, seats []seatmap.SeatID, paymentMethod string) (*models.BookingResult, error) {
		return result, nil
	}
}

func TestSubmitConfirms(t *testing.T) {
	machine := NewMachine([]seatmap.SeatID{"A1", "B1"})
	result := &models.BookingResult{BookingNumber: "BK-1", Seats: []string{"A1", "B1"}}

	phase, err := machine.Submit(context.Background(), "CARD", confirmingSubmit(result))

	require.NoError(t, err)
	assert.Equal(t, PhaseConfirmed, phase)
	assert.Equal(t, result, machine.Result())
}

// Precondition failures resolve locally: no network call, machine back to Idle
func TestSubmitEmptySelectionNeverCallsNetwork(t *testing.T) {
	machine := NewMachine(nil)

	called := false
	phase, err := machine.Submit(context.Background(), "CARD", func(ctx context.Context, seats []seatmap.SeatID, pm string) (*models.BookingResult, error) {
		called = true
		return nil, nil
	})

	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, PhaseIdle, phase)
	assert.False(t, called)
}

func TestSubmitMissingPaymentMethod(t *testing.T) {
	machine := NewMachine([]seatmap.SeatID{"A1"})

	called := false
	phase, err := machine.Submit(context.Background(), "", func(ctx context.Context, seats []seatmap.SeatID, pm string) (*models.BookingResult, error) {
		called = true
		return nil, nil
	})

	assert.ErrorIs(t, err, ErrNoPaymentMethod)
	assert.Equal(t, PhaseIdle, phase)
	assert.False(t, called)

	// Fully recoverable: the same machine can submit once the method is set
	phase, err = machine.Submit(context.Background(), "CARD", confirmingSubmit(&models.BookingResult{BookingNumber: "BK-2"}))
	require.NoError(t, err)
	assert.Equal(t, PhaseConfirmed, phase)
}

func TestSubmitConflictReducesSelection(t *testing.T) {
	machine := NewMachine([]seatmap.SeatID{"A1", "B1"})

	phase, err := machine.Submit(context.Background(), "CARD", func(ctx context.Context, seats []seatmap.SeatID, pm string) (*models.BookingResult, error) {
		return nil, &external.ConflictError{Seats: []string{"B1"}}
	})

	assert.Equal(t, PhaseConflict, phase)
	var conflict *external.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []seatmap.SeatID{"B1"}, machine.Conflicts())
	assert.Equal(t, []seatmap.SeatID{"A1"}, machine.Selection())

	// Retryable with the reduced selection, no re-fetch needed
	phase, err = machine.Submit(context.Background(), "CARD", confirmingSubmit(&models.BookingResult{BookingNumber: "BK-3", Seats: []string{"A1"}}))
	require.NoError(t, err)
	assert.Equal(t, PhaseConfirmed, phase)
}

func TestSubmitFailureIsRetryable(t *testing.T) {
	machine := NewMachine([]seatmap.SeatID{"A1"})
	boom := errors.New("upstream down")

	phase, err := machine.Submit(context.Background(), "CARD", func(ctx context.Context, seats []seatmap.SeatID, pm string) (*models.BookingResult, error) {
		return nil, boom
	})

	assert.Equal(t, PhaseFailed, phase)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, machine.LastError(), boom)
	// Selection untouched by a plain failure
	assert.Equal(t, []seatmap.SeatID{"A1"}, machine.Selection())

	phase, err = machine.Submit(context.Background(), "CARD", confirmingSubmit(&models.BookingResult{BookingNumber: "BK-4"}))
	require.NoError(t, err)
	assert.Equal(t, PhaseConfirmed, phase)
}

// Exactly one request in flight: a submit racing an active one is rejected,
// not queued
func TestSubmitReentrantRejected(t *testing.T) {
	machine := NewMachine([]seatmap.SeatID{"A1"})

	release := make(chan struct{})
	inFlight := make(chan struct{})
	done := make(chan struct{})

	go func() {
		machine.Submit(context.Background(), "CARD", func(ctx context.Context, seats []seatmap.SeatID, pm string) (*models.BookingResult, error) {
			close(inFlight)
			<-release
			return &models.BookingResult{BookingNumber: "BK-5"}, nil
		})
		close(done)
	}()

	<-inFlight
	phase, err := machine.Submit(context.Background(), "CARD", confirmingSubmit(nil))
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.Equal(t, PhaseSubmitting, phase)

	close(release)
	<-done
	assert.Equal(t, PhaseConfirmed, machine.Phase())
}

func TestSubmitAfterConfirmedRejected(t *testing.T) {
	machine := NewMachine([]seatmap.SeatID{"A1"})

	_, err := machine.Submit(context.Background(), "CARD", confirmingSubmit(&models.BookingResult{BookingNumber: "BK-6"}))
	require.NoError(t, err)

	phase, err := machine.Submit(context.Background(), "CARD", confirmingSubmit(&models.BookingResult{BookingNumber: "BK-7"}))
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
	assert.Equal(t, PhaseConfirmed, phase)
	// The original result is untouched
	assert.Equal(t, "BK-6", machine.Result().BookingNumber)
}

// A response arriving after the caller walked away is discarded: no
// confirmation, no result, machine back to Idle
func TestSubmitCancelledDiscardsResponse(t *testing.T) {
	machine := NewMachine([]seatmap.SeatID{"A1"})
	ctx, cancel := context.WithCancel(context.Background())

	phase, err := machine.Submit(ctx, "CARD", func(ctx context.Context, seats []seatmap.SeatID, pm string) (*models.BookingResult, error) {
		cancel()
		return &models.BookingResult{BookingNumber: "BK-8"}, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, PhaseIdle, phase)
	assert.Nil(t, machine.Result())
	assert.Equal(t, PhaseIdle, machine.Phase())
}
