package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"boxoffice/internal/booking"
	"boxoffice/internal/external"
	"boxoffice/internal/handoff"
	"boxoffice/internal/logger"
	"boxoffice/internal/messaging"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
	"boxoffice/internal/pricing"
	"boxoffice/internal/seatmap"
	"boxoffice/internal/session"
)

// CheckoutView - the selection and quote as carried into the checkout screen
type CheckoutView struct {
	ScreeningID int64            `json:"screening_id"`
	Selection   []seatmap.SeatID `json:"selection"`
	Quote       pricing.Quote    `json:"quote"`
}

// SubmissionOutcome - result of one submission attempt. Err carries the
// machine's error for non-confirmed phases.
type SubmissionOutcome struct {
	Phase     booking.Phase
	Result    *models.BookingResult
	Conflicts []seatmap.SeatID
	Selection []seatmap.SeatID
	Err       error
}

// CheckoutService carries the selection across the seat-selection to
// checkout transition and drives the booking submission machine.
type CheckoutService struct {
	client   *external.TheatreClient
	registry *session.Registry
	store    handoff.Store
	calc     *pricing.Calculator
	nats     *messaging.NATSClient

	mu       sync.Mutex
	machines map[string]*booking.Machine
}

func NewCheckoutService(client *external.TheatreClient, registry *session.Registry, store handoff.Store, calc *pricing.Calculator, natsClient *messaging.NATSClient) *CheckoutService {
	return &CheckoutService{
		client:   client,
		registry: registry,
		store:    store,
		calc:     calc,
		nats:     natsClient,
		machines: make(map[string]*booking.Machine),
	}
}

// Begin persists the current selection through the handoff store so it
// survives the navigation to the checkout screen. An empty selection is a
// precondition failure: nothing is persisted.
func (s *CheckoutService) Begin(ctx context.Context, sessionID string, screeningID int64) (*CheckoutView, error) {
	var selection []seatmap.SeatID
	var layout seatmap.Layout
	found := s.registry.Update(sessionID, screeningID, func(state *seatmap.State) {
		selection = state.Selection()
		layout = state.Layout
	})
	if !found || len(selection) == 0 {
		return nil, booking.ErrEmptySelection
	}

	seats := make([]string, len(selection))
	for i, id := range selection {
		seats[i] = string(id)
	}
	rec := handoff.Record{
		ScreeningID: screeningID,
		Seats:       seats,
		SavedAt:     time.Now(),
	}
	if err := s.store.Save(ctx, sessionID, rec); err != nil {
		return nil, fmt.Errorf("failed to persist checkout handoff: %w", err)
	}

	quote := s.calc.Local(layout, selection)

	s.publish(models.EventCheckoutStarted, models.CheckoutStartedEvent{
		SessionID:   sessionID,
		ScreeningID: screeningID,
		Seats:       seats,
		TotalPrice:  quote.TotalPrice,
		Timestamp:   time.Now(),
	})

	return &CheckoutView{ScreeningID: screeningID, Selection: selection, Quote: quote}, nil
}

// Resume reconstructs the checkout view from the persisted handoff. Returns
// handoff.ErrNoHandoff when nothing valid was carried over, in which case
// the caller must send the user back to seat selection.
func (s *CheckoutService) Resume(ctx context.Context, sessionID string, screeningID int64) (*CheckoutView, error) {
	rec, err := s.store.Load(ctx, sessionID, screeningID)
	if err != nil {
		return nil, err
	}

	selection := toSeatIDs(rec.Seats)
	if len(selection) == 0 {
		return nil, handoff.ErrNoHandoff
	}

	// Prefer the cached layout for a local quote; fall back to the backend
	// calculation when the seat-map state is gone (e.g. after a restart)
	var layout *seatmap.Layout
	s.registry.Update(sessionID, screeningID, func(state *seatmap.State) {
		l := state.Layout
		layout = &l
	})

	return &CheckoutView{
		ScreeningID: screeningID,
		Selection:   selection,
		Quote:       s.calc.Quote(ctx, screeningID, layout, selection),
	}, nil
}

// Submit drives one attempt of the booking submission machine for the
// persisted selection. Confirmed clears the handoff exactly once; a
// conflict reduces the persisted selection to the seats still available and
// leaves the user free to retry without re-fetching the layout.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, screeningID int64, paymentMethod string) (*SubmissionOutcome, error) {
	rec, err := s.store.Load(ctx, sessionID, screeningID)
	if err != nil {
		return nil, err
	}

	selection := toSeatIDs(rec.Seats)
	machine := s.machineFor(sessionID, screeningID, selection)

	phase, submitErr := machine.Submit(ctx, paymentMethod, func(ctx context.Context, seats []seatmap.SeatID, paymentMethod string) (*models.BookingResult, error) {
		metrics.BookingsSubmitted.Inc()
		raw := make([]string, len(seats))
		for i, id := range seats {
			raw[i] = string(id)
		}
		result, err := s.client.CreateBooking(ctx, screeningID, raw, paymentMethod)
		if err != nil {
			if _, isConflict := err.(*external.ConflictError); !isConflict {
				metrics.UpstreamErrors.WithLabelValues("create_booking").Inc()
			}
			return nil, err
		}
		return result, nil
	})

	outcome := &SubmissionOutcome{Phase: phase, Err: submitErr}

	switch phase {
	case booking.PhaseConfirmed:
		if submitErr != nil {
			// Re-entrant submit against an already confirmed machine:
			// report the existing result without settling again
			outcome.Result = machine.Result()
			break
		}
		s.settleConfirmed(ctx, sessionID, screeningID, machine, outcome)
	case booking.PhaseConflict:
		s.settleConflict(ctx, sessionID, screeningID, machine, outcome)
	case booking.PhaseFailed:
		s.publish(models.EventBookingFailed, models.BookingFailedEvent{
			SessionID:   sessionID,
			ScreeningID: screeningID,
			Reason:      submitErr.Error(),
			Timestamp:   time.Now(),
		})
	}

	return outcome, nil
}

func (s *CheckoutService) settleConfirmed(ctx context.Context, sessionID string, screeningID int64, machine *booking.Machine, outcome *SubmissionOutcome) {
	outcome.Result = machine.Result()

	// The single Clear per booking: a cleared handoff is what prevents a
	// stale selection from being resubmitted
	if err := s.store.Clear(ctx, sessionID, screeningID); err != nil {
		logger.WithSessionID(sessionID).Error("Failed to clear checkout handoff after confirmation",
			"error", err,
			"screening_id", screeningID)
	}

	s.registry.Drop(sessionID, screeningID)
	s.dropMachine(sessionID, screeningID)

	metrics.BookingsConfirmed.Inc()
	s.publish(models.EventBookingConfirmed, models.BookingConfirmedEvent{
		SessionID:     sessionID,
		ScreeningID:   screeningID,
		BookingNumber: outcome.Result.BookingNumber,
		Seats:         outcome.Result.Seats,
		TotalAmount:   outcome.Result.TotalAmount,
		Timestamp:     time.Now(),
	})
}

func (s *CheckoutService) settleConflict(ctx context.Context, sessionID string, screeningID int64, machine *booking.Machine, outcome *SubmissionOutcome) {
	outcome.Conflicts = machine.Conflicts()
	outcome.Selection = machine.Selection()

	// Reconcile the local snapshot: conflicting seats are now booked
	s.registry.Update(sessionID, screeningID, func(state *seatmap.State) {
		state.RemoveSeats(outcome.Conflicts)
	})

	// Keep the handoff in step with the reduced selection so a retry
	// submits only the seats still available
	if len(outcome.Selection) > 0 {
		seats := make([]string, len(outcome.Selection))
		for i, id := range outcome.Selection {
			seats[i] = string(id)
		}
		if err := s.store.Save(ctx, sessionID, handoff.Record{
			ScreeningID: screeningID,
			Seats:       seats,
			SavedAt:     time.Now(),
		}); err != nil {
			logger.WithSessionID(sessionID).Error("Failed to update handoff after conflict",
				"error", err,
				"screening_id", screeningID)
		}
	} else {
		if err := s.store.Clear(ctx, sessionID, screeningID); err != nil {
			logger.WithSessionID(sessionID).Error("Failed to clear emptied handoff after conflict",
				"error", err,
				"screening_id", screeningID)
		}
	}

	metrics.BookingConflicts.Inc()
	conflictSeats := make([]string, len(outcome.Conflicts))
	for i, id := range outcome.Conflicts {
		conflictSeats[i] = string(id)
	}
	s.publish(models.EventBookingConflicted, models.BookingConflictedEvent{
		SessionID:        sessionID,
		ScreeningID:      screeningID,
		ConflictingSeats: conflictSeats,
		Timestamp:        time.Now(),
	})
}

// machineFor returns the machine tracking this session's submission,
// replacing it when the persisted selection changed out from under it (the
// user went back and picked different seats). A machine mid-Submitting is
// always reused so the in-flight guard holds.
func (s *CheckoutService) machineFor(sessionID string, screeningID int64, selection []seatmap.SeatID) *booking.Machine {
	key := fmt.Sprintf("%s:%d", sessionID, screeningID)

	s.mu.Lock()
	defer s.mu.Unlock()

	machine, ok := s.machines[key]
	if ok && (machine.Phase() == booking.PhaseSubmitting || equalSeats(machine.Selection(), selection)) {
		return machine
	}

	machine = booking.NewMachine(selection)
	s.machines[key] = machine
	return machine
}

func (s *CheckoutService) dropMachine(sessionID string, screeningID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.machines, fmt.Sprintf("%s:%d", sessionID, screeningID))
}

func (s *CheckoutService) publish(subject string, event interface{}) {
	if err := s.nats.Publish(subject, event); err != nil {
		logger.Get().Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
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

func equalSeats(a, b []seatmap.SeatID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[seatmap.SeatID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
