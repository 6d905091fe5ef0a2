package service

import (
	"context"
	"fmt"

	"boxoffice/internal/external"
	"boxoffice/internal/logger"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
	"boxoffice/internal/pricing"
	"boxoffice/internal/seatmap"
	"boxoffice/internal/session"
)

// LayoutNotice is attached to seat maps rendered with the default layout so
// the UI can show a non-blocking advisory
const LayoutNotice = "Seat layout for this screening is unavailable; a standard layout is shown."

// SeatMapView - everything the seat-selection screen needs to render
type SeatMapView struct {
	ScreeningID int64            `json:"screening_id"`
	Rows        []seatmap.Row    `json:"rows"`
	BasePrice   float64          `json:"base_price"`
	BookedSeats []seatmap.SeatID `json:"booked_seats"`
	Selection   []seatmap.SeatID `json:"selection"`
	Quote       pricing.Quote    `json:"quote"`
	Notice      string           `json:"notice,omitempty"`
}

// SelectionView - the selection and its synchronously recomputed quote,
// returned after every mutation
type SelectionView struct {
	ScreeningID int64            `json:"screening_id"`
	Selection   []seatmap.SeatID `json:"selection"`
	Quote       pricing.Quote    `json:"quote"`
}

// ScreeningService assembles seat maps and manages the in-progress
// selection for each session
type ScreeningService struct {
	client   *external.TheatreClient
	registry *session.Registry
	calc     *pricing.Calculator
}

func NewScreeningService(client *external.TheatreClient, registry *session.Registry, calc *pricing.Calculator) *ScreeningService {
	return &ScreeningService{
		client:   client,
		registry: registry,
		calc:     calc,
	}
}

// Get fetches the screening details from the theatre backend
func (s *ScreeningService) Get(ctx context.Context, screeningID int64) (*models.Screening, error) {
	screening, err := s.client.GetScreening(ctx, screeningID)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("get_screening").Inc()
		return nil, fmt.Errorf("failed to get screening: %w", err)
	}
	return screening, nil
}

// SeatMap returns the seat map for the session, building state on first
// visit. Layout and booked-seats fetch failures are absorbed: the default
// layout and an empty booked set keep seat selection usable, and the server
// re-checks everything at submission.
func (s *ScreeningService) SeatMap(ctx context.Context, sessionID string, screeningID int64) (*SeatMapView, error) {
	if err := s.ensureState(ctx, sessionID, screeningID); err != nil {
		return nil, err
	}

	var view *SeatMapView
	s.registry.Update(sessionID, screeningID, func(state *seatmap.State) {
		view = s.buildSeatMapView(state)
	})
	return view, nil
}

// Toggle flips one seat in the selection. Booked and out-of-layout seats are
// a no-op. The quote is recomputed synchronously from the updated selection.
func (s *ScreeningService) Toggle(ctx context.Context, sessionID string, screeningID int64, seatID seatmap.SeatID) (*SelectionView, error) {
	if err := s.ensureState(ctx, sessionID, screeningID); err != nil {
		return nil, err
	}

	var view *SelectionView
	s.registry.Update(sessionID, screeningID, func(state *seatmap.State) {
		state.Toggle(seatID)
		view = s.buildSelectionView(state)
	})
	return view, nil
}

// ClearSelection empties the selection
func (s *ScreeningService) ClearSelection(ctx context.Context, sessionID string, screeningID int64) (*SelectionView, error) {
	if err := s.ensureState(ctx, sessionID, screeningID); err != nil {
		return nil, err
	}

	var view *SelectionView
	s.registry.Update(sessionID, screeningID, func(state *seatmap.State) {
		state.Clear()
		view = s.buildSelectionView(state)
	})
	return view, nil
}

// ensureState builds seat-map state on first access: one screening fetch,
// one layout fetch, one booked-seats fetch per visit. The layout and booked
// set are cached for the screening's lifetime in the session registry.
func (s *ScreeningService) ensureState(ctx context.Context, sessionID string, screeningID int64) error {
	exists := s.registry.Update(sessionID, screeningID, func(*seatmap.State) {})
	if exists {
		return nil
	}

	screening, err := s.Get(ctx, screeningID)
	if err != nil {
		return err
	}

	rawLayout, err := s.client.GetLayout(ctx, screeningID)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("get_layout").Inc()
		logger.WithSessionID(sessionID).Warn("Layout fetch failed, normalizer will fall back",
			"error", err,
			"screening_id", screeningID)
		rawLayout = nil
	}

	rawBooked, err := s.client.GetBookedSeats(ctx, screeningID)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("get_booked_seats").Inc()
		logger.WithSessionID(sessionID).Warn("Booked-seats fetch failed, treating as none booked",
			"error", err,
			"screening_id", screeningID)
		rawBooked = nil
	}

	layout := seatmap.NormalizeLayout(rawLayout, screening.BasePrice)
	if layout.Fallback {
		metrics.LayoutFallbacks.Inc()
	}
	booked := seatmap.NormalizeBookedSeats(rawBooked)

	s.registry.Put(sessionID, seatmap.NewState(screeningID, layout, booked))
	return nil
}

func (s *ScreeningService) buildSeatMapView(state *seatmap.State) *SeatMapView {
	view := &SeatMapView{
		ScreeningID: state.ScreeningID,
		Rows:        state.Layout.Rows,
		BasePrice:   state.Layout.BasePrice,
		BookedSeats: state.BookedSeats(),
		Selection:   state.Selection(),
		Quote:       s.calc.Local(state.Layout, state.Selection()),
	}
	if state.Layout.Fallback {
		view.Notice = LayoutNotice
	}
	return view
}

func (s *ScreeningService) buildSelectionView(state *seatmap.State) *SelectionView {
	return &SelectionView{
		ScreeningID: state.ScreeningID,
		Selection:   state.Selection(),
		Quote:       s.calc.Local(state.Layout, state.Selection()),
	}
}
