package seatmap

import "sort"

// State is the single source of truth for layout, booked seats and the
// user's in-progress selection for one (session, screening) pair. The
// selection can never contain a booked or out-of-layout seat; that is
// enforced at toggle time. State is not internally synchronized — the
// session registry serializes access.
type State struct {
	ScreeningID int64
	Layout      Layout
	booked      map[SeatID]struct{}
	selected    map[SeatID]struct{}
}

// NewState builds a fresh state with an empty selection
func NewState(screeningID int64, layout Layout, booked map[SeatID]struct{}) *State {
	if booked == nil {
		booked = make(map[SeatID]struct{})
	}
	return &State{
		ScreeningID: screeningID,
		Layout:      layout,
		booked:      booked,
		selected:    make(map[SeatID]struct{}),
	}
}

// Toggle adds the seat to the selection if absent, removes it if present.
// Booked and out-of-layout seats are a no-op. Returns whether the selection
// changed.
func (s *State) Toggle(id SeatID) bool {
	if _, booked := s.booked[id]; booked {
		return false
	}
	if !s.Layout.Contains(id) {
		return false
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
	return true
}

// Clear empties the selection
func (s *State) Clear() {
	s.selected = make(map[SeatID]struct{})
}

// IsBooked reports whether the seat was already committed by any customer as
// of the last booked-seats fetch
func (s *State) IsBooked(id SeatID) bool {
	_, ok := s.booked[id]
	return ok
}

// IsSelected reports whether the seat is in the current selection
func (s *State) IsSelected(id SeatID) bool {
	_, ok := s.selected[id]
	return ok
}

// SeatPrice returns the price of one seat under the current layout
func (s *State) SeatPrice(id SeatID) float64 {
	return s.Layout.SeatPrice(id)
}

// Selection returns the selected seats in display order: row letter, then
// seat number
func (s *State) Selection() []SeatID {
	return sortSeats(s.selected)
}

// BookedSeats returns the known-booked seats in display order
func (s *State) BookedSeats() []SeatID {
	return sortSeats(s.booked)
}

// SetSelection replaces the selection, dropping anything booked or outside
// the layout. Used when a persisted checkout selection is restored.
func (s *State) SetSelection(ids []SeatID) {
	s.selected = make(map[SeatID]struct{}, len(ids))
	for _, id := range ids {
		if _, booked := s.booked[id]; booked {
			continue
		}
		if !s.Layout.Contains(id) {
			continue
		}
		s.selected[id] = struct{}{}
	}
}

// RemoveSeats drops the given seats from the selection and marks them booked,
// which is how a submission conflict reconciles the local snapshot with the
// server's view.
func (s *State) RemoveSeats(ids []SeatID) {
	for _, id := range ids {
		delete(s.selected, id)
		s.booked[id] = struct{}{}
	}
}

func sortSeats(set map[SeatID]struct{}) []SeatID {
	seats := make([]SeatID, 0, len(set))
	for id := range set {
		seats = append(seats, id)
	}
	sort.Slice(seats, func(i, j int) bool {
		ri, ni := seats[i].Split()
		rj, nj := seats[j].Split()
		if ri != rj {
			return ri < rj
		}
		return ni < nj
	})
	return seats
}
