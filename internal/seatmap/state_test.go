package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testLayout() Layout {
	return Layout{
		Rows: []Row{
			{Name: "A", SeatCount: 8, PriceMultiplier: 1.0, Class: SeatClassStandard},
			{Name: "B", SeatCount: 8, PriceMultiplier: 1.2, Class: SeatClassPremium},
		},
		BasePrice: 10.00,
	}
}

func TestToggleSelectsAndDeselects(t *testing.T) {
	state := NewState(1, testLayout(), nil)

	assert.True(t, state.Toggle("A1"))
	assert.True(t, state.IsSelected("A1"))

	// Idempotent pair: toggling twice restores the prior state
	assert.True(t, state.Toggle("A1"))
	assert.False(t, state.IsSelected("A1"))
	assert.Empty(t, state.Selection())
}

func TestToggleBookedSeatIsNoOp(t *testing.T) {
	state := NewState(1, testLayout(), seatSet("A1"))

	assert.False(t, state.Toggle("A1"))
	assert.False(t, state.IsSelected("A1"))
	assert.True(t, state.IsBooked("A1"))
	assert.Empty(t, state.Selection())
}

func TestToggleOutsideLayoutIsNoOp(t *testing.T) {
	state := NewState(1, testLayout(), nil)

	assert.False(t, state.Toggle("Z1"))
	assert.False(t, state.Toggle("A9"))
	assert.Empty(t, state.Selection())
}

// The selection can never intersect the booked set, whatever sequence of
// toggles runs.
func TestSelectionDisjointFromBooked(t *testing.T) {
	booked := seatSet("A2", "B3")
	state := NewState(1, testLayout(), booked)

	for _, id := range []SeatID{"A1", "A2", "A2", "B3", "B4", "A1", "B3", "A3"} {
		state.Toggle(id)
	}

	for id := range booked {
		assert.False(t, state.IsSelected(id))
	}
	assert.Equal(t, []SeatID{"A3", "B4"}, state.Selection())
}

func TestSelectionDisplayOrder(t *testing.T) {
	state := NewState(1, testLayout(), nil)

	for _, id := range []SeatID{"B2", "A8", "A1", "B1"} {
		state.Toggle(id)
	}

	assert.Equal(t, []SeatID{"A1", "A8", "B1", "B2"}, state.Selection())
}

func TestClear(t *testing.T) {
	state := NewState(1, testLayout(), nil)
	state.Toggle("A1")
	state.Toggle("B2")

	state.Clear()

	assert.Empty(t, state.Selection())
}

func TestSeatPriceFromState(t *testing.T) {
	state := NewState(1, testLayout(), nil)

	assert.Equal(t, 10.00, state.SeatPrice("A5"))
	assert.Equal(t, 12.00, state.SeatPrice("B5"))
}

func TestSetSelectionFiltersInvalid(t *testing.T) {
	state := NewState(1, testLayout(), seatSet("B1"))

	state.SetSelection([]SeatID{"A1", "B1", "Z9"})

	assert.Equal(t, []SeatID{"A1"}, state.Selection())
}

func TestRemoveSeatsMarksBooked(t *testing.T) {
	state := NewState(1, testLayout(), nil)
	state.Toggle("A1")
	state.Toggle("B1")

	state.RemoveSeats([]SeatID{"B1"})

	assert.Equal(t, []SeatID{"A1"}, state.Selection())
	assert.True(t, state.IsBooked("B1"))
	// The reconciled seat cannot be re-selected
	assert.False(t, state.Toggle("B1"))
}
