// Package handoff persists a finalized seat selection across the transition
// from seat selection to checkout. The store is scoped to the browser
// session and keyed by screening, with a short TTL. Absent or corrupt
// entries surface as ErrNoHandoff so the checkout surface can send the user
// back to seat selection instead of proceeding with a partial booking.
package handoff

import (
	"context"
	"errors"
	"time"
)

// ErrNoHandoff indicates no valid selection was carried over
var ErrNoHandoff = errors.New("no checkout handoff found")

// Record - the persisted selection
type Record struct {
	ScreeningID int64     `json:"screening_id"`
	Seats       []string  `json:"seats"`
	SavedAt     time.Time `json:"saved_at"`
}

// Store persists checkout handoffs. Clear is invoked exactly once, on
// successful submission, to prevent re-submission of a stale selection.
type Store interface {
	Save(ctx context.Context, sessionID string, rec Record) error
	Load(ctx context.Context, sessionID string, screeningID int64) (*Record, error)
	Clear(ctx context.Context, sessionID string, screeningID int64) error
}
