package pricing

import (
	"context"
	"math"

	"boxoffice/internal/external"
	"boxoffice/internal/logger"
	"boxoffice/internal/seatmap"
)

// FallbackSeatPrice is the flat per-seat rate used when neither a layout nor
// the backend price calculation is available. The quote stays advisory until
// the backend confirms the amount in the booking result.
const FallbackSeatPrice = 10.99

// Quote - derived price for a selection. Never mutated independently; always
// recomputed when the selection changes.
type Quote struct {
	BasePrice  float64          `json:"base_price"`
	TotalPrice float64          `json:"total_price"`
	Seats      []seatmap.SeatID `json:"seats"`

	// Estimated is set when the flat fallback rate was used
	Estimated bool `json:"estimated,omitempty"`
}

// Calculator derives quotes, preferring a pure local computation over a
// network round trip so the price tracks every seat toggle synchronously.
type Calculator struct {
	client *external.TheatreClient
}

func NewCalculator(client *external.TheatreClient) *Calculator {
	return &Calculator{client: client}
}

// Local computes a quote from the layout alone: the sum of per-seat prices.
// Synchronous and deterministic.
func (c *Calculator) Local(layout seatmap.Layout, selection []seatmap.SeatID) Quote {
	var total float64
	for _, id := range selection {
		total += layout.SeatPrice(id)
	}
	return Quote{
		BasePrice:  layout.BasePrice,
		TotalPrice: roundCents(total),
		Seats:      selection,
	}
}

// Quote derives the price for a selection. With a layout it is a local sum;
// without one the backend calculation is used; if that fails the flat
// fallback rate applies so the caller always gets a renderable price.
func (c *Calculator) Quote(ctx context.Context, screeningID int64, layout *seatmap.Layout, selection []seatmap.SeatID) Quote {
	if layout != nil {
		return c.Local(*layout, selection)
	}

	if c.client != nil {
		seats := make([]string, len(selection))
		for i, id := range selection {
			seats[i] = string(id)
		}
		calc, err := c.client.CalculatePrice(ctx, screeningID, seats)
		if err == nil {
			return Quote{
				BasePrice:  calc.BasePrice.Float64(),
				TotalPrice: roundCents(calc.TotalPrice.Float64()),
				Seats:      selection,
			}
		}
		logger.Get().Warn("Price calculation failed, using fallback rate",
			"error", err,
			"screening_id", screeningID)
	}

	return Quote{
		BasePrice:  FallbackSeatPrice,
		TotalPrice: roundCents(float64(len(selection)) * FallbackSeatPrice),
		Seats:      selection,
		Estimated:  true,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
