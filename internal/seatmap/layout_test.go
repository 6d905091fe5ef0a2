package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLayoutRowsArray(t *testing.T) {
	raw := []byte(`{"rows":[{"name":"A","seatsCount":8,"priceMultiplier":1.0},{"name":"B","seatsCount":8,"priceMultiplier":1.2,"seatType":"PREMIUM"}]}`)

	layout := NormalizeLayout(raw, 10.00)

	require.Len(t, layout.Rows, 2)
	assert.False(t, layout.Fallback)
	assert.Equal(t, 10.00, layout.BasePrice)
	assert.Equal(t, "A", layout.Rows[0].Name)
	assert.Equal(t, 8, layout.Rows[0].SeatCount)
	assert.Equal(t, 1.0, layout.Rows[0].PriceMultiplier)
	assert.Equal(t, SeatClassStandard, layout.Rows[0].Class)
	assert.Equal(t, SeatClassPremium, layout.Rows[1].Class)
	assert.Equal(t, 1.2, layout.Rows[1].PriceMultiplier)
}

func TestNormalizeLayoutAlternateFieldNames(t *testing.T) {
	raw := []byte(`{"rows":[{"rowName":"a","seatCount":6,"multiplier":1.5,"type":"premium"}]}`)

	layout := NormalizeLayout(raw, 12.00)

	require.Len(t, layout.Rows, 1)
	assert.Equal(t, "A", layout.Rows[0].Name)
	assert.Equal(t, 6, layout.Rows[0].SeatCount)
	assert.Equal(t, 1.5, layout.Rows[0].PriceMultiplier)
	assert.Equal(t, SeatClassPremium, layout.Rows[0].Class)
}

func TestNormalizeLayoutRowKeyedObject(t *testing.T) {
	raw := []byte(`{"A":{"seatsCount":12},"B":{"priceMultiplier":1.3,"seatType":"PREMIUM"},"C":{}}`)

	layout := NormalizeLayout(raw, 9.50)

	require.Len(t, layout.Rows, 3)
	assert.False(t, layout.Fallback)

	// Rows come out sorted by name
	assert.Equal(t, "A", layout.Rows[0].Name)
	assert.Equal(t, 12, layout.Rows[0].SeatCount)
	assert.Equal(t, "B", layout.Rows[1].Name)
	assert.Equal(t, 1.3, layout.Rows[1].PriceMultiplier)

	// Missing fields get the documented defaults
	assert.Equal(t, "C", layout.Rows[2].Name)
	assert.Equal(t, DefaultSeatCount, layout.Rows[2].SeatCount)
	assert.Equal(t, 1.0, layout.Rows[2].PriceMultiplier)
	assert.Equal(t, SeatClassStandard, layout.Rows[2].Class)
}

func TestNormalizeLayoutFallback(t *testing.T) {
	cases := map[string][]byte{
		"nil payload":    nil,
		"null":           []byte(`null`),
		"empty object":   []byte(`{}`),
		"not json":       []byte(`<html>err</html>`),
		"rows not array": []byte(`{"rows":"oops"}`),
		"bare number":    []byte(`42`),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			layout := NormalizeLayout(raw, 0)

			assert.True(t, layout.Fallback)
			require.Len(t, layout.Rows, 3)
			assert.Equal(t, DefaultBasePrice, layout.BasePrice)
			assert.Equal(t, SeatClassPremium, layout.Rows[2].Class)
			assert.Equal(t, 1.2, layout.Rows[2].PriceMultiplier)
		})
	}
}

// Whatever the input shape, the result must be renderable: at least one row,
// positive base price, no row with fewer than one seat.
func TestNormalizeLayoutTotalCoverage(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte(`null`),
		[]byte(`[]`),
		[]byte(`{}`),
		[]byte(`{"rows":[]}`),
		[]byte(`{"rows":[{"name":"?","seatsCount":-3}]}`),
		[]byte(`{"rows":[{"name":"A","seatsCount":0,"priceMultiplier":-1}]}`),
		[]byte(`{"A":{"seatsCount":-1},"zz":{}}`),
		[]byte(`{"status":"error","message":"boom"}`),
	}

	for _, raw := range inputs {
		layout := NormalizeLayout(raw, 0)

		assert.NotEmpty(t, layout.Rows, "input %s", raw)
		assert.Greater(t, layout.BasePrice, 0.0, "input %s", raw)
		for _, row := range layout.Rows {
			assert.GreaterOrEqual(t, row.SeatCount, 1, "input %s", raw)
			assert.Greater(t, row.PriceMultiplier, 0.0, "input %s", raw)
		}
	}
}

func TestNormalizeLayoutDuplicateRowsDropped(t *testing.T) {
	raw := []byte(`{"rows":[{"name":"A","seatsCount":8},{"name":"A","seatsCount":4},{"name":"B"}]}`)

	layout := NormalizeLayout(raw, 10.00)

	require.Len(t, layout.Rows, 2)
	assert.Equal(t, 8, layout.Rows[0].SeatCount)
}

func TestNormalizeLayoutEmbeddedBasePrice(t *testing.T) {
	raw := []byte(`{"basePrice":"8.50","rows":[{"name":"A"}]}`)

	// Screening price wins when positive
	assert.Equal(t, 11.00, NormalizeLayout(raw, 11.00).BasePrice)
	// Otherwise the embedded price applies
	assert.Equal(t, 8.50, NormalizeLayout(raw, 0).BasePrice)
}

func TestSeatPrice(t *testing.T) {
	layout := Layout{
		Rows: []Row{
			{Name: "A", SeatCount: 8, PriceMultiplier: 1.0},
			{Name: "B", SeatCount: 8, PriceMultiplier: 1.2},
		},
		BasePrice: 10.00,
	}

	assert.Equal(t, 10.00, layout.SeatPrice("A1"))
	assert.Equal(t, 12.00, layout.SeatPrice("B4"))
	// Unknown row falls back to the bare base price
	assert.Equal(t, 10.00, layout.SeatPrice("Z9"))
}

func TestLayoutContains(t *testing.T) {
	layout := Layout{
		Rows:      []Row{{Name: "A", SeatCount: 4, PriceMultiplier: 1.0}},
		BasePrice: 10.00,
	}

	assert.True(t, layout.Contains("A1"))
	assert.True(t, layout.Contains("A4"))
	assert.False(t, layout.Contains("A5"))
	assert.False(t, layout.Contains("B1"))
}

func TestParseSeatID(t *testing.T) {
	id, ok := ParseSeatID(" b4 ")
	assert.True(t, ok)
	assert.Equal(t, SeatID("B4"), id)

	row, num := id.Split()
	assert.Equal(t, "B", row)
	assert.Equal(t, 4, num)

	for _, bad := range []string{"", "4B", "AA", "A", "A0x", "b-1"} {
		_, ok := ParseSeatID(bad)
		assert.False(t, ok, "input %q", bad)
	}
}
