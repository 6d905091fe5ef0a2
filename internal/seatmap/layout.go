package seatmap

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// SeatClass - pricing tier of a row
type SeatClass string

const (
	SeatClassStandard SeatClass = "STANDARD"
	SeatClassPremium  SeatClass = "PREMIUM"
)

// Defaults applied when the backend payload is missing or unusable. Seat
// selection must stay usable whatever the backend returns.
const (
	DefaultBasePrice       = 10.99
	DefaultSeatCount       = 10
	defaultFallbackSeats   = 8
	defaultPremiumMultiple = 1.2
)

// SeatID identifies one physical seat: row letter followed by a 1-based seat
// number, e.g. "B4".
type SeatID string

var seatIDPattern = regexp.MustCompile(`^[A-Z][0-9]+$`)

// ParseSeatID validates and canonicalizes a raw seat identifier
func ParseSeatID(raw string) (SeatID, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !seatIDPattern.MatchString(s) {
		return "", false
	}
	return SeatID(s), true
}

// Split returns the row name and 1-based seat number
func (id SeatID) Split() (string, int) {
	s := string(id)
	if len(s) < 2 {
		return s, 0
	}
	n, _ := strconv.Atoi(s[1:])
	return s[:1], n
}

// Row - one row of the seating layout
type Row struct {
	Name            string    `json:"name"`
	SeatCount       int       `json:"seatsCount"`
	PriceMultiplier float64   `json:"priceMultiplier"`
	Class           SeatClass `json:"seatType"`
}

// Layout - canonical seating layout for one screening. Fetched once per
// seat-selection visit and never mutated afterwards.
type Layout struct {
	Rows      []Row   `json:"rows"`
	BasePrice float64 `json:"basePrice"`

	// Fallback is set when the hard-coded default layout was substituted,
	// so callers can attach a non-blocking advisory notice.
	Fallback bool `json:"-"`
}

// DefaultLayout returns the hard-coded layout used when the backend payload
// cannot be interpreted: rows A and B standard, row C premium.
func DefaultLayout() Layout {
	return Layout{
		Rows: []Row{
			{Name: "A", SeatCount: defaultFallbackSeats, PriceMultiplier: 1.0, Class: SeatClassStandard},
			{Name: "B", SeatCount: defaultFallbackSeats, PriceMultiplier: 1.0, Class: SeatClassStandard},
			{Name: "C", SeatCount: defaultFallbackSeats, PriceMultiplier: defaultPremiumMultiple, Class: SeatClassPremium},
		},
		BasePrice: DefaultBasePrice,
		Fallback:  true,
	}
}

// NormalizeLayout converts a raw layout payload of unknown shape into a
// canonical Layout. basePrice comes from the screening and wins over any
// price embedded in the payload; when neither is positive the default
// applies. The result always has at least one row and a positive base price;
// failures are absorbed, never propagated.
func NormalizeLayout(raw []byte, basePrice float64) Layout {
	fields := decodeObject(raw)
	if fields == nil {
		layout := DefaultLayout()
		layout.BasePrice = pickBasePrice(basePrice, 0)
		return layout
	}

	embedded := pickFloat(fields, "basePrice", "base_price", "price")

	if rowsRaw, ok := fields["rows"]; ok {
		if rows := normalizeRowList(rowsRaw); len(rows) > 0 {
			return Layout{Rows: rows, BasePrice: pickBasePrice(basePrice, embedded)}
		}
	}

	if rows := normalizeRowKeyed(fields); len(rows) > 0 {
		return Layout{Rows: rows, BasePrice: pickBasePrice(basePrice, embedded)}
	}

	layout := DefaultLayout()
	layout.BasePrice = pickBasePrice(basePrice, embedded)
	return layout
}

// normalizeRowList handles the array-of-rows shape
func normalizeRowList(raw json.RawMessage) []Row {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	rows := make([]Row, 0, len(items))
	seen := make(map[string]bool)
	for _, item := range items {
		fields := decodeObject(item)
		if fields == nil {
			continue
		}
		name := normalizeRowName(pickString(fields, "name", "rowName", "row"))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		rows = append(rows, buildRow(name, fields))
	}
	return rows
}

// normalizeRowKeyed handles the object shape whose keys are row letters
func normalizeRowKeyed(fields map[string]json.RawMessage) []Row {
	rows := make([]Row, 0, len(fields))
	for key, value := range fields {
		name := normalizeRowName(key)
		if name == "" {
			continue
		}
		sub := decodeObject(value)
		if sub == nil {
			sub = map[string]json.RawMessage{}
		}
		rows = append(rows, buildRow(name, sub))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

func buildRow(name string, fields map[string]json.RawMessage) Row {
	row := Row{
		Name:            name,
		SeatCount:       DefaultSeatCount,
		PriceMultiplier: 1.0,
		Class:           SeatClassStandard,
	}
	if count := pickInt(fields, "seatsCount", "seatCount", "seats"); count >= 1 {
		row.SeatCount = count
	}
	if mult := pickFloat(fields, "priceMultiplier", "multiplier"); mult > 0 {
		row.PriceMultiplier = mult
	}
	if class := pickString(fields, "seatType", "type", "class"); class != "" {
		row.Class = SeatClass(strings.ToUpper(class))
	}
	return row
}

// normalizeRowName accepts only single uppercase letters (after trimming and
// upcasing); anything else is not a row
func normalizeRowName(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) != 1 || s[0] < 'A' || s[0] > 'Z' {
		return ""
	}
	return s
}

func pickBasePrice(screeningPrice, embedded float64) float64 {
	if screeningPrice > 0 {
		return screeningPrice
	}
	if embedded > 0 {
		return embedded
	}
	return DefaultBasePrice
}

// Contains reports whether the seat id names a real seat in this layout
func (l Layout) Contains(id SeatID) bool {
	row, num := id.Split()
	for _, r := range l.Rows {
		if r.Name == row {
			return num >= 1 && num <= r.SeatCount
		}
	}
	return false
}

// RowMultiplier returns the price multiplier for a row name
func (l Layout) RowMultiplier(name string) (float64, bool) {
	for _, r := range l.Rows {
		if r.Name == name {
			return r.PriceMultiplier, true
		}
	}
	return 0, false
}

// SeatPrice returns base price times the row multiplier. Unknown rows fall
// back to the bare base price.
func (l Layout) SeatPrice(id SeatID) float64 {
	row, _ := id.Split()
	if mult, ok := l.RowMultiplier(row); ok {
		return l.BasePrice * mult
	}
	return l.BasePrice
}

// decodeObject decodes raw JSON into a field map, returning nil for anything
// that is not an object
func decodeObject(raw []byte) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func pickString(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

func pickInt(fields map[string]json.RawMessage, keys ...string) int {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(raw, &n); err == nil {
			return n
		}
		// Some payloads quote their numbers
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return n
			}
		}
	}
	return 0
}

func pickFloat(fields map[string]json.RawMessage, keys ...string) float64 {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return f
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f
			}
		}
	}
	return 0
}
