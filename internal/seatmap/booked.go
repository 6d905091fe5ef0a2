package seatmap

import (
	"encoding/json"
)

// Keys that carry status or message metadata rather than seat ids when the
// payload degenerates to a bare object
var metadataKeys = map[string]bool{
	"status":    true,
	"message":   true,
	"error":     true,
	"success":   true,
	"code":      true,
	"count":     true,
	"total":     true,
	"timestamp": true,
	"data":      true,
}

// NormalizeBookedSeats converts a raw booked-seats payload of unknown shape
// into a set of seat ids. Shapes tried in order: plain array, "seats" field,
// "bookedSeats" field (array or map of values), then object keys that look
// like seat ids. Anything unrecoverable yields the empty set — the server
// performs the authoritative check at submission, so empty is safe.
func NormalizeBookedSeats(raw []byte) map[SeatID]struct{} {
	booked := make(map[SeatID]struct{})
	if len(raw) == 0 {
		return booked
	}

	if ids := decodeSeatArray(raw); ids != nil {
		return collect(ids)
	}

	fields := decodeObject(raw)
	if fields == nil {
		return booked
	}

	if inner, ok := fields["seats"]; ok {
		if ids := decodeSeatArray(inner); ids != nil {
			return collect(ids)
		}
	}

	if inner, ok := fields["bookedSeats"]; ok {
		if ids := decodeSeatArray(inner); ids != nil {
			return collect(ids)
		}
		// Some responses index booked seats by an opaque key with the seat
		// id as the value
		if values := decodeObject(inner); values != nil {
			var ids []string
			for _, raw := range values {
				var s string
				if err := json.Unmarshal(raw, &s); err == nil {
					ids = append(ids, s)
				}
			}
			return collect(ids)
		}
	}

	// Last resort: the object's own keys, minus anything that looks like
	// status or message metadata
	var ids []string
	for key := range fields {
		if metadataKeys[key] {
			continue
		}
		ids = append(ids, key)
	}
	return collect(ids)
}

// collect keeps only well-formed seat ids
func collect(ids []string) map[SeatID]struct{} {
	booked := make(map[SeatID]struct{}, len(ids))
	for _, raw := range ids {
		if id, ok := ParseSeatID(raw); ok {
			booked[id] = struct{}{}
		}
	}
	return booked
}

// decodeSeatArray decodes an array of seat ids, tolerating string elements
// and objects carrying an id field. Returns nil when raw is not an array.
func decodeSeatArray(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			ids = append(ids, s)
			continue
		}
		if fields := decodeObject(item); fields != nil {
			if id := pickString(fields, "id", "seatId", "seat_id"); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
