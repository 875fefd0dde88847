package core

import (
	"errors"
	"sort"
	"strings"
)

type (
	// CellResult is the parsed form of one raw revenue cell.
	CellResult struct {
		Total          int64 `json:"total"`
		HasOvernight   bool  `json:"has_overnight"`
		OvernightCount int   `json:"overnight_count"`
	}

	// Cell is one raw revenue string, optionally scoped to a room.
	Cell struct {
		Room string
		Raw  string
	}

	// FlatDays holds one raw cell per day of the month.
	FlatDays map[int]string

	// RawMonth holds the raw cells of a month keyed by day and then room.
	// Data entered without rooms lives under the empty room key.
	RawMonth map[int]map[string]string
)

var (
	ErrInvalidDay   = errors.New("invalid day")
	ErrInvalidMonth = errors.New("invalid month")
	ErrInvalidYear  = errors.New("invalid year")
	ErrUnknownRoom  = errors.New("unknown room")
)

// CellSource describes how a day's raw data decomposes into cells.
type CellSource interface {
	Cells(day int) []Cell
}

func (f FlatDays) Cells(day int) []Cell {
	raw, ok := f[day]
	if !ok {
		return nil
	}
	return []Cell{{Raw: raw}}
}

// Cells returns the day's cells ordered by room.
func (m RawMonth) Cells(day int) []Cell {
	rooms := m[day]
	if len(rooms) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rooms))
	for room := range rooms {
		keys = append(keys, room)
	}
	sort.Strings(keys)
	cells := make([]Cell, 0, len(keys))
	for _, room := range keys {
		cells = append(cells, Cell{Room: room, Raw: rooms[room]})
	}
	return cells
}

// Get returns the raw text stored for day and room ("" when absent).
func (m RawMonth) Get(day int, room string) string {
	return m[day][room]
}

// Set stores raw verbatim. Blank input removes the cell.
func (m RawMonth) Set(day int, room, raw string) {
	if strings.TrimSpace(raw) == "" {
		if rooms, ok := m[day]; ok {
			delete(rooms, room)
			if len(rooms) == 0 {
				delete(m, day)
			}
		}
		return
	}
	rooms, ok := m[day]
	if !ok {
		rooms = make(map[string]string)
		m[day] = rooms
	}
	rooms[room] = raw
}

// Clone returns a deep copy.
func (m RawMonth) Clone() RawMonth {
	out := make(RawMonth, len(m))
	for day, rooms := range m {
		cp := make(map[string]string, len(rooms))
		for room, raw := range rooms {
			cp[room] = raw
		}
		out[day] = cp
	}
	return out
}

// Count returns the number of stored cells.
func (m RawMonth) Count() int {
	n := 0
	for _, rooms := range m {
		n += len(rooms)
	}
	return n
}

// Flatten converts flat per-day data into the room keyed shape.
func (f FlatDays) Flatten() RawMonth {
	out := make(RawMonth, len(f))
	for day, raw := range f {
		out.Set(day, "", raw)
	}
	return out
}
