// Package seatmap derives the bookable seat identifiers of a screen from its
// geometry. Seat ids are a row label followed by a 1-based column number:
// rows are labelled A..Z, then AA..ZZ, like spreadsheet columns.
package seatmap

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/metinatakli/seat-reservation/internal/domain"
)

const (
	MaxRows    = 26 * 27
	MaxColumns = 200
)

type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid screen config: " + e.Reason
}

type Seat struct {
	ID      domain.SeatID
	Column  int
	Blocked bool
}

type Row struct {
	Label string
	Seats []Seat
}

// Map is the immutable seat map of one screen configuration.
type Map struct {
	seats []domain.SeatID
	index map[domain.SeatID]int
	rows  []Row
}

// SeatsOf returns the bookable seats of cfg in row-major order.
func SeatsOf(cfg domain.ScreenConfig) ([]domain.SeatID, error) {
	m, err := New(cfg)
	if err != nil {
		return nil, err
	}

	return m.Seats(), nil
}

func New(cfg domain.ScreenConfig) (*Map, error) {
	if cfg.Rows < 1 || cfg.Rows > MaxRows {
		return nil, &ConfigError{Reason: fmt.Sprintf("rows must be between 1 and %d, got %d", MaxRows, cfg.Rows)}
	}

	if cfg.Columns < 1 || cfg.Columns > MaxColumns {
		return nil, &ConfigError{Reason: fmt.Sprintf("columns must be between 1 and %d, got %d", MaxColumns, cfg.Columns)}
	}

	blocked := make(map[domain.SeatID]bool, len(cfg.Blocked))
	for _, id := range cfg.Blocked {
		row, col, ok := parse(id)
		if !ok || row >= cfg.Rows || col > cfg.Columns {
			return nil, &ConfigError{Reason: fmt.Sprintf("blocked seat %q is not part of the grid", id)}
		}

		blocked[id] = true
	}

	m := &Map{
		seats: make([]domain.SeatID, 0, cfg.Rows*cfg.Columns-len(blocked)),
		index: make(map[domain.SeatID]int, cfg.Rows*cfg.Columns),
		rows:  make([]Row, cfg.Rows),
	}

	for r := 0; r < cfg.Rows; r++ {
		label := RowLabel(r)
		row := Row{Label: label, Seats: make([]Seat, cfg.Columns)}

		for c := 1; c <= cfg.Columns; c++ {
			id := domain.SeatID(label + strconv.Itoa(c))
			row.Seats[c-1] = Seat{ID: id, Column: c, Blocked: blocked[id]}

			if blocked[id] {
				continue
			}

			m.index[id] = len(m.seats)
			m.seats = append(m.seats, id)
		}

		m.rows[r] = row
	}

	return m, nil
}

// Seats returns a copy of the bookable seats in row-major order.
func (m *Map) Seats() []domain.SeatID {
	seats := make([]domain.SeatID, len(m.seats))
	copy(seats, m.seats)

	return seats
}

func (m *Map) Len() int {
	return len(m.seats)
}

func (m *Map) Contains(id domain.SeatID) bool {
	_, ok := m.index[id]
	return ok
}

// Rows returns the full grid including blocked seats, for rendering.
func (m *Map) Rows() []Row {
	rows := make([]Row, len(m.rows))
	for i, r := range m.rows {
		rows[i] = Row{Label: r.Label, Seats: append([]Seat(nil), r.Seats...)}
	}

	return rows
}

// Normalize deduplicates a selection and splits it into bookable seats, in
// seat map order, and unknown seats, in the order they were first requested.
func (m *Map) Normalize(ids []domain.SeatID) (valid, unknown []domain.SeatID) {
	seen := make(map[domain.SeatID]bool, len(ids))

	for _, raw := range ids {
		id := domain.SeatID(strings.TrimSpace(string(raw)))
		if seen[id] {
			continue
		}
		seen[id] = true

		if m.Contains(id) {
			valid = append(valid, id)
		} else {
			unknown = append(unknown, id)
		}
	}

	m.Sort(valid)

	return valid, unknown
}

// Sort orders seats that belong to the map in row-major order.
func (m *Map) Sort(seats []domain.SeatID) {
	slices.SortFunc(seats, func(a, b domain.SeatID) int {
		return m.index[a] - m.index[b]
	})
}

// RowLabel returns the label of the zero based row index.
func RowLabel(row int) string {
	var b []byte
	for n := row + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}

	return string(b)
}

// ParseSeatID splits a seat id into its row label and column number.
func ParseSeatID(id domain.SeatID) (row string, column int, ok bool) {
	s := string(id)

	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}

	if i == 0 || i > 2 || i == len(s) || s[i] == '0' {
		return "", 0, false
	}

	for j := i; j < len(s); j++ {
		if s[j] < '0' || s[j] > '9' {
			return "", 0, false
		}
	}

	column, err := strconv.Atoi(s[i:])
	if err != nil || column < 1 {
		return "", 0, false
	}

	return s[:i], column, true
}

func parse(id domain.SeatID) (row, column int, ok bool) {
	label, column, ok := ParseSeatID(id)
	if !ok {
		return 0, 0, false
	}

	n := 0
	for i := 0; i < len(label); i++ {
		n = n*26 + int(label[i]-'A'+1)
	}

	return n - 1, column, true
}
