package seatmap

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/seat-reservation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatsOf(t *testing.T) {
	tests := []struct {
		name      string
		cfg       domain.ScreenConfig
		wantSeats []domain.SeatID
		wantErr   bool
	}{
		{
			name:      "should list seats in row-major order",
			cfg:       domain.ScreenConfig{Rows: 2, Columns: 3},
			wantSeats: []domain.SeatID{"A1", "A2", "A3", "B1", "B2", "B3"},
		},
		{
			name:      "should omit blocked seats",
			cfg:       domain.ScreenConfig{Rows: 2, Columns: 2, Blocked: []domain.SeatID{"A2", "B1"}},
			wantSeats: []domain.SeatID{"A1", "B2"},
		},
		{
			name:    "should fail when rows is zero",
			cfg:     domain.ScreenConfig{Rows: 0, Columns: 3},
			wantErr: true,
		},
		{
			name:    "should fail when columns exceed maximum",
			cfg:     domain.ScreenConfig{Rows: 1, Columns: MaxColumns + 1},
			wantErr: true,
		},
		{
			name:    "should fail when a blocked seat is outside the grid",
			cfg:     domain.ScreenConfig{Rows: 2, Columns: 2, Blocked: []domain.SeatID{"C1"}},
			wantErr: true,
		},
		{
			name:    "should fail when a blocked seat is malformed",
			cfg:     domain.ScreenConfig{Rows: 2, Columns: 2, Blocked: []domain.SeatID{"1A"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seats, err := SeatsOf(tt.cfg)

			if tt.wantErr {
				var cfgErr *ConfigError
				require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
				return
			}

			require.NoError(t, err)
			if diff := cmp.Diff(tt.wantSeats, seats); diff != "" {
				t.Errorf("seats mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSeatsOfIsDeterministic(t *testing.T) {
	cfg := domain.ScreenConfig{Rows: domain.DefaultSeatRows, Columns: domain.DefaultSeatColumns, Blocked: []domain.SeatID{"C5"}}

	first, err := SeatsOf(cfg)
	require.NoError(t, err)

	second, err := SeatsOf(cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 59)
	assert.Equal(t, domain.SeatID("F10"), first[len(first)-1])
}

func TestRowLabel(t *testing.T) {
	tests := map[int]string{0: "A", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", MaxRows - 1: "ZZ"}

	for row, want := range tests {
		assert.Equal(t, want, RowLabel(row), "row %d", row)

		_, _, ok := ParseSeatID(domain.SeatID(want + "1"))
		assert.True(t, ok)
	}
}

func TestParseSeatID(t *testing.T) {
	tests := []struct {
		id      domain.SeatID
		wantRow string
		wantCol int
		wantOK  bool
	}{
		{id: "A1", wantRow: "A", wantCol: 1, wantOK: true},
		{id: "AB12", wantRow: "AB", wantCol: 12, wantOK: true},
		{id: "A0"},
		{id: "A01"},
		{id: "A+1"},
		{id: "a1"},
		{id: "ABC1"},
		{id: "12"},
		{id: "A"},
		{id: ""},
	}

	for _, tt := range tests {
		row, col, ok := ParseSeatID(tt.id)

		assert.Equal(t, tt.wantOK, ok, "id %q", tt.id)
		assert.Equal(t, tt.wantRow, row, "id %q", tt.id)
		assert.Equal(t, tt.wantCol, col, "id %q", tt.id)
	}
}

func TestNormalize(t *testing.T) {
	m, err := New(domain.ScreenConfig{Rows: 2, Columns: 3, Blocked: []domain.SeatID{"B3"}})
	require.NoError(t, err)

	valid, unknown := m.Normalize([]domain.SeatID{"B2", "A1", " A3 ", "B2", "Z9", "B3", "Z9"})

	assert.Equal(t, []domain.SeatID{"A1", "A3", "B2"}, valid)
	assert.Equal(t, []domain.SeatID{"Z9", "B3"}, unknown)
}

func TestRowsIncludeBlockedSeats(t *testing.T) {
	m, err := New(domain.ScreenConfig{Rows: 1, Columns: 2, Blocked: []domain.SeatID{"A2"}})
	require.NoError(t, err)

	want := []Row{{Label: "A", Seats: []Seat{{ID: "A1", Column: 1}, {ID: "A2", Column: 2, Blocked: true}}}}

	if diff := cmp.Diff(want, m.Rows()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1, m.Len())
	assert.False(t, m.Contains("A2"))
}
