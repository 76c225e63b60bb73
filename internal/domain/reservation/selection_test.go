package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/table-booking/internal/domain/catalog"
)

var tables = []catalog.Table{
	{ID: 1, Seats: 2},
	{ID: 2, Seats: 4},
	{ID: 3, Seats: 6},
	{ID: 4, Seats: 8},
}

func TestFreeTables(t *testing.T) {
	tests := []struct {
		name   string
		guests int
		booked map[int]bool
		want   []int
	}{
		{"all fit", 1, nil, []int{1, 2, 3, 4}},
		{"capacity filter", 5, nil, []int{3, 4}},
		{"booked excluded", 2, map[int]bool{1: true, 3: true}, []int{2, 4}},
		{"too many guests", 9, nil, []int{}},
		{"everything booked", 2, map[int]bool{1: true, 2: true, 3: true, 4: true}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreeTables(tables, tt.guests, tt.booked)
			assert.NotNil(t, got)
			ids := make([]int, 0, len(got))
			for _, tb := range got {
				ids = append(ids, tb.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestChooseTableFirstFit(t *testing.T) {
	free := FreeTables(tables, 2, map[int]bool{1: true})
	tb, ok := ChooseTable(free)
	assert.True(t, ok)
	assert.Equal(t, 2, tb.ID)

	_, ok = ChooseTable(nil)
	assert.False(t, ok)
}

func TestBookingKey(t *testing.T) {
	r := Reservation{Restaurant: "bachevski", Date: "2025-12-24", Time: "19:00", TableID: 3}
	assert.Equal(t, BookingKey{"bachevski", "2025-12-24", "19:00", 3}, r.Key())
	assert.Equal(t, "bachevski_2025-12-24_19:00_3", r.Key().String())
}
