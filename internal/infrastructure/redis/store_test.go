package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/table-booking/internal/domain/reservation"
)

// newTestStore uses an in-process miniredis unless TEST_REDIS_ADDR points
// at a real server.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}
	s := New(NewClient(addr, "", 0), "test-"+gofakeit.LetterN(8))
	require.NoError(t, s.Ping(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fakeReservation(table int, phone string) reservation.Reservation {
	return reservation.Reservation{
		ID:             "RES-" + gofakeit.LetterN(10),
		Restaurant:     "kryivka",
		RestaurantName: "Kryivka",
		Address:        "14 Rynok Sq.",
		Date:           "2025-12-31",
		Time:           "21:00",
		Guests:         4,
		TableID:        table,
		Name:           gofakeit.FirstName(),
		Phone:          phone,
		Status:         reservation.StatusConfirmed,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestStoreLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	phone := gofakeit.Phone()

	first := fakeReservation(1, phone)
	require.NoError(t, s.Insert(ctx, first))

	require.ErrorIs(t, s.Insert(ctx, fakeReservation(1, phone)), reservation.ErrSlotTaken)
	dup := fakeReservation(2, phone)
	dup.ID = first.ID
	require.ErrorIs(t, s.Insert(ctx, dup), reservation.ErrDuplicateID)

	second := fakeReservation(2, phone)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, s.Insert(ctx, second))

	booked, err := s.BookedTables(ctx, "kryivka", "2025-12-31", "21:00")
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true, 2: true}, booked)

	list, err := s.ListByPhone(ctx, phone)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	_, err = s.Delete(ctx, first.ID)
	require.NoError(t, err)
	_, err = s.Delete(ctx, first.ID)
	require.ErrorIs(t, err, reservation.ErrNotFound)

	booked, err = s.BookedTables(ctx, "kryivka", "2025-12-31", "21:00")
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{2: true}, booked)

	_, err = s.Delete(ctx, second.ID)
	require.NoError(t, err)
}

func TestSlotKeysDoNotCollide(t *testing.T) {
	s := New(nil, "")
	a := reservation.BookingKey{Restaurant: "bachevski", Date: "2025-12-24", Time: "19:00", TableID: 1}
	b := reservation.BookingKey{Restaurant: "bachevski", Date: "2025-12-24:19", Time: "00", TableID: 1}

	assert.NotEqual(t, s.slotKey(a), s.slotKey(b))
	assert.NotEqual(t,
		s.slotTablesKey(a.Restaurant, a.Date, a.Time),
		s.slotTablesKey(b.Restaurant, b.Date, b.Time),
	)
}

func TestSlotsWithColonsStayIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := fakeReservation(1, gofakeit.Phone())
	first.Date, first.Time = "2025-12-24", "19:00"
	require.NoError(t, s.Insert(ctx, first))

	other := fakeReservation(1, gofakeit.Phone())
	other.Date, other.Time = "2025-12-24:19", "00"

	booked, err := s.BookedTables(ctx, other.Restaurant, other.Date, other.Time)
	require.NoError(t, err)
	assert.Empty(t, booked)

	require.NoError(t, s.Insert(ctx, other))

	booked, err = s.BookedTables(ctx, first.Restaurant, first.Date, first.Time)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true}, booked)
}

func TestDeleteScriptSkipsMissingRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r := fakeReservation(3, gofakeit.Phone())
	require.NoError(t, s.Insert(ctx, r))
	_, err := s.Delete(ctx, r.ID)
	require.NoError(t, err)

	// a second cancel that already read the record finds nothing to remove
	removed, err := deleteScript.Run(ctx, s.client, s.keysFor(r), r.ID, r.TableID).Int()
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	_, err = s.Get(ctx, r.ID)
	require.ErrorIs(t, err, reservation.ErrNotFound)

	list, err := s.ListByPhone(ctx, r.Phone)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListByPhoneUnknown(t *testing.T) {
	s := newTestStore(t)

	list, err := s.ListByPhone(context.Background(), "+0000")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
