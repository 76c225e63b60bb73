package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/table-booking/internal/db"
	"github.com/example/table-booking/internal/domain/reservation"
	"github.com/example/table-booking/internal/migrate"
)

// Runs against a real database when TEST_DATABASE_URL is set.
func newTestRepo(t *testing.T) (*ReservationRepo, *db.DB) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	d, err := db.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	require.NoError(t, migrate.Up(ctx, d))
	return NewReservationRepo(d), d
}

func fakeReservation(restaurant string, table int) reservation.Reservation {
	return reservation.Reservation{
		ID:             "RES-" + gofakeit.LetterN(12),
		Restaurant:     restaurant,
		RestaurantName: "Baczewski",
		Address:        "8 Shevska Str.",
		Date:           "2025-12-24",
		Time:           "19:00",
		Guests:         2,
		TableID:        table,
		Name:           gofakeit.FirstName(),
		Phone:          gofakeit.Phone(),
		Status:         reservation.StatusConfirmed,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestReservationRepoLifecycle(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	restaurant := "test-" + gofakeit.LetterN(10)

	r := fakeReservation(restaurant, 1)
	require.NoError(t, repo.Insert(ctx, r))

	got, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	clash := fakeReservation(restaurant, 1)
	require.ErrorIs(t, repo.Insert(ctx, clash), reservation.ErrSlotTaken)

	dup := fakeReservation(restaurant, 2)
	dup.ID = r.ID
	require.ErrorIs(t, repo.Insert(ctx, dup), reservation.ErrDuplicateID)

	booked, err := repo.BookedTables(ctx, restaurant, r.Date, r.Time)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true}, booked)

	list, err := repo.ListByPhone(ctx, r.Phone)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = repo.Delete(ctx, r.ID)
	require.NoError(t, err)
	_, err = repo.Delete(ctx, r.ID)
	require.ErrorIs(t, err, reservation.ErrNotFound)

	booked, err = repo.BookedTables(ctx, restaurant, r.Date, r.Time)
	require.NoError(t, err)
	assert.Empty(t, booked)
}
