package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/table-booking/internal/domain/catalog"
	"github.com/example/table-booking/internal/domain/reservation"
	"github.com/example/table-booking/internal/lib/logger/sl"
)

type Availability struct {
	Available  bool            `json:"available"`
	Restaurant string          `json:"restaurant,omitempty"`
	Date       string          `json:"date,omitempty"`
	Time       string          `json:"time,omitempty"`
	Tables     []catalog.Table `json:"tables"`
	Error      string          `json:"error,omitempty"`
}

func restaurantNotFound(key string) string {
	return fmt.Sprintf("Restaurant '%s' not found", key)
}

// CheckAvailability lists the free tables that seat guests at the slot.
// Domain failures are reported in the result; the error is reserved for
// store failures.
func (b *Booking) CheckAvailability(ctx context.Context, restaurant, date, time string, guests int) (Availability, error) {
	const op = "usecases.Booking.CheckAvailability"
	defer b.metrics.Observe("check_availability", b.now())

	log := b.log.With(
		slog.String("op", op),
		slog.String("restaurant", restaurant),
		slog.String("date", date),
		slog.String("time", time),
		slog.Int("guests", guests),
	)
	log.Info("checking availability")

	rest, err := b.catalog.Restaurant(restaurant)
	if err != nil {
		log.Warn("unknown restaurant")
		b.metrics.Availability("unknown", "error")
		return Availability{Tables: []catalog.Table{}, Error: restaurantNotFound(restaurant)}, nil
	}

	a, err := b.availability(ctx, rest, date, time, guests)
	if err != nil {
		log.Error("availability check failed", sl.Err(err))
		return Availability{}, fmt.Errorf("%s: %w", op, err)
	}

	result := "unavailable"
	if a.Available {
		result = "available"
	}
	b.metrics.Availability(rest.Key, result)
	log.Debug("availability checked", slog.Int("free_tables", len(a.Tables)))
	return a, nil
}

var errGuests = errors.New("guests must be a positive integer")

func (b *Booking) availability(ctx context.Context, rest catalog.Restaurant, date, time string, guests int) (Availability, error) {
	a := Availability{
		Restaurant: rest.Name,
		Date:       date,
		Time:       time,
		Tables:     []catalog.Table{},
	}
	if guests < 1 {
		a.Error = errGuests.Error()
		return a, nil
	}

	booked, err := b.store.BookedTables(ctx, rest.Key, date, time)
	if err != nil {
		return Availability{}, err
	}
	a.Tables = reservation.FreeTables(rest.Tables, guests, booked)
	a.Available = len(a.Tables) > 0
	return a, nil
}
