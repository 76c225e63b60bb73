package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/example/table-booking/internal/domain/catalog"
	"github.com/example/table-booking/internal/domain/reservation"
	"github.com/example/table-booking/internal/lib/logger/sl"
)

const ErrNoTables = "No tables available at this time"

type ReservationRequest struct {
	Restaurant string `json:"restaurant" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Time       string `json:"time" validate:"required"`
	Guests     int    `json:"guests" validate:"gt=0"`
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
}

type BookingDetails struct {
	Restaurant string `json:"restaurant"`
	Address    string `json:"address"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Guests     int    `json:"guests"`
	Table      int    `json:"table"`
}

type BookingResult struct {
	Status        reservation.Status `json:"status"`
	ReservationID string             `json:"reservation_id,omitempty"`
	Details       *BookingDetails    `json:"details,omitempty"`
	Error         string             `json:"error,omitempty"`
}

func failed(msg string) BookingResult {
	return BookingResult{Status: reservation.StatusFailed, Error: msg}
}

// MakeReservation books the first free table that seats the party.
// Availability is always recomputed here; a result obtained earlier by the
// caller is never trusted. The store's insert-if-absent is the only commit
// point, so a concurrent booking that takes the chosen table makes this
// call move on to the next free one.
func (b *Booking) MakeReservation(ctx context.Context, req ReservationRequest) (BookingResult, error) {
	const op = "usecases.Booking.MakeReservation"
	defer b.metrics.Observe("make_reservation", b.now())

	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)

	log := b.log.With(
		slog.String("op", op),
		slog.String("restaurant", req.Restaurant),
		slog.String("date", req.Date),
		slog.String("time", req.Time),
		slog.Int("guests", req.Guests),
		slog.String("name", req.Name),
	)
	log.Info("making reservation")

	if msg := b.validationMessage(req); msg != "" {
		log.Warn("invalid reservation request", slog.String("reason", msg))
		b.metrics.Reservation(metricRestaurant(b.catalog, req.Restaurant), string(reservation.StatusFailed))
		return failed(msg), nil
	}

	rest, err := b.catalog.Restaurant(req.Restaurant)
	if err != nil {
		log.Warn("unknown restaurant")
		b.metrics.Reservation("unknown", string(reservation.StatusFailed))
		return failed(restaurantNotFound(req.Restaurant)), nil
	}

	// Each lost race removes one table from the candidates, so the loop
	// ends after at most len(tables) conflicts.
	for attempt := 0; attempt <= len(rest.Tables); attempt++ {
		a, err := b.availability(ctx, rest, req.Date, req.Time, req.Guests)
		if err != nil {
			log.Error("availability check failed", sl.Err(err))
			return BookingResult{}, fmt.Errorf("%s: %w", op, err)
		}
		table, ok := reservation.ChooseTable(a.Tables)
		if !ok {
			break
		}

		res, err := b.commit(ctx, rest, table, req)
		if errors.Is(err, reservation.ErrSlotTaken) {
			log.Debug("table taken concurrently, retrying", slog.Int("table_id", table.ID))
			continue
		}
		if err != nil {
			log.Error("failed to store reservation", sl.Err(err))
			return BookingResult{}, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("reservation confirmed", slog.String("reservation_id", res.ID), slog.Int("table_id", res.TableID))
		b.metrics.Reservation(rest.Key, string(reservation.StatusConfirmed))
		b.publish(ctx, EventConfirmed, res)

		return BookingResult{
			Status:        reservation.StatusConfirmed,
			ReservationID: res.ID,
			Details: &BookingDetails{
				Restaurant: res.RestaurantName,
				Address:    res.Address,
				Date:       res.Date,
				Time:       res.Time,
				Guests:     res.Guests,
				Table:      res.TableID,
			},
		}, nil
	}

	log.Warn("no availability")
	b.metrics.Reservation(rest.Key, string(reservation.StatusFailed))
	return failed(ErrNoTables), nil
}

// commit inserts the reservation, drawing a fresh id whenever the generated
// one is already in use.
func (b *Booking) commit(ctx context.Context, rest catalog.Restaurant, table catalog.Table, req ReservationRequest) (reservation.Reservation, error) {
	res := reservation.Reservation{
		Restaurant:     rest.Key,
		RestaurantName: rest.Name,
		Address:        rest.Address,
		Date:           req.Date,
		Time:           req.Time,
		Guests:         req.Guests,
		TableID:        table.ID,
		Name:           req.Name,
		Phone:          req.Phone,
		Status:         reservation.StatusConfirmed,
	}
	for i := 0; i < maxIDAttempts; i++ {
		res.ID = b.newID(req.Date)
		res.CreatedAt = b.now().UTC()

		err := b.store.Insert(ctx, res)
		if errors.Is(err, reservation.ErrDuplicateID) {
			continue
		}
		if err != nil {
			return reservation.Reservation{}, err
		}
		return res, nil
	}
	return reservation.Reservation{}, fmt.Errorf("no unique reservation id after %d attempts", maxIDAttempts)
}

func (b *Booking) validationMessage(req ReservationRequest) string {
	err := b.validate.Struct(req)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gt":
		return fe.Field() + " must be a positive integer"
	default:
		return fe.Field() + " is invalid"
	}
}

func metricRestaurant(c *catalog.Catalog, key string) string {
	if _, err := c.Restaurant(key); err != nil {
		return "unknown"
	}
	return key
}
