package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/table-booking/internal/domain/reservation"
	"github.com/example/table-booking/internal/lib/logger/sl"
)

type CancelResult struct {
	Status  reservation.Status `json:"status"`
	Message string             `json:"message,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// CancelReservation removes the reservation and frees its table. Cancelling
// an id that does not exist, including one already cancelled, fails.
func (b *Booking) CancelReservation(ctx context.Context, id string) (CancelResult, error) {
	const op = "usecases.Booking.CancelReservation"
	defer b.metrics.Observe("cancel_reservation", b.now())

	id = strings.TrimSpace(id)

	log := b.log.With(slog.String("op", op), slog.String("reservation_id", id))
	log.Info("cancelling reservation")

	res, err := b.store.Delete(ctx, id)
	if errors.Is(err, reservation.ErrNotFound) {
		log.Warn("reservation not found")
		b.metrics.Cancellation(string(reservation.StatusFailed))
		return CancelResult{
			Status: reservation.StatusFailed,
			Error:  fmt.Sprintf("Reservation '%s' not found", id),
		}, nil
	}
	if err != nil {
		log.Error("failed to delete reservation", sl.Err(err))
		return CancelResult{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("reservation cancelled")
	b.metrics.Cancellation(string(reservation.StatusCancelled))
	res.Status = reservation.StatusCancelled
	b.publish(ctx, EventCancelled, res)

	return CancelResult{
		Status:  reservation.StatusCancelled,
		Message: fmt.Sprintf("Reservation %s successfully cancelled", id),
	}, nil
}
