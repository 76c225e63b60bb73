package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/table-booking/internal/domain/reservation"
)

type ReservationList struct {
	Count        int                       `json:"count"`
	Reservations []reservation.Reservation `json:"reservations"`
}

// ListReservations returns the reservations made with phone, matched the
// same way MakeReservation stores it.
func (b *Booking) ListReservations(ctx context.Context, phone string) (ReservationList, error) {
	const op = "usecases.Booking.ListReservations"
	defer b.metrics.Observe("list_reservations", b.now())

	phone = strings.TrimSpace(phone)

	b.log.Info("listing reservations", slog.String("op", op))

	rs, err := b.store.ListByPhone(ctx, phone)
	if err != nil {
		return ReservationList{}, fmt.Errorf("%s: %w", op, err)
	}
	if rs == nil {
		rs = []reservation.Reservation{}
	}
	return ReservationList{Count: len(rs), Reservations: rs}, nil
}
