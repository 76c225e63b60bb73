package postgres

import (
	"context"
	"fmt"

	"github.com/example/table-booking/internal/db"
	"github.com/example/table-booking/internal/domain/reservation"
)

const (
	constraintPK   = "reservations_pkey"
	constraintSlot = "reservations_slot_key"

	selectColumns = `id,restaurant,restaurant_name,address,res_date,res_time,guests,table_id,name,phone,status,created_at`
)

// ReservationRepo is a reservation.Store backed by PostgreSQL. The unique
// constraint on the slot columns is the booking-key index.
type ReservationRepo struct{ db *db.DB }

func NewReservationRepo(d *db.DB) *ReservationRepo { return &ReservationRepo{db: d} }

func (r *ReservationRepo) Insert(ctx context.Context, res reservation.Reservation) error {
	const op = "storage.postgres.Insert"

	_, err := r.db.Exec(ctx, `
INSERT INTO reservations(id,restaurant,restaurant_name,address,res_date,res_time,guests,table_id,name,phone,status,created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		res.ID, res.Restaurant, res.RestaurantName, res.Address, res.Date, res.Time, res.Guests, res.TableID,
		res.Name, res.Phone, string(res.Status), res.CreatedAt,
	)
	if err == nil {
		return nil
	}
	if constraint, ok := db.UniqueViolation(err); ok {
		switch constraint {
		case constraintSlot:
			return fmt.Errorf("%s: %w", op, reservation.ErrSlotTaken)
		case constraintPK:
			return fmt.Errorf("%s: %w", op, reservation.ErrDuplicateID)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *ReservationRepo) Get(ctx context.Context, id string) (reservation.Reservation, error) {
	const op = "storage.postgres.Get"

	res, err := scanReservation(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM reservations WHERE id=$1`, id))
	if err != nil {
		if db.IsNotFound(err) {
			return reservation.Reservation{}, fmt.Errorf("%s: %w", op, reservation.ErrNotFound)
		}
		return reservation.Reservation{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id string) (reservation.Reservation, error) {
	const op = "storage.postgres.Delete"

	res, err := scanReservation(r.db.QueryRow(ctx, `DELETE FROM reservations WHERE id=$1 RETURNING `+selectColumns, id))
	if err != nil {
		if db.IsNotFound(err) {
			return reservation.Reservation{}, fmt.Errorf("%s: %w", op, reservation.ErrNotFound)
		}
		return reservation.Reservation{}, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (r *ReservationRepo) BookedTables(ctx context.Context, restaurant, date, time string) (map[int]bool, error) {
	const op = "storage.postgres.BookedTables"

	rows, err := r.db.Query(ctx, `
SELECT table_id FROM reservations
WHERE restaurant=$1 AND res_date=$2 AND res_time=$3`, restaurant, date, time)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	booked := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		booked[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return booked, nil
}

func (r *ReservationRepo) ListByPhone(ctx context.Context, phone string) ([]reservation.Reservation, error) {
	const op = "storage.postgres.ListByPhone"

	rows, err := r.db.Query(ctx, `SELECT `+selectColumns+` FROM reservations WHERE phone=$1 ORDER BY created_at ASC, id ASC`, phone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]reservation.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanReservation(row db.Row) (reservation.Reservation, error) {
	var res reservation.Reservation
	var status string
	if err := row.Scan(
		&res.ID, &res.Restaurant, &res.RestaurantName, &res.Address, &res.Date, &res.Time, &res.Guests, &res.TableID,
		&res.Name, &res.Phone, &status, &res.CreatedAt,
	); err != nil {
		return reservation.Reservation{}, err
	}
	res.Status = reservation.Status(status)
	res.CreatedAt = res.CreatedAt.UTC()
	return res, nil
}
