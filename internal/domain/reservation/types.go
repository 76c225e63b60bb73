package reservation

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Reservation is created once by the booking engine and removed on
// cancellation. It is never updated in place.
type Reservation struct {
	ID             string    `json:"reservation_id"`
	Restaurant     string    `json:"restaurant"`
	RestaurantName string    `json:"restaurant_name"`
	Address        string    `json:"address"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Guests         int       `json:"guests"`
	TableID        int       `json:"table_id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookingKey identifies a single table at a single slot. At most one
// reservation may hold a given key.
type BookingKey struct {
	Restaurant string
	Date       string
	Time       string
	TableID    int
}

func (r Reservation) Key() BookingKey {
	return BookingKey{Restaurant: r.Restaurant, Date: r.Date, Time: r.Time, TableID: r.TableID}
}

func (k BookingKey) String() string {
	return fmt.Sprintf("%s_%s_%s_%d", k.Restaurant, k.Date, k.Time, k.TableID)
}
