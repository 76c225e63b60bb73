package reservation

import "errors"

var (
	ErrNotFound    = errors.New("reservation not found")
	ErrSlotTaken   = errors.New("table already booked for this slot")
	ErrDuplicateID = errors.New("reservation id already exists")
)
