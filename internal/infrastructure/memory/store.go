package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/example/table-booking/internal/domain/reservation"
)

// Store is the in-process reservation store. byID is the canonical view;
// bySlot is an index from booking key to reservation id.
type Store struct {
	mu     sync.RWMutex
	byID   map[string]entry
	bySlot map[reservation.BookingKey]string
	seq    uint64
}

type entry struct {
	res reservation.Reservation
	seq uint64
}

func New() *Store {
	return &Store{
		byID:   make(map[string]entry),
		bySlot: make(map[reservation.BookingKey]string),
	}
}

func (s *Store) Insert(_ context.Context, r reservation.Reservation) error {
	const op = "storage.memory.Insert"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[r.ID]; ok {
		return fmt.Errorf("%s: %w", op, reservation.ErrDuplicateID)
	}
	key := r.Key()
	if _, ok := s.bySlot[key]; ok {
		return fmt.Errorf("%s: %w", op, reservation.ErrSlotTaken)
	}
	s.seq++
	s.byID[r.ID] = entry{res: r, seq: s.seq}
	s.bySlot[key] = r.ID
	return nil
}

func (s *Store) Get(_ context.Context, id string) (reservation.Reservation, error) {
	const op = "storage.memory.Get"

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return reservation.Reservation{}, fmt.Errorf("%s: %w", op, reservation.ErrNotFound)
	}
	return e.res, nil
}

func (s *Store) Delete(_ context.Context, id string) (reservation.Reservation, error) {
	const op = "storage.memory.Delete"

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return reservation.Reservation{}, fmt.Errorf("%s: %w", op, reservation.ErrNotFound)
	}
	delete(s.byID, id)
	key := e.res.Key()
	if s.bySlot[key] == id {
		delete(s.bySlot, key)
	}
	return e.res, nil
}

func (s *Store) BookedTables(_ context.Context, restaurant, date, time string) (map[int]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booked := make(map[int]bool)
	for key := range s.bySlot {
		if key.Restaurant == restaurant && key.Date == date && key.Time == time {
			booked[key.TableID] = true
		}
	}
	return booked, nil
}

func (s *Store) ListByPhone(_ context.Context, phone string) ([]reservation.Reservation, error) {
	s.mu.RLock()
	matched := make([]entry, 0)
	for _, e := range s.byID {
		if e.res.Phone == phone {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	out := make([]reservation.Reservation, 0, len(matched))
	for _, e := range matched {
		out = append(out, e.res)
	}
	return out, nil
}

// Len reports the number of active reservations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
