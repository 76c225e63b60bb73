package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/example/table-booking/internal/domain/reservation"
)

const defaultPrefix = "booking"

// Insert and delete touch the record, the slot index, the per-slot table
// set and the phone index in one script so the views never diverge.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then return 1 end
if redis.call('EXISTS', KEYS[2]) == 1 then return 2 end
redis.call('SET', KEYS[1], ARGV[2])
redis.call('SET', KEYS[2], ARGV[1])
redis.call('ZADD', KEYS[3], ARGV[3], ARGV[1])
redis.call('SADD', KEYS[4], ARGV[4])
return 0
`)

var deleteScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return 0 end
redis.call('DEL', KEYS[1])
if redis.call('GET', KEYS[2]) == ARGV[1] then
	redis.call('DEL', KEYS[2])
	redis.call('SREM', KEYS[4], ARGV[2])
end
redis.call('ZREM', KEYS[3], ARGV[1])
return 1
`)

type Store struct {
	client *redis.Client
	prefix string
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// New wraps client. An empty prefix uses "booking".
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) reservationKey(id string) string {
	return fmt.Sprintf("%s:reservation:%s", s.prefix, id)
}

// slotPart quotes restaurant, date and time so no two slots share a key
// even when the parts themselves contain ':'.
func slotPart(restaurant, date, time string) string {
	return strconv.Quote(restaurant) + ":" + strconv.Quote(date) + ":" + strconv.Quote(time)
}

func (s *Store) slotKey(k reservation.BookingKey) string {
	return fmt.Sprintf("%s:slot:%s:%d", s.prefix, slotPart(k.Restaurant, k.Date, k.Time), k.TableID)
}

func (s *Store) slotTablesKey(restaurant, date, time string) string {
	return fmt.Sprintf("%s:slot-tables:%s", s.prefix, slotPart(restaurant, date, time))
}

func (s *Store) phoneKey(phone string) string {
	return fmt.Sprintf("%s:phone:%s", s.prefix, phone)
}

func (s *Store) keysFor(r reservation.Reservation) []string {
	return []string{
		s.reservationKey(r.ID),
		s.slotKey(r.Key()),
		s.phoneKey(r.Phone),
		s.slotTablesKey(r.Restaurant, r.Date, r.Time),
	}
}

func (s *Store) Insert(ctx context.Context, r reservation.Reservation) error {
	const op = "storage.redis.Insert"

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	code, err := insertScript.Run(ctx, s.client, s.keysFor(r),
		r.ID, string(data), r.CreatedAt.UnixNano(), r.TableID).Int()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch code {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%s: %w", op, reservation.ErrDuplicateID)
	case 2:
		return fmt.Errorf("%s: %w", op, reservation.ErrSlotTaken)
	default:
		return fmt.Errorf("%s: unexpected script result %d", op, code)
	}
}

func (s *Store) Get(ctx context.Context, id string) (reservation.Reservation, error) {
	const op = "storage.redis.Get"

	data, err := s.client.Get(ctx, s.reservationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return reservation.Reservation{}, fmt.Errorf("%s: %w", op, reservation.ErrNotFound)
		}
		return reservation.Reservation{}, fmt.Errorf("%s: %w", op, err)
	}
	var r reservation.Reservation
	if err := json.Unmarshal(data, &r); err != nil {
		return reservation.Reservation{}, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

func (s *Store) Delete(ctx context.Context, id string) (reservation.Reservation, error) {
	const op = "storage.redis.Delete"

	r, err := s.Get(ctx, id)
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("%s: %w", op, err)
	}
	removed, err := deleteScript.Run(ctx, s.client, s.keysFor(r), r.ID, r.TableID).Int()
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("%s: %w", op, err)
	}
	if removed == 0 {
		// cancelled concurrently between the read and the script
		return reservation.Reservation{}, fmt.Errorf("%s: %w", op, reservation.ErrNotFound)
	}
	return r, nil
}

func (s *Store) BookedTables(ctx context.Context, restaurant, date, time string) (map[int]bool, error) {
	const op = "storage.redis.BookedTables"

	members, err := s.client.SMembers(ctx, s.slotTablesKey(restaurant, date, time)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	booked := make(map[int]bool, len(members))
	for _, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("%s: bad table id %q: %w", op, m, err)
		}
		booked[id] = true
	}
	return booked, nil
}

func (s *Store) ListByPhone(ctx context.Context, phone string) ([]reservation.Reservation, error) {
	const op = "storage.redis.ListByPhone"

	ids, err := s.client.ZRange(ctx, s.phoneKey(phone), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]reservation.Reservation, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.reservationKey(id))
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var r reservation.Reservation
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	const op = "storage.redis.Ping"

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) Close() error {
	const op = "storage.redis.Close"

	if err := s.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
