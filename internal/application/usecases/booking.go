package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/example/table-booking/internal/domain/catalog"
	"github.com/example/table-booking/internal/domain/reservation"
	"github.com/example/table-booking/internal/infrastructure/metrics"
	"github.com/example/table-booking/internal/lib/logger/sl"
)

const (
	EventConfirmed = "reservation.confirmed"
	EventCancelled = "reservation.cancelled"

	maxIDAttempts = 8

	defaultPublishTimeout = 2 * time.Second
)

type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

type Event struct {
	Type        string                  `json:"type"`
	OccurredAt  time.Time               `json:"occurred_at"`
	Reservation reservation.Reservation `json:"reservation"`
}

// Booking is the availability checker and booking engine. It owns no state
// of its own: reservations live in the Store, restaurants in the Catalog.
type Booking struct {
	log      *slog.Logger
	catalog  *catalog.Catalog
	store    reservation.Store
	events   EventPublisher
	metrics  *metrics.Metrics
	validate *validator.Validate
	newID    func(date string) string
	now      func() time.Time

	publishTimeout time.Duration
}

type Option func(*Booking)

func WithEvents(p EventPublisher) Option {
	return func(b *Booking) { b.events = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Booking) { b.metrics = m }
}

// WithIDGenerator replaces the random reservation id source.
func WithIDGenerator(f func(date string) string) Option {
	return func(b *Booking) { b.newID = f }
}

// WithPublishTimeout bounds how long a booking waits on the event publisher.
func WithPublishTimeout(d time.Duration) Option {
	return func(b *Booking) { b.publishTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(b *Booking) { b.now = now }
}

func NewBooking(log *slog.Logger, cat *catalog.Catalog, store reservation.Store, opts ...Option) *Booking {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	b := &Booking{
		log:      log,
		catalog:  cat,
		store:    store,
		validate: v,
		newID:    NewReservationID,
		now:      time.Now,

		publishTimeout: defaultPublishTimeout,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Booking) Catalog() *catalog.Catalog { return b.catalog }

// NewReservationID returns RES-<date without dashes>-<4 uppercase hex>.
func NewReservationID(date string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return "RES-" + strings.ReplaceAll(date, "-", "") + "-" + suffix
}

func (b *Booking) publish(ctx context.Context, typ string, r reservation.Reservation) {
	if b.events == nil {
		return
	}
	const op = "usecases.Booking.publish"
	log := b.log.With(slog.String("op", op), slog.String("type", typ), slog.String("reservation_id", r.ID))

	data, err := json.Marshal(Event{Type: typ, OccurredAt: b.now().UTC(), Reservation: r})
	if err != nil {
		log.Error("failed to encode event", sl.Err(err))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, b.publishTimeout)
	defer cancel()
	if err := b.events.Publish(ctx, []byte(r.ID), data); err != nil {
		log.Warn("failed to publish event", sl.Err(err))
	}
}
