package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/table-booking/internal/application/usecases"
	"github.com/example/table-booking/internal/config"
	"github.com/example/table-booking/internal/db"
	"github.com/example/table-booking/internal/domain/catalog"
	"github.com/example/table-booking/internal/domain/reservation"
	"github.com/example/table-booking/internal/infrastructure/kafka"
	"github.com/example/table-booking/internal/infrastructure/memory"
	"github.com/example/table-booking/internal/infrastructure/metrics"
	"github.com/example/table-booking/internal/infrastructure/postgres"
	"github.com/example/table-booking/internal/infrastructure/redis"
	"github.com/example/table-booking/internal/lib/logger/sl"
	"github.com/example/table-booking/internal/migrate"
)

// app is the wired process: config, logger, store and booking engine.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	booking *usecases.Booking

	closers []func() error
}

func loadConfig(opts *rootOptions) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	// stdout belongs to the stdio transport
	return cfg, sl.New(cfg.Env, os.Stderr), nil
}

// loadCatalog reads CATALOG_FILE when set and falls back to the built-in
// catalog otherwise.
func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.CatalogFile)
}

func newApp(ctx context.Context, opts *rootOptions, migrateUp bool) (*app, error) {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, metrics: metrics.New()}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.CatalogFile != "" {
		log.Info("catalog loaded", slog.String("file", cfg.CatalogFile))
	}

	store, err := a.openStore(ctx, migrateUp)
	if err != nil {
		a.Close()
		return nil, err
	}

	bopts := []usecases.Option{usecases.WithMetrics(a.metrics)}
	if cfg.EventsEnabled() {
		p := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		a.closers = append(a.closers, p.Close)
		bopts = append(bopts, usecases.WithEvents(p))
		log.Info("publishing booking events", slog.Any("brokers", cfg.KafkaBrokers), slog.String("topic", cfg.KafkaTopic))
	}

	a.booking = usecases.NewBooking(log, cat, store, bopts...)
	return a, nil
}

func (a *app) openStore(ctx context.Context, migrateUp bool) (reservation.Store, error) {
	log := a.log.With(slog.String("store", a.cfg.Store))

	switch a.cfg.Store {
	case config.StorePostgres:
		d, err := db.Open(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { d.Close(); return nil })
		if err := d.Ping(ctx); err != nil {
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if migrateUp {
			if err := migrate.Up(ctx, d); err != nil {
				return nil, err
			}
		}
		log.Info("using postgres reservation store")
		return postgres.NewReservationRepo(d), nil

	case config.StoreRedis:
		s := redis.New(redis.NewClient(a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB), "")
		a.closers = append(a.closers, s.Close)
		if err := s.Ping(ctx); err != nil {
			return nil, err
		}
		log.Info("using redis reservation store", slog.String("addr", a.cfg.RedisAddr))
		return s, nil

	default:
		log.Info("using in-memory reservation store")
		return memory.New(), nil
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", sl.Err(err))
		}
	}
	a.closers = nil
}
