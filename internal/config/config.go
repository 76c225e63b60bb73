package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Env        string
	Transport  string
	ListenAddr string

	Store         string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CatalogFile string

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads an optional .env file at path and then the environment.
// Variables already set in the environment win over the file.
func Load(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Env:           getenv("ENV", "local"),
		Transport:     getenv("TRANSPORT", TransportStdio),
		ListenAddr:    getenv("LISTEN_ADDR", ":8080"),
		Store:         getenv("STORE", StoreMemory),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CatalogFile:   strings.TrimSpace(os.Getenv("CATALOG_FILE")),
		KafkaBrokers:  splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    getenv("KAFKA_TOPIC", "reservations"),
	}

	redisDB, err := strconv.Atoi(getenv("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		return Config{}, fmt.Errorf("invalid REDIS_DB")
	}
	cfg.RedisDB = redisDB

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("invalid TRANSPORT %q (want %s or %s)", c.Transport, TransportStdio, TransportHTTP)
	}
	switch c.Store {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("invalid STORE %q (want %s, %s or %s)", c.Store, StoreMemory, StorePostgres, StoreRedis)
	}
	return nil
}

func (c Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
