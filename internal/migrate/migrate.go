package migrate

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/example/table-booking/internal/db"
)

//go:embed *.sql
var fs embed.FS

// lockID serializes concurrent migrators (pg_advisory_xact_lock key).
const lockID int64 = 0x7461626c65

// Files returns the embedded migration file names in apply order.
func Files() ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Up applies every pending migration. Each file and its schema_migrations
// row commit together.
func Up(ctx context.Context, d *db.DB) error {
	const op = "migrate.Up"

	files, err := Files()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, f := range files {
		if err := d.WithTx(ctx, func(tx pgx.Tx) error { return apply(ctx, tx, f) }); err != nil {
			return fmt.Errorf("%s: %s: %w", op, f, err)
		}
	}
	return nil
}

func apply(ctx context.Context, tx pgx.Tx, name string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lockID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	var applied bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, name).Scan(&applied); err != nil {
		return err
	}
	if applied {
		return nil
	}

	sql, err := fs.ReadFile(name)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, string(sql)); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO schema_migrations(version) VALUES ($1)`, name)
	return err
}
