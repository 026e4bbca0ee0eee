package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Migration is one forward-only schema change
type Migration struct {
	Up          func(tx *sql.Tx, d dialect) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial parts schema",
		Up: func(tx *sql.Tx, d dialect) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS parts (
					id TEXT PRIMARY KEY,
					batch_id TEXT NOT NULL,
					name TEXT NOT NULL,
					slug TEXT NOT NULL,
					brand TEXT NOT NULL,
					brand_slug TEXT NOT NULL,
					category TEXT NOT NULL,
					sku TEXT,
					price TEXT,
					description TEXT,
					metadata ` + d.jsonType + ` NOT NULL,
					created_at TIMESTAMP NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_parts_batch ON parts(batch_id)`,
				`CREATE INDEX IF NOT EXISTS idx_parts_category ON parts(category)`,
			}
			return execAll(tx, queries)
		},
	},
	{
		Version:     2,
		Description: "Index brand and sku for duplicate lookups",
		Up: func(tx *sql.Tx, _ dialect) error {
			return execAll(tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_parts_brand_sku ON parts(brand_slug, sku)`,
			})
		},
	},
}

// ExpectedSchemaVersion is the version Migrate brings a database to
var ExpectedSchemaVersion = migrations[len(migrations)-1].Version

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate applies every migration newer than the recorded schema version
func (s *PartStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if err := migration.Up(tx, s.dialect); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		record := s.dialect.rebind(`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, record, migration.Version, migration.Description, s.now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		s.log.Info("Applied migration",
			zap.Int("version", migration.Version),
			zap.String("description", migration.Description),
		)
	}

	final, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, final)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, 0 for a fresh database
func (s *PartStore) SchemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return int(version.Int64), nil
}
