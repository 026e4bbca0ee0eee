package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/logger"
	"go.uber.org/zap"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// dialect covers the differences between the two supported databases
type dialect struct {
	name       string
	jsonType   string
	positional bool
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite:
		return dialect{name: DriverSQLite, jsonType: "TEXT"}, nil
	case DriverPostgres:
		return dialect{name: DriverPostgres, jsonType: "JSONB", positional: true}, nil
	}
	return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// rebind rewrites "?" placeholders to "$n" for postgres
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PartStore persists committed parts and serves them back as the duplicate
// comparison set. It implements domain.PartRepository and domain.CatalogSource.
type PartStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
	log     *zap.Logger
}

// Open connects to driver/dsn and verifies the connection. SQLite files get
// their directory created and a single connection.
func Open(ctx context.Context, driver, dsn string) (*PartStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: empty database dsn", domain.ErrStoreUnavailable)
	}

	if driver == DriverSQLite && !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return newPartStore(db, d), nil
}

// NewPartStoreFromDB wraps an existing connection pool
func NewPartStoreFromDB(db *sql.DB, driver string) (*PartStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return newPartStore(db, d), nil
}

func newPartStore(db *sql.DB, d dialect) *PartStore {
	return &PartStore{
		db:      db,
		dialect: d,
		now:     time.Now,
		log:     logger.Named("store").With(zap.String("driver", d.name)),
	}
}

// Close closes the connection pool
func (s *PartStore) Close() error {
	return s.db.Close()
}

// SaveParts inserts parts in one transaction. Either every part is stored or
// none is.
func (s *PartStore) SaveParts(ctx context.Context, parts []domain.CommittedPart) error {
	if len(parts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, s.dialect.rebind(`INSERT INTO parts
		(id, batch_id, name, slug, brand, brand_slug, category, sku, price, description, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range parts {
		metadata, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", p.ID, err)
		}
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = s.now()
		}

		if _, err := stmt.ExecContext(ctx,
			p.ID, p.BatchID, p.Name, p.Slug, p.Brand, p.BrandSlug, p.Category,
			p.SKU, p.Price, p.Description, string(metadata), createdAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to insert part %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit parts: %w", err)
	}

	s.log.Debug("Saved parts", zap.Int("count", len(parts)))
	return nil
}

// ListEntries returns every stored part as duplicate comparison material, in
// insertion order.
func (s *PartStore) ListEntries(ctx context.Context) ([]domain.CatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, brand, COALESCE(sku, '') FROM parts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query parts: %w", err)
	}
	defer rows.Close()

	entries := []domain.CatalogEntry{}
	for rows.Next() {
		var e domain.CatalogEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Brand, &e.SKU); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parts: %w", err)
	}
	return entries, nil
}

// GetPart loads one committed part. A missing id returns sql.ErrNoRows wrapped.
func (s *PartStore) GetPart(ctx context.Context, id string) (*domain.CommittedPart, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(`SELECT
		id, batch_id, name, slug, brand, brand_slug, category,
		COALESCE(sku, ''), COALESCE(price, ''), COALESCE(description, ''), metadata, created_at
		FROM parts WHERE id = ?`), id)

	var (
		p        domain.CommittedPart
		metadata string
	)
	err := row.Scan(&p.ID, &p.BatchID, &p.Name, &p.Slug, &p.Brand, &p.BrandSlug, &p.Category,
		&p.SKU, &p.Price, &p.Description, &metadata, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("part %s: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load part %s: %w", id, err)
	}

	p.Metadata = domain.NewMetadata()
	if err := json.Unmarshal([]byte(metadata), p.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for %s: %w", id, err)
	}
	return &p, nil
}

// CountByBatch returns how many parts a batch committed
func (s *PartStore) CountByBatch(ctx context.Context, batchID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`SELECT COUNT(*) FROM parts WHERE batch_id = ?`), batchID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count parts: %w", err)
	}
	return n, nil
}
