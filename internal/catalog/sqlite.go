package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/notepress/notepress/internal/catalog/migrations"
	"github.com/notepress/notepress/internal/dbx"

	_ "modernc.org/sqlite"
)

// SQLiteCatalog is the on-disk Catalog implementation.
type SQLiteCatalog struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database at dsn and applies
// pending migrations.
func Open(ctx context.Context, dsn string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

func (c *SQLiteCatalog) Lookup(ctx context.Context, contentHash string) (*Record, bool, error) {
	query := `SELECT id, content_hash, storage_key, url, name, mime_type, size, batch_id, created_at
		FROM uploads WHERE content_hash = ?`
	row := c.db.QueryRowContext(ctx, query, contentHash)

	rec := &Record{}
	err := row.Scan(&rec.ID, &rec.ContentHash, &rec.StorageKey, &rec.URL,
		&rec.Name, &rec.MimeType, &rec.Size, &rec.BatchID, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup %s: %w", contentHash, err)
	}
	return rec, true, nil
}

// RecordAll inserts all records in one transaction. A record whose
// content hash is already present is skipped, so replaying a publish
// pass is harmless.
func (c *SQLiteCatalog) RecordAll(ctx context.Context, recs []*Record) error {
	if len(recs) == 0 {
		return nil
	}
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO uploads (id, content_hash, storage_key, url, name, mime_type, size, batch_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (content_hash) DO NOTHING`
		for _, rec := range recs {
			id := rec.ID
			if id == "" {
				id = uuid.NewString()
			}
			_, err := tx.ExecContext(ctx, query, id, rec.ContentHash, rec.StorageKey,
				rec.URL, rec.Name, rec.MimeType, rec.Size, rec.BatchID)
			if err != nil {
				return fmt.Errorf("insert upload %s: %w", rec.Name, err)
			}
		}
		return nil
	})
}

func (c *SQLiteCatalog) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.QueryRowContext(ctx, `SELECT count(*) FROM uploads`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count uploads: %w", err)
	}
	return n, nil
}
