package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/catalog-enrich/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS items (
	id         TEXT PRIMARY KEY,
	input_hash TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL DEFAULT 'received',
	brand      TEXT,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_brand ON items(brand);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PutItem(ctx context.Context, item *model.EnrichedItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal item")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO items (id, input_hash, status, brand, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(input_hash) DO UPDATE SET
			status = excluded.status,
			brand = excluded.brand,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		item.ID, item.InputHash, string(item.Status), item.ResolvedFields["brand"],
		string(payload), item.CreatedAt.UTC(), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put item %s", item.ID)
}

func (s *SQLiteStore) GetItem(ctx context.Context, id string) (*model.EnrichedItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM items WHERE id = ?`, id,
	)
	return scanItem(row)
}

func (s *SQLiteStore) GetByInputHash(ctx context.Context, hash string) (*model.EnrichedItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM items WHERE input_hash = ?`, hash,
	)
	return scanItem(row)
}

// PutItems persists items one by one inside a transaction.
func (s *SQLiteStore) PutItems(ctx context.Context, items []*model.EnrichedItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin bulk put")
	}
	defer tx.Rollback()

	for _, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal item")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (id, input_hash, status, brand, payload, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(input_hash) DO UPDATE SET
				status = excluded.status,
				brand = excluded.brand,
				payload = excluded.payload,
				updated_at = excluded.updated_at`,
			item.ID, item.InputHash, string(item.Status), item.ResolvedFields["brand"],
			string(payload), item.CreatedAt.UTC(), time.Now().UTC(),
		); err != nil {
			return eris.Wrapf(err, "sqlite: bulk put item %s", item.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit bulk put")
}

func (s *SQLiteStore) ListItems(ctx context.Context, filter ItemFilter) ([]*model.EnrichedItem, error) {
	query := `SELECT payload FROM items WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Brand != "" {
		query += ` AND brand = ? COLLATE NOCASE`
		args = append(args, filter.Brand)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list items")
	}
	defer rows.Close()

	var items []*model.EnrichedItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: list items iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanItem(row scannable) (*model.EnrichedItem, error) {
	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan item")
	}

	var item model.EnrichedItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal item")
	}
	return &item, nil
}
