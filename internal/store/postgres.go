package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/catalog-enrich/internal/db"
	"github.com/sells-group/catalog-enrich/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests and by the
// bulk import path, which shares one pool across subsystems.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool for subsystems that need
// direct query access (e.g., bulk feed import).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS items (
	id         TEXT PRIMARY KEY,
	input_hash TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL DEFAULT 'received',
	brand      TEXT,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_brand ON items(brand);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) PutItem(ctx context.Context, item *model.EnrichedItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal item")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO items (id, input_hash, status, brand, payload, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (input_hash) DO UPDATE SET
			status = EXCLUDED.status,
			brand = EXCLUDED.brand,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`,
		item.ID, item.InputHash, string(item.Status), item.ResolvedFields["brand"],
		payload, item.CreatedAt.UTC(), time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: put item %s", item.ID)
}

func (s *PostgresStore) GetItem(ctx context.Context, id string) (*model.EnrichedItem, error) {
	row := s.pool.QueryRow(ctx, `SELECT payload FROM items WHERE id = $1`, id)
	return scanItemPg(row)
}

func (s *PostgresStore) GetByInputHash(ctx context.Context, hash string) (*model.EnrichedItem, error) {
	row := s.pool.QueryRow(ctx, `SELECT payload FROM items WHERE input_hash = $1`, hash)
	return scanItemPg(row)
}

// PutItems bulk-upserts items through a temp table, conflict-keyed on
// input_hash like PutItem.
func (s *PostgresStore) PutItems(ctx context.Context, items []*model.EnrichedItem) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal item")
		}
		rows = append(rows, []any{
			item.ID, item.InputHash, string(item.Status), item.ResolvedFields["brand"],
			payload, item.CreatedAt.UTC(), now,
		})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "items",
		Columns:      []string{"id", "input_hash", "status", "brand", "payload", "created_at", "updated_at"},
		ConflictKeys: []string{"input_hash"},
	}, rows)
	return eris.Wrap(err, "postgres: bulk put items")
}

func (s *PostgresStore) ListItems(ctx context.Context, filter ItemFilter) ([]*model.EnrichedItem, error) {
	query := `SELECT payload FROM items WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Brand != "" {
		args = append(args, filter.Brand)
		query += fmt.Sprintf(` AND lower(brand) = lower($%d)`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list items")
	}
	defer rows.Close()

	var items []*model.EnrichedItem
	for rows.Next() {
		it, err := scanItemPg(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "postgres: list items iterate")
}

func scanItemPg(row scannable) (*model.EnrichedItem, error) {
	var payload []byte
	err := row.Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan item")
	}

	var item model.EnrichedItem
	if err := json.Unmarshal(payload, &item); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal item")
	}
	return &item, nil
}
