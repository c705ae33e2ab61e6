package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory-service/internal/inventory"

	"github.com/jmoiron/sqlx"
)

const healthCheckTimeout = 2 * time.Second

// PostgresRepository persists one JSON document per product under its state
// key. Writes are conditional on updated_at so a stale snapshot cannot replace
// a newer one.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type stateRow struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (inventory.Product, bool, error) {
	key := inventory.StateKey(id)

	var row stateRow
	err := r.db.GetContext(ctx, &row, `SELECT key, value FROM product_state WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Product{}, false, nil
	}
	if err != nil {
		return inventory.Product{}, false, fmt.Errorf("select %q: %w", key, err)
	}

	p, err := decodeRow(row)
	if err != nil {
		return inventory.Product{}, false, err
	}
	return p, true, nil
}

func (r *PostgresRepository) Put(ctx context.Context, p inventory.Product) error {
	key := inventory.StateKey(p.ID)
	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}

	query := `
		INSERT INTO product_state (key, value, created_at, updated_at)
		VALUES ($1, $2::jsonb, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		WHERE product_state.updated_at <= EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, string(value), p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}

func (r *PostgresRepository) All(ctx context.Context) ([]inventory.Product, error) {
	var rows []stateRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT key, value FROM product_state ORDER BY created_at, key`); err != nil {
		return nil, fmt.Errorf("select product state: %w", err)
	}

	list := make([]inventory.Product, 0, len(rows))
	for _, row := range rows {
		p, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}

func (r *PostgresRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

func decodeRow(row stateRow) (inventory.Product, error) {
	var p inventory.Product
	if err := json.Unmarshal(row.Value, &p); err != nil {
		return inventory.Product{}, fmt.Errorf("decode %q: %w", row.Key, err)
	}
	return p, nil
}
