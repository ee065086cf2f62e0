package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const MetaLastReset = "last_reset"

// MetaRepo is a small key/value table for bookkeeping like the last daily
// reset date.
type MetaRepo struct {
	db DBTX
}

func NewMetaRepo(db DBTX) *MetaRepo {
	return &MetaRepo{db: db}
}

func (r *MetaRepo) Get(ctx context.Context, key string) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("meta get: %w", err)
	}
	return v, nil
}

func (r *MetaRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("meta set: %w", err)
	}
	return nil
}
