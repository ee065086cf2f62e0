package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type BoostRepo struct {
	db DBTX
}

func NewBoostRepo(db DBTX) *BoostRepo {
	return &BoostRepo{db: db}
}

func (r *BoostRepo) Insert(ctx context.Context, b *Boost) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO boosts (id, source_task_id, stat_type, percentage, expires_at, source_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`, b.ID, b.SourceTaskID, b.StatType, b.Percentage, b.ExpiresAt, b.SourceText)
	if err != nil {
		return fmt.Errorf("boost insert: %w", err)
	}
	return nil
}

func (r *BoostRepo) ListAll(ctx context.Context) ([]Boost, error) {
	return r.list(ctx, `
		SELECT id, source_task_id, stat_type, percentage, expires_at, source_text
		FROM boosts ORDER BY expires_at ASC, id ASC
	`)
}

// ListActive returns boosts that have not expired at the given instant.
func (r *BoostRepo) ListActive(ctx context.Context, now time.Time) ([]Boost, error) {
	return r.list(ctx, `
		SELECT id, source_task_id, stat_type, percentage, expires_at, source_text
		FROM boosts WHERE expires_at > ? ORDER BY expires_at ASC, id ASC
	`, now)
}

func (r *BoostRepo) ListBySource(ctx context.Context, sourceTaskID string) ([]Boost, error) {
	return r.list(ctx, `
		SELECT id, source_task_id, stat_type, percentage, expires_at, source_text
		FROM boosts WHERE source_task_id = ? ORDER BY expires_at ASC, id ASC
	`, sourceTaskID)
}

func (r *BoostRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM boosts WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("boost delete by ids: %w", err)
	}
	return nil
}

func (r *BoostRepo) DeleteBySource(ctx context.Context, sourceTaskID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boosts WHERE source_task_id = ?`, sourceTaskID)
	if err != nil {
		return 0, fmt.Errorf("boost delete by source: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("boost delete by source rows: %w", err)
	}
	return int(n), nil
}

// DeleteExpired removes every boost that is dead at the given instant.
func (r *BoostRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boosts WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("boost delete expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("boost delete expired rows: %w", err)
	}
	return int(n), nil
}

func (r *BoostRepo) list(ctx context.Context, query string, args ...any) ([]Boost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("boost list: %w", err)
	}
	defer rows.Close()

	var out []Boost
	for rows.Next() {
		var b Boost
		if err := rows.Scan(&b.ID, &b.SourceTaskID, &b.StatType, &b.Percentage, &b.ExpiresAt, &b.SourceText); err != nil {
			return nil, fmt.Errorf("boost scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("boost rows: %w", err)
	}
	return out, nil
}
