package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type LifeTaskRepo struct {
	db DBTX
}

func NewLifeTaskRepo(db DBTX) *LifeTaskRepo {
	return &LifeTaskRepo{db: db}
}

func (r *LifeTaskRepo) Insert(ctx context.Context, t *LifeTask) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO life_tasks (id, text, difficulty, boost_stat, completed, boost_expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Text, t.Difficulty, t.BoostStat, boolToInt(t.Completed), t.BoostExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("life task insert: %w", err)
	}
	return nil
}

func (r *LifeTaskRepo) Get(ctx context.Context, id string) (*LifeTask, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, text, difficulty, boost_stat, completed, boost_expires_at, created_at
		FROM life_tasks WHERE id = ?
	`, id)
	return scanLifeTask(row)
}

func (r *LifeTaskRepo) ListAll(ctx context.Context) ([]LifeTask, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, difficulty, boost_stat, completed, boost_expires_at, created_at
		FROM life_tasks
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("life task list: %w", err)
	}
	defer rows.Close()

	var out []LifeTask
	for rows.Next() {
		t, err := scanLifeTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("life task rows: %w", err)
	}
	return out, nil
}

func (r *LifeTaskRepo) Update(ctx context.Context, t *LifeTask) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE life_tasks
		SET text = ?, difficulty = ?, boost_stat = ?, completed = ?, boost_expires_at = ?
		WHERE id = ?
	`, t.Text, t.Difficulty, t.BoostStat, boolToInt(t.Completed), t.BoostExpiresAt, t.ID)
	if err != nil {
		return fmt.Errorf("life task update: %w", err)
	}
	return nil
}

func (r *LifeTaskRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM life_tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("life task delete: %w", err)
	}
	return nil
}

func scanLifeTask(row scanner) (*LifeTask, error) {
	var (
		t         LifeTask
		completed int
		expires   sql.NullTime
		createdAt time.Time
	)
	if err := row.Scan(&t.ID, &t.Text, &t.Difficulty, &t.BoostStat, &completed, &expires, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("life task scan: %w", err)
	}
	t.Completed = completed != 0
	t.CreatedAt = createdAt
	if expires.Valid {
		v := expires.Time
		t.BoostExpiresAt = &v
	}
	return &t, nil
}
