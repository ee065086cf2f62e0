package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// HistoryCap bounds the ledger; appending past the cap drops the oldest
// entries first.
const HistoryCap = 200

type HistoryRepo struct {
	db DBTX
}

func NewHistoryRepo(db DBTX) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Append inserts the entry and trims the ledger down to HistoryCap.
func (r *HistoryRepo) Append(ctx context.Context, e *HistoryEntry) error {
	stats, err := marshalStringList(e.StatTypes)
	if err != nil {
		return fmt.Errorf("marshal stat types: %w", err)
	}
	boosts, err := marshalAppliedBoosts(e.AppliedBoosts)
	if err != nil {
		return fmt.Errorf("marshal applied boosts: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO history (id, text, base_xp, boost_xp, total_xp, stat_types, applied_boosts, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Text, e.BaseXP, e.BoostXP, e.TotalXP, stats, boosts, e.CompletedAt)
	if err != nil {
		return fmt.Errorf("history insert: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		DELETE FROM history WHERE id IN (
			SELECT id FROM history ORDER BY completed_at DESC, id DESC LIMIT -1 OFFSET ?
		)
	`, HistoryCap)
	if err != nil {
		return fmt.Errorf("history trim: %w", err)
	}
	return nil
}

func (r *HistoryRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("history delete: %w", err)
	}
	return nil
}

func (r *HistoryRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("history clear: %w", err)
	}
	return nil
}

func (r *HistoryRepo) Count(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("history count: %w", err)
	}
	return n, nil
}

// ListNewestFirst returns the whole ledger, newest entries first.
func (r *HistoryRepo) ListNewestFirst(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, base_xp, boost_xp, total_xp, stat_types, applied_boosts, completed_at
		FROM history
		ORDER BY completed_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("history list: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}
	return out, nil
}

func scanHistoryEntry(row scanner) (*HistoryEntry, error) {
	var (
		e           HistoryEntry
		statsRaw    string
		boostsRaw   sql.NullString
		completedAt time.Time
	)
	if err := row.Scan(&e.ID, &e.Text, &e.BaseXP, &e.BoostXP, &e.TotalXP, &statsRaw, &boostsRaw, &completedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("history scan: %w", err)
	}
	e.CompletedAt = completedAt

	stats, err := unmarshalStringList(statsRaw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal stat types: %w", err)
	}
	e.StatTypes = stats

	if boostsRaw.Valid && boostsRaw.String != "" {
		if err := json.Unmarshal([]byte(boostsRaw.String), &e.AppliedBoosts); err != nil {
			return nil, fmt.Errorf("unmarshal applied boosts: %w", err)
		}
	}
	return &e, nil
}
