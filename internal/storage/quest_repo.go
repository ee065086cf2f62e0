package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type QuestRepo struct {
	db DBTX
}

func NewQuestRepo(db DBTX) *QuestRepo {
	return &QuestRepo{db: db}
}

func (r *QuestRepo) Insert(ctx context.Context, q *Quest) error {
	stats, err := marshalStringList(q.StatTypes)
	if err != nil {
		return fmt.Errorf("marshal stat types: %w", err)
	}
	boosts, err := marshalAppliedBoosts(q.AppliedBoosts)
	if err != nil {
		return fmt.Errorf("marshal applied boosts: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO quests (id, text, base_xp, stat_types, completed, awarded_xp, applied_boosts, history_entry_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.Text, q.BaseXP, stats, boolToInt(q.Completed), q.AwardedXP, boosts, q.HistoryEntryID, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("quest insert: %w", err)
	}
	return nil
}

func (r *QuestRepo) Get(ctx context.Context, id string) (*Quest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, text, base_xp, stat_types, completed, awarded_xp, applied_boosts, history_entry_id, created_at
		FROM quests WHERE id = ?
	`, id)
	return scanQuest(row)
}

func (r *QuestRepo) ListAll(ctx context.Context) ([]Quest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, base_xp, stat_types, completed, awarded_xp, applied_boosts, history_entry_id, created_at
		FROM quests
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("quest list: %w", err)
	}
	defer rows.Close()

	var out []Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quest list rows: %w", err)
	}
	return out, nil
}

func (r *QuestRepo) Update(ctx context.Context, q *Quest) error {
	stats, err := marshalStringList(q.StatTypes)
	if err != nil {
		return fmt.Errorf("marshal stat types: %w", err)
	}
	boosts, err := marshalAppliedBoosts(q.AppliedBoosts)
	if err != nil {
		return fmt.Errorf("marshal applied boosts: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE quests
		SET text = ?, base_xp = ?, stat_types = ?, completed = ?, awarded_xp = ?, applied_boosts = ?, history_entry_id = ?
		WHERE id = ?
	`, q.Text, q.BaseXP, stats, boolToInt(q.Completed), q.AwardedXP, boosts, q.HistoryEntryID, q.ID)
	if err != nil {
		return fmt.Errorf("quest update: %w", err)
	}
	return nil
}

func (r *QuestRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM quests WHERE id = ?`, id); err != nil {
		return fmt.Errorf("quest delete: %w", err)
	}
	return nil
}

// DeleteCompleted removes all completed quests (the daily reset). Profile XP
// and history are untouched.
func (r *QuestRepo) DeleteCompleted(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quests WHERE completed = 1`)
	if err != nil {
		return 0, fmt.Errorf("quest delete completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("quest delete completed rows: %w", err)
	}
	return int(n), nil
}

func (r *QuestRepo) CountPending(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quests WHERE completed = 0`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("quest count pending: %w", err)
	}
	return n, nil
}

func (r *QuestRepo) Count(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quests`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("quest count: %w", err)
	}
	return n, nil
}

func scanQuest(row scanner) (*Quest, error) {
	var (
		q         Quest
		statsRaw  string
		completed int
		awarded   sql.NullInt64
		boostsRaw sql.NullString
		histID    sql.NullString
		createdAt time.Time
	)

	if err := row.Scan(&q.ID, &q.Text, &q.BaseXP, &statsRaw, &completed, &awarded, &boostsRaw, &histID, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("quest scan: %w", err)
	}

	q.Completed = completed != 0
	q.CreatedAt = createdAt
	if awarded.Valid {
		v := int(awarded.Int64)
		q.AwardedXP = &v
	}
	if histID.Valid {
		v := histID.String
		q.HistoryEntryID = &v
	}

	stats, err := unmarshalStringList(statsRaw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal stat types: %w", err)
	}
	q.StatTypes = stats

	if boostsRaw.Valid && boostsRaw.String != "" {
		if err := json.Unmarshal([]byte(boostsRaw.String), &q.AppliedBoosts); err != nil {
			return nil, fmt.Errorf("unmarshal applied boosts: %w", err)
		}
	}
	return &q, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func marshalStringList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalStringList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func marshalAppliedBoosts(list []AppliedBoost) (*string, error) {
	if len(list) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}
