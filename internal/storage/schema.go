package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profile (
			key TEXT PRIMARY KEY,
			total_xp INTEGER NOT NULL DEFAULT 0,
			xp_strength INTEGER NOT NULL DEFAULT 0,
			xp_career INTEGER NOT NULL DEFAULT 0,
			xp_willpower INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS quests (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			base_xp INTEGER NOT NULL,
			stat_types TEXT NOT NULL DEFAULT '[]',
			completed INTEGER NOT NULL DEFAULT 0,
			awarded_xp INTEGER,
			applied_boosts TEXT,
			history_entry_id TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS life_tasks (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			difficulty INTEGER NOT NULL,
			boost_stat TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			boost_expires_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS boosts (
			id TEXT PRIMARY KEY,
			source_task_id TEXT NOT NULL,
			stat_type TEXT NOT NULL,
			percentage INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			source_text TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			base_xp INTEGER NOT NULL,
			boost_xp INTEGER NOT NULL,
			total_xp INTEGER NOT NULL,
			stat_types TEXT NOT NULL DEFAULT '[]',
			applied_boosts TEXT,
			completed_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_boosts_stat_type ON boosts(stat_type);`,
		`CREATE INDEX IF NOT EXISTS idx_boosts_source_task_id ON boosts(source_task_id);`,
		`CREATE INDEX IF NOT EXISTS idx_boosts_expires_at ON boosts(expires_at);`,
		`CREATE INDEX IF NOT EXISTS idx_history_completed_at ON history(completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_quests_completed ON quests(completed);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
