package document

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"soloquest/internal/storage"
)

const historyCap = storage.HistoryCap

// FromStore assembles the full document from the live store, for export.
func FromStore(ctx context.Context, db *sql.DB) (*Document, error) {
	profiles := storage.NewProfileRepo(db)
	quests := storage.NewQuestRepo(db)
	lifeTasks := storage.NewLifeTaskRepo(db)
	boosts := storage.NewBoostRepo(db)
	history := storage.NewHistoryRepo(db)
	meta := storage.NewMetaRepo(db)

	p, err := profiles.GetOrCreateMain(ctx)
	if err != nil {
		return nil, err
	}

	doc := Default(time.Now().UTC())
	doc.TotalXP = p.TotalXP
	doc.Stats = Stats{
		Strength:  StatXP{TotalXP: p.XPStrength},
		Career:    StatXP{TotalXP: p.XPCareer},
		Willpower: StatXP{TotalXP: p.XPWillpower},
	}

	qs, err := quests.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, q := range qs {
		doc.Todos = append(doc.Todos, Quest{
			ID:             q.ID,
			Text:           q.Text,
			BaseXP:         q.BaseXP,
			StatTypes:      q.StatTypes,
			Completed:      q.Completed,
			AwardedXP:      q.AwardedXP,
			AppliedBoosts:  toDocBoostSnapshots(q.AppliedBoosts),
			HistoryEntryID: q.HistoryEntryID,
		})
	}

	ts, err := lifeTasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range ts {
		doc.MiscTodos = append(doc.MiscTodos, LifeTask{
			ID:             t.ID,
			Text:           t.Text,
			Difficulty:     t.Difficulty,
			BoostStat:      t.BoostStat,
			Completed:      t.Completed,
			BoostExpiresAt: t.BoostExpiresAt,
		})
	}

	bs, err := boosts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range bs {
		doc.Boosts = append(doc.Boosts, Boost{
			ID:           b.ID,
			SourceTaskID: b.SourceTaskID,
			StatType:     b.StatType,
			Percentage:   b.Percentage,
			ExpiresAt:    b.ExpiresAt,
			SourceText:   b.SourceText,
		})
	}

	// ListNewestFirst is display order; the document keeps append order.
	entries, err := history.ListNewestFirst(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		doc.History = append(doc.History, HistoryEntry{
			ID:            e.ID,
			Text:          e.Text,
			BaseXP:        e.BaseXP,
			BoostXP:       e.BoostXP,
			TotalXP:       e.TotalXP,
			StatTypes:     e.StatTypes,
			AppliedBoosts: toDocBoostSnapshots(e.AppliedBoosts),
			CompletedAt:   e.CompletedAt,
		})
	}

	lastReset, err := meta.Get(ctx, storage.MetaLastReset)
	if err != nil {
		return nil, err
	}
	if lastReset != "" {
		doc.LastReset = lastReset
	}
	return doc, nil
}

// ReplaceStore swaps the entire store contents for the document, atomically.
// The current data survives untouched if anything fails.
func ReplaceStore(ctx context.Context, db *sql.DB, doc *Document) error {
	return storage.WithTx(ctx, db, func(tx *sql.Tx) error {
		for _, table := range []string{"quests", "life_tasks", "boosts", "history", "profile", "meta"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		profiles := storage.NewProfileRepo(tx)
		quests := storage.NewQuestRepo(tx)
		lifeTasks := storage.NewLifeTaskRepo(tx)
		boosts := storage.NewBoostRepo(tx)
		history := storage.NewHistoryRepo(tx)
		meta := storage.NewMetaRepo(tx)

		p, err := profiles.GetOrCreateMain(ctx)
		if err != nil {
			return err
		}
		p.TotalXP = doc.TotalXP
		p.XPStrength = doc.Stats.Strength.TotalXP
		p.XPCareer = doc.Stats.Career.TotalXP
		p.XPWillpower = doc.Stats.Willpower.TotalXP
		if err := profiles.Update(ctx, p); err != nil {
			return err
		}

		now := time.Now().UTC()
		for i, q := range doc.Todos {
			sq := &storage.Quest{
				ID:             q.ID,
				Text:           q.Text,
				BaseXP:         q.BaseXP,
				StatTypes:      q.StatTypes,
				Completed:      q.Completed,
				AwardedXP:      q.AwardedXP,
				AppliedBoosts:  toStorageBoostSnapshots(q.AppliedBoosts),
				HistoryEntryID: q.HistoryEntryID,
				CreatedAt:      now.Add(time.Duration(i) * time.Millisecond),
			}
			if err := quests.Insert(ctx, sq); err != nil {
				return err
			}
		}

		for i, t := range doc.MiscTodos {
			st := &storage.LifeTask{
				ID:             t.ID,
				Text:           t.Text,
				Difficulty:     t.Difficulty,
				BoostStat:      t.BoostStat,
				Completed:      t.Completed,
				BoostExpiresAt: t.BoostExpiresAt,
				CreatedAt:      now.Add(time.Duration(i) * time.Millisecond),
			}
			if err := lifeTasks.Insert(ctx, st); err != nil {
				return err
			}
		}

		for _, b := range doc.Boosts {
			sb := &storage.Boost{
				ID:           b.ID,
				SourceTaskID: b.SourceTaskID,
				StatType:     b.StatType,
				Percentage:   b.Percentage,
				ExpiresAt:    b.ExpiresAt,
				SourceText:   b.SourceText,
			}
			if err := boosts.Insert(ctx, sb); err != nil {
				return err
			}
		}

		for _, e := range doc.History {
			se := &storage.HistoryEntry{
				ID:            e.ID,
				Text:          e.Text,
				BaseXP:        e.BaseXP,
				BoostXP:       e.BoostXP,
				TotalXP:       e.TotalXP,
				StatTypes:     e.StatTypes,
				AppliedBoosts: toStorageBoostSnapshots(e.AppliedBoosts),
				CompletedAt:   e.CompletedAt,
			}
			if err := history.Append(ctx, se); err != nil {
				return err
			}
		}

		return meta.Set(ctx, storage.MetaLastReset, doc.LastReset)
	})
}

func toDocBoostSnapshots(in []storage.AppliedBoost) []AppliedBoost {
	out := make([]AppliedBoost, 0, len(in))
	for _, b := range in {
		out = append(out, AppliedBoost(b))
	}
	return out
}

func toStorageBoostSnapshots(in []AppliedBoost) []storage.AppliedBoost {
	out := make([]storage.AppliedBoost, 0, len(in))
	for _, b := range in {
		out = append(out, storage.AppliedBoost(b))
	}
	return out
}
