package engine

import (
	"context"
	"math"

	"soloquest/internal/storage"
)

// Snapshot is the read-only view the display layer renders after every
// mutation: derived levels, live boost previews, grouped history.
type Snapshot struct {
	TotalXP       int
	Profile       LevelInfo
	Stats         []StatProgress
	PendingQuests int
	Quests        []QuestView
	LifeTasks     []LifeTaskView
	ActiveBoosts  []storage.Boost
	History       []HistoryDay
	LastReset     string
}

type StatProgress struct {
	Stat         StatType
	TotalXP      int
	Level        LevelInfo
	BoostPercent int
}

// QuestView carries the live preview of what completing the quest would
// award right now. Preview fields are zero for completed quests.
type QuestView struct {
	storage.Quest
	BoostPercent int
	BoostXP      int
}

type LifeTaskView struct {
	storage.LifeTask
	BoostPercent int
}

type HistoryDay struct {
	Date    string
	TotalXP int
	Entries []storage.HistoryEntry
}

func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	now := s.now()

	p, err := s.profiles.GetOrCreateMain(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.boosts.ListActive(ctx, now)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		TotalXP:      p.TotalXP,
		Profile:      LevelFromTotalXP(p.TotalXP),
		ActiveBoosts: active,
	}

	for _, st := range AllStats() {
		xp := statXP(p, st)
		perStat := 0
		for _, b := range active {
			if b.StatType == string(st) {
				perStat += b.Percentage
			}
		}
		snap.Stats = append(snap.Stats, StatProgress{
			Stat:         st,
			TotalXP:      xp,
			Level:        LevelFromTotalXP(xp),
			BoostPercent: perStat,
		})
	}

	quests, err := s.quests.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, q := range quests {
		view := QuestView{Quest: q}
		if !q.Completed {
			snap.PendingQuests++
			bonus := computeActiveBonus(active, q.StatTypes, now)
			view.BoostPercent = bonus.TotalPercentage
			view.BoostXP = int(math.Round(float64(q.BaseXP) * float64(bonus.TotalPercentage) / 100))
		}
		snap.Quests = append(snap.Quests, view)
	}

	lifeTasks, err := s.lifeTasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range lifeTasks {
		snap.LifeTasks = append(snap.LifeTasks, LifeTaskView{
			LifeTask:     t,
			BoostPercent: BoostPercentForDifficulty(Difficulty(t.Difficulty)),
		})
	}

	entries, err := s.history.ListNewestFirst(ctx)
	if err != nil {
		return nil, err
	}
	snap.History = groupHistoryByDay(entries)

	lastReset, err := s.meta.Get(ctx, storage.MetaLastReset)
	if err != nil {
		return nil, err
	}
	snap.LastReset = lastReset

	return snap, nil
}

// groupHistoryByDay buckets newest-first entries into day groups, newest day
// first.
func groupHistoryByDay(entries []storage.HistoryEntry) []HistoryDay {
	var days []HistoryDay
	for _, e := range entries {
		key := e.CompletedAt.UTC().Format(dateLayout)
		if len(days) == 0 || days[len(days)-1].Date != key {
			days = append(days, HistoryDay{Date: key})
		}
		last := &days[len(days)-1]
		last.Entries = append(last.Entries, e)
		last.TotalXP += e.TotalXP
	}
	return days
}
