package engine

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"soloquest/internal/storage"
)

type CreateQuestInput struct {
	Text      string
	BaseXP    int
	StatTypes []StatType
}

type StatLevelUp struct {
	Stat StatType
	From int
	To   int
}

type CompleteQuestResult struct {
	QuestID        string
	BaseXP         int
	BoostXP        int
	XPAwarded      int
	BoostPercent   int
	ConsumedBoosts int
	LevelBefore    int
	LevelAfter     int
	LevelUp        bool
	StatLevelUps   []StatLevelUp
	AllQuestsDone  bool
}

type UncompleteQuestResult struct {
	QuestID     string
	XPDeducted  int
	LevelBefore int
	LevelAfter  int
	LevelDown   bool
}

// ToggleQuestResult reports which direction the toggle went; exactly one of
// Complete/Uncomplete is set.
type ToggleQuestResult struct {
	CompletedNow bool
	Complete     *CompleteQuestResult
	Uncomplete   *UncompleteQuestResult
}

func validateQuestInput(text string, baseXP int, statTypes []StatType) (string, error) {
	t, err := normalizeText(text)
	if err != nil {
		return "", err
	}
	if baseXP < 1 {
		return "", ValidationError{Field: "xp", Reason: "must be at least 1"}
	}
	for _, st := range statTypes {
		if !st.IsValid() {
			return "", ValidationError{Field: "stats", Reason: fmt.Sprintf("unknown stat %q", st)}
		}
	}
	return t, nil
}

func statTypesToStrings(statTypes []StatType) []string {
	out := make([]string, 0, len(statTypes))
	for _, st := range statTypes {
		out = append(out, string(st))
	}
	return out
}

// CreateQuest adds a pending recurring quest. An empty stat set is tolerated
// here; the editor surface is expected to require at least one.
func (s *Service) CreateQuest(ctx context.Context, in CreateQuestInput) (*storage.Quest, error) {
	text, err := validateQuestInput(in.Text, in.BaseXP, in.StatTypes)
	if err != nil {
		return nil, err
	}

	q := &storage.Quest{
		ID:        uuid.NewString(),
		Text:      text,
		BaseXP:    in.BaseXP,
		StatTypes: statTypesToStrings(in.StatTypes),
		CreatedAt: s.now(),
	}
	if err := s.quests.Insert(ctx, q); err != nil {
		return nil, err
	}
	s.log.Debug("quest created", zap.String("quest_id", q.ID), zap.Int("base_xp", q.BaseXP))
	return q, nil
}

// ToggleQuest flips a quest between pending and completed.
func (s *Service) ToggleQuest(ctx context.Context, id string) (*ToggleQuestResult, error) {
	q, err := s.quests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NotFoundError{Kind: "quest", ID: id}
	}

	if q.Completed {
		res, err := s.UncompleteQuest(ctx, id)
		if err != nil {
			return nil, err
		}
		return &ToggleQuestResult{Uncomplete: res}, nil
	}
	res, err := s.CompleteQuest(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ToggleQuestResult{CompletedNow: true, Complete: res}, nil
}

func (s *Service) CompleteQuest(ctx context.Context, id string) (*CompleteQuestResult, error) {
	var res *CompleteQuestResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r, err := s.completeQuest(ctx, newRepos(tx), id)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	return res, err
}

func (s *Service) UncompleteQuest(ctx context.Context, id string) (*UncompleteQuestResult, error) {
	var res *UncompleteQuestResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r, err := s.uncompleteQuest(ctx, newRepos(tx), id)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	return res, err
}

// completeQuest awards baseXP plus the capped active bonus, burns every
// contributing boost, and appends the history entry. The awarded amount is
// frozen on the quest so reversal is exact.
func (s *Service) completeQuest(ctx context.Context, r *repos, id string) (*CompleteQuestResult, error) {
	q, err := r.quests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NotFoundError{Kind: "quest", ID: id}
	}
	if q.Completed {
		return nil, fmt.Errorf("quest %s is already completed", id)
	}

	now := s.now()
	active, err := r.boosts.ListActive(ctx, now)
	if err != nil {
		return nil, err
	}
	bonus := computeActiveBonus(active, q.StatTypes, now)

	boostXP := int(math.Round(float64(q.BaseXP) * float64(bonus.TotalPercentage) / 100))
	totalXP := q.BaseXP + boostXP

	// Boosts are single-use: all contributors burn, capped bonus or not.
	if err := r.boosts.DeleteByIDs(ctx, bonus.boostIDs()); err != nil {
		return nil, err
	}
	s.logConsumed(bonus.Boosts)

	p, err := r.profiles.GetOrCreateMain(ctx)
	if err != nil {
		return nil, err
	}
	levelBefore := LevelFromTotalXP(p.TotalXP).Level
	statLevelsBefore := map[string]int{}
	for _, st := range q.StatTypes {
		statLevelsBefore[st] = LevelFromTotalXP(statXP(p, StatType(st))).Level
	}

	p.TotalXP += totalXP
	for _, st := range q.StatTypes {
		addStatXP(p, st, totalXP)
	}
	if err := r.profiles.Update(ctx, p); err != nil {
		return nil, err
	}

	applied := make([]storage.AppliedBoost, 0, len(bonus.Boosts))
	for _, b := range bonus.Boosts {
		applied = append(applied, storage.AppliedBoost{
			StatType:   b.StatType,
			Percentage: b.Percentage,
			SourceText: b.SourceText,
		})
	}

	entry := &storage.HistoryEntry{
		ID:            uuid.NewString(),
		Text:          q.Text,
		BaseXP:        q.BaseXP,
		BoostXP:       boostXP,
		TotalXP:       totalXP,
		StatTypes:     q.StatTypes,
		AppliedBoosts: applied,
		CompletedAt:   now,
	}
	if err := r.history.Append(ctx, entry); err != nil {
		return nil, err
	}

	q.Completed = true
	q.AwardedXP = &totalXP
	q.AppliedBoosts = applied
	q.HistoryEntryID = &entry.ID
	if err := r.quests.Update(ctx, q); err != nil {
		return nil, err
	}

	res := &CompleteQuestResult{
		QuestID:        q.ID,
		BaseXP:         q.BaseXP,
		BoostXP:        boostXP,
		XPAwarded:      totalXP,
		BoostPercent:   bonus.TotalPercentage,
		ConsumedBoosts: len(bonus.Boosts),
		LevelBefore:    levelBefore,
		LevelAfter:     LevelFromTotalXP(p.TotalXP).Level,
	}
	res.LevelUp = res.LevelAfter > res.LevelBefore
	for _, st := range q.StatTypes {
		after := LevelFromTotalXP(statXP(p, StatType(st))).Level
		if before := statLevelsBefore[st]; after > before {
			res.StatLevelUps = append(res.StatLevelUps, StatLevelUp{Stat: StatType(st), From: before, To: after})
		}
	}

	pending, err := r.quests.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	total, err := r.quests.Count(ctx)
	if err != nil {
		return nil, err
	}
	res.AllQuestsDone = pending == 0 && total > 0

	return res, nil
}

// uncompleteQuest reverses a completion exactly: the frozen awardedXP comes
// back off the profile (floored at zero) and the history entry is removed.
// Boosts consumed on the way in stay consumed.
func (s *Service) uncompleteQuest(ctx context.Context, r *repos, id string) (*UncompleteQuestResult, error) {
	q, err := r.quests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NotFoundError{Kind: "quest", ID: id}
	}
	if !q.Completed {
		return nil, fmt.Errorf("quest %s is not completed", id)
	}

	amount := q.BaseXP
	if q.AwardedXP != nil {
		amount = *q.AwardedXP
	}

	p, err := r.profiles.GetOrCreateMain(ctx)
	if err != nil {
		return nil, err
	}
	levelBefore := LevelFromTotalXP(p.TotalXP).Level

	p.TotalXP = max(0, p.TotalXP-amount)
	for _, st := range q.StatTypes {
		removeStatXP(p, st, amount)
	}
	if err := r.profiles.Update(ctx, p); err != nil {
		return nil, err
	}

	if q.HistoryEntryID != nil {
		if err := r.history.Delete(ctx, *q.HistoryEntryID); err != nil {
			return nil, err
		}
	}

	q.Completed = false
	q.AwardedXP = nil
	q.AppliedBoosts = nil
	q.HistoryEntryID = nil
	if err := r.quests.Update(ctx, q); err != nil {
		return nil, err
	}

	levelAfter := LevelFromTotalXP(p.TotalXP).Level
	return &UncompleteQuestResult{
		QuestID:     q.ID,
		XPDeducted:  amount,
		LevelBefore: levelBefore,
		LevelAfter:  levelAfter,
		LevelDown:   levelAfter < levelBefore,
	}, nil
}

type EditQuestInput struct {
	Text      string
	BaseXP    int
	StatTypes []StatType
}

type EditQuestResult struct {
	Quest *storage.Quest
	// Recompleted is set when the quest was completed before the edit: the
	// old award is reversed and the quest re-completed with the new values
	// against whatever boosts are active now.
	Recompleted *CompleteQuestResult
}

func (s *Service) EditQuest(ctx context.Context, id string, in EditQuestInput) (*EditQuestResult, error) {
	text, err := validateQuestInput(in.Text, in.BaseXP, in.StatTypes)
	if err != nil {
		return nil, err
	}

	var res *EditQuestResult
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := newRepos(tx)

		q, err := r.quests.Get(ctx, id)
		if err != nil {
			return err
		}
		if q == nil {
			return NotFoundError{Kind: "quest", ID: id}
		}

		wasCompleted := q.Completed
		if wasCompleted {
			if _, err := s.uncompleteQuest(ctx, r, id); err != nil {
				return err
			}
			q, err = r.quests.Get(ctx, id)
			if err != nil {
				return err
			}
		}

		q.Text = text
		q.BaseXP = in.BaseXP
		q.StatTypes = statTypesToStrings(in.StatTypes)
		if err := r.quests.Update(ctx, q); err != nil {
			return err
		}

		res = &EditQuestResult{Quest: q}
		if wasCompleted {
			cres, err := s.completeQuest(ctx, r, id)
			if err != nil {
				return err
			}
			res.Recompleted = cres
			res.Quest, err = r.quests.Get(ctx, id)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteQuest removes a quest; a completed quest has its award reversed
// first so the profile stays honest.
func (s *Service) DeleteQuest(ctx context.Context, id string) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := newRepos(tx)

		q, err := r.quests.Get(ctx, id)
		if err != nil {
			return err
		}
		if q == nil {
			return NotFoundError{Kind: "quest", ID: id}
		}
		if q.Completed {
			if _, err := s.uncompleteQuest(ctx, r, id); err != nil {
				return err
			}
		}
		return r.quests.Delete(ctx, id)
	})
}

// ClearHistory wipes the ledger. Completed quests keep their awards; their
// history references simply stop resolving, which reversal treats as a no-op
// delete.
func (s *Service) ClearHistory(ctx context.Context) error {
	return s.history.Clear(ctx)
}
