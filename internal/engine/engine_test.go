package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"soloquest/internal/storage"
)

func newTestService(t *testing.T) (*Service, func()) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	svc := NewService(db, nil)
	cleanup := func() {
		_ = db.Close()
	}
	return svc, cleanup
}

func grantBoost(t *testing.T, svc *Service, stat string, percentage int) {
	t.Helper()
	ctx := context.Background()
	b := &storage.Boost{
		ID:         uuid.NewString(),
		StatType:   stat,
		Percentage: percentage,
		ExpiresAt:  svc.now().Add(24 * time.Hour),
		SourceText: "test boost",
	}
	if err := svc.BoostRepo().Insert(ctx, b); err != nil {
		t.Fatalf("insert boost: %v", err)
	}
}

func totalXP(t *testing.T, svc *Service) int {
	t.Helper()
	p, err := svc.ProfileRepo().GetOrCreateMain(context.Background())
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	return p.TotalXP
}

func TestXPBoundaries(t *testing.T) {
	if got := XPRequiredForLevel(0); got != 0 {
		t.Fatalf("XPRequiredForLevel(0)=%d, want 0", got)
	}
	if got := XPRequiredForLevel(1); got != 0 {
		t.Fatalf("XPRequiredForLevel(1)=%d, want 0", got)
	}
	if got := XPRequiredForLevel(2); got != 130 {
		t.Fatalf("XPRequiredForLevel(2)=%d, want 130", got)
	}

	prev := 0
	for lvl := 2; lvl <= 40; lvl++ {
		cur := XPRequiredForLevel(lvl)
		if cur <= prev {
			t.Fatalf("XPRequiredForLevel not strictly increasing at level %d: %d <= %d", lvl, cur, prev)
		}
		prev = cur
	}

	for _, lvl := range []int{2, 5, 13} {
		threshold := XPRequiredForLevel(lvl)
		if got := LevelFromTotalXP(threshold).Level; got != lvl {
			t.Fatalf("LevelFromTotalXP(threshold %d)=%d, want %d", threshold, got, lvl)
		}
		if got := LevelFromTotalXP(threshold - 1).Level; got != lvl-1 {
			t.Fatalf("LevelFromTotalXP(threshold-1)=%d, want %d", got, lvl-1)
		}
	}

	if got := LevelFromTotalXP(-50).Level; got != 1 {
		t.Fatalf("LevelFromTotalXP(-50)=%d, want 1", got)
	}
}

func TestCompleteThenUncompleteRestoresExactly(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestInput{
		Text: "morning run", BaseXP: 100, StatTypes: []StatType{StatStrength},
	})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}

	res, err := svc.CompleteQuest(ctx, q.ID)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if res.XPAwarded != 100 {
		t.Fatalf("XPAwarded=%d, want 100", res.XPAwarded)
	}
	if got := totalXP(t, svc); got != 100 {
		t.Fatalf("totalXP=%d, want 100", got)
	}
	if n, err := svc.HistoryRepo().Count(ctx); err != nil || n != 1 {
		t.Fatalf("history count=%d err=%v, want 1", n, err)
	}

	undo, err := svc.UncompleteQuest(ctx, q.ID)
	if err != nil {
		t.Fatalf("UncompleteQuest: %v", err)
	}
	if undo.XPDeducted != 100 {
		t.Fatalf("XPDeducted=%d, want 100", undo.XPDeducted)
	}
	if got := totalXP(t, svc); got != 0 {
		t.Fatalf("totalXP after undo=%d, want 0", got)
	}
	if n, err := svc.HistoryRepo().Count(ctx); err != nil || n != 0 {
		t.Fatalf("history count after undo=%d err=%v, want 0", n, err)
	}

	got, err := svc.QuestRepo().Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Completed || got.AwardedXP != nil || got.HistoryEntryID != nil {
		t.Fatalf("quest not fully reset: %+v", got)
	}
}

func TestBoostAppliedAndConsumed(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	grantBoost(t, svc, "strength", 20)

	q, err := svc.CreateQuest(ctx, CreateQuestInput{
		Text: "deadlifts", BaseXP: 100, StatTypes: []StatType{StatStrength},
	})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}

	res, err := svc.CompleteQuest(ctx, q.ID)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if res.XPAwarded != 120 || res.BoostXP != 20 || res.BoostPercent != 20 {
		t.Fatalf("got awarded=%d boost=%d pct=%d, want 120/20/20", res.XPAwarded, res.BoostXP, res.BoostPercent)
	}
	if res.ConsumedBoosts != 1 {
		t.Fatalf("ConsumedBoosts=%d, want 1", res.ConsumedBoosts)
	}

	remaining, err := svc.BoostRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("boost survived completion: %+v", remaining)
	}

	// Undoing gives back the full 120 but the boost stays gone.
	if _, err := svc.UncompleteQuest(ctx, q.ID); err != nil {
		t.Fatalf("UncompleteQuest: %v", err)
	}
	if got := totalXP(t, svc); got != 0 {
		t.Fatalf("totalXP after undo=%d, want 0", got)
	}
	remaining, err = svc.BoostRepo().ListAll(ctx)
	if err != nil || len(remaining) != 0 {
		t.Fatalf("boost came back after undo: %v %v", remaining, err)
	}
}

func TestBoostCapStillConsumesAll(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	grantBoost(t, svc, "career", 60)
	grantBoost(t, svc, "career", 70)

	q, err := svc.CreateQuest(ctx, CreateQuestInput{
		Text: "ship the feature", BaseXP: 100, StatTypes: []StatType{StatCareer},
	})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}

	res, err := svc.CompleteQuest(ctx, q.ID)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if res.BoostPercent != MaxBoostPercent {
		t.Fatalf("BoostPercent=%d, want capped %d", res.BoostPercent, MaxBoostPercent)
	}
	if res.XPAwarded != 200 {
		t.Fatalf("XPAwarded=%d, want 200", res.XPAwarded)
	}
	if res.ConsumedBoosts != 2 {
		t.Fatalf("ConsumedBoosts=%d, want 2 (over-consumption is deliberate)", res.ConsumedBoosts)
	}

	remaining, err := svc.BoostRepo().ListAll(ctx)
	if err != nil || len(remaining) != 0 {
		t.Fatalf("expected every contributor consumed, got %v %v", remaining, err)
	}
}

func TestExpiredAndOffStatBoostsIgnored(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	grantBoost(t, svc, "willpower", 25) // wrong stat
	expired := &storage.Boost{
		ID:         uuid.NewString(),
		StatType:   "strength",
		Percentage: 50,
		ExpiresAt:  svc.now().Add(-time.Minute),
		SourceText: "stale",
	}
	if err := svc.BoostRepo().Insert(ctx, expired); err != nil {
		t.Fatalf("insert boost: %v", err)
	}

	q, err := svc.CreateQuest(ctx, CreateQuestInput{
		Text: "pushups", BaseXP: 80, StatTypes: []StatType{StatStrength},
	})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}
	res, err := svc.CompleteQuest(ctx, q.ID)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if res.XPAwarded != 80 || res.ConsumedBoosts != 0 {
		t.Fatalf("got awarded=%d consumed=%d, want 80/0", res.XPAwarded, res.ConsumedBoosts)
	}
}

func TestLifeTaskGrantsBoostOnce(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	task, err := svc.CreateLifeTask(ctx, CreateLifeTaskInput{
		Text: "renew passport", Difficulty: DifficultyMedium, BoostStat: StatWillpower,
	})
	if err != nil {
		t.Fatalf("CreateLifeTask: %v", err)
	}

	res, err := svc.CompleteLifeTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("CompleteLifeTask: %v", err)
	}
	if res.Boost.Percentage != 15 || res.Boost.StatType != "willpower" {
		t.Fatalf("boost=%+v, want 15%% willpower", res.Boost)
	}
	wantExpiry := svc.now().Add(BoostDurationDays * 24 * time.Hour)
	if d := res.Boost.ExpiresAt.Sub(wantExpiry); d < -time.Minute || d > time.Minute {
		t.Fatalf("expiry %v not ~2 days out", res.Boost.ExpiresAt)
	}

	// Completion is terminal.
	_, err = svc.CompleteLifeTask(ctx, task.ID)
	if err == nil {
		t.Fatalf("expected error re-completing life task")
	}
	if !IsUserError(err) {
		t.Fatalf("expected user-facing rejection, got %v", err)
	}

	boosts, err := svc.BoostRepo().ListAll(ctx)
	if err != nil || len(boosts) != 1 {
		t.Fatalf("boost ledger changed by rejected completion: %v %v", boosts, err)
	}
}

func TestDeleteCompletedLifeTaskRevokesBoost(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	task, err := svc.CreateLifeTask(ctx, CreateLifeTaskInput{
		Text: "fix the bike", Difficulty: DifficultyHard, BoostStat: StatStrength,
	})
	if err != nil {
		t.Fatalf("CreateLifeTask: %v", err)
	}
	if _, err := svc.CompleteLifeTask(ctx, task.ID); err != nil {
		t.Fatalf("CompleteLifeTask: %v", err)
	}

	if err := svc.DeleteLifeTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteLifeTask: %v", err)
	}
	boosts, err := svc.BoostRepo().ListAll(ctx)
	if err != nil || len(boosts) != 0 {
		t.Fatalf("boost survived source deletion: %v %v", boosts, err)
	}
}

func TestEditCompletedLifeTaskReArmsExpiry(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	task, err := svc.CreateLifeTask(ctx, CreateLifeTaskInput{
		Text: "call the dentist", Difficulty: DifficultyEasy, BoostStat: StatCareer,
	})
	if err != nil {
		t.Fatalf("CreateLifeTask: %v", err)
	}
	done, err := svc.CompleteLifeTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("CompleteLifeTask: %v", err)
	}
	origExpiry := done.Boost.ExpiresAt

	// Edit one day later: the original window is still live so it is kept.
	svc.now = func() time.Time { return base.Add(24 * time.Hour) }
	edited, err := svc.EditLifeTask(ctx, task.ID, CreateLifeTaskInput{
		Text: "call the dentist", Difficulty: DifficultyVeryHard, BoostStat: StatCareer,
	})
	if err != nil {
		t.Fatalf("EditLifeTask: %v", err)
	}
	if edited.Regranted == nil {
		t.Fatalf("expected replacement boost")
	}
	if !edited.Regranted.ExpiresAt.Equal(origExpiry) {
		t.Fatalf("expiry re-armed to %v, want original %v", edited.Regranted.ExpiresAt, origExpiry)
	}
	if edited.Regranted.Percentage != 25 {
		t.Fatalf("Percentage=%d, want 25 after difficulty edit", edited.Regranted.Percentage)
	}

	// Edit after the window lapsed: a fresh two-day window starts.
	late := base.Add(10 * 24 * time.Hour)
	svc.now = func() time.Time { return late }
	edited, err = svc.EditLifeTask(ctx, task.ID, CreateLifeTaskInput{
		Text: "call the dentist", Difficulty: DifficultyVeryHard, BoostStat: StatCareer,
	})
	if err != nil {
		t.Fatalf("EditLifeTask: %v", err)
	}
	want := late.Add(BoostDurationDays * 24 * time.Hour)
	if !edited.Regranted.ExpiresAt.Equal(want) {
		t.Fatalf("expiry=%v, want fresh %v", edited.Regranted.ExpiresAt, want)
	}
}

func TestEditCompletedQuestRescoresAgainstLiveLedger(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestInput{
		Text: "read a chapter", BaseXP: 100, StatTypes: []StatType{StatWillpower},
	})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}
	if _, err := svc.CompleteQuest(ctx, q.ID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if got := totalXP(t, svc); got != 100 {
		t.Fatalf("totalXP=%d, want 100", got)
	}

	// A boost granted after the original completion applies to the re-score.
	grantBoost(t, svc, "willpower", 10)

	res, err := svc.EditQuest(ctx, q.ID, EditQuestInput{
		Text: "read two chapters", BaseXP: 50, StatTypes: []StatType{StatWillpower},
	})
	if err != nil {
		t.Fatalf("EditQuest: %v", err)
	}
	if res.Recompleted == nil {
		t.Fatalf("expected re-completion of an edited completed quest")
	}
	if res.Recompleted.XPAwarded != 55 {
		t.Fatalf("re-awarded %d, want 55 (50 base + 10%%)", res.Recompleted.XPAwarded)
	}
	if got := totalXP(t, svc); got != 55 {
		t.Fatalf("totalXP=%d, want 55 after rescore", got)
	}
	if n, err := svc.HistoryRepo().Count(ctx); err != nil || n != 1 {
		t.Fatalf("history count=%d err=%v, want 1", n, err)
	}
}

func TestDeleteCompletedQuestRefundsXP(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	q, err := svc.CreateQuest(ctx, CreateQuestInput{
		Text: "meditate", BaseXP: 30, StatTypes: []StatType{StatWillpower},
	})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}
	if _, err := svc.CompleteQuest(ctx, q.ID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}

	if err := svc.DeleteQuest(ctx, q.ID); err != nil {
		t.Fatalf("DeleteQuest: %v", err)
	}
	if got := totalXP(t, svc); got != 0 {
		t.Fatalf("totalXP=%d, want 0 after delete", got)
	}
	if n, err := svc.HistoryRepo().Count(ctx); err != nil || n != 0 {
		t.Fatalf("history count=%d err=%v, want 0", n, err)
	}
}

func TestDailyResetPrunesCompletedOnly(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	done, err := svc.CreateQuest(ctx, CreateQuestInput{
		Text: "done yesterday", BaseXP: 40, StatTypes: []StatType{StatCareer},
	})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}
	if _, err := svc.CompleteQuest(ctx, done.ID); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	pending, err := svc.CreateQuest(ctx, CreateQuestInput{
		Text: "still open", BaseXP: 40, StatTypes: []StatType{StatCareer},
	})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}

	if err := svc.meta.Set(ctx, storage.MetaLastReset, "2020-01-01"); err != nil {
		t.Fatalf("set last reset: %v", err)
	}

	pruned, reset, err := svc.DailyResetIfNeeded(ctx)
	if err != nil {
		t.Fatalf("DailyResetIfNeeded: %v", err)
	}
	if !reset || pruned != 1 {
		t.Fatalf("reset=%v pruned=%d, want true/1", reset, pruned)
	}

	quests, err := svc.QuestRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(quests) != 1 || quests[0].ID != pending.ID {
		t.Fatalf("surviving quests=%v, want only the pending one", quests)
	}
	// XP earned yesterday stays earned.
	if got := totalXP(t, svc); got != 40 {
		t.Fatalf("totalXP=%d, want 40 after prune", got)
	}

	// Second call on the same day is a no-op.
	pruned, reset, err = svc.DailyResetIfNeeded(ctx)
	if err != nil || reset || pruned != 0 {
		t.Fatalf("second reset=%v pruned=%d err=%v, want no-op", reset, pruned, err)
	}
}

func TestHistoryCapDropsOldest(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < storage.HistoryCap+5; i++ {
		entry := &storage.HistoryEntry{
			ID:          uuid.NewString(),
			Text:        fmt.Sprintf("entry %d", i),
			BaseXP:      10,
			TotalXP:     10,
			StatTypes:   []string{"strength"},
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := svc.HistoryRepo().Append(ctx, entry); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	n, err := svc.HistoryRepo().Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != storage.HistoryCap {
		t.Fatalf("history count=%d, want %d", n, storage.HistoryCap)
	}

	entries, err := svc.HistoryRepo().ListNewestFirst(ctx)
	if err != nil {
		t.Fatalf("ListNewestFirst: %v", err)
	}
	if entries[0].Text != fmt.Sprintf("entry %d", storage.HistoryCap+4) {
		t.Fatalf("newest=%q, want last appended", entries[0].Text)
	}
	if entries[len(entries)-1].Text != "entry 5" {
		t.Fatalf("oldest=%q, want entry 5 (first five dropped)", entries[len(entries)-1].Text)
	}
}

func TestSweepExpiredBoosts(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	grantBoost(t, svc, "strength", 10)
	stale := &storage.Boost{
		ID:         uuid.NewString(),
		StatType:   "career",
		Percentage: 10,
		ExpiresAt:  svc.now().Add(-time.Hour),
		SourceText: "stale",
	}
	if err := svc.BoostRepo().Insert(ctx, stale); err != nil {
		t.Fatalf("insert boost: %v", err)
	}

	swept, err := svc.SweepExpiredBoosts(ctx)
	if err != nil {
		t.Fatalf("SweepExpiredBoosts: %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept=%d, want 1", swept)
	}
	remaining, err := svc.BoostRepo().ListAll(ctx)
	if err != nil || len(remaining) != 1 {
		t.Fatalf("remaining=%v err=%v, want exactly the live boost", remaining, err)
	}
}

func TestCreateQuestValidation(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := svc.CreateQuest(ctx, CreateQuestInput{Text: "  ", BaseXP: 10}); err == nil {
		t.Fatalf("expected rejection of blank text")
	}
	if _, err := svc.CreateQuest(ctx, CreateQuestInput{Text: "ok", BaseXP: 0}); err == nil {
		t.Fatalf("expected rejection of zero xp")
	}
	if _, err := svc.CreateLifeTask(ctx, CreateLifeTaskInput{Text: "ok", Difficulty: 9, BoostStat: StatCareer}); err == nil {
		t.Fatalf("expected rejection of out-of-range difficulty")
	}
	if _, err := svc.CreateLifeTask(ctx, CreateLifeTaskInput{Text: "ok", Difficulty: 2, BoostStat: "luck"}); err == nil {
		t.Fatalf("expected rejection of unknown stat")
	}
}

func TestParseStatTypes(t *testing.T) {
	got, err := ParseStatTypes("str, career ,WILLPOWER")
	if err != nil {
		t.Fatalf("ParseStatTypes: %v", err)
	}
	if len(got) != 3 || got[0] != StatStrength || got[1] != StatCareer || got[2] != StatWillpower {
		t.Fatalf("got %v", got)
	}

	if _, err := ParseStatTypes("strength,luck"); err == nil {
		t.Fatalf("expected error for unknown stat")
	}

	got, err = ParseStatTypes("strength,strength")
	if err != nil {
		t.Fatalf("ParseStatTypes: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("duplicates not collapsed: %v", got)
	}
}
