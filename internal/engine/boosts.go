package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"soloquest/internal/storage"
)

const (
	// MaxBoostPercent caps the applied bonus. Contributing boosts are still
	// consumed in full even when their sum exceeds the cap; the
	// over-consumption is deliberate (anti-hoarding).
	MaxBoostPercent = 100

	// BoostDurationDays is the lifetime of a freshly minted boost.
	BoostDurationDays = 2
)

// ActiveBonus is the result of summing non-expired boosts over a stat set.
// Boosts lists every contributor uncapped; TotalPercentage is capped at
// MaxBoostPercent.
type ActiveBonus struct {
	TotalPercentage int
	Boosts          []storage.Boost
	PerStat         map[StatType]int
}

func (b *ActiveBonus) boostIDs() []string {
	ids := make([]string, 0, len(b.Boosts))
	for _, boost := range b.Boosts {
		ids = append(ids, boost.ID)
	}
	return ids
}

// computeActiveBonus sums the percentages of boosts that are alive at now
// and target one of statTypes. Stacking is additive across and within stats.
func computeActiveBonus(boosts []storage.Boost, statTypes []string, now time.Time) *ActiveBonus {
	wanted := map[string]bool{}
	for _, st := range statTypes {
		wanted[st] = true
	}

	out := &ActiveBonus{PerStat: map[StatType]int{}}
	total := 0
	for _, b := range boosts {
		if !now.Before(b.ExpiresAt) {
			continue
		}
		if !wanted[b.StatType] {
			continue
		}
		total += b.Percentage
		out.PerStat[StatType(b.StatType)] += b.Percentage
		out.Boosts = append(out.Boosts, b)
	}
	out.TotalPercentage = min(total, MaxBoostPercent)
	return out
}

// ActiveBonus computes the live bonus for a stat set against the current
// ledger. Used for completion math and for list previews.
func (s *Service) ActiveBonus(ctx context.Context, statTypes []string) (*ActiveBonus, error) {
	now := s.now()
	active, err := s.boosts.ListActive(ctx, now)
	if err != nil {
		return nil, err
	}
	return computeActiveBonus(active, statTypes, now), nil
}

// SweepExpiredBoosts physically removes dead boosts. Runs on load and after
// import; expiry checks elsewhere are logical.
func (s *Service) SweepExpiredBoosts(ctx context.Context) (int, error) {
	return s.boosts.DeleteExpired(ctx, s.now())
}

// mintBoost creates the boost a life task grants on completion.
func mintBoost(task *storage.LifeTask, expiresAt time.Time) *storage.Boost {
	return &storage.Boost{
		ID:           uuid.NewString(),
		SourceTaskID: task.ID,
		StatType:     task.BoostStat,
		Percentage:   BoostPercentForDifficulty(Difficulty(task.Difficulty)),
		ExpiresAt:    expiresAt,
		SourceText:   task.Text,
	}
}

func (s *Service) logConsumed(boosts []storage.Boost) {
	for _, b := range boosts {
		s.log.Debug("boost consumed",
			zap.String("boost_id", b.ID),
			zap.String("stat", b.StatType),
			zap.Int("percentage", b.Percentage))
	}
}
