package engine

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"soloquest/internal/storage"
)

type CreateLifeTaskInput struct {
	Text       string
	Difficulty Difficulty
	BoostStat  StatType
}

func validateLifeTaskInput(in CreateLifeTaskInput) (string, error) {
	text, err := normalizeText(in.Text)
	if err != nil {
		return "", err
	}
	if !in.Difficulty.IsValid() {
		return "", ValidationError{Field: "difficulty", Reason: "must be between 1 and 5"}
	}
	if !in.BoostStat.IsValid() {
		return "", ValidationError{Field: "stat", Reason: "must be strength, career or willpower"}
	}
	return text, nil
}

// CreateLifeTask adds a pending one-off life task.
func (s *Service) CreateLifeTask(ctx context.Context, in CreateLifeTaskInput) (*storage.LifeTask, error) {
	text, err := validateLifeTaskInput(in)
	if err != nil {
		return nil, err
	}

	t := &storage.LifeTask{
		ID:         uuid.NewString(),
		Text:       text,
		Difficulty: int(in.Difficulty),
		BoostStat:  string(in.BoostStat),
		CreatedAt:  s.now(),
	}
	if err := s.lifeTasks.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

type CompleteLifeTaskResult struct {
	Task  *storage.LifeTask
	Boost *storage.Boost
}

// CompleteLifeTask marks a life task done and mints its boost. The
// transition is terminal: calling this on a completed task returns
// IllegalTransitionError with no state change.
func (s *Service) CompleteLifeTask(ctx context.Context, id string) (*CompleteLifeTaskResult, error) {
	var res *CompleteLifeTaskResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := newRepos(tx)

		t, err := r.lifeTasks.Get(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return NotFoundError{Kind: "life task", ID: id}
		}
		if t.Completed {
			return IllegalTransitionError{TaskID: id}
		}

		expiresAt := s.now().Add(BoostDurationDays * 24 * time.Hour)
		boost := mintBoost(t, expiresAt)
		if err := r.boosts.Insert(ctx, boost); err != nil {
			return err
		}

		t.Completed = true
		t.BoostExpiresAt = &expiresAt
		if err := r.lifeTasks.Update(ctx, t); err != nil {
			return err
		}

		s.log.Info("boost granted",
			zap.String("source_task_id", t.ID),
			zap.String("stat", boost.StatType),
			zap.Int("percentage", boost.Percentage),
			zap.Time("expires_at", boost.ExpiresAt))

		res = &CompleteLifeTaskResult{Task: t, Boost: boost}
		return nil
	})
	return res, err
}

type EditLifeTaskResult struct {
	Task *storage.LifeTask
	// Regranted is set when the task was completed: the old boost is revoked
	// and a replacement minted with the edited parameters, re-arming the
	// original expiry when it is still in the future.
	Regranted *storage.Boost
}

func (s *Service) EditLifeTask(ctx context.Context, id string, in CreateLifeTaskInput) (*EditLifeTaskResult, error) {
	text, err := validateLifeTaskInput(in)
	if err != nil {
		return nil, err
	}

	var res *EditLifeTaskResult
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := newRepos(tx)

		t, err := r.lifeTasks.Get(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return NotFoundError{Kind: "life task", ID: id}
		}

		t.Text = text
		t.Difficulty = int(in.Difficulty)
		t.BoostStat = string(in.BoostStat)

		res = &EditLifeTaskResult{}
		if t.Completed {
			if _, err := r.boosts.DeleteBySource(ctx, t.ID); err != nil {
				return err
			}

			now := s.now()
			expiresAt := now.Add(BoostDurationDays * 24 * time.Hour)
			if t.BoostExpiresAt != nil && t.BoostExpiresAt.After(now) {
				expiresAt = *t.BoostExpiresAt
			}
			boost := mintBoost(t, expiresAt)
			if err := r.boosts.Insert(ctx, boost); err != nil {
				return err
			}
			t.BoostExpiresAt = &expiresAt
			res.Regranted = boost
		}

		if err := r.lifeTasks.Update(ctx, t); err != nil {
			return err
		}
		res.Task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteLifeTask removes the task and every boost it minted, completed or
// not.
func (s *Service) DeleteLifeTask(ctx context.Context, id string) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := newRepos(tx)

		t, err := r.lifeTasks.Get(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return NotFoundError{Kind: "life task", ID: id}
		}

		revoked, err := r.boosts.DeleteBySource(ctx, t.ID)
		if err != nil {
			return err
		}
		if revoked > 0 {
			s.log.Debug("boosts revoked", zap.String("source_task_id", t.ID), zap.Int("count", revoked))
		}
		return r.lifeTasks.Delete(ctx, id)
	})
}
