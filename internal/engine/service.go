package engine

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"soloquest/internal/storage"
)

// Service owns the progression document: all mutation goes through it, one
// operation at a time, and each operation leaves both the database and the
// in-memory view fully consistent before returning.
type Service struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time

	profiles  *storage.ProfileRepo
	quests    *storage.QuestRepo
	lifeTasks *storage.LifeTaskRepo
	boosts    *storage.BoostRepo
	history   *storage.HistoryRepo
	meta      *storage.MetaRepo
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:  db,
		log: log,
		now: func() time.Time { return time.Now().UTC() },

		profiles:  storage.NewProfileRepo(db),
		quests:    storage.NewQuestRepo(db),
		lifeTasks: storage.NewLifeTaskRepo(db),
		boosts:    storage.NewBoostRepo(db),
		history:   storage.NewHistoryRepo(db),
		meta:      storage.NewMetaRepo(db),
	}
}

// DB exposes the underlying handle for whole-store operations such as
// export and import.
func (s *Service) DB() *sql.DB { return s.db }

func (s *Service) ProfileRepo() *storage.ProfileRepo   { return s.profiles }
func (s *Service) QuestRepo() *storage.QuestRepo       { return s.quests }
func (s *Service) LifeTaskRepo() *storage.LifeTaskRepo { return s.lifeTasks }
func (s *Service) BoostRepo() *storage.BoostRepo       { return s.boosts }
func (s *Service) HistoryRepo() *storage.HistoryRepo   { return s.history }

// repos binds every repo to one DBTX so multi-table mutations share a
// transaction.
type repos struct {
	profiles  *storage.ProfileRepo
	quests    *storage.QuestRepo
	lifeTasks *storage.LifeTaskRepo
	boosts    *storage.BoostRepo
	history   *storage.HistoryRepo
	meta      *storage.MetaRepo
}

func newRepos(db storage.DBTX) *repos {
	return &repos{
		profiles:  storage.NewProfileRepo(db),
		quests:    storage.NewQuestRepo(db),
		lifeTasks: storage.NewLifeTaskRepo(db),
		boosts:    storage.NewBoostRepo(db),
		history:   storage.NewHistoryRepo(db),
		meta:      storage.NewMetaRepo(db),
	}
}

// Startup runs the load-time housekeeping: sweep dead boosts, then prune
// completed quests when the calendar day has changed.
func (s *Service) Startup(ctx context.Context) error {
	swept, err := s.SweepExpiredBoosts(ctx)
	if err != nil {
		return err
	}
	if swept > 0 {
		s.log.Info("swept expired boosts", zap.Int("count", swept))
	}

	pruned, reset, err := s.DailyResetIfNeeded(ctx)
	if err != nil {
		return err
	}
	if reset {
		s.log.Info("daily reset", zap.Int("pruned_quests", pruned))
	}
	return nil
}

// DailyResetIfNeeded prunes completed quests when the stored last-reset date
// differs from today. XP stays awarded; only the quest rows go.
func (s *Service) DailyResetIfNeeded(ctx context.Context) (pruned int, reset bool, err error) {
	today := s.now().Format(dateLayout)
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := newRepos(tx)
		last, err := r.meta.Get(ctx, storage.MetaLastReset)
		if err != nil {
			return err
		}
		if last == today {
			return nil
		}
		n, err := r.quests.DeleteCompleted(ctx)
		if err != nil {
			return err
		}
		if err := r.meta.Set(ctx, storage.MetaLastReset, today); err != nil {
			return err
		}
		pruned = n
		reset = true
		return nil
	})
	return pruned, reset, err
}

const dateLayout = "2006-01-02"

func normalizeText(text string) (string, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", ValidationError{Field: "text", Reason: "must not be empty"}
	}
	return t, nil
}

// IsUserError reports whether err is a rejection the UI should show as-is
// rather than a failure.
func IsUserError(err error) bool {
	var it IllegalTransitionError
	var ve ValidationError
	var nf NotFoundError
	return errors.As(err, &it) || errors.As(err, &ve) || errors.As(err, &nf)
}

func addStatXP(p *storage.Profile, stat string, xp int) {
	switch StatType(stat) {
	case StatStrength:
		p.XPStrength += xp
	case StatCareer:
		p.XPCareer += xp
	case StatWillpower:
		p.XPWillpower += xp
	}
}

// removeStatXP floors each stat at zero, mirroring the profile total.
func removeStatXP(p *storage.Profile, stat string, xp int) {
	switch StatType(stat) {
	case StatStrength:
		p.XPStrength = max(0, p.XPStrength-xp)
	case StatCareer:
		p.XPCareer = max(0, p.XPCareer-xp)
	case StatWillpower:
		p.XPWillpower = max(0, p.XPWillpower-xp)
	}
}

func statXP(p *storage.Profile, stat StatType) int {
	switch stat {
	case StatStrength:
		return p.XPStrength
	case StatCareer:
		return p.XPCareer
	case StatWillpower:
		return p.XPWillpower
	default:
		return 0
	}
}
