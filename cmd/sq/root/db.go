package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"soloquest/internal/config"
	"soloquest/internal/engine"
	"soloquest/internal/storage"
)

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return cfg.Build()
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}

	path, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	svc := engine.NewService(db, log)
	if err := svc.Startup(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
		_ = log.Sync()
	}
	return svc, cleanup, nil
}

// resolveQuestID accepts a full quest id or a unique prefix.
func resolveQuestID(ctx context.Context, svc *engine.Service, arg string) (string, error) {
	quests, err := svc.QuestRepo().ListAll(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, q := range quests {
		if q.ID == arg {
			return q.ID, nil
		}
		if strings.HasPrefix(q.ID, arg) {
			matches = append(matches, q.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no quest matches %q", arg)
	default:
		return "", fmt.Errorf("quest id %q is ambiguous (%d matches)", arg, len(matches))
	}
}

// resolveLifeTaskID accepts a full life-task id or a unique prefix.
func resolveLifeTaskID(ctx context.Context, svc *engine.Service, arg string) (string, error) {
	tasks, err := svc.LifeTaskRepo().ListAll(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, t := range tasks {
		if t.ID == arg {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no life task matches %q", arg)
	default:
		return "", fmt.Errorf("life task id %q is ambiguous (%d matches)", arg, len(matches))
	}
}

// parseQuestStats parses a --stats flag value; a quest always targets at
// least one stat.
func parseQuestStats(input string) ([]engine.StatType, error) {
	statTypes, err := engine.ParseStatTypes(input)
	if err != nil {
		return nil, err
	}
	if len(statTypes) == 0 {
		return nil, errors.New("at least one stat is required (strength, career, willpower)")
	}
	return statTypes, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
