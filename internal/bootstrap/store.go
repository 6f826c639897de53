package bootstrap

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/wordcoach/internal/config"
	"github.com/at-ishikawa/wordcoach/internal/database"
	"github.com/at-ishikawa/wordcoach/internal/observe"
	"github.com/at-ishikawa/wordcoach/internal/progress"
)

// OpenStore returns the progress store selected by cfg.Store.Type and a
// function that releases it. Database stores are not migrated here.
func OpenStore(ctx context.Context, cfg *config.Config) (progress.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store.Type {
	case config.StoreMemory, "":
		return progress.NewMemoryStore(), noop, nil
	case config.StoreYAML:
		return progress.NewYAMLStore(cfg.Store.YAMLDirectory), noop, nil
	case config.StoreDatabase:
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open() > %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db.PingContext() > %w", err)
		}
		return progress.NewDBStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store type: %q", cfg.Store.Type)
	}
}

// NewService builds a progress service from the practice settings.
func NewService(store progress.Store, cfg config.PracticeConfig, metrics *observe.Metrics) *progress.Service {
	opts := []progress.Option{
		progress.WithPassScore(cfg.PassScore),
		progress.WithMaxUpdateAttempts(cfg.MaxUpdateAttempts),
	}
	if metrics != nil {
		opts = append(opts, progress.WithMetrics(metrics))
	}
	return progress.NewService(store, progress.SystemClock{}, opts...)
}
