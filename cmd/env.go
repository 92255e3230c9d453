package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/flashfusion/dealflow-cli/internal/sourcing"
	"github.com/flashfusion/dealflow-cli/internal/store"
	"github.com/flashfusion/dealflow-cli/pkg/entitystore"
	"github.com/flashfusion/dealflow-cli/pkg/oracle"
	"github.com/flashfusion/dealflow-cli/pkg/scoring"
)

// sourcingEnv holds the initialized service clients, the pipeline runner,
// and the optional run-history store used by the source/serve commands.
type sourcingEnv struct {
	Runner   *sourcing.Runner
	Entities entitystore.Client
	Store    store.Store // nil when history is disabled
}

// Close releases resources held by the environment.
func (e *sourcingEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initSourcing validates configuration, constructs the external service
// clients, and builds the pipeline runner. Callers should defer env.Close().
func initSourcing(ctx context.Context) (*sourcingEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	entities := entitystore.NewClient(cfg.Entity.Key, cfg.Entity.BaseURL,
		entitystore.WithRateLimit(cfg.Entity.RateLimit))
	orc := oracle.NewClient(cfg.Oracle.Key,
		oracle.WithModel(cfg.Oracle.Model),
		oracle.WithMaxTokens(cfg.Oracle.MaxTokens))
	scorer := scoring.NewClient(cfg.Scoring.Key, cfg.Scoring.BaseURL,
		scoring.WithRateLimit(cfg.Scoring.RateLimit))

	env := &sourcingEnv{
		Runner:   sourcing.New(entities, orc, scorer, cfg.Sourcing),
		Entities: entities,
	}

	if cfg.Sourcing.HistoryEnabled {
		st, err := initStore(ctx)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		env.Store = st
	}

	return env, nil
}

// initStore opens the run-history store selected by config.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "dealflow.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
