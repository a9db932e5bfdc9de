package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"project-aggregator/core/config"
	"project-aggregator/core/database"
	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"
	"project-aggregator/core/flow"
	"project-aggregator/core/logger"
	"project-aggregator/core/resolve"
	"project-aggregator/core/source"
	"project-aggregator/core/storage"
	"project-aggregator/feature/keywords"
	"project-aggregator/feature/pypi"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles what every command needs: configuration, logger, a connected
// document store and the upstream HTTP client.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *storage.Adapter
	stores *documents.Stores
	client *source.Client
}

// bootstrap loads configuration, builds the logger and connects the store.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if limitFlag > 0 {
		cfg.Flow.Limit = limitFlag
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store := storage.NewAdapter(cfg.Storage, storage.WithLogger(logg))
	if err := store.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logg,
		store:  store,
		stores: documents.NewStores(cfg.Documents, store),
		client: source.NewClient(cfg.Sources.TimeoutSeconds, logg),
	}, nil
}

// close disconnects the store and flushes the logger.
func (a *app) close() {
	a.store.Disconnect()
	_ = a.logger.Sync()
}

// runner creates a fresh run. Sibling outputs are persisted in the store
// unless flow.persist is off.
func (a *app) runner() *flow.Runner {
	runID := uuid.NewString()
	opts := []flow.Option{
		flow.WithRunID(runID),
		flow.WithConcurrency(a.cfg.Flow.Concurrency),
		flow.WithLogger(logger.WithRun(a.logger, runID)),
	}
	if !a.cfg.Flow.Persist {
		return flow.NewLocalRunner(opts...)
	}
	return flow.NewRunner(a.store, a.cfg.Documents.ResultsPrefix, opts...)
}

func (a *app) pypi() *source.PyPI {
	return source.NewPyPI(a.cfg.Sources.PyPIURL, a.client)
}

func (a *app) github() (*source.GitHub, error) {
	return source.NewGitHub(a.cfg.Sources, a.client, a.logger)
}

func (a *app) travis() *source.Travis {
	return source.NewTravis(a.cfg.Sources.TravisURL, a.cfg.Sources.TravisToken, a.client)
}

// tagSource returns the StackOverflow tags source, or nil when no dump URL
// is configured.
func (a *app) tagSource() keywords.TagSource {
	if a.cfg.Sources.StackOverflowTagsURL == "" {
		return nil
	}
	return source.NewStackOverflow(a.cfg.Sources.StackOverflowTagsURL, a.client, a.logger)
}

// unresolved matches per-project failures a full aggregation skips: nothing
// found upstream for the project.
func unresolved(err error) bool {
	return errors.Is(err, resolve.ErrUnresolved) || errors.Is(err, resolve.ErrMiss)
}

// limit applies flow.limit to names.
func (a *app) limit(names []string) []string {
	if n := a.cfg.Flow.Limit; n > 0 && len(names) > n {
		return names[:n]
	}
	return names
}

// connectDB connects the sync target. When optional is set a failed
// connection is logged and nil is returned.
func (a *app) connectDB(optional bool) (*gorm.DB, error) {
	db, err := database.Connect(a.cfg.Database)
	if err == nil {
		return db, nil
	}
	if optional {
		a.logger.Warn("Optional database connection failed", zap.Error(err))
		return nil, nil
	}
	return nil, fmt.Errorf("database connection required: %w", err)
}

// projects returns args when given, otherwise every project with a stored
// info document, capped by flow.limit.
func (a *app) projects(ctx context.Context, args []string) ([]string, error) {
	if len(args) > 0 {
		return a.limit(args), nil
	}
	return pypi.NewService(a.pypi(), a.stores.ProjectInfo, a.logger).StoredProjects(ctx, a.cfg.Flow.Limit)
}

// tally counts the siblings of a tolerated group that produced an output
// and those that were skipped.
func tally(ctx context.Context, results fanin.Results, group string) (done, skipped int, err error) {
	present := func(raw []byte) (bool, error) {
		return !bytes.Equal(bytes.TrimSpace(raw), []byte("null")), nil
	}
	it := fanin.NewIterator[bool](results, group, present)
	for {
		ok, more, err := it.Next(ctx)
		if err != nil {
			return 0, 0, err
		}
		if !more {
			return done, skipped, nil
		}
		if ok {
			done++
		} else {
			skipped++
		}
	}
}
