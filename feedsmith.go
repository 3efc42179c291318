// Package feedsmith reconciles incompatible supplier feeds into a single
// canonical product catalog with a queryable read surface.
//
// Two feed formats are supported: a delimited text feed that is imported
// atomically as a batch, and a hierarchical JSON feed that is merged
// record by record into whatever the catalog already holds. After import,
// the catalog is served through a filterable, sortable product view.
package feedsmith

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/feedsmith/feedsmith/internal/store/memory"
	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/feeds"
	"github.com/feedsmith/feedsmith/pkg/logging"
	"github.com/feedsmith/feedsmith/pkg/query"
)

// Feedsmith wires a catalog store, an import pipeline, and a query engine
// into one unit. The zero value is not usable; use New.
type Feedsmith struct {
	store    catalog.Store
	pipeline *feeds.Pipeline
	engine   *query.Engine
	logger   *zerolog.Logger
}

// New creates a Feedsmith instance with the given options. Without options
// it holds an empty in-memory catalog and an empty pipeline.
func New(opts ...Option) (*Feedsmith, error) {
	cfg := &config{
		logger: &logging.Nop,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}

	if cfg.store == nil {
		cfg.store = memory.New()
	}

	importers := cfg.importers
	if len(importers) == 0 {
		// Canonical feed order: the delimited snapshot first, then the
		// hierarchical merge on top of it.
		if cfg.delimitedPath != "" {
			importers = append(importers, feeds.NewDelimited(feeds.FileOpener(cfg.delimitedPath)))
		}
		if cfg.hierarchicalPath != "" {
			importers = append(importers, feeds.NewHierarchical(feeds.FileOpener(cfg.hierarchicalPath)))
		}
	}

	return &Feedsmith{
		store:    cfg.store,
		pipeline: feeds.NewPipeline(importers...),
		engine:   query.New(cfg.store),
		logger:   cfg.logger,
	}, nil
}

// Store returns the catalog store backing this instance.
func (f *Feedsmith) Store() catalog.Store {
	return f.store
}

// Engine returns the query engine over the catalog.
func (f *Feedsmith) Engine() *query.Engine {
	return f.engine
}

// Reconcile runs the import pipeline against the catalog store. The
// returned results cover every stage that ran, in order. A fatal stage
// aborts the pipeline; its error is also returned so callers can treat
// the run as failed without digging through results.
func (f *Feedsmith) Reconcile(ctx context.Context) ([]*feeds.Result, error) {
	ctx = logging.WithLogger(ctx, f.logger)

	results := f.pipeline.Run(ctx, f.store)
	for _, res := range results {
		if res.IsFatal() {
			return results, fmt.Errorf("feed %s: %w", res.Feed, res.Err)
		}
	}
	return results, nil
}

// Products queries the reconciled catalog.
func (f *Feedsmith) Products(ctx context.Context, opts query.Options) ([]query.ProductView, error) {
	return f.engine.Products(ctx, opts)
}
