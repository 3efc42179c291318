// Package app provides the application context and dependency management
// for the feedsmith CLI. It centralizes configuration, logging, and the
// feedsmith instance behind one struct so commands share a single wiring.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/feedsmith/feedsmith"
	"github.com/feedsmith/feedsmith/internal/store/files"
	"github.com/feedsmith/feedsmith/internal/store/memory"
	"github.com/feedsmith/feedsmith/internal/store/postgres"
	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/errors"
)

// App holds the feedsmith CLI dependencies.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger

	// Lazy singletons shared by all commands in one invocation.
	mu        sync.Mutex
	feedsmith *feedsmith.Feedsmith
	closeFn   func()
}

// New creates an App with the given build information.
func New(version, commit, date string) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "loading configuration", err)
	}

	logger := NewLogger(config)

	return &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  config,
		logger:  &logger,
	}, nil
}

// Version returns the build version.
func (a *App) Version() string { return a.version }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// Feedsmith returns the feedsmith instance, creating it lazily. The
// instance is a singleton for the lifetime of the process so the import
// and serve commands observe the same store.
func (a *App) Feedsmith(ctx context.Context) (*feedsmith.Feedsmith, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.feedsmith != nil {
		return a.feedsmith, nil
	}

	store, closeFn, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	fs, err := feedsmith.New(
		feedsmith.WithStore(store),
		feedsmith.WithLogger(a.logger),
		feedsmith.WithDelimitedFile(a.config.DelimitedFeed),
		feedsmith.WithHierarchicalFile(a.config.HierarchicalFeed),
	)
	if err != nil {
		if closeFn != nil {
			closeFn()
		}
		return nil, err
	}

	a.feedsmith = fs
	a.closeFn = closeFn
	return fs, nil
}

// openStore opens the catalog store selected by configuration.
func (a *App) openStore(ctx context.Context) (catalog.Store, func(), error) {
	switch a.config.StoreBackend {
	case StoreMemory:
		return memory.New(), nil, nil

	case StoreFiles:
		s, err := files.Open(a.config.FilesPath)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil

	case StorePostgres:
		s, err := postgres.Open(ctx, a.config.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		return nil, nil, errors.NewConfigError("store", "unknown backend "+a.config.StoreBackend, nil)
	}
}

// Shutdown releases resources held by the application.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closeFn != nil {
		a.closeFn()
		a.closeFn = nil
	}
	return nil
}
