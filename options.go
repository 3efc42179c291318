package feedsmith

import (
	"github.com/rs/zerolog"

	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/errors"
	"github.com/feedsmith/feedsmith/pkg/feeds"
)

type config struct {
	store            catalog.Store
	logger           *zerolog.Logger
	importers        []feeds.Importer
	delimitedPath    string
	hierarchicalPath string
}

// Option is a function that configures a Feedsmith instance.
type Option func(*config) error

// WithStore sets the catalog store backing the instance. Without this
// option an in-memory store is used.
func WithStore(store catalog.Store) Option {
	return func(c *config) error {
		if store == nil {
			return errors.New("store must not be nil")
		}
		c.store = store
		return nil
	}
}

// WithLogger sets the logger used for pipeline runs.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithDelimitedFile registers a delimited text feed file as a pipeline
// stage. Ignored when WithImporters is used.
func WithDelimitedFile(path string) Option {
	return func(c *config) error {
		c.delimitedPath = path
		return nil
	}
}

// WithHierarchicalFile registers a hierarchical JSON feed file as a
// pipeline stage. Ignored when WithImporters is used.
func WithHierarchicalFile(path string) Option {
	return func(c *config) error {
		c.hierarchicalPath = path
		return nil
	}
}

// WithImporters replaces the pipeline stages entirely. Stages run in the
// order given.
func WithImporters(importers ...feeds.Importer) Option {
	return func(c *config) error {
		c.importers = importers
		return nil
	}
}
