// Package feeds imports product feeds into the catalog. The two feed
// formats carry deliberately different consistency policies: the
// delimited feed commits as one atomic batch or not at all, while the
// hierarchical feed merges record by record and skips the ones it
// cannot complete. Both run behind the same Importer contract so the
// pipeline can sequence them without unifying their atomicity.
package feeds

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/errors"
)

// Importer imports one feed into the catalog store.
type Importer interface {
	// Name returns the feed name for logs and results.
	Name() string

	// Import consumes the feed and writes to the store. It always
	// returns a Result; a fatal condition is carried in Result.Err and
	// means nothing from this feed was persisted past the failure.
	Import(ctx context.Context, store catalog.Store) *Result
}

// Result is the structured outcome of one feed import run.
type Result struct {
	// Feed is the name of the importer that produced this result.
	Feed string

	// BatchID uniquely identifies this import run across logs.
	BatchID uuid.UUID

	// Persisted counts entries written to the store.
	Persisted int

	// Skipped counts records dropped without aborting the batch.
	Skipped int

	// Warnings holds one message per skipped record or duplicate key.
	Warnings []string

	// Err is the fatal error that aborted the batch, or nil.
	Err error

	// StartedAt and Duration describe the run itself.
	StartedAt utc.Time
	Duration  time.Duration
}

// newResult starts a result for a feed run.
func newResult(feed string) *Result {
	return &Result{
		Feed:      feed,
		BatchID:   uuid.New(),
		StartedAt: utc.Now(),
	}
}

// IsFatal reports whether the batch was aborted.
func (r *Result) IsFatal() bool {
	return r.Err != nil
}

// warnf records a non-fatal warning on the result.
func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// finish stamps the run duration and returns the result.
func (r *Result) finish() *Result {
	r.Duration = time.Since(r.StartedAt.Time)
	return r
}

// Opener supplies feed content at import time. Importers own the open
// step so that an unreadable or absent resource surfaces as the fatal
// batch condition it is, rather than failing at construction.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// FileOpener returns an Opener reading from a file path.
func FileOpener(path string) Opener {
	return func(_ context.Context) (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.NewIOError("open", path, err)
		}
		return f, nil
	}
}

// ReaderOpener returns an Opener serving already decoded content from r.
func ReaderOpener(r io.Reader) Opener {
	return func(_ context.Context) (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	}
}
