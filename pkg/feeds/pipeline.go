package feeds

import (
	"context"

	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/logging"
)

// Pipeline executes importers strictly in order. The sequencing is
// load-bearing: it defines last-write-wins duplicate resolution within
// the delimited batch and the merge ordering across feeds, and a fatal
// result in an earlier stage prevents every later stage from running.
type Pipeline struct {
	stages []Importer
}

// NewPipeline creates a pipeline over the given stages. The canonical
// order for the product catalog is delimited first, then hierarchical.
func NewPipeline(stages ...Importer) *Pipeline {
	return &Pipeline{stages: stages}
}

// Stages returns the ordered stage names.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes the stages sequentially against the store and returns
// one result per stage that ran. After a fatal stage result the
// remaining stages are not executed at all.
func (p *Pipeline) Run(ctx context.Context, store catalog.Store) []*Result {
	log := logging.FromContext(ctx)

	results := make([]*Result, 0, len(p.stages))
	for _, stage := range p.stages {
		result := stage.Import(ctx, store)
		results = append(results, result)

		if result.IsFatal() {
			log.Error().
				Err(result.Err).
				Str("feed", stage.Name()).
				Msg("Import stage failed, remaining stages skipped")
			break
		}
	}
	return results
}
