package feeds

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedsmith/feedsmith/internal/store/memory"
	"github.com/feedsmith/feedsmith/pkg/catalog"
)

type stubImporter struct {
	name   string
	result *Result
	ran    bool
}

func (s *stubImporter) Name() string { return s.name }

func (s *stubImporter) Import(_ context.Context, _ catalog.Store) *Result {
	s.ran = true
	return s.result
}

func TestPipelineRunsStagesInOrder(t *testing.T) {
	first := &stubImporter{name: "delimited", result: &Result{Feed: "delimited"}}
	second := &stubImporter{name: "hierarchical", result: &Result{Feed: "hierarchical"}}

	p := NewPipeline(first, second)
	assert.Equal(t, []string{"delimited", "hierarchical"}, p.Stages())

	results := p.Run(context.Background(), memory.New())
	require.Len(t, results, 2)
	assert.True(t, first.ran)
	assert.True(t, second.ran)
}

func TestPipelineShortCircuitsAfterFatalStage(t *testing.T) {
	first := &stubImporter{
		name:   "delimited",
		result: &Result{Feed: "delimited", Err: assert.AnError},
	}
	second := &stubImporter{name: "hierarchical", result: &Result{Feed: "hierarchical"}}

	results := NewPipeline(first, second).Run(context.Background(), memory.New())

	require.Len(t, results, 1)
	assert.True(t, results[0].IsFatal())
	assert.False(t, second.ran, "second feed never runs after a fatal first feed")
}

func TestPipelineEndToEndFeedOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	csv := "sku,name,grossPrice,stock,brand\nX1,Router,1000,5,Telco\n"
	jsonDoc := `[{"id":"X1","name":"Router v2","netPrice":100,"vatRate":0.27}]`

	results := NewPipeline(
		NewDelimited(ReaderOpener(strings.NewReader(csv))),
		NewHierarchical(ReaderOpener(strings.NewReader(jsonDoc))),
	).Run(ctx, store)

	require.Len(t, results, 2)
	require.False(t, results[0].IsFatal())
	require.False(t, results[1].IsFatal())

	got, err := store.FindBySKU(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, "Router v2", got.Name)
	assert.Equal(t, catalog.SourceHierarchical, got.Source)
	require.NotNil(t, got.Stock)
	assert.Equal(t, 5, *got.Stock, "hierarchical merge retained delimited stock")
}
