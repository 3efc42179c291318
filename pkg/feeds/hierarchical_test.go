package feeds

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedsmith/feedsmith/internal/store/memory"
	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/errors"
)

func importHierarchical(t *testing.T, store catalog.Store, doc string) *Result {
	t.Helper()
	return NewHierarchical(ReaderOpener(strings.NewReader(doc))).Import(context.Background(), store)
}

func TestHierarchicalRootMustBeArray(t *testing.T) {
	store := memory.New()
	result := importHierarchical(t, store, `{"id":"X1"}`)

	require.True(t, result.IsFatal())
	assert.True(t, errors.IsParseError(result.Err))
	assert.Zero(t, store.Len())
}

func TestHierarchicalUnreadableResourceIsFatal(t *testing.T) {
	result := NewHierarchical(FileOpener("/no/such/feed.json")).Import(context.Background(), memory.New())
	require.True(t, result.IsFatal())
	assert.True(t, errors.IsFeedUnreadable(result.Err))
}

func TestHierarchicalSparseMergeRetainsStockAndDerivesPrice(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	stock := 5
	require.NoError(t, store.Save(ctx, catalog.Entry{
		SKU:    "X1",
		Name:   "Router",
		Stock:  &stock,
		Source: catalog.SourceDelimited,
	}))

	result := importHierarchical(t, store,
		`[{"id":"X1","name":"Router","netPrice":100,"vatRate":0.27}]`)
	require.False(t, result.IsFatal())
	assert.Equal(t, 1, result.Persisted)

	got, err := store.FindBySKU(ctx, "X1")
	require.NoError(t, err)
	require.NotNil(t, got.Stock)
	assert.Equal(t, 5, *got.Stock, "absent quantityAvailable retains stored stock")
	require.NotNil(t, got.FinalPrice)
	assert.True(t, decimal.RequireFromString("127.00").Equal(*got.FinalPrice))
	assert.Equal(t, catalog.SourceHierarchical, got.Source)
	assert.True(t, got.Valid)
}

func TestHierarchicalSkipsRecordWithoutAnyPrice(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	result := importHierarchical(t, store,
		`[{"id":"Y2","name":"Modem","manufacturer":"Telco"}]`)
	require.False(t, result.IsFatal())
	assert.Zero(t, result.Persisted)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Y2")

	_, err := store.FindBySKU(ctx, "Y2")
	assert.True(t, errors.IsNotFound(err), "skipped record leaves the store untouched")
}

func TestHierarchicalSkipLeavesStoredEntryUnchanged(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.Save(ctx, catalog.Entry{
		SKU:    "Z9",
		Name:   "Antenna",
		Source: catalog.SourceHierarchical,
	}))

	result := importHierarchical(t, store,
		`[{"id":"Z9","name":"Antenna XL","manufacturer":"Telco"}]`)
	require.False(t, result.IsFatal())
	assert.Equal(t, 1, result.Skipped)

	got, err := store.FindBySKU(ctx, "Z9")
	require.NoError(t, err)
	assert.Equal(t, "Antenna", got.Name, "merged fields discarded when record is skipped")
	assert.Nil(t, got.Manufacturer)
}

func TestHierarchicalRetainedPriceAllowsPersist(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	price := decimal.RequireFromString("150.00")
	require.NoError(t, store.Save(ctx, catalog.Entry{
		SKU:        "K7",
		Name:       "Switch",
		FinalPrice: &price,
		Source:     catalog.SourceDelimited,
		Valid:      true,
	}))

	result := importHierarchical(t, store,
		`[{"id":"K7","name":"Switch Pro","quantityAvailable":9}]`)
	require.False(t, result.IsFatal())
	assert.Equal(t, 1, result.Persisted)

	got, err := store.FindBySKU(ctx, "K7")
	require.NoError(t, err)
	assert.Equal(t, "Switch Pro", got.Name)
	require.NotNil(t, got.FinalPrice)
	assert.True(t, price.Equal(*got.FinalPrice), "stored price retained through sparse merge")
	require.NotNil(t, got.Stock)
	assert.Equal(t, 9, *got.Stock)
	assert.True(t, got.Valid)
}

func TestHierarchicalMalformedRecordSkippedBatchContinues(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	doc := `[{"id":"A1","name":"Good","netPrice":10,"vatRate":0.27},` +
		`{"id":123,"name":"Bad"},` +
		`{"id":"B2","name":"Also good","netPrice":20,"vatRate":0.27}]`

	result := importHierarchical(t, store, doc)
	require.False(t, result.IsFatal())
	assert.Equal(t, 2, result.Persisted)
	assert.Equal(t, 1, result.Skipped)

	_, err := store.FindBySKU(ctx, "A1")
	assert.NoError(t, err)
	_, err = store.FindBySKU(ctx, "B2")
	assert.NoError(t, err)
}

func TestHierarchicalValidationOfMergedRecord(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	// Missing name and negative stock: persisted invalid, codes in the
	// hierarchical check order.
	result := importHierarchical(t, store,
		`[{"id":"M3","netPrice":100,"vatRate":0.27,"quantityAvailable":-1}]`)
	require.False(t, result.IsFatal())
	assert.Equal(t, 1, result.Persisted)

	got, err := store.FindBySKU(ctx, "M3")
	require.NoError(t, err)
	assert.False(t, got.Valid)
	assert.Equal(t, []catalog.Code{
		catalog.CodeMissingName,
		catalog.CodeNegativeStock,
	}, got.ValidationErrors)
}

func TestHierarchicalTimestampHandling(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	imp := NewHierarchical(ReaderOpener(strings.NewReader(
		`[{"id":"T1","name":"Clock","netPrice":10,"vatRate":0.27,"updatedAt":"2024-06-01T12:00:00Z"},` +
			`{"id":"T2","name":"Watch","netPrice":10,"vatRate":0.27,"updatedAt":"yesterday-ish"},` +
			`{"id":"T3","name":"Timer","netPrice":10,"vatRate":0.27}]`)))
	frozen := utc.Time{Time: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	imp.now = func() utc.Time { return frozen }

	result := imp.Import(ctx, store)
	require.False(t, result.IsFatal())
	assert.Equal(t, 3, result.Persisted)

	t1, err := store.FindBySKU(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), t1.UpdatedAt.Time)

	t2, err := store.FindBySKU(ctx, "T2")
	require.NoError(t, err)
	assert.Equal(t, frozen.Time, t2.UpdatedAt.Time, "unparsable timestamp falls back to import time")

	t3, err := store.FindBySKU(ctx, "T3")
	require.NoError(t, err)
	assert.Equal(t, frozen.Time, t3.UpdatedAt.Time)
}
