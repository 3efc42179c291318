package files

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/errors"
)

func testEntry(sku string) catalog.Entry {
	price := decimal.RequireFromString("127.00")
	stock := 5
	manufacturer := "Telco"
	return catalog.Entry{
		SKU:          sku,
		Name:         "Router",
		Manufacturer: &manufacturer,
		FinalPrice:   &price,
		Stock:        &stock,
		UpdatedAt:    utc.Now(),
		Source:       catalog.SourceHierarchical,
		Valid:        true,
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "catalog.yaml"))
	require.NoError(t, err)

	all, err := s.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSaveSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, testEntry("X1")))
	require.NoError(t, s.SaveAll(ctx, []catalog.Entry{testEntry("A1"), testEntry("B2")}))

	reopened, err := Open(path)
	require.NoError(t, err)

	all, err := reopened.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A1", all[0].SKU)
	assert.Equal(t, "X1", all[2].SKU)

	got, err := reopened.FindBySKU(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, "Router", got.Name)
	require.NotNil(t, got.FinalPrice)
	assert.True(t, decimal.RequireFromString("127.00").Equal(*got.FinalPrice))
	require.NotNil(t, got.Stock)
	assert.Equal(t, 5, *got.Stock)
}

func TestFindBySKUNotFound(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "catalog.yaml"))
	require.NoError(t, err)

	_, err = s.FindBySKU(context.Background(), "MISSING")
	assert.True(t, errors.IsNotFound(err))
}

func TestUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.yaml"))
	require.NoError(t, err)

	first := testEntry("X1")
	require.NoError(t, s.Save(ctx, first))

	second := testEntry("X1")
	second.Name = "Router v2"
	require.NoError(t, s.Save(ctx, second))

	got, err := s.FindBySKU(ctx, "X1")
	require.NoError(t, err)
	assert.Equal(t, "Router v2", got.Name)
}
