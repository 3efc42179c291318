package feedsmith

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedsmith/feedsmith/pkg/feeds"
	"github.com/feedsmith/feedsmith/pkg/query"
)

const delimitedFeed = `sku,name,price,stock,brand
wid-1,Widget,1000.00,5,Acme
gad-2,Gadget,500.50,0,
`

const hierarchicalFeed = `[
  {
    "id": "wid-1",
    "name": "Widget Pro",
    "netPrice": 100.00,
    "vatRate": 0.27,
    "quantityAvailable": 9,
    "ean": "1234567890123",
    "updatedAt": "2026-08-01T10:00:00Z"
  }
]`

func TestNewDefaults(t *testing.T) {
	fs, err := New()
	require.NoError(t, err)

	views, err := fs.Products(context.Background(), query.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestNewRejectsNilStore(t *testing.T) {
	_, err := New(WithStore(nil))
	assert.Error(t, err)
}

func TestReconcileRunsBothFeeds(t *testing.T) {
	fs, err := New(WithImporters(
		feeds.NewDelimited(feeds.ReaderOpener(strings.NewReader(delimitedFeed))),
		feeds.NewHierarchical(feeds.ReaderOpener(strings.NewReader(hierarchicalFeed))),
	))
	require.NoError(t, err)

	results, err := fs.Reconcile(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Persisted)
	assert.Equal(t, 1, results[1].Persisted)

	views, err := fs.Products(context.Background(), query.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, views, 2)

	// The merge keeps the fresher hierarchical name and recomputes the
	// gross price from net and VAT.
	var widget query.ProductView
	for _, v := range views {
		if v.SKU == "WID1" {
			widget = v
		}
	}
	assert.Equal(t, "Widget Pro", widget.Name)
	require.NotNil(t, widget.FinalPrice)
	assert.True(t, widget.FinalPrice.Equal(decimal.RequireFromString("127.00")),
		"expected 127.00, got %s", widget.FinalPrice)
	require.NotNil(t, widget.Stock)
	assert.Equal(t, 9, *widget.Stock)
}

func TestReconcileReportsFatalStage(t *testing.T) {
	fs, err := New(WithDelimitedFile("testdata/does-not-exist.txt"))
	require.NoError(t, err)

	results, err := fs.Reconcile(context.Background())
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsFatal())
}
