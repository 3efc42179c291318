package feeds

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/agentstation/utc"

	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/errors"
	"github.com/feedsmith/feedsmith/pkg/logging"
	"github.com/feedsmith/feedsmith/pkg/pricing"
	"github.com/feedsmith/feedsmith/pkg/sku"
	"github.com/feedsmith/feedsmith/pkg/validation"
)

// DelimitedFeed is the feed name of the delimited importer.
const DelimitedFeed = "delimited"

// minDelimitedFields is the positional row shape: raw sku, name,
// gross price, stock, brand. Extra trailing fields are ignored.
const minDelimitedFields = 5

// Delimited imports the comma-separated text feed. The whole batch is
// parsed and deduplicated in memory first, then persisted with one
// SaveAll: any numeric parse failure or an unreadable resource aborts
// the run with nothing persisted. It never reads prior catalog state,
// so a SKU stored by an earlier run of either feed is overwritten by a
// fresh entry.
type Delimited struct {
	open Opener
}

// NewDelimited creates the delimited-feed importer.
func NewDelimited(open Opener) *Delimited {
	return &Delimited{open: open}
}

// Name implements Importer.
func (d *Delimited) Name() string { return DelimitedFeed }

// Import implements Importer.
func (d *Delimited) Import(ctx context.Context, store catalog.Store) *Result {
	result := newResult(DelimitedFeed)
	defer result.finish()

	log := logging.FromContext(ctx).With().
		Str("feed", result.Feed).
		Str("batch_id", result.BatchID.String()).
		Logger()

	rc, err := d.open(ctx)
	if err != nil {
		result.Err = err
		log.Error().Err(err).Msg("Delimited feed unreadable, batch aborted")
		return result
	}
	defer rc.Close() //nolint:errcheck // read-only resource

	// Insertion-ordered dedup map: a repeated key replaces the earlier
	// entry in place, so the first occurrence keeps its position but the
	// last row wins.
	var (
		order   []string
		entries = map[string]catalog.Entry{}
	)

	scanner := bufio.NewScanner(rc)
	line := 0
	for scanner.Scan() {
		line++
		row := scanner.Text()

		if line == 1 {
			// Header, discarded.
			continue
		}
		if strings.TrimSpace(row) == "" {
			continue
		}

		fields := strings.Split(row, ",")
		if len(fields) < minDelimitedFields {
			result.Skipped++
			result.warnf("row %d: expected at least %d fields, got %d", line, minDelimitedFields, len(fields))
			log.Warn().Int("row", line).Int("fields", len(fields)).Msg("Malformed row skipped")
			continue
		}

		entry, err := d.row(fields, line)
		if err != nil {
			result.Err = err
			log.Error().Err(err).Int("row", line).Msg("Delimited batch aborted, nothing persisted")
			return result
		}

		if _, seen := entries[entry.SKU]; seen {
			result.warnf("row %d: duplicate sku %s, later row replaces earlier", line, entry.SKU)
			log.Warn().Int("row", line).Str("sku", entry.SKU).Msg("Duplicate key in batch, last write wins")
		} else {
			order = append(order, entry.SKU)
		}
		entries[entry.SKU] = entry
	}
	if err := scanner.Err(); err != nil {
		result.Err = errors.NewIOError("read", "", err)
		log.Error().Err(result.Err).Msg("Delimited feed unreadable, batch aborted")
		return result
	}

	batch := make([]catalog.Entry, 0, len(order))
	for _, key := range order {
		batch = append(batch, entries[key])
	}

	if err := store.SaveAll(ctx, batch); err != nil {
		result.Err = err
		log.Error().Err(err).Msg("Bulk save failed, batch aborted")
		return result
	}

	result.Persisted = len(batch)
	log.Info().
		Int("persisted", result.Persisted).
		Int("skipped", result.Skipped).
		Int("warnings", len(result.Warnings)).
		Msg("Delimited batch committed")
	return result
}

// row builds a catalog entry from one accepted row. A non-numeric price
// or stock is returned as the fatal error for the batch.
func (d *Delimited) row(fields []string, line int) (catalog.Entry, error) {
	var (
		rawSKU   = strings.TrimSpace(fields[0])
		name     = strings.TrimSpace(fields[1])
		rawPrice = strings.TrimSpace(fields[2])
		rawStock = strings.TrimSpace(fields[3])
		brand    = strings.TrimSpace(fields[4])
	)

	price, err := pricing.ParseGross(rawPrice)
	if err != nil {
		return catalog.Entry{}, errors.NewParseError(DelimitedFeed, line, "grossPrice", "non-numeric price "+strconv.Quote(rawPrice), err)
	}

	stock, err := strconv.Atoi(rawStock)
	if err != nil {
		return catalog.Entry{}, errors.NewParseError(DelimitedFeed, line, "stock", "non-numeric stock "+strconv.Quote(rawStock), err)
	}

	entry := catalog.Entry{
		SKU:        sku.Normalize(rawSKU),
		Name:       name,
		FinalPrice: &price,
		Stock:      &stock,
		UpdatedAt:  utc.Now(),
		Source:     catalog.SourceDelimited,
	}
	if brand != "" {
		entry.Manufacturer = &brand
	}

	entry.Valid, entry.ValidationErrors = validation.Delimited(validation.Input{
		SKU:   entry.SKU,
		Name:  entry.Name,
		Price: entry.FinalPrice,
		Stock: entry.Stock,
	})
	return entry, nil
}
