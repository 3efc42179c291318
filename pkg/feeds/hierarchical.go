package feeds

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/errors"
	"github.com/feedsmith/feedsmith/pkg/logging"
	"github.com/feedsmith/feedsmith/pkg/pricing"
	"github.com/feedsmith/feedsmith/pkg/sku"
	"github.com/feedsmith/feedsmith/pkg/validation"
)

// HierarchicalFeed is the feed name of the hierarchical importer.
const HierarchicalFeed = "hierarchical"

// record is one incoming product document. Every field is optional;
// pointers keep "present with value" distinct from "absent" so the
// sparse merge can retain previously stored values.
type record struct {
	ID                *string          `json:"id"`
	Name              *string          `json:"name"`
	Manufacturer      *string          `json:"manufacturer"`
	EAN               *string          `json:"ean"`
	NetPrice          *decimal.Decimal `json:"netPrice"`
	VatRate           *decimal.Decimal `json:"vatRate"`
	QuantityAvailable *int             `json:"quantityAvailable"`
	UpdatedAt         *string          `json:"updatedAt"`
}

// Hierarchical imports the nested JSON record feed. Records are
// processed independently: a malformed record or one whose merged
// price stays absent is skipped with a warning while the batch
// continues. Each surviving record is merged field-by-field into the
// stored entry for its normalized SKU and upserted individually.
type Hierarchical struct {
	open Opener

	// now is swappable for tests; records without an updatedAt
	// timestamp are stamped with the import time.
	now func() utc.Time
}

// NewHierarchical creates the hierarchical-feed importer.
func NewHierarchical(open Opener) *Hierarchical {
	return &Hierarchical{open: open, now: utc.Now}
}

// Name implements Importer.
func (h *Hierarchical) Name() string { return HierarchicalFeed }

// Import implements Importer.
func (h *Hierarchical) Import(ctx context.Context, store catalog.Store) *Result {
	result := newResult(HierarchicalFeed)
	defer result.finish()

	log := logging.FromContext(ctx).With().
		Str("feed", result.Feed).
		Str("batch_id", result.BatchID.String()).
		Logger()

	rc, err := h.open(ctx)
	if err != nil {
		result.Err = err
		log.Error().Err(err).Msg("Hierarchical feed unreadable, batch aborted")
		return result
	}
	defer rc.Close() //nolint:errcheck // read-only resource

	data, err := io.ReadAll(rc)
	if err != nil {
		result.Err = errors.NewIOError("read", "", err)
		log.Error().Err(result.Err).Msg("Hierarchical feed unreadable, batch aborted")
		return result
	}

	// The root must be an array; anything else is fatal for the batch.
	// Elements are kept raw so one malformed record cannot abort the rest.
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		result.Err = errors.NewParseError("json", 0, "", "root is not an array of records", err)
		log.Error().Err(result.Err).Msg("Hierarchical batch aborted")
		return result
	}

	for i, raw := range raws {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			result.Skipped++
			result.warnf("record %d: malformed: %v", i, err)
			log.Warn().Int("record", i).Err(err).Msg("Malformed record skipped")
			continue
		}

		entry, skipReason, err := h.merge(ctx, store, rec, &log)
		if err != nil {
			result.Err = err
			log.Error().Err(err).Int("record", i).Msg("Hierarchical batch aborted")
			return result
		}
		if skipReason != "" {
			result.Skipped++
			result.warnf("record %d (sku %s): %s", i, entry.SKU, skipReason)
			log.Warn().Int("record", i).Str("sku", entry.SKU).Msg(skipReason)
			continue
		}

		if err := store.Save(ctx, entry); err != nil {
			result.Err = err
			log.Error().Err(err).Str("sku", entry.SKU).Msg("Upsert failed, batch aborted")
			return result
		}
		result.Persisted++
	}

	log.Info().
		Int("persisted", result.Persisted).
		Int("skipped", result.Skipped).
		Int("warnings", len(result.Warnings)).
		Msg("Hierarchical batch finished")
	return result
}

// merge applies the field-level sparse merge of one record onto the
// stored entry for its SKU (or a bare shell when none exists). The
// returned skipReason is non-empty when the merged entry must not be
// persisted; the error return is fatal for the batch.
func (h *Hierarchical) merge(ctx context.Context, store catalog.Store, rec record, log *zerolog.Logger) (catalog.Entry, string, error) {
	normalized := sku.Normalize(deref(rec.ID))

	entry, err := store.FindBySKU(ctx, normalized)
	switch {
	case errors.IsNotFound(err):
		entry = catalog.Shell(normalized)
	case err != nil:
		return catalog.Entry{}, "", err
	}

	// Always overwritten from the incoming record.
	entry.Name = deref(rec.Name)
	entry.Source = catalog.SourceHierarchical
	entry.UpdatedAt = h.timestamp(rec.UpdatedAt, log)

	// Overwritten only when the incoming value is present.
	if rec.Manufacturer != nil {
		entry.Manufacturer = rec.Manufacturer
	}
	if derived := pricing.Derive(rec.NetPrice, rec.VatRate); derived != nil {
		entry.FinalPrice = derived
	}
	if rec.QuantityAvailable != nil {
		entry.Stock = rec.QuantityAvailable
	}
	if rec.EAN != nil {
		entry.EAN = rec.EAN
	}

	entry.Valid, entry.ValidationErrors = validation.Hierarchical(validation.Input{
		SKU:   entry.SKU,
		Name:  entry.Name,
		Price: entry.FinalPrice,
		Stock: entry.Stock,
	})

	// No price ever recorded and none derivable from this record: the
	// record is dropped and the stored entry stays exactly as it was.
	if entry.FinalPrice == nil {
		return entry, "no final price recorded or derivable, record skipped", nil
	}
	return entry, "", nil
}

// timestamp resolves the entry timestamp: the record's RFC 3339 value
// when present and parsable, the import time otherwise.
func (h *Hierarchical) timestamp(raw *string, log *zerolog.Logger) utc.Time {
	if raw == nil {
		return h.now()
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		log.Warn().Str("updatedAt", *raw).Msg("Unparsable timestamp, using import time")
		return h.now()
	}
	return utc.Time{Time: t.UTC()}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
