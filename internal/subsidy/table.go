// Package subsidy holds the factory subsidy table and the calculations
// that depend on it. The table is an explicit value handed to its
// consumers; an unloaded table behaves as "nothing is subsidizable".
package subsidy

import (
	"github.com/shopspring/decimal"

	"github.com/hazemadel/quotedesk-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// Record is one subsidized product. MaxSubsidy is the absolute currency
// ceiling subtractable from the unit cost; ReferenceCost is informational.
type Record struct {
	Code          string
	ProductName   string
	MaxSubsidy    decimal.Decimal
	ReferenceCost decimal.Decimal
}

// Table maps product codes to subsidy records. At most one record per code.
type Table struct {
	records map[string]Record
	loaded  bool
}

// NewTable builds a loaded table from the given records. Later records
// with a duplicate code overwrite earlier ones.
func NewTable(records []Record) *Table {
	byCode := make(map[string]Record, len(records))
	for _, rec := range records {
		if rec.Code == "" {
			continue
		}
		byCode[rec.Code] = rec
	}
	return &Table{records: byCode, loaded: true}
}

// EmptyTable returns an explicit not-yet-loaded table.
func EmptyTable() *Table {
	return &Table{records: map[string]Record{}}
}

// Loaded reports whether subsidy data has been supplied.
func (t *Table) Loaded() bool {
	return t != nil && t.loaded
}

// Len reports the number of subsidized products.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Lookup returns the record for a code. A missing code means the product
// is not subsidizable, which is not an error.
func (t *Table) Lookup(code string) (Record, bool) {
	if t == nil {
		return Record{}, false
	}
	rec, ok := t.records[code]
	return rec, ok
}

// IsSubsidized reports whether the code has a subsidy record.
func (t *Table) IsSubsidized(code string) bool {
	_, ok := t.Lookup(code)
	return ok
}

// AmountFor returns the per-unit subsidy for a code at the given
// percentage. The percentage is clamped to [0,100] before use; unknown
// codes yield zero.
func (t *Table) AmountFor(code string, percentage decimal.Decimal) decimal.Decimal {
	rec, ok := t.Lookup(code)
	if !ok {
		return decimal.Zero
	}
	return rec.MaxSubsidy.Mul(ClampPercentage(percentage)).Div(hundred)
}

// ClampPercentage coerces a percentage into [0,100]. Out-of-range input is
// silently corrected, never rejected.
func ClampPercentage(percentage decimal.Decimal) decimal.Decimal {
	if percentage.IsNegative() {
		return decimal.Zero
	}
	if percentage.GreaterThan(hundred) {
		return hundred
	}
	return percentage
}

// QuoteSummary aggregates the subsidized lines of a quote. It reads the
// denormalized per-line subsidy amounts, so it needs no table access.
func QuoteSummary(items []types.QuoteLineItem) types.SubsidySummary {
	summary := types.SubsidySummary{
		TotalOriginalCost:     decimal.Zero,
		TotalSubsidyAmount:    decimal.Zero,
		TotalCostAfterSubsidy: decimal.Zero,
		AverageSubsidyPct:     decimal.Zero,
		TotalItemsCount:       len(items),
	}

	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		summary.TotalOriginalCost = summary.TotalOriginalCost.Add(item.Cost.Mul(qty))
		if item.SubsidyPercentage.IsPositive() {
			summary.TotalSubsidyAmount = summary.TotalSubsidyAmount.Add(item.SubsidyAmount.Mul(qty))
			summary.SubsidizedItemsCount++
		}
	}

	summary.TotalCostAfterSubsidy = summary.TotalOriginalCost.Sub(summary.TotalSubsidyAmount)
	if summary.TotalOriginalCost.IsPositive() {
		summary.AverageSubsidyPct = summary.TotalSubsidyAmount.Div(summary.TotalOriginalCost).Mul(hundred)
	}
	return summary
}
