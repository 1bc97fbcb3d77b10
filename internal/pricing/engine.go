// Package pricing holds the pure quote calculations. Every function is
// total: division-by-zero paths return zero values or the unchanged input
// instead of erroring, so callers never see a stray NaN or infinity.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/hazemadel/quotedesk-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// Pricing modes accepted by ResolveFinalPrice.
const (
	ModeMargin = "margin"
	ModeDirect = "direct"
)

// LineEffectiveCost returns the post-subsidy cost of one line. The per-unit
// subsidy is clamped so it can never push the cost below zero.
func LineEffectiveCost(item types.QuoteLineItem) decimal.Decimal {
	unit := item.Cost.Sub(item.SubsidyAmount)
	if unit.IsNegative() {
		unit = decimal.Zero
	}
	return unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// QuoteStats aggregates the derived figures for a list of lines. An empty
// list yields all-zero aggregates.
//
// TotalSubsidy is TotalOriginalCost minus the clamped TotalCost, not the
// raw sum of per-line subsidy amounts, so the identity
// TotalCost = TotalOriginalCost - TotalSubsidy holds even when a line's
// subsidy exceeds its unit cost.
func QuoteStats(items []types.QuoteLineItem) types.QuoteStats {
	stats := types.QuoteStats{
		TotalCost:         decimal.Zero,
		TotalOriginalCost: decimal.Zero,
		TotalSubsidy:      decimal.Zero,
		TotalPrice:        decimal.Zero,
		OriginalMargin:    decimal.Zero,
		EffectiveMargin:   decimal.Zero,
	}

	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		stats.TotalOriginalCost = stats.TotalOriginalCost.Add(item.Cost.Mul(qty))
		stats.TotalPrice = stats.TotalPrice.Add(item.Price.Mul(qty))
		stats.TotalCost = stats.TotalCost.Add(LineEffectiveCost(item))
		stats.TotalQuantity += item.Quantity
	}

	stats.ItemCount = len(items)
	stats.TotalSubsidy = stats.TotalOriginalCost.Sub(stats.TotalCost)
	stats.OriginalMargin = MarginFromPrice(stats.TotalPrice, stats.TotalOriginalCost)
	stats.EffectiveMargin = MarginFromPrice(stats.TotalPrice, stats.TotalCost)
	return stats
}

// PriceFromMargin derives the sale price that yields marginPct on top of
// totalCost. Margins outside [0,100) return totalCost unchanged rather than
// dividing by zero or producing a negative price.
func PriceFromMargin(totalCost, marginPct decimal.Decimal) decimal.Decimal {
	if marginPct.IsNegative() || marginPct.GreaterThanOrEqual(hundred) {
		return totalCost
	}
	divisor := decimal.NewFromInt(1).Sub(marginPct.Div(hundred))
	return totalCost.Div(divisor)
}

// MarginFromPrice is profit as a percentage of price, zero when the price
// is not positive.
func MarginFromPrice(price, totalCost decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(totalCost).Div(price).Mul(hundred)
}

// CustomerSavings compares the catalog-summed price with the final quoted
// price. A negative amount (a markup) is a valid outcome; IsSavings gates
// the discount presentation.
func CustomerSavings(originalPrice, finalPrice decimal.Decimal) types.Savings {
	amount := originalPrice.Sub(finalPrice)
	savings := types.Savings{
		Amount:     amount,
		Percentage: decimal.Zero,
		IsSavings:  amount.IsPositive(),
	}
	if originalPrice.IsPositive() {
		savings.Percentage = amount.Div(originalPrice).Mul(hundred)
	}
	return savings
}

// ResolveFinalPrice applies the chosen pricing mode to a quote's stats.
// Margin mode reprices from the post-subsidy cost; direct mode accepts the
// given price and derives the margin. Anything else, including an invalid
// margin or a non-positive direct price, falls back to the catalog price.
func ResolveFinalPrice(stats types.QuoteStats, mode string, value decimal.Decimal) types.PricingResult {
	finalPrice := stats.TotalPrice

	switch mode {
	case ModeMargin:
		if !value.IsNegative() && value.LessThan(hundred) {
			finalPrice = PriceFromMargin(stats.TotalCost, value)
		}
	case ModeDirect:
		if value.IsPositive() {
			finalPrice = value
		}
	}

	return types.PricingResult{
		FinalPrice:  finalPrice,
		FinalMargin: MarginFromPrice(finalPrice, stats.TotalCost),
		FinalProfit: finalPrice.Sub(stats.TotalCost),
		Savings:     CustomerSavings(stats.TotalPrice, finalPrice),
	}
}
