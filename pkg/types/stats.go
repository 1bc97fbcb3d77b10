package types

import "github.com/shopspring/decimal"

// QuoteStats aggregates a quote's derived figures. TotalCost is the
// post-subsidy cost; TotalPrice stays the catalog-summed reference price
// regardless of any pricing override.
type QuoteStats struct {
	TotalCost         decimal.Decimal `json:"total_cost"`
	TotalOriginalCost decimal.Decimal `json:"total_original_cost"`
	TotalSubsidy      decimal.Decimal `json:"total_subsidy"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	OriginalMargin    decimal.Decimal `json:"original_margin"`
	EffectiveMargin   decimal.Decimal `json:"effective_margin"`
	ItemCount         int             `json:"item_count"`
	TotalQuantity     int             `json:"total_quantity"`
}

// Savings reports the delta between the catalog price and the final quoted
// price. A negative amount means a markup; IsSavings gates the discount
// presentation.
type Savings struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	IsSavings  bool            `json:"is_savings"`
}

// SubsidySummary aggregates the subsidized lines of a quote.
type SubsidySummary struct {
	TotalOriginalCost     decimal.Decimal `json:"total_original_cost"`
	TotalSubsidyAmount    decimal.Decimal `json:"total_subsidy_amount"`
	TotalCostAfterSubsidy decimal.Decimal `json:"total_cost_after_subsidy"`
	SubsidizedItemsCount  int             `json:"subsidized_items_count"`
	TotalItemsCount       int             `json:"total_items_count"`
	AverageSubsidyPct     decimal.Decimal `json:"average_subsidy_percentage"`
}

// PricingResult is the outcome of resolving a final price for a quote.
type PricingResult struct {
	FinalPrice  decimal.Decimal `json:"final_price"`
	FinalMargin decimal.Decimal `json:"final_margin"`
	FinalProfit decimal.Decimal `json:"final_profit"`
	Savings     Savings         `json:"customer_savings"`
}
