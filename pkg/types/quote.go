package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteLineItem is a product snapshot plus the quote-specific fields.
// Catalog fields are copied when the line is added; later catalog changes
// never touch existing lines.
type QuoteLineItem struct {
	ProductID string          `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Cost      decimal.Decimal `json:"cost"`
	Price     decimal.Decimal `json:"price"`
	Margin    decimal.Decimal `json:"margin"`

	Quantity int `json:"quantity"`

	// SubsidyPercentage is always in [0,100]. SubsidyAmount is the
	// denormalized per-unit subsidy, recomputed only when the percentage
	// changes.
	SubsidyPercentage decimal.Decimal `json:"subsidy_percentage"`
	SubsidyAmount     decimal.Decimal `json:"subsidy_amount"`
}

// Quote is the draft being edited.
type Quote struct {
	Items    []QuoteLineItem `json:"items"`
	Name     string          `json:"name"`
	Customer string          `json:"customer"`
}

// Draft is the persisted form of the working quote.
type Draft struct {
	Quote
	LastModified time.Time `json:"last_modified"`
}

// SavedQuote is an immutable snapshot kept in the bounded saved collection.
type SavedQuote struct {
	ID string `json:"id"`
	Quote
	ItemCount int       `json:"item_count"`
	SavedAt   time.Time `json:"saved_at"`
}

// HistoryEntry summarizes a saved quote for the history feed.
type HistoryEntry struct {
	ID         string          `json:"id"`
	QuoteName  string          `json:"quote_name"`
	Customer   string          `json:"customer"`
	TotalItems int             `json:"total_items"`
	FinalPrice decimal.Decimal `json:"final_price"`
	CreatedAt  time.Time       `json:"created_at"`
}
