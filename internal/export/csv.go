// Package export renders a quote as the flat tabular structure used for
// downloads: one row per line item followed by the pricing summary.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hazemadel/quotedesk-backend/pkg/types"
)

var header = []string{"Product Code", "Product Name", "Quantity", "Unit Price", "Total Price"}

// WriteCSV streams the quote to w. Summary rows carry their label in the
// fourth column so every record keeps the same width.
func WriteCSV(w io.Writer, quote types.Quote, stats types.QuoteStats, result types.PricingResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for _, item := range quote.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		row := []string{
			item.Code,
			item.Name,
			fmt.Sprintf("%d", item.Quantity),
			money(item.Price),
			money(item.Price.Mul(qty)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}

	summary := [][]string{
		{"", "", "", "Total Cost", money(stats.TotalCost)},
		{"", "", "", "Final Price", money(result.FinalPrice)},
		{"", "", "", "Profit", money(result.FinalProfit)},
		{"", "", "", "Margin", result.FinalMargin.Round(2).String() + "%"},
	}
	for _, row := range summary {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write export summary: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// QuoteNumber builds the reference used in export filenames, a date block
// plus a three-digit suffix.
func QuoteNumber(now time.Time) string {
	return fmt.Sprintf("Q%s-%03d", now.Format("20060102"), now.UnixNano()%1000)
}

// Filename is the download name for an export generated at the given time.
func Filename(now time.Time) string {
	return fmt.Sprintf("quote_%s.csv", QuoteNumber(now))
}

func money(value decimal.Decimal) string {
	return value.Round(2).String()
}
