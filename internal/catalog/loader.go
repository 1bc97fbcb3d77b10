package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// The product sheet carries Arabic headers; English aliases are accepted
// for fixture and test data.
var (
	codeHeaders     = []string{"كود المنتج", "code"}
	nameHeaders     = []string{"اسم المنتج", "name"}
	categoryHeaders = []string{"بند العناية", "category"}
	costHeaders     = []string{"سعر التكلفة", "cost"}
	priceHeaders    = []string{"سعر البيع", "price"}
)

var hundred = decimal.NewFromInt(100)

// LoadCSV reads the product sheet. Rows without a code or name are
// dropped; malformed numbers fall back to zero. The session id is the
// product code joined with the row index, so duplicate codes stay
// addressable.
func LoadCSV(r io.Reader) (*Store, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))] = i
	}

	var products []Product
	index := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row: %w", err)
		}

		code := pick(row, cols, codeHeaders)
		name := pick(row, cols, nameHeaders)
		if code == "" || name == "" {
			index++
			continue
		}

		cost := parseAmount(pick(row, cols, costHeaders))
		price := parseAmount(pick(row, cols, priceHeaders))

		products = append(products, Product{
			ID:       fmt.Sprintf("%s-%d", code, index),
			Code:     code,
			Name:     name,
			Category: pick(row, cols, categoryHeaders),
			Cost:     cost,
			Price:    price,
			Margin:   precomputeMargin(cost, price),
		})
		index++
	}

	return NewStore(products), nil
}

// LoadCSVFile opens and loads a product sheet from disk.
func LoadCSVFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog sheet: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// precomputeMargin is (price-cost)/price*100 rounded to two places, zero
// unless both cost and price are positive.
func precomputeMargin(cost, price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() || !cost.IsPositive() {
		return decimal.Zero
	}
	return price.Sub(cost).Div(price).Mul(hundred).Round(2)
}

func pick(row []string, cols map[string]int, names []string) string {
	for _, name := range names {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v
		}
	}
	return ""
}

func parseAmount(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
