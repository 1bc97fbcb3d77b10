package subsidy

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Column headers of the factory subsidy sheet.
const (
	headerCode       = "الكود الموحّد"
	headerName       = "اسم المنتج"
	headerMaxSubsidy = "أقصى قيمة الدعم"
	headerCost       = "سعر التكلفة"
)

// LoadCSV reads the subsidy sheet into a table. Rows with a missing code
// or non-numeric amounts are skipped, matching the source sheet's habit of
// carrying annotation rows.
func LoadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read subsidy header: %w", err)
	}
	cols := columnIndex(header)
	if _, ok := cols[headerCode]; !ok {
		return nil, fmt.Errorf("subsidy sheet is missing the %q column", headerCode)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read subsidy row: %w", err)
		}

		code := strings.TrimSpace(field(row, cols, headerCode))
		if code == "" {
			continue
		}
		maxSubsidy, err := decimal.NewFromString(strings.TrimSpace(field(row, cols, headerMaxSubsidy)))
		if err != nil {
			continue
		}
		cost, err := decimal.NewFromString(strings.TrimSpace(field(row, cols, headerCost)))
		if err != nil {
			continue
		}

		records = append(records, Record{
			Code:          code,
			ProductName:   strings.TrimSpace(field(row, cols, headerName)),
			MaxSubsidy:    maxSubsidy,
			ReferenceCost: cost,
		})
	}

	return NewTable(records), nil
}

// LoadCSVFile opens and loads a subsidy sheet from disk.
func LoadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open subsidy sheet: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))] = i
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
