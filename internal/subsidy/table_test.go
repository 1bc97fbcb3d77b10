package subsidy

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hazemadel/quotedesk-backend/pkg/types"
)

func testTable() *Table {
	return NewTable([]Record{
		{Code: "A1", ProductName: "Widget", MaxSubsidy: decimal.NewFromInt(40), ReferenceCost: decimal.NewFromInt(100)},
		{Code: "B2", ProductName: "Gadget", MaxSubsidy: decimal.NewFromInt(10), ReferenceCost: decimal.NewFromInt(25)},
	})
}

func TestAmountForClampsAndBounds(t *testing.T) {
	table := testTable()

	cases := []struct {
		pct  float64
		want float64
	}{
		{-10, 0},
		{0, 0},
		{25, 10},
		{50, 20},
		{100, 40},
		{150, 40},
	}
	for _, tc := range cases {
		got := table.AmountFor("A1", decimal.NewFromFloat(tc.pct))
		if !got.Equal(decimal.NewFromFloat(tc.want)) {
			t.Fatalf("pct %v: want %v, got %s", tc.pct, tc.want, got)
		}
	}
}

func TestAmountForMonotonic(t *testing.T) {
	table := testTable()
	prev := decimal.NewFromInt(-1)
	for pct := 0; pct <= 100; pct += 5 {
		got := table.AmountFor("A1", decimal.NewFromInt(int64(pct)))
		if got.LessThan(prev) {
			t.Fatalf("amount decreased at %d%%: %s < %s", pct, got, prev)
		}
		prev = got
	}
}

func TestAmountForUnknownCode(t *testing.T) {
	table := testTable()
	if got := table.AmountFor("missing", decimal.NewFromInt(50)); !got.IsZero() {
		t.Fatalf("unknown code must yield zero, got %s", got)
	}
	if table.IsSubsidized("missing") {
		t.Fatal("unknown code reported as subsidized")
	}
}

func TestEmptyTableNotLoaded(t *testing.T) {
	table := EmptyTable()
	if table.Loaded() {
		t.Fatal("empty table claims to be loaded")
	}
	if got := table.AmountFor("A1", decimal.NewFromInt(50)); !got.IsZero() {
		t.Fatalf("unloaded table must yield zero, got %s", got)
	}
	if testTable().Loaded() != true {
		t.Fatal("populated table must report loaded")
	}
}

func TestQuoteSummary(t *testing.T) {
	items := []types.QuoteLineItem{
		{
			Code:              "A1",
			Cost:              decimal.NewFromInt(100),
			Quantity:          2,
			SubsidyPercentage: decimal.NewFromInt(50),
			SubsidyAmount:     decimal.NewFromInt(20),
		},
		{
			Code:     "C3",
			Cost:     decimal.NewFromInt(30),
			Quantity: 1,
		},
	}

	summary := QuoteSummary(items)
	if !summary.TotalOriginalCost.Equal(decimal.NewFromInt(230)) {
		t.Fatalf("total original cost: %s", summary.TotalOriginalCost)
	}
	if !summary.TotalSubsidyAmount.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("total subsidy: %s", summary.TotalSubsidyAmount)
	}
	if !summary.TotalCostAfterSubsidy.Equal(decimal.NewFromInt(190)) {
		t.Fatalf("cost after subsidy: %s", summary.TotalCostAfterSubsidy)
	}
	if summary.SubsidizedItemsCount != 1 || summary.TotalItemsCount != 2 {
		t.Fatalf("counts: %+v", summary)
	}
	want := decimal.NewFromInt(40).Div(decimal.NewFromInt(230)).Mul(decimal.NewFromInt(100))
	if !summary.AverageSubsidyPct.Equal(want) {
		t.Fatalf("average subsidy pct: %s", summary.AverageSubsidyPct)
	}
}

func TestQuoteSummaryEmpty(t *testing.T) {
	summary := QuoteSummary(nil)
	if !summary.AverageSubsidyPct.IsZero() || summary.TotalItemsCount != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}

func TestLoadCSV(t *testing.T) {
	sheet := strings.Join([]string{
		"الكود الموحّد,اسم المنتج,سعر التكلفة,أقصى قيمة الدعم",
		"A1,Widget,100,40",
		"B2,Gadget,25,10",
		",annotation row,,",
		"C3,Broken,abc,xyz",
	}, "\n")

	table, err := LoadCSV(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", table.Len())
	}
	if !table.Loaded() {
		t.Fatal("loaded table must report loaded")
	}

	rec, ok := table.Lookup("A1")
	if !ok {
		t.Fatal("A1 missing")
	}
	if rec.ProductName != "Widget" || !rec.MaxSubsidy.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.ReferenceCost.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("reference cost: %s", rec.ReferenceCost)
	}
}

func TestLoadCSVStripsHeaderBOM(t *testing.T) {
	sheet := "\uFEFF" + strings.Join([]string{
		"الكود الموحّد,اسم المنتج,سعر التكلفة,أقصى قيمة الدعم",
		"A1,Widget,100,40",
	}, "\n")

	table, err := LoadCSV(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if _, ok := table.Lookup("A1"); !ok {
		t.Fatal("A1 missing after BOM-prefixed header")
	}
}

func TestLoadCSVMissingCodeColumn(t *testing.T) {
	if _, err := LoadCSV(strings.NewReader("name,cost\nWidget,10\n")); err == nil {
		t.Fatal("expected an error for a sheet without the code column")
	}
}
