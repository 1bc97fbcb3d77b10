package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func testStore() *Store {
	return NewStore([]Product{
		{ID: "A1-0", Code: "A1", Name: "Shampoo", Category: "Hair", Cost: decimal.NewFromInt(60), Price: decimal.NewFromInt(100), Margin: decimal.NewFromInt(40)},
		{ID: "B2-1", Code: "B2", Name: "Conditioner", Category: "Hair", Cost: decimal.NewFromInt(50), Price: decimal.NewFromInt(80), Margin: decimal.NewFromFloat(37.5)},
		{ID: "C3-2", Code: "C3", Name: "Body Lotion", Category: "Skin", Cost: decimal.NewFromInt(30), Price: decimal.NewFromInt(90), Margin: decimal.NewFromFloat(66.67)},
	})
}

func TestLookups(t *testing.T) {
	store := testStore()

	p, ok := store.ByID("B2-1")
	if !ok || p.Code != "B2" {
		t.Fatalf("ByID: %+v ok=%v", p, ok)
	}

	p, ok = store.ByCode("C3")
	if !ok || p.Name != "Body Lotion" {
		t.Fatalf("ByCode: %+v ok=%v", p, ok)
	}

	if _, ok := store.ByID("nope"); ok {
		t.Fatal("unexpected hit for unknown id")
	}
}

func TestCategoriesSortedDistinct(t *testing.T) {
	got := testStore().Categories()
	if len(got) != 2 || got[0] != "Hair" || got[1] != "Skin" {
		t.Fatalf("categories: %v", got)
	}
}

func TestQueryFilters(t *testing.T) {
	store := testStore()

	hair := store.Query(Query{Category: "Hair"})
	if len(hair) != 2 {
		t.Fatalf("category filter: %d results", len(hair))
	}

	byName := store.Query(Query{SearchTerm: "lotion"})
	if len(byName) != 1 || byName[0].Code != "C3" {
		t.Fatalf("name search: %+v", byName)
	}

	byCode := store.Query(Query{SearchTerm: "b2"})
	if len(byCode) != 1 || byCode[0].Code != "B2" {
		t.Fatalf("code search: %+v", byCode)
	}

	if got := store.Query(Query{SearchTerm: "lotion", Category: "Hair"}); len(got) != 0 {
		t.Fatalf("combined filter should be empty, got %+v", got)
	}
}

func TestQuerySorting(t *testing.T) {
	store := testStore()

	names := func(products []Product) []string {
		out := make([]string, len(products))
		for i, p := range products {
			out[i] = p.Code
		}
		return out
	}

	cases := []struct {
		sortBy string
		want   string
	}{
		{SortByName, "C3,B2,A1"},
		{SortByPriceAsc, "B2,C3,A1"},
		{SortByPriceDesc, "A1,C3,B2"},
		{SortByCostAsc, "C3,B2,A1"},
		{SortByCostDesc, "A1,B2,C3"},
		{SortByMarginDesc, "C3,A1,B2"},
	}
	for _, tc := range cases {
		got := strings.Join(names(store.Query(Query{SortBy: tc.sortBy})), ",")
		if got != tc.want {
			t.Fatalf("sort %s: want %s, got %s", tc.sortBy, tc.want, got)
		}
	}
}

func TestLoadCSVArabicHeaders(t *testing.T) {
	sheet := strings.Join([]string{
		"كود المنتج,اسم المنتج,بند العناية,سعر التكلفة,سعر البيع",
		"A1,Shampoo,Hair,60,100",
		"A1,Shampoo Duplicate,Hair,60,100",
		",No Code,Hair,1,2",
		"B2,Bad Numbers,Hair,abc,xyz",
	}, "\n")

	store, err := LoadCSV(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("expected 3 products, got %d", store.Len())
	}

	p, ok := store.ByID("A1-0")
	if !ok {
		t.Fatal("A1-0 missing")
	}
	if !p.Margin.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("precomputed margin: %s", p.Margin)
	}

	// Duplicate codes stay addressable through the row-indexed id.
	if _, ok := store.ByID("A1-1"); !ok {
		t.Fatal("duplicate code row missing")
	}
	if p, _ := store.ByCode("A1"); p.ID != "A1-0" {
		t.Fatalf("ByCode must resolve the first occurrence, got %s", p.ID)
	}

	// Malformed numbers fall back to zero and a zero margin.
	p, _ = store.ByCode("B2")
	if !p.Cost.IsZero() || !p.Margin.IsZero() {
		t.Fatalf("bad numbers row: %+v", p)
	}
}

func TestLoadCSVStripsHeaderBOM(t *testing.T) {
	sheet := "\uFEFFcode,name,category,cost,price\nX9,Serum,Skin,20,50\n"
	store, err := LoadCSV(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	if _, ok := store.ByCode("X9"); !ok {
		t.Fatal("X9 missing after BOM-prefixed header")
	}
}

func TestLoadCSVEnglishHeaders(t *testing.T) {
	sheet := "code,name,category,cost,price\nX9,Serum,Skin,20,50\n"
	store, err := LoadCSV(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("load csv: %v", err)
	}
	p, ok := store.ByCode("X9")
	if !ok {
		t.Fatal("X9 missing")
	}
	if !p.Margin.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("margin: %s", p.Margin)
	}
}
