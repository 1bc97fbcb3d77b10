package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hazemadel/quotedesk-backend/pkg/config"
	pkgerrors "github.com/hazemadel/quotedesk-backend/pkg/errors"
	"github.com/hazemadel/quotedesk-backend/pkg/storage"
	"github.com/hazemadel/quotedesk-backend/pkg/types"
)

// quotaStore fails Set with ErrQuotaExceeded until the configured number
// of failures is consumed, then delegates to the wrapped store.
type quotaStore struct {
	storage.Store
	failures int
}

func (q *quotaStore) Set(ctx context.Context, key string, value []byte) error {
	if q.failures > 0 {
		q.failures--
		return storage.ErrQuotaExceeded
	}
	return q.Store.Set(ctx, key, value)
}

func newTestService(t *testing.T, store storage.Store, cfg config.QuotesConfig) *service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Store:  store,
		Config: cfg,
		Logger: zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	impl := svc.(*service)
	seq := 0
	impl.newID = func() string {
		seq++
		return fmt.Sprintf("id-%03d", seq)
	}
	return impl
}

func sampleQuote(name string) types.Quote {
	return types.Quote{
		Items: []types.QuoteLineItem{{
			ProductID: "A1-0", Code: "A1", Name: "Shampoo",
			Cost: decimal.NewFromInt(100), Price: decimal.NewFromInt(150), Quantity: 2,
		}},
		Name: name,
	}
}

func TestDraftRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(0), config.QuotesConfig{})

	if _, ok, err := svc.LoadDraft(ctx); err != nil || ok {
		t.Fatalf("expected no draft, ok=%v err=%v", ok, err)
	}

	if err := svc.SaveDraft(ctx, sampleQuote("June order")); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	draft, ok, err := svc.LoadDraft(ctx)
	if err != nil || !ok {
		t.Fatalf("load draft: ok=%v err=%v", ok, err)
	}
	if draft.Name != "June order" || len(draft.Items) != 1 {
		t.Fatalf("draft content: %+v", draft)
	}
	if draft.LastModified.IsZero() {
		t.Fatal("last modified not set")
	}

	if err := svc.ClearDraft(ctx); err != nil {
		t.Fatalf("clear draft: %v", err)
	}
	if _, ok, _ := svc.LoadDraft(ctx); ok {
		t.Fatal("draft survived clear")
	}
}

func TestSaveQuoteAssignsIDAndUpserts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(0), config.QuotesConfig{})

	saved, err := svc.SaveQuote(ctx, sampleQuote("first"), "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != "quote_id-001" {
		t.Fatalf("generated id: %s", saved.ID)
	}
	if saved.ItemCount != 1 || saved.SavedAt.IsZero() {
		t.Fatalf("denormalized fields: %+v", saved)
	}

	// Saving again with the same id replaces the entry in place.
	updated := sampleQuote("renamed")
	if _, err := svc.SaveQuote(ctx, updated, saved.ID); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	quotes, err := svc.ListSavedQuotes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quotes) != 1 || quotes[0].Name != "renamed" {
		t.Fatalf("upsert result: %+v", quotes)
	}
}

func TestSavedQuotesBoundFIFO(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(0), config.QuotesConfig{})

	for i := 0; i < 55; i++ {
		if _, err := svc.SaveQuote(ctx, sampleQuote(fmt.Sprintf("q%02d", i)), fmt.Sprintf("fixed-%02d", i)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	quotes, err := svc.ListSavedQuotes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quotes) != 50 {
		t.Fatalf("expected exactly 50 kept, got %d", len(quotes))
	}
	if quotes[0].ID != "fixed-05" || quotes[len(quotes)-1].ID != "fixed-54" {
		t.Fatalf("oldest entries must go first: first=%s last=%s", quotes[0].ID, quotes[len(quotes)-1].ID)
	}
}

func TestLoadAndDeleteSavedQuote(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(0), config.QuotesConfig{})

	saved, err := svc.SaveQuote(ctx, sampleQuote("keep"), "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := svc.LoadSavedQuote(ctx, saved.ID)
	if err != nil || got.Name != "keep" {
		t.Fatalf("load: %+v err=%v", got, err)
	}

	_, err = svc.LoadSavedQuote(ctx, "missing")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := svc.DeleteSavedQuote(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteSavedQuote(ctx, saved.ID); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
	if quotes, _ := svc.ListSavedQuotes(ctx); len(quotes) != 0 {
		t.Fatalf("quote survived delete: %+v", quotes)
	}
}

func TestHistoryNewestFirstAndBounded(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(0), config.QuotesConfig{MaxHistory: 5})

	for i := 0; i < 7; i++ {
		entry := types.HistoryEntry{
			QuoteName:  fmt.Sprintf("q%d", i),
			FinalPrice: decimal.NewFromInt(int64(100 + i)),
		}
		if err := svc.AppendHistory(ctx, entry); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	history, err := svc.ListHistory(ctx)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(history))
	}
	if history[0].QuoteName != "q6" || history[4].QuoteName != "q2" {
		t.Fatalf("newest-first order broken: %+v", history)
	}
	if history[0].ID == "" || history[0].CreatedAt.IsZero() {
		t.Fatalf("entry defaults not filled: %+v", history[0])
	}

	if err := svc.ClearHistory(ctx); err != nil {
		t.Fatalf("clear history: %v", err)
	}
	if history, _ := svc.ListHistory(ctx); len(history) != 0 {
		t.Fatal("history survived clear")
	}
}

func TestRecentSearches(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(0), config.QuotesConfig{MaxRecentSearches: 3})

	for _, term := range []string{"shampoo", "lotion", "shampoo", "  ", "mask", "serum"} {
		if err := svc.AddRecentSearch(ctx, term); err != nil {
			t.Fatalf("add %q: %v", term, err)
		}
	}

	searches, err := svc.RecentSearches(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"serum", "mask", "shampoo"}
	if len(searches) != len(want) {
		t.Fatalf("searches: %v", searches)
	}
	for i := range want {
		if searches[i] != want[i] {
			t.Fatalf("position %d: want %s, got %v", i, want[i], searches)
		}
	}

	if err := svc.ClearRecentSearches(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if searches, _ := svc.RecentSearches(ctx); len(searches) != 0 {
		t.Fatal("searches survived clear")
	}
}

func TestSettingsDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewMemoryStore(0), config.QuotesConfig{})

	filters, err := svc.Filters(ctx)
	if err != nil || filters.SortBy != "name" {
		t.Fatalf("default filters: %+v err=%v", filters, err)
	}

	prefs, err := svc.Preferences(ctx)
	if err != nil || !prefs.AutoSaveEnabled || prefs.DefaultPricingMode != "margin" {
		t.Fatalf("default prefs: %+v err=%v", prefs, err)
	}

	mode, err := svc.ViewMode(ctx)
	if err != nil || mode != "grid" {
		t.Fatalf("default view mode: %q err=%v", mode, err)
	}
	theme, err := svc.Theme(ctx)
	if err != nil || theme != "light" {
		t.Fatalf("default theme: %q err=%v", theme, err)
	}

	filters.SearchTerm = "mask"
	if err := svc.SaveFilters(ctx, filters); err != nil {
		t.Fatalf("save filters: %v", err)
	}
	got, _ := svc.Filters(ctx)
	if got.SearchTerm != "mask" {
		t.Fatalf("filters roundtrip: %+v", got)
	}

	if err := svc.SaveTheme(ctx, "dark"); err != nil {
		t.Fatalf("save theme: %v", err)
	}
	if theme, _ := svc.Theme(ctx); theme != "dark" {
		t.Fatalf("theme roundtrip: %q", theme)
	}
}

func TestCorruptRecordFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(0)
	svc := newTestService(t, store, config.QuotesConfig{})

	if err := store.Set(ctx, keyFilters, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	filters, err := svc.Filters(ctx)
	if err != nil {
		t.Fatalf("filters: %v", err)
	}
	if filters.SortBy != "name" {
		t.Fatalf("expected defaults, got %+v", filters)
	}
}

func TestQuotaRecoveryPrunesAndRetries(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryStore(0)
	store := &quotaStore{Store: inner}
	svc := newTestService(t, store, config.QuotesConfig{})

	for i := 0; i < 15; i++ {
		if _, err := svc.SaveQuote(ctx, sampleQuote(fmt.Sprintf("q%02d", i)), fmt.Sprintf("s-%02d", i)); err != nil {
			t.Fatalf("seed save %d: %v", i, err)
		}
	}
	for i := 0; i < 30; i++ {
		if err := svc.AppendHistory(ctx, types.HistoryEntry{QuoteName: fmt.Sprintf("h%02d", i)}); err != nil {
			t.Fatalf("seed history %d: %v", i, err)
		}
	}

	// The next write hits the quota once; the retry after pruning succeeds.
	store.failures = 1
	if err := svc.SaveDraft(ctx, sampleQuote("survives")); err != nil {
		t.Fatalf("save draft with recovery: %v", err)
	}

	quotes, _ := svc.ListSavedQuotes(ctx)
	if len(quotes) != 10 {
		t.Fatalf("saved quotes pruned to %d", len(quotes))
	}
	if quotes[0].ID != "s-05" {
		t.Fatalf("prune must drop the oldest first, got %s", quotes[0].ID)
	}
	history, _ := svc.ListHistory(ctx)
	if len(history) != 20 {
		t.Fatalf("history pruned to %d", len(history))
	}
	if history[0].QuoteName != "h29" {
		t.Fatalf("newest history entry must survive, got %s", history[0].QuoteName)
	}

	draft, ok, err := svc.LoadDraft(ctx)
	if err != nil || !ok || draft.Name != "survives" {
		t.Fatalf("draft after recovery: %+v ok=%v err=%v", draft, ok, err)
	}
}

func TestQuotaRecoveryGivesUpAfterOneRetry(t *testing.T) {
	ctx := context.Background()
	store := &quotaStore{Store: storage.NewMemoryStore(0), failures: 10}
	svc := newTestService(t, store, config.QuotesConfig{})

	err := svc.SaveDraft(ctx, sampleQuote("doomed"))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStorageFull {
		t.Fatalf("expected storage full, got %v", err)
	}
	if store.failures != 8 {
		t.Fatalf("expected exactly two attempts, %d failures left", store.failures)
	}
}

func TestNewServiceRequiresStore(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected an error without a store")
	}
}
