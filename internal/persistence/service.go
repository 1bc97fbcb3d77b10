// Package persistence mirrors the working quote and its surrounding
// settings into durable storage. Writes are best effort: on a quota
// failure the service prunes old saved quotes and history, retries once,
// and only then reports the failure. The in-memory state of the callers is
// never touched.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/hazemadel/quotedesk-backend/pkg/config"
	pkgerrors "github.com/hazemadel/quotedesk-backend/pkg/errors"
	"github.com/hazemadel/quotedesk-backend/pkg/metrics"
	"github.com/hazemadel/quotedesk-backend/pkg/storage"
	"github.com/hazemadel/quotedesk-backend/pkg/types"
)

// ServiceParams groups dependencies for the persistence service.
type ServiceParams struct {
	Store   storage.Store
	Config  config.QuotesConfig
	Metrics *metrics.PersistenceMetrics
	Logger  zerolog.Logger
}

// Service is the durable side of the quote workflow: the auto-saved draft,
// the bounded saved-quotes collection, the history feed and the session
// settings.
type Service interface {
	SaveDraft(ctx context.Context, quote types.Quote) error
	LoadDraft(ctx context.Context) (types.Draft, bool, error)
	ClearDraft(ctx context.Context) error

	SaveQuote(ctx context.Context, quote types.Quote, id string) (types.SavedQuote, error)
	ListSavedQuotes(ctx context.Context) ([]types.SavedQuote, error)
	LoadSavedQuote(ctx context.Context, id string) (types.SavedQuote, error)
	DeleteSavedQuote(ctx context.Context, id string) error

	AppendHistory(ctx context.Context, entry types.HistoryEntry) error
	ListHistory(ctx context.Context) ([]types.HistoryEntry, error)
	ClearHistory(ctx context.Context) error

	Filters(ctx context.Context) (types.Filters, error)
	SaveFilters(ctx context.Context, filters types.Filters) error
	Preferences(ctx context.Context) (types.Preferences, error)
	SavePreferences(ctx context.Context, prefs types.Preferences) error
	ViewMode(ctx context.Context) (string, error)
	SaveViewMode(ctx context.Context, mode string) error
	Theme(ctx context.Context) (string, error)
	SaveTheme(ctx context.Context, theme string) error

	AddRecentSearch(ctx context.Context, term string) error
	RecentSearches(ctx context.Context) ([]string, error)
	ClearRecentSearches(ctx context.Context) error
}

type service struct {
	store   storage.Store
	cfg     config.QuotesConfig
	metrics *metrics.PersistenceMetrics
	logg    zerolog.Logger
	now     func() time.Time
	newID   func() string
}

// NewService builds the persistence service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage is required")
	}
	return &service{
		store:   params.Store,
		cfg:     params.Config,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}, nil
}

// SaveDraft overwrites the auto-saved working quote.
func (s *service) SaveDraft(ctx context.Context, quote types.Quote) error {
	draft := types.Draft{Quote: quote, LastModified: s.now().UTC()}
	return s.writeJSON(ctx, keyCurrentQuote, draft)
}

// LoadDraft returns the persisted draft; the second result is false when
// no draft exists.
func (s *service) LoadDraft(ctx context.Context) (types.Draft, bool, error) {
	var draft types.Draft
	ok, err := s.readJSON(ctx, keyCurrentQuote, &draft)
	return draft, ok, err
}

// ClearDraft removes the persisted draft.
func (s *service) ClearDraft(ctx context.Context) error {
	return s.store.Remove(ctx, keyCurrentQuote)
}

// SaveQuote upserts a snapshot into the saved collection. An empty id gets
// a generated one; the collection is truncated oldest-first to the
// configured bound before persisting.
func (s *service) SaveQuote(ctx context.Context, quote types.Quote, id string) (types.SavedQuote, error) {
	saved := types.SavedQuote{
		ID:        id,
		Quote:     quote,
		ItemCount: len(quote.Items),
		SavedAt:   s.now().UTC(),
	}
	if saved.ID == "" {
		saved.ID = "quote_" + s.newID()
	}

	quotes, err := s.loadSavedQuotes(ctx)
	if err != nil {
		return types.SavedQuote{}, err
	}

	replaced := false
	for i := range quotes {
		if quotes[i].ID == saved.ID {
			quotes[i] = saved
			replaced = true
			break
		}
	}
	if !replaced {
		quotes = append(quotes, saved)
	}

	if max := s.maxSaved(); len(quotes) > max {
		quotes = quotes[len(quotes)-max:]
	}

	if err := s.writeJSON(ctx, keySavedQuotes, quotes); err != nil {
		return types.SavedQuote{}, err
	}
	return saved, nil
}

// ListSavedQuotes returns the saved collection in storage order.
func (s *service) ListSavedQuotes(ctx context.Context) ([]types.SavedQuote, error) {
	return s.loadSavedQuotes(ctx)
}

// LoadSavedQuote finds a saved quote by id without mutating the list.
func (s *service) LoadSavedQuote(ctx context.Context, id string) (types.SavedQuote, error) {
	quotes, err := s.loadSavedQuotes(ctx)
	if err != nil {
		return types.SavedQuote{}, err
	}
	for _, q := range quotes {
		if q.ID == id {
			return q, nil
		}
	}
	return types.SavedQuote{}, pkgerrors.New(pkgerrors.CodeNotFound, "saved quote not found")
}

// DeleteSavedQuote removes a saved quote by id. Deleting an absent id is
// not an error.
func (s *service) DeleteSavedQuote(ctx context.Context, id string) error {
	quotes, err := s.loadSavedQuotes(ctx)
	if err != nil {
		return err
	}
	kept := quotes[:0]
	for _, q := range quotes {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(quotes) {
		return nil
	}
	return s.writeJSON(ctx, keySavedQuotes, kept)
}

// AppendHistory prepends an entry to the history feed, bounded to the
// configured maximum.
func (s *service) AppendHistory(ctx context.Context, entry types.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = "history_" + s.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}

	history, err := s.loadHistory(ctx)
	if err != nil {
		return err
	}
	history = append([]types.HistoryEntry{entry}, history...)
	if max := s.maxHistory(); len(history) > max {
		history = history[:max]
	}
	return s.writeJSON(ctx, keyQuoteHistory, history)
}

// ListHistory returns the history feed, newest first.
func (s *service) ListHistory(ctx context.Context) ([]types.HistoryEntry, error) {
	return s.loadHistory(ctx)
}

// ClearHistory removes the whole feed.
func (s *service) ClearHistory(ctx context.Context) error {
	return s.store.Remove(ctx, keyQuoteHistory)
}

// Filters returns the last-used filter state, defaults when unset.
func (s *service) Filters(ctx context.Context) (types.Filters, error) {
	filters := types.DefaultFilters()
	if _, err := s.readJSON(ctx, keyFilters, &filters); err != nil {
		return types.DefaultFilters(), err
	}
	return filters, nil
}

func (s *service) SaveFilters(ctx context.Context, filters types.Filters) error {
	return s.writeJSON(ctx, keyFilters, filters)
}

// Preferences returns the stored preferences, defaults when unset.
func (s *service) Preferences(ctx context.Context) (types.Preferences, error) {
	prefs := types.DefaultPreferences()
	if _, err := s.readJSON(ctx, keyPreferences, &prefs); err != nil {
		return types.DefaultPreferences(), err
	}
	return prefs, nil
}

func (s *service) SavePreferences(ctx context.Context, prefs types.Preferences) error {
	return s.writeJSON(ctx, keyPreferences, prefs)
}

func (s *service) ViewMode(ctx context.Context) (string, error) {
	return s.readString(ctx, keyViewMode, "grid")
}

func (s *service) SaveViewMode(ctx context.Context, mode string) error {
	return s.writeJSON(ctx, keyViewMode, mode)
}

func (s *service) Theme(ctx context.Context) (string, error) {
	return s.readString(ctx, keyTheme, "light")
}

func (s *service) SaveTheme(ctx context.Context, theme string) error {
	return s.writeJSON(ctx, keyTheme, theme)
}

// AddRecentSearch records a search term, de-duplicated and most recent
// first, bounded to the configured maximum. Blank terms are ignored.
func (s *service) AddRecentSearch(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	var searches []string
	if _, err := s.readJSON(ctx, keyRecentSearches, &searches); err != nil {
		return err
	}

	kept := make([]string, 0, len(searches)+1)
	kept = append(kept, term)
	for _, existing := range searches {
		if existing != term {
			kept = append(kept, existing)
		}
	}
	if max := s.maxRecentSearches(); len(kept) > max {
		kept = kept[:max]
	}
	return s.writeJSON(ctx, keyRecentSearches, kept)
}

func (s *service) RecentSearches(ctx context.Context) ([]string, error) {
	var searches []string
	if _, err := s.readJSON(ctx, keyRecentSearches, &searches); err != nil {
		return nil, err
	}
	return searches, nil
}

func (s *service) ClearRecentSearches(ctx context.Context) error {
	return s.store.Remove(ctx, keyRecentSearches)
}

func (s *service) loadSavedQuotes(ctx context.Context) ([]types.SavedQuote, error) {
	var quotes []types.SavedQuote
	if _, err := s.readJSON(ctx, keySavedQuotes, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

func (s *service) loadHistory(ctx context.Context) ([]types.HistoryEntry, error) {
	var history []types.HistoryEntry
	if _, err := s.readJSON(ctx, keyQuoteHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *service) readString(ctx context.Context, key, fallback string) (string, error) {
	value := fallback
	if _, err := s.readJSON(ctx, key, &value); err != nil {
		return fallback, err
	}
	return value, nil
}

// readJSON unmarshals a key into out. A missing key leaves out untouched
// and reports false. Corrupt payloads are dropped rather than surfaced, so
// one bad record cannot wedge the session.
func (s *service) readJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logg.Warn().Err(err).Str("key", key).Msg("dropping corrupt record")
		return false, nil
	}
	return true, nil
}

// writeJSON persists a key. On a quota failure it prunes old data and
// retries exactly once.
func (s *service) writeJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		s.metrics.IncFailure(key)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+key)
	}

	start := s.now()
	err = s.store.Set(ctx, key, raw)
	if storage.IsQuotaExceeded(err) {
		s.logg.Warn().Str("key", key).Msg("storage quota exceeded, pruning old data")
		if pruneErr := s.pruneOldData(ctx); pruneErr != nil {
			s.logg.Warn().Err(pruneErr).Msg("prune incomplete")
		}
		s.metrics.IncPrune()
		err = s.store.Set(ctx, key, raw)
	}
	if err != nil {
		s.metrics.IncFailure(key)
		return pkgerrors.Wrap(pkgerrors.CodeStorageFull, err, "persist "+key)
	}

	s.metrics.IncWrite(key)
	s.metrics.ObserveWrite(key, s.now().Sub(start))
	return nil
}

// pruneOldData shrinks the two growable collections: saved quotes beyond
// the prune threshold and history beyond its own. Errors are collected so
// one failure does not stop the other prune.
func (s *service) pruneOldData(ctx context.Context) error {
	var errs error

	quotes, err := s.loadSavedQuotes(ctx)
	if err == nil && len(quotes) > s.pruneSavedTo() {
		quotes = quotes[len(quotes)-s.pruneSavedTo():]
		if raw, mErr := json.Marshal(quotes); mErr == nil {
			errs = multierr.Append(errs, s.store.Set(ctx, keySavedQuotes, raw))
		}
	} else if err != nil {
		errs = multierr.Append(errs, err)
	}

	history, err := s.loadHistory(ctx)
	if err == nil && len(history) > s.pruneHistoryTo() {
		history = history[:s.pruneHistoryTo()]
		if raw, mErr := json.Marshal(history); mErr == nil {
			errs = multierr.Append(errs, s.store.Set(ctx, keyQuoteHistory, raw))
		}
	} else if err != nil {
		errs = multierr.Append(errs, err)
	}

	return errs
}

func (s *service) maxSaved() int {
	if s.cfg.MaxSaved > 0 {
		return s.cfg.MaxSaved
	}
	return 50
}

func (s *service) maxHistory() int {
	if s.cfg.MaxHistory > 0 {
		return s.cfg.MaxHistory
	}
	return 100
}

func (s *service) maxRecentSearches() int {
	if s.cfg.MaxRecentSearches > 0 {
		return s.cfg.MaxRecentSearches
	}
	return 10
}

func (s *service) pruneSavedTo() int {
	if s.cfg.PruneSavedTo > 0 {
		return s.cfg.PruneSavedTo
	}
	return 10
}

func (s *service) pruneHistoryTo() int {
	if s.cfg.PruneHistoryTo > 0 {
		return s.cfg.PruneHistoryTo
	}
	return 20
}
