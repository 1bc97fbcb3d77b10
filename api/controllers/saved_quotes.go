package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hazemadel/quotedesk-backend/api/responses"
	"github.com/hazemadel/quotedesk-backend/api/validators"
	"github.com/hazemadel/quotedesk-backend/internal/persistence"
	"github.com/hazemadel/quotedesk-backend/internal/pricing"
	"github.com/hazemadel/quotedesk-backend/internal/quote"
	pkgerrors "github.com/hazemadel/quotedesk-backend/pkg/errors"
	"github.com/hazemadel/quotedesk-backend/pkg/logger"
	"github.com/hazemadel/quotedesk-backend/pkg/types"
)

type saveQuoteRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// SavedQuoteCreate snapshots the current draft into the saved collection
// and records a history entry. The history price follows the session's
// default pricing preference.
func SavedQuoteCreate(mgr *quote.Manager, persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil || persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote services unavailable"))
			return
		}

		var payload saveQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot := mgr.Snapshot()
		if len(snapshot.Items) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "the quote is empty"))
			return
		}
		if payload.Name != "" {
			snapshot.Name = payload.Name
		}

		saved, err := persist.SaveQuote(r.Context(), snapshot, "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry := types.HistoryEntry{
			QuoteName:  saved.Name,
			Customer:   saved.Customer,
			TotalItems: saved.ItemCount,
			FinalPrice: defaultFinalPrice(r, persist, snapshot.Items),
		}
		if err := persist.AppendHistory(r.Context(), entry); err != nil {
			logg.Warn(r.Context(), "failed to record quote history")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, saved)
	}
}

// SavedQuoteList returns the bounded saved collection in storage order.
func SavedQuoteList(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		quotes, err := persist.ListSavedQuotes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if quotes == nil {
			quotes = []types.SavedQuote{}
		}
		responses.WriteSuccess(w, map[string]any{
			"quotes": quotes,
			"total":  len(quotes),
		})
	}
}

// SavedQuoteGet returns one saved quote without touching the collection.
func SavedQuoteGet(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		saved, err := persist.LoadSavedQuote(r.Context(), chi.URLParam(r, "quoteId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saved)
	}
}

// SavedQuoteDelete removes a saved quote. Deleting twice succeeds.
func SavedQuoteDelete(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		if err := persist.DeleteSavedQuote(r.Context(), chi.URLParam(r, "quoteId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SavedQuoteLoad replaces the working draft with a saved quote.
func SavedQuoteLoad(mgr *quote.Manager, persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil || persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote services unavailable"))
			return
		}

		saved, err := persist.LoadSavedQuote(r.Context(), chi.URLParam(r, "quoteId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := mgr.Load(r.Context(), saved.Quote); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshotResponse(mgr))
	}
}

// defaultFinalPrice prices the items with the stored preferences: margin
// mode with a configured default margin when set, the catalog price
// otherwise.
func defaultFinalPrice(r *http.Request, persist persistence.Service, items []types.QuoteLineItem) decimal.Decimal {
	stats := pricing.QuoteStats(items)

	prefs, err := persist.Preferences(r.Context())
	if err != nil || prefs.DefaultPricingMode != "margin" || prefs.DefaultMargin == "" {
		return stats.TotalPrice
	}
	margin, err := decimal.NewFromString(prefs.DefaultMargin)
	if err != nil {
		return stats.TotalPrice
	}
	return pricing.ResolveFinalPrice(stats, pricing.ModeMargin, margin).FinalPrice
}
