package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hazemadel/quotedesk-backend/api/responses"
	"github.com/hazemadel/quotedesk-backend/api/validators"
	"github.com/hazemadel/quotedesk-backend/internal/catalog"
	"github.com/hazemadel/quotedesk-backend/internal/export"
	"github.com/hazemadel/quotedesk-backend/internal/pricing"
	"github.com/hazemadel/quotedesk-backend/internal/quote"
	pkgerrors "github.com/hazemadel/quotedesk-backend/pkg/errors"
	"github.com/hazemadel/quotedesk-backend/pkg/logger"
	"github.com/hazemadel/quotedesk-backend/pkg/types"
)

type quoteResponse struct {
	Quote          types.Quote          `json:"quote"`
	Stats          types.QuoteStats     `json:"stats"`
	SubsidySummary types.SubsidySummary `json:"subsidy_summary"`
}

func snapshotResponse(mgr *quote.Manager) quoteResponse {
	return quoteResponse{
		Quote:          mgr.Snapshot(),
		Stats:          mgr.Stats(),
		SubsidySummary: mgr.SubsidySummary(),
	}
}

// QuoteGet returns the working draft with its derived figures.
func QuoteGet(mgr *quote.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote manager unavailable"))
			return
		}
		responses.WriteSuccess(w, snapshotResponse(mgr))
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Code      string `json:"code"`
	Quantity  int    `json:"quantity" validate:"min=0,max=100000"`
}

// QuoteAddItem adds a catalog product to the draft by id or code.
func QuoteAddItem(mgr *quote.Manager, store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil || store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote manager unavailable"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.ProductID == "" && payload.Code == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "product_id or code is required"))
			return
		}

		product, ok := store.ByID(payload.ProductID)
		if !ok {
			product, ok = store.ByCode(payload.Code)
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		if err := mgr.AddLine(r.Context(), product, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, snapshotResponse(mgr))
	}
}

type updateItemRequest struct {
	Quantity          *int             `json:"quantity" validate:"omitempty,min=0,max=100000"`
	SubsidyPercentage *decimal.Decimal `json:"subsidy_percentage"`
}

// QuoteUpdateItem patches a line's quantity or subsidy percentage. A
// quantity of zero removes the line.
func QuoteUpdateItem(mgr *quote.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote manager unavailable"))
			return
		}

		productID := chi.URLParam(r, "productId")
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == nil && payload.SubsidyPercentage == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "quantity or subsidy_percentage is required"))
			return
		}

		if payload.Quantity != nil {
			if err := mgr.SetQuantity(r.Context(), productID, *payload.Quantity); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if payload.SubsidyPercentage != nil {
			if err := mgr.SetSubsidyPercentage(r.Context(), productID, *payload.SubsidyPercentage); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, snapshotResponse(mgr))
	}
}

// QuoteRemoveItem deletes a line. Removing an absent line still succeeds.
func QuoteRemoveItem(mgr *quote.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote manager unavailable"))
			return
		}
		if err := mgr.RemoveLine(r.Context(), chi.URLParam(r, "productId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshotResponse(mgr))
	}
}

// QuoteApplyMaxSubsidy drives every subsidizable line to the full subsidy.
func QuoteApplyMaxSubsidy(mgr *quote.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote manager unavailable"))
			return
		}
		if err := mgr.ApplyMaxSubsidy(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshotResponse(mgr))
	}
}

// QuoteClearSubsidies removes the subsidy from every line.
func QuoteClearSubsidies(mgr *quote.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote manager unavailable"))
			return
		}
		if err := mgr.ClearSubsidies(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshotResponse(mgr))
	}
}

type quoteMetaRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Customer string `json:"customer" validate:"max=200"`
}

// QuoteSetMeta sets the draft's name and customer labels.
func QuoteSetMeta(mgr *quote.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote manager unavailable"))
			return
		}

		var payload quoteMetaRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := mgr.Rename(r.Context(), payload.Name); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := mgr.SetCustomer(r.Context(), payload.Customer); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshotResponse(mgr))
	}
}

// QuoteClear empties the draft.
func QuoteClear(mgr *quote.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote manager unavailable"))
			return
		}
		if err := mgr.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshotResponse(mgr))
	}
}

// QuotePricing resolves the final price for the draft under the requested
// pricing mode.
func QuotePricing(mgr *quote.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote manager unavailable"))
			return
		}

		mode, value, err := pricingParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats := mgr.Stats()
		result := pricing.ResolveFinalPrice(stats, mode, value)
		responses.WriteSuccess(w, map[string]any{
			"stats":   stats,
			"pricing": result,
		})
	}
}

// QuoteExport streams the draft as a CSV download.
func QuoteExport(mgr *quote.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote manager unavailable"))
			return
		}

		mode, value, err := pricingParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot := mgr.Snapshot()
		stats := pricing.QuoteStats(snapshot.Items)
		result := pricing.ResolveFinalPrice(stats, mode, value)

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
		if err := export.WriteCSV(w, snapshot, stats, result); err != nil {
			logg.Error(r.Context(), "export.write_failed", err)
		}
	}
}

// pricingParams reads mode, margin and price query parameters. An absent
// mode falls back to the catalog price path inside the engine.
func pricingParams(r *http.Request) (string, decimal.Decimal, error) {
	mode := strings.TrimSpace(r.URL.Query().Get("mode"))
	switch mode {
	case "", pricing.ModeMargin, pricing.ModeDirect:
	default:
		return "", decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "mode must be margin or direct").
			WithDetails(map[string]any{"field": "mode"})
	}

	margin, hasMargin, err := validators.ParseQueryDecimal(r, "margin", decimal.Zero)
	if err != nil {
		return "", decimal.Zero, err
	}
	price, hasPrice, err := validators.ParseQueryDecimal(r, "price", decimal.Zero)
	if err != nil {
		return "", decimal.Zero, err
	}

	switch mode {
	case pricing.ModeMargin:
		if !hasMargin {
			return "", decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "margin is required for margin mode")
		}
		return mode, margin, nil
	case pricing.ModeDirect:
		if !hasPrice {
			return "", decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price is required for direct mode")
		}
		return mode, price, nil
	}
	return "", decimal.Zero, nil
}
