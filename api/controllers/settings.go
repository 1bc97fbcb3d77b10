package controllers

import (
	"net/http"

	"github.com/hazemadel/quotedesk-backend/api/responses"
	"github.com/hazemadel/quotedesk-backend/api/validators"
	"github.com/hazemadel/quotedesk-backend/internal/persistence"
	pkgerrors "github.com/hazemadel/quotedesk-backend/pkg/errors"
	"github.com/hazemadel/quotedesk-backend/pkg/logger"
	"github.com/hazemadel/quotedesk-backend/pkg/types"
)

func PreferencesGet(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		prefs, err := persist.Preferences(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

type preferencesRequest struct {
	ShowWelcomeMessage bool   `json:"show_welcome_message"`
	AutoSaveEnabled    bool   `json:"auto_save_enabled"`
	DefaultPricingMode string `json:"default_pricing_mode" validate:"omitempty,oneof=margin direct"`
	DefaultMargin      string `json:"default_margin" validate:"max=10"`
	CompanyName        string `json:"company_name" validate:"max=200"`
	CompanyPhone       string `json:"company_phone" validate:"max=50"`
	CompanyEmail       string `json:"company_email" validate:"omitempty,email,max=200"`
}

func PreferencesPut(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}

		var payload preferencesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs := types.Preferences{
			ShowWelcomeMessage: payload.ShowWelcomeMessage,
			AutoSaveEnabled:    payload.AutoSaveEnabled,
			DefaultPricingMode: payload.DefaultPricingMode,
			DefaultMargin:      payload.DefaultMargin,
			CompanyName:        payload.CompanyName,
			CompanyPhone:       payload.CompanyPhone,
			CompanyEmail:       payload.CompanyEmail,
		}
		if prefs.DefaultPricingMode == "" {
			prefs.DefaultPricingMode = "margin"
		}
		if err := persist.SavePreferences(r.Context(), prefs); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

func FiltersGet(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		filters, err := persist.Filters(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, filters)
	}
}

type filtersRequest struct {
	SearchTerm       string `json:"search_term" validate:"max=200"`
	SelectedCategory string `json:"selected_category" validate:"max=200"`
	SortBy           string `json:"sort_by" validate:"omitempty,oneof=name price_asc price_desc cost_asc cost_desc margin_desc"`
}

func FiltersPut(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}

		var payload filtersRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := types.Filters{
			SearchTerm:       payload.SearchTerm,
			SelectedCategory: payload.SelectedCategory,
			SortBy:           payload.SortBy,
		}
		if filters.SortBy == "" {
			filters.SortBy = "name"
		}
		if err := persist.SaveFilters(r.Context(), filters); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, filters)
	}
}

func HistoryList(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := persist.ListHistory(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if history == nil {
			history = []types.HistoryEntry{}
		}
		// Entries are newest-first, so a limit keeps the most recent.
		if limit > 0 && len(history) > limit {
			history = history[:limit]
		}
		responses.WriteSuccess(w, map[string]any{
			"history": history,
			"total":   len(history),
		})
	}
}

func HistoryClear(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		if err := persist.ClearHistory(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func RecentSearchesGet(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		searches, err := persist.RecentSearches(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if searches == nil {
			searches = []string{}
		}
		responses.WriteSuccess(w, map[string]any{"searches": searches})
	}
}

func RecentSearchesClear(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		if err := persist.ClearRecentSearches(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

type viewModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=grid list"`
}

func ViewModeGet(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		mode, err := persist.ViewMode(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"mode": mode})
	}
}

func ViewModePut(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		var payload viewModeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := persist.SaveViewMode(r.Context(), payload.Mode); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"mode": payload.Mode})
	}
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

func ThemeGet(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		theme, err := persist.Theme(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"theme": theme})
	}
}

func ThemePut(persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if persist == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "persistence unavailable"))
			return
		}
		var payload themeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := persist.SaveTheme(r.Context(), payload.Theme); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"theme": payload.Theme})
	}
}
