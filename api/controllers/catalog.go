package controllers

import (
	"net/http"
	"strings"

	"github.com/hazemadel/quotedesk-backend/api/responses"
	"github.com/hazemadel/quotedesk-backend/internal/catalog"
	"github.com/hazemadel/quotedesk-backend/internal/persistence"
	pkgerrors "github.com/hazemadel/quotedesk-backend/pkg/errors"
	"github.com/hazemadel/quotedesk-backend/pkg/logger"
	"github.com/hazemadel/quotedesk-backend/pkg/types"
)

// CatalogList filters and sorts the session catalog. The applied filters
// are persisted for continuity and non-empty search terms feed the
// recent-searches list, both best effort.
func CatalogList(store *catalog.Store, persist persistence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		query := catalog.Query{
			SearchTerm: strings.TrimSpace(r.URL.Query().Get("search")),
			Category:   strings.TrimSpace(r.URL.Query().Get("category")),
			SortBy:     strings.TrimSpace(r.URL.Query().Get("sort")),
		}

		products := store.Query(query)

		if persist != nil {
			filters := types.Filters{
				SearchTerm:       query.SearchTerm,
				SelectedCategory: query.Category,
				SortBy:           query.SortBy,
			}
			if filters.SortBy == "" {
				filters.SortBy = catalog.SortByName
			}
			if err := persist.SaveFilters(r.Context(), filters); err != nil {
				logg.Warn(r.Context(), "failed to persist filters")
			}
			if query.SearchTerm != "" {
				if err := persist.AddRecentSearch(r.Context(), query.SearchTerm); err != nil {
					logg.Warn(r.Context(), "failed to record recent search")
				}
			}
		}

		responses.WriteSuccess(w, map[string]any{
			"products": products,
			"total":    len(products),
		})
	}
}

// CatalogCategories returns the distinct product categories.
func CatalogCategories(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": store.Categories()})
	}
}
