package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazemadel/quotedesk-backend/api/controllers"
	"github.com/hazemadel/quotedesk-backend/api/middleware"
	"github.com/hazemadel/quotedesk-backend/internal/catalog"
	"github.com/hazemadel/quotedesk-backend/internal/persistence"
	"github.com/hazemadel/quotedesk-backend/internal/quote"
	"github.com/hazemadel/quotedesk-backend/pkg/config"
	"github.com/hazemadel/quotedesk-backend/pkg/logger"
	"github.com/hazemadel/quotedesk-backend/pkg/storage"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	Store        storage.Store
	Catalog      *catalog.Store
	QuoteManager *quote.Manager
	Persistence  persistence.Service
	Metrics      prometheus.Gatherer
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(p.Config.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.Store))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(p.Catalog, p.Persistence, p.Logger))
			r.Get("/categories", controllers.CatalogCategories(p.Catalog, p.Logger))
		})

		r.Route("/quote", func(r chi.Router) {
			r.Get("/", controllers.QuoteGet(p.QuoteManager, p.Logger))
			r.Delete("/", controllers.QuoteClear(p.QuoteManager, p.Logger))
			r.Put("/meta", controllers.QuoteSetMeta(p.QuoteManager, p.Logger))
			r.Get("/pricing", controllers.QuotePricing(p.QuoteManager, p.Logger))
			r.Get("/export", controllers.QuoteExport(p.QuoteManager, p.Logger))

			r.Post("/items", controllers.QuoteAddItem(p.QuoteManager, p.Catalog, p.Logger))
			r.Patch("/items/{productId}", controllers.QuoteUpdateItem(p.QuoteManager, p.Logger))
			r.Delete("/items/{productId}", controllers.QuoteRemoveItem(p.QuoteManager, p.Logger))

			r.Post("/subsidy/apply-max", controllers.QuoteApplyMaxSubsidy(p.QuoteManager, p.Logger))
			r.Post("/subsidy/clear", controllers.QuoteClearSubsidies(p.QuoteManager, p.Logger))
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/", controllers.SavedQuoteCreate(p.QuoteManager, p.Persistence, p.Logger))
			r.Get("/", controllers.SavedQuoteList(p.Persistence, p.Logger))
			r.Get("/{quoteId}", controllers.SavedQuoteGet(p.Persistence, p.Logger))
			r.Delete("/{quoteId}", controllers.SavedQuoteDelete(p.Persistence, p.Logger))
			r.Post("/{quoteId}/load", controllers.SavedQuoteLoad(p.QuoteManager, p.Persistence, p.Logger))
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", controllers.HistoryList(p.Persistence, p.Logger))
			r.Delete("/", controllers.HistoryClear(p.Persistence, p.Logger))
		})

		r.Route("/searches", func(r chi.Router) {
			r.Get("/", controllers.RecentSearchesGet(p.Persistence, p.Logger))
			r.Delete("/", controllers.RecentSearchesClear(p.Persistence, p.Logger))
		})

		r.Get("/preferences", controllers.PreferencesGet(p.Persistence, p.Logger))
		r.Put("/preferences", controllers.PreferencesPut(p.Persistence, p.Logger))
		r.Get("/filters", controllers.FiltersGet(p.Persistence, p.Logger))
		r.Put("/filters", controllers.FiltersPut(p.Persistence, p.Logger))
		r.Get("/view-mode", controllers.ViewModeGet(p.Persistence, p.Logger))
		r.Put("/view-mode", controllers.ViewModePut(p.Persistence, p.Logger))
		r.Get("/theme", controllers.ThemeGet(p.Persistence, p.Logger))
		r.Put("/theme", controllers.ThemePut(p.Persistence, p.Logger))
	})

	return r
}
