package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hazemadel/quotedesk-backend/api/routes"
	"github.com/hazemadel/quotedesk-backend/internal/catalog"
	"github.com/hazemadel/quotedesk-backend/internal/persistence"
	"github.com/hazemadel/quotedesk-backend/internal/quote"
	"github.com/hazemadel/quotedesk-backend/internal/subsidy"
	"github.com/hazemadel/quotedesk-backend/pkg/config"
	"github.com/hazemadel/quotedesk-backend/pkg/logger"
	"github.com/hazemadel/quotedesk-backend/pkg/metrics"
	"github.com/hazemadel/quotedesk-backend/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := storage.Open(context.Background(), cfg.Storage, cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to open storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	catalogStore, err := catalog.LoadCSVFile(cfg.Catalog.ProductsCSV)
	if err != nil {
		logg.Error(context.Background(), "failed to load product catalog", err)
		os.Exit(1)
	}

	table := subsidy.EmptyTable()
	if cfg.Catalog.SubsidyCSV != "" {
		table, err = subsidy.LoadCSVFile(cfg.Catalog.SubsidyCSV)
		if err != nil {
			logg.Error(context.Background(), "failed to load subsidy table", err)
			os.Exit(1)
		}
	}
	logg.Info(logg.WithFields(context.Background(), map[string]any{
		"products":       catalogStore.Len(),
		"subsidy_loaded": table.Loaded(),
		"subsidy_codes":  table.Len(),
	}), "catalog ready")

	persistenceMetrics := metrics.NewPersistenceMetrics(prometheus.DefaultRegisterer)

	persist, err := persistence.NewService(persistence.ServiceParams{
		Store:   store,
		Config:  cfg.Quotes,
		Metrics: persistenceMetrics,
		Logger:  logg.Base(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create persistence service", err)
		os.Exit(1)
	}

	manager, err := quote.NewManager(table, persist)
	if err != nil {
		logg.Error(context.Background(), "failed to create quote manager", err)
		os.Exit(1)
	}

	draft, ok, err := persist.LoadDraft(context.Background())
	if err != nil {
		logg.Warn(context.Background(), "could not restore draft quote, starting empty")
	} else if ok {
		manager.Restore(draft.Quote)
		logg.Info(logg.WithFields(context.Background(), map[string]any{
			"items":         len(draft.Items),
			"last_modified": draft.LastModified,
		}), "draft quote restored")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			Store:        store,
			Catalog:      catalogStore,
			QuoteManager: manager,
			Persistence:  persist,
			Metrics:      prometheus.DefaultGatherer,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
