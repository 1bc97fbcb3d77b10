package controllers

import (
	"errors"
	"net/http"

	"github.com/hazemadel/quotedesk-backend/api/responses"
	"github.com/hazemadel/quotedesk-backend/pkg/config"
	pkgerrors "github.com/hazemadel/quotedesk-backend/pkg/errors"
	"github.com/hazemadel/quotedesk-backend/pkg/logger"
	"github.com/hazemadel/quotedesk-backend/pkg/storage"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuoteDesk-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the storage driver with a read. A missing probe key is
// a healthy answer; anything else marks the store unreachable.
func HealthReady(cfg *config.Config, logg *logger.Logger, store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-QuoteDesk-Env", cfg.App.Env)

		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "storage not configured"))
			return
		}
		if _, err := store.Get(r.Context(), "health_probe"); err != nil && !errors.Is(err, storage.ErrNotFound) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage unreachable"))
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"status":  "ready",
			"storage": cfg.Storage.Driver,
		})
	}
}
