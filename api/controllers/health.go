package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/gymstackhq/gymstack-backend/api/responses"
	"github.com/gymstackhq/gymstack-backend/pkg/config"
	"github.com/gymstackhq/gymstack-backend/pkg/db"
	pkgerrors "github.com/gymstackhq/gymstack-backend/pkg/errors"
	"github.com/gymstackhq/gymstack-backend/pkg/logger"
	"github.com/gymstackhq/gymstack-backend/pkg/redis"
)

const readinessTimeout = 3 * time.Second

// HealthLive answers as soon as the process is serving.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GymStack-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks both backing stores and aggregates any failures so
// one probe surfaces everything that is down.
func HealthReady(cfg *config.Config, database *db.Client, cache *redis.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GymStack-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var errs error
		if database != nil {
			if err := database.Ping(ctx); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("database: %w", err))
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("redis: %w", err))
			}
		}

		if errs != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependencies unavailable"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
