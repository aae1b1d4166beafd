package controllers

import (
	"context"
	"net/http"

	"github.com/oybekm/stockyard-backend/api/responses"
	"github.com/oybekm/stockyard-backend/pkg/config"
	pkgerrors "github.com/oybekm/stockyard-backend/pkg/errors"
	"github.com/oybekm/stockyard-backend/pkg/logger"
)

const envHeader = "X-Stockyard-Env"

// Pinger is implemented by infrastructure clients that can answer a health
// probe.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every wired dependency answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				healthy = false
				checks[name] = "down"
				ctx := logg.WithField(r.Context(), "dependency", name)
				logg.Error(ctx, "health.dependency_down", err)
				continue
			}
			checks[name] = "up"
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
