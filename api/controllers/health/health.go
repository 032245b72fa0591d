package health

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/gobacks-backend/api/responses"
	"github.com/angelmondragon/gobacks-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/gobacks-backend/pkg/errors"
	"github.com/angelmondragon/gobacks-backend/pkg/logger"
)

const (
	envHeader    = "X-Gobacks-Env"
	probeTimeout = 2 * time.Second
)

// Pinger is implemented by the database and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, Status{Status: "live"})
	}
}

// HealthReady pings the database and, when configured, redis. A nil redis
// pinger is reported as disabled rather than failing readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		checks := map[string]string{}
		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnavailable, "database not configured"))
			return
		}
		if err := dbP.Ping(ctx); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "database ping failed"))
			return
		}
		checks["database"] = "ok"

		if redisP == nil {
			checks["redis"] = "disabled"
		} else if err := redisP.Ping(ctx); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "redis ping failed"))
			return
		} else {
			checks["redis"] = "ok"
		}

		responses.WriteSuccess(w, Status{Status: "ready", Checks: checks})
	}
}
