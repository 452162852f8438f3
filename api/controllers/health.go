package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/arbrepalabres/backend/api/responses"
	"github.com/arbrepalabres/backend/pkg/config"
	"github.com/arbrepalabres/backend/pkg/logger"
)

const readyProbeTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Palabres-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes every backing dependency. A nil pinger means the
// dependency is not wired in this deployment and is skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, pubsubP pinger) http.HandlerFunc {
	probes := map[string]pinger{
		"db":     dbP,
		"redis":  redisP,
		"pubsub": pubsubP,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Palabres-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		defer cancel()

		status := map[string]string{}
		healthy := true
		for name, probe := range probes {
			if probe == nil {
				continue
			}
			if err := probe.Ping(ctx); err != nil {
				healthy = false
				status[name] = "down"
				if logg != nil {
					logg.Error(ctx, "health.probe.failed: "+name, err)
				}
				continue
			}
			status[name] = "up"
		}

		if !healthy {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, status)
			return
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
