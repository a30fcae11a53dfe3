package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-web/pkg/chessdto"
)

// HealthCheck is one dependency probe reported by /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func handleHealth(logger *zap.Logger, checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := chessdto.HealthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK

		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.Error("health_check_failed", zap.String("name", c.Name), zap.Error(err))
				resp.Checks[c.Name] = "error"
				resp.Status = "error"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}

		writeJSON(w, status, resp)
	}
}
