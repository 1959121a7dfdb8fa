package api

import (
	"context"
	"net/http"

	consoleapi "github.com/futig/career-console/internal/api/consoles"
	"github.com/futig/career-console/internal/api/docs"
	"github.com/futig/career-console/internal/api/middleware"
	"github.com/futig/career-console/internal/config"
	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// HealthChecker reports the status of the career API
type HealthChecker interface {
	Health(ctx context.Context) (*entity.HealthResponse, error)
}

type healthResponse struct {
	Status   string                 `json:"status"`
	Consoles int                    `json:"consoles"`
	Gateway  *entity.HealthResponse `json:"gateway"`
	Error    string                 `json:"error,omitempty"`
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	consoleHandler *consoleapi.Handler,
	health HealthChecker,
	consoles func() int,
	cfg config.ConsoleConfig,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack; the request timeout is applied per route group
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", healthHandler(health, consoles))

	docs.RegisterRoutes(r)
	consoleapi.RegisterRoutes(r, consoleHandler, cfg.RequestTimeout)

	return r
}

// healthHandler always answers 200; an unreachable career API shows as offline
func healthHandler(health HealthChecker, consoles func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "healthy", Consoles: consoles()}

		gw, err := health.Health(r.Context())
		if err != nil {
			ctxzap.Warn(r.Context(), "career API health check failed", zap.Error(err))
			resp.Gateway = &entity.HealthResponse{Status: "offline"}
			resp.Error = entity.RawMessage(err)
		} else {
			resp.Gateway = gw
		}

		response.Success(w, resp)
	}
}
