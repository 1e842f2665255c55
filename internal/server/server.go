// Package server assembles the HTTP router from the domain handlers.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"organic-be/internal/config"
	"organic-be/internal/logger"
	"organic-be/internal/metrics"
	"organic-be/internal/middleware"
	"organic-be/internal/order"
	"organic-be/internal/payment"
	"organic-be/internal/payment/webhook"
	"organic-be/internal/product"
	"organic-be/internal/storage"
	"organic-be/internal/user"
	"organic-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

type Deps struct {
	Config  *config.Config
	DB      *sql.DB
	Disk    storage.Disk
	Gateway payment.Gateway
}

// NewRouter wires repositories, services and handlers onto one chi router.
// ctx bounds background work such as rate limiter cleanup.
func NewRouter(ctx context.Context, d Deps) http.Handler {
	cfg := d.Config

	userSvc := user.NewService(user.NewRepository(d.DB))
	productSvc := product.NewService(product.NewRepository(d.DB), d.Disk)
	orderSvc := order.NewService(order.NewRepository(d.DB), d.Gateway, order.Options{
		ServerURL:      cfg.ServerURL,
		GatewayTimeout: cfg.GatewayTimeout,
	})

	limiter := middleware.NewRateLimiter(ctx)

	r := chi.NewRouter()
	r.Use(
		logger.RequestIDMiddleware,
		middleware.Recovery,
		middleware.Logging,
		metrics.Middleware,
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.Auth(cfg.JWTSecret),
		limiter.Middleware,
	)

	r.Get("/health", healthHandler(d.DB))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	user.NewHandler(userSvc).Routes(r)
	product.NewHandler(productSvc).Routes(r)
	order.NewHandler(orderSvc).Routes(r)
	webhook.NewWebhookHandler(orderSvc, d.Gateway, payment.NewRepository(d.DB), cfg.ClientURL).Routes(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, "Not Found", http.StatusNotFound)
	})

	return r
}

// New returns an http.Server for the router with conservative timeouts.
func New(ctx context.Context, d Deps) *http.Server {
	return &http.Server{
		Addr:              ":" + d.Config.AppPort,
		Handler:           NewRouter(ctx, d),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      d.Config.GatewayTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.FromCtx(r.Context()).Error("health check failed", zap.Error(err))
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "DOWN"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	}
}
