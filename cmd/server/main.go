package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"organic-be/internal/config"
	"organic-be/internal/db"
	"organic-be/internal/logger"
	"organic-be/internal/payment"
	"organic-be/internal/server"
	"organic-be/internal/storage"

	"go.uber.org/zap"
)

const shutdownTimeout = 20 * time.Second

var (
	initDBFunc  = db.InitDB
	newDiskFunc = storage.New
	listenFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg)
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests before closing the database.
func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.L()

	database := initDBFunc(cfg)
	defer database.Close()

	disk, err := newDiskFunc(ctx, cfg)
	if err != nil {
		return err
	}

	gateway := payment.NewSSLCommerzGateway(payment.SSLCommerzOptions{
		StoreID:       cfg.SSLCommerzStoreID,
		StorePassword: cfg.SSLCommerzStorePassword,
		IsLive:        cfg.SSLCommerzIsLive,
		Timeout:       cfg.GatewayTimeout,
	})

	srv := server.New(ctx, server.Deps{
		Config:  cfg,
		DB:      database,
		Disk:    disk,
		Gateway: gateway,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- listenFunc(srv)
	}()

	log.Info("server running",
		zap.String("addr", srv.Addr),
		zap.String("env", cfg.AppEnv),
		zap.String("storage", cfg.StorageDisk),
		zap.Bool("sslcommerz_live", cfg.SSLCommerzIsLive),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	log.Info("server stopped")
	return nil
}
