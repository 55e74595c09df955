package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmoura/orderdraft-backend/api/controllers"
	"github.com/dmoura/orderdraft-backend/api/routes"
	"github.com/dmoura/orderdraft-backend/internal/barcode"
	"github.com/dmoura/orderdraft-backend/internal/draft"
	"github.com/dmoura/orderdraft-backend/internal/erp"
	"github.com/dmoura/orderdraft-backend/internal/lookup"
	"github.com/dmoura/orderdraft-backend/pkg/config"
	"github.com/dmoura/orderdraft-backend/pkg/db"
	"github.com/dmoura/orderdraft-backend/pkg/logger"
	"github.com/dmoura/orderdraft-backend/pkg/metrics"
	"github.com/dmoura/orderdraft-backend/pkg/migrate"
	"github.com/dmoura/orderdraft-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	erpClient, err := erp.NewClient(cfg.ERP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create erp client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewDraftMetrics(registry)

	draftService, err := draft.NewService(draft.NewRepository(dbClient.DB()), dbClient, erpClient, recorder, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create draft service", err)
		os.Exit(1)
	}

	lookupService, err := lookup.NewService(redisClient, erpClient, cfg.Lookup, recorder, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create lookup service", err)
		os.Exit(1)
	}

	barcodeService, err := barcode.NewService(redisClient, erpClient, cfg.Barcode, recorder, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create barcode service", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, readiness, registry, draftService, lookupService, barcodeService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
