// Package main is the entry point for the billing reports API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/config"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/auth"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reference"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reports"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/infrastructure/cache"
	v1 "github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/infrastructure/http/v1"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/infrastructure/http/v1/handlers"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/infrastructure/metrics"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/infrastructure/storage/mongo"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/infrastructure/storage/postgres"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting billing reports server", "env", cfg.Env)

	// --- CRM document store ---
	mongoCfg := mongo.DefaultClientConfig(cfg.MongoURI, cfg.MongoDatabase)
	mongoCfg.MaxPoolSize = cfg.MongoMaxPoolSize
	crm, err := mongo.Connect(ctx, mongoCfg)
	if err != nil {
		log.Fatalw("failed to connect to mongo", "error", err)
	}
	defer func() {
		if err := crm.Close(context.Background()); err != nil {
			log.Warnw("mongo disconnect failed", "error", err)
		}
	}()

	checks := map[string]handlers.Pinger{"mongo": crm}

	// --- MTV store (optional) ---
	var mtv reports.MTVRepository
	if cfg.MTVDatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.MTVDatabaseURL))
		if err != nil {
			log.Fatalw("failed to connect to mtv database", "error", err)
		}
		defer pool.Close()

		txOpts := postgres.DefaultTxOptions()
		txOpts.StatementTimeout = cfg.MTVStatementTimeout
		mtv = postgres.NewMTVRepo(postgres.NewTxManager(pool.Pool, txOpts))
		checks["mtv"] = pool
	} else {
		log.Warn("MTV_DATABASE_URL not set, mtv reports disabled")
	}

	// --- Reference cache ---
	var redisClient cache.RedisClient
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			// The cache degrades to the store; a down Redis is not fatal.
			log.Warnw("redis unreachable at startup", "addr", cfg.RedisAddr, "error", err)
		}
		redisClient = rdb
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	refRepo := cache.NewReferenceCache(mongo.NewReferenceRepo(crm.Database()), redisClient, cfg.ReferenceCacheTTL)

	// SIGHUP drops cached atolls, islands and dealers.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			if err := refRepo.Invalidate(ctx); err != nil {
				log.Warnw("reference cache invalidation failed", "error", err)
			}
		}
	}()

	// --- Reports ---
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	catalogCfg := reports.DefaultCatalogConfig()
	catalogCfg.DefaultTimeout = cfg.ReportDefaultTimeout
	catalogCfg.HeavyTimeout = cfg.ReportHeavyTimeout
	catalog := reports.NewCatalog(mongo.NewReportRepo(crm.Database()), mtv, catalogCfg)
	log.Infow("report catalog loaded", "reports", len(catalog.All()))

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Logger:       log,
		Reports:      reports.NewService(catalog, collector),
		Reference:    reference.NewService(refRepo),
		HealthChecks: checks,
		Metrics:      collector,
		Debug:        cfg.Development(),
	}
	if cfg.JWTSecret != "" {
		jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
		jwtCfg.Issuer = cfg.JWTIssuer
		routerCfg.JWTValidator = auth.NewJWTService(jwtCfg)
	} else {
		log.Warn("JWT_SECRET not set, api is unauthenticated")
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     gzhttp.GzipHandler(router),
		ReadTimeout: 15 * time.Second,
		// Heavy exports stream for as long as the store allows.
		WriteTimeout: cfg.ReportHeavyTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
