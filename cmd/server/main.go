package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"megacrm-backend/internal/auth"
	"megacrm-backend/internal/cache"
	"megacrm-backend/internal/config"
	"megacrm-backend/internal/database"
	"megacrm-backend/internal/database/migrations"
	"megacrm-backend/internal/db"
	"megacrm-backend/internal/handlers"
	"megacrm-backend/internal/health"
	h "megacrm-backend/internal/http"
	"megacrm-backend/internal/metrics"
	"megacrm-backend/internal/middleware"
	"megacrm-backend/internal/realtime"
	"megacrm-backend/internal/repositories"
	"megacrm-backend/internal/services"
	"megacrm-backend/internal/store"
	"megacrm-backend/internal/store/pgstore"
	"megacrm-backend/internal/store/xlsxstore"
	"megacrm-backend/internal/timeutil"
)

// openStore returns the configured record store and a close func
func openStore(ctx context.Context, cfg *config.Config) (store.TableStore, func(), error) {
	switch cfg.Store.Driver {
	case "", "memory":
		log.Println("[Store] Using in-memory store (data is lost on restart)")
		return store.NewMemory(), func() {}, nil

	case "postgres":
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		migrator := database.NewMigrator(pool, migrations.FS, ".")
		if err := migrator.RunMigrations(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		log.Printf("[Store] Using PostgreSQL at %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
		return pgstore.New(pool), pool.Close, nil

	case "xlsx":
		s, err := xlsxstore.Open(cfg.Store.XLSXPath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[Store] Using workbook %s", cfg.Store.XLSXPath)
		return s, func() { s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg := config.LoadFile(*configPath)
	if err := timeutil.SetLocation(cfg.Timezone); err != nil {
		log.Fatalf("invalid timezone %q: %v", cfg.Timezone, err)
	}

	ctx := context.Background()

	backing, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[Store] %v", err)
	}
	defer closeStore()

	retrying := store.WithRetry(backing, cfg.Store.RetryDelay)
	retrying.OnRetry = func(op string, err error) {
		metrics.StoreRetries.WithLabelValues(op).Inc()
	}

	// Redis is optional: every cache call degrades to a miss when it is down
	var snapshotCache *cache.Cache
	var cachePinger health.Pinger
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("[Cache] Redis unavailable, running without cache: %v", err)
		} else {
			snapshotCache = cache.New(client, cfg.Cache.Prefix)
			cachePinger = snapshotCache
			defer snapshotCache.Close()
		}
	}

	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Stop()

	changes := services.NewChanges(snapshotCache, hub)

	// Repositories
	clientRepo := repositories.NewClientRepository(retrying)
	paymentRepo := repositories.NewPaymentRepository(retrying)
	financeRepo := repositories.NewFinanceRepository(retrying)
	transferRepo := repositories.NewTransferLogRepository(retrying)

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	clientService := services.NewClientService(clientRepo, transferRepo, changes)
	dashboardService := services.NewDashboardService(clientRepo, snapshotCache, cfg.Cache.TTL)
	paymentService := services.NewPaymentService(paymentRepo, clientRepo, snapshotCache, cfg.Cache.PaymentsTTL, changes)
	financeService := services.NewFinanceService(financeRepo, clientRepo, cfg.Branches, changes)
	reportService := services.NewReportService(dashboardService, paymentService)
	authService := services.NewAuthService(cfg, jwtManager, clientRepo)

	var uploader services.ObjectUploader
	if cfg.Backup.Bucket != "" {
		s3Client, err := services.NewS3Client(ctx, cfg.Backup.Endpoint, cfg.Backup.Region, cfg.Backup.AccessKey, cfg.Backup.SecretKey)
		if err != nil {
			log.Printf("[Backup] S3 client unavailable: %v", err)
		} else {
			uploader = s3Client
		}
	}
	backupService := services.NewBackupService(retrying, uploader, cfg.Backup.Bucket, cfg.Backup.Prefix, changes)
	if cfg.Backup.Enabled && uploader != nil {
		backupService.Start(cfg.Backup.Interval)
		defer backupService.Stop()
	}

	collector := services.NewMetricsCollector(dashboardService, cfg.Metrics.CollectInterval)
	collector.Start()
	defer collector.Stop()

	router := h.NewRouter(h.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Clients:   handlers.NewClientHandler(clientService),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
		Payments:  handlers.NewPaymentHandler(paymentService),
		Finance:   handlers.NewFinanceHandler(financeService),
		Reports:   handlers.NewReportHandler(reportService),
		Backup:    handlers.NewBackupHandler(backupService),
		Health:    handlers.NewHealthHandler(health.NewHealthChecker(retrying, cachePinger)),
		Realtime:  hub,
	}, middleware.NewAuthMiddleware(jwtManager))

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(corsMiddleware(router))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[HTTP] MegaCRM API listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("[HTTP] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[HTTP] Shutdown error: %v", err)
	}
}
