package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/claimtrack/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/service"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/internal/storage"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/claimtrack/pkg/tracer"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	zapLog.Info("starting claimtrack-api",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		zapLog.Fatal("failed to init tracer", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db, zapLog); err != nil {
		zapLog.Fatal("failed to run migrations", zap.Error(err))
	}

	collector := metrics.NewCollector("claimtrack")
	go pollDBStats(db, collector, zapLog)

	blobs, err := storage.NewLocalStore(cfg.Uploads.Dir, zapLog)
	if err != nil {
		zapLog.Fatal("failed to init upload store", zap.Error(err))
	}

	claimRepo := repository.NewClaimRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, collector, zapLog)
	jwtManager := auth.NewJWTManager(cfg.JWT)
	authSvc := service.NewAuthService(userRepo, jwtManager, auditSvc, zapLog)
	userSvc := service.NewUserService(userRepo, auditSvc, zapLog)
	claimSvc := service.NewClaimService(claimRepo, blobs, auditSvc, collector, zapLog)
	dashSvc := service.NewDashboardService(claimRepo, zapLog)

	router := v1.NewRouter(v1.RouterDeps{
		Config:     cfg,
		Log:        zapLog,
		Collector:  collector,
		JWTManager: jwtManager,
		Auth:       v1.NewAuthHandler(authSvc, zapLog),
		Users:      v1.NewUserHandler(userSvc, zapLog),
		Claims:     v1.NewClaimHandler(claimSvc, cfg.Uploads, zapLog),
		Dashboard:  v1.NewDashboardHandler(dashSvc, collector, zapLog),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zapLog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLog.Error("forced shutdown", zap.Error(err))
	}

	// Flush buffered audit entries before the process goes away.
	auditSvc.Shutdown()

	if err := tp.Shutdown(ctx); err != nil {
		zapLog.Error("tracer shutdown failed", zap.Error(err))
	}

	zapLog.Info("exited")
}

// pollDBStats samples the connection pool every 15s for the db gauge.
func pollDBStats(db *gorm.DB, collector *metrics.Collector, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("db stats unavailable", zap.Error(err))
		return
	}

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
	}
}
