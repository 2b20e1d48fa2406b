package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/placement-ops/console-api/api/swagger"
	"github.com/placement-ops/console-api/internal/handler"
	"github.com/placement-ops/console-api/internal/middleware"
	"github.com/placement-ops/console-api/internal/models"
	"github.com/placement-ops/console-api/internal/repository"
	"github.com/placement-ops/console-api/internal/service"
	"github.com/placement-ops/console-api/pkg/cache"
	"github.com/placement-ops/console-api/pkg/config"
	"github.com/placement-ops/console-api/pkg/database"
	"github.com/placement-ops/console-api/pkg/export"
	"github.com/placement-ops/console-api/pkg/jobs"
	"github.com/placement-ops/console-api/pkg/logger"
	corsmiddleware "github.com/placement-ops/console-api/pkg/middleware/cors"
	reqidmiddleware "github.com/placement-ops/console-api/pkg/middleware/requestid"
	"github.com/placement-ops/console-api/pkg/storage"
)

// @title Placement Console API
// @version 1.0.0
// @description Admin console backend for placement test logistics
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	campaignRepo := repository.NewCampaignRepository(db)
	cycleRepo := repository.NewCycleRepository(db)
	testRepo := repository.NewTestRepository(db)
	venueRepo := repository.NewVenueRepository(db)
	applicantRepo := repository.NewApplicantRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	userRepo := repository.NewUserRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	exportRepo := repository.NewExportRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "placement-console",
	})
	userSvc := service.NewUserService(userRepo, nil, logr)
	campaignSvc := service.NewCampaignService(campaignRepo, nil, logr)
	cycleSvc := service.NewCycleService(cycleRepo, campaignRepo, nil, logr)
	testSvc := service.NewTestService(testRepo, cycleRepo, nil, logr)
	venueSvc := service.NewVenueService(venueRepo, testRepo, nil, logr)
	applicantSvc := service.NewApplicantService(applicantRepo, logr)
	rosterSvc := service.NewRosterService(applicantRepo, logr)
	seatingSvc := service.NewSeatingService(applicantRepo, nil, logr)
	attendanceSvc := service.NewAttendanceService(applicantRepo, attendanceRepo, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, redisClient, metricsSvc, cfg.Dashboard.CacheTTL, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var exportSvc *service.ExportService
	exportQueue := jobs.NewQueue("seating-exports", func(jobCtx context.Context, job jobs.Job) error {
		return exportSvc.HandleJob(jobCtx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportSvc = service.NewExportService(exportRepo, applicantRepo, exportQueue,
		export.NewCSVExporter(), export.NewPDFExporter(), files, signer, logr)
	exportQueue.Start(ctx)
	defer exportQueue.Stop()

	go runExportCleanup(ctx, files, cfg.Exports, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	campaignHandler := handler.NewCampaignHandler(campaignSvc, cycleSvc, dashboardSvc)
	cycleHandler := handler.NewCycleHandler(cycleSvc, testSvc)
	testHandler := handler.NewTestHandler(testSvc, venueSvc, applicantSvc, dashboardSvc)
	venueHandler := handler.NewVenueHandler(venueSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc, metricsSvc, dashboardSvc, cfg.Imports.MaxFileSizeBytes)
	seatingHandler := handler.NewSeatingHandler(seatingSvc, exportSvc, metricsSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, metricsSvc)
	userHandler := handler.NewUserHandler(userSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.GET("/exports/download", seatingHandler.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/auth/me", authHandler.Me)
		authed.GET("/dashboard/stats", dashboardHandler.Stats)

		authed.GET("/campaigns", campaignHandler.List)
		authed.GET("/campaigns/:id", campaignHandler.Get)
		authed.GET("/campaigns/:id/cycles", campaignHandler.ListCycles)
		authed.GET("/cycles/:id", cycleHandler.Get)
		authed.GET("/cycles/:id/tests", cycleHandler.ListTests)
		authed.GET("/tests/upcoming", testHandler.ListUpcoming)
		authed.GET("/tests/:id", testHandler.Get)
		authed.GET("/tests/:id/venues", testHandler.ListVenues)
		authed.GET("/tests/:id/applicants", testHandler.ListApplicants)
		authed.GET("/tests/:id/seating", testHandler.ListSeating)
		authed.GET("/exports/:id", seatingHandler.ExportStatus)

		// Volunteers run the check-in desk; marking attendance is their job.
		authed.POST("/tests/:id/attendance", attendanceHandler.Mark)
		authed.GET("/tests/:id/attendance", attendanceHandler.List)
	}

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/campaigns", campaignHandler.Create)
		admin.DELETE("/campaigns/:id", campaignHandler.Delete)
		admin.POST("/cycles", cycleHandler.Create)
		admin.POST("/tests", testHandler.Create)
		admin.POST("/venues", venueHandler.Create)
		admin.POST("/tests/:id/roster", rosterHandler.Import)
		admin.POST("/tests/:id/allocate", seatingHandler.Allocate)
		admin.POST("/tests/:id/export", seatingHandler.RequestExport)

		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.POST("/users", userHandler.Create)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Sugar().Infow("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// runExportCleanup periodically removes export files past their signed URL
// lifetime.
func runExportCleanup(ctx context.Context, files *storage.LocalStorage, cfg config.ExportsConfig, logr *zap.Logger) {
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := files.CleanupOlderThan(cfg.SignedURLTTL)
			if err != nil {
				logr.Sugar().Warnw("export cleanup failed", "error", err)
				continue
			}
			if len(deleted) > 0 {
				logr.Sugar().Infow("expired exports removed", "count", len(deleted))
			}
		}
	}
}
