package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/eduatalk23-lgtm/eduatalk-sub016/api/swagger"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/handler"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/middleware"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/repository"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/service"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/cache"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/config"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/database"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/logger"
	corsmiddleware "github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/middleware/cors"
	reqidmiddleware "github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/middleware/requestid"
)

// @title Study Planner API
// @version 0.1.0
// @description Study-plan generation and persistence service
// @BasePath /api/v1
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	contentRepo := repository.NewContentRepository(db)
	planRepo := repository.NewStudyPlanRepository(db)
	itemRepo := repository.NewPlanItemRepository(db)

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	planSvc := service.NewPlanGeneratorService(
		contentRepo,
		planRepo,
		itemRepo,
		cacheRepo,
		db,
		metricsSvc,
		validate,
		logr,
		service.PlanGeneratorConfig{
			ProposalTTL:         cfg.Planner.ProposalTTL,
			MinimumBlockMinutes: cfg.Planner.MinimumBlockMinutes,
			MinViableMinutes:    cfg.Planner.MinViableMinutes,
			DefaultCyclePolicy:  cfg.Planner.DefaultCyclePolicy,
			CacheTTL:            cfg.Planner.CacheTTL,
		},
	)

	var exportSvc *service.ExportService
	if cfg.Export.Enabled {
		exportSvc = service.NewExportService(planRepo, itemRepo, cacheRepo, metricsSvc, service.ExportConfig{CacheTTL: cfg.Export.CacheTTL}, logr)
	}

	planHandler := handler.NewPlanHandler(planSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		plans := api.Group("/plans")
		plans.POST("/generate", planHandler.Generate)
		plans.POST("/save", planHandler.Save)
		plans.GET("", planHandler.List)
		plans.GET("/:id/items", planHandler.Items)
		plans.GET("/:id/export", planHandler.Export)
		plans.DELETE("/:id", planHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
