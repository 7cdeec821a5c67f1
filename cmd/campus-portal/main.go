package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-portal/api/swagger"
	"github.com/noah-isme/campus-portal/internal/gateway"
	"github.com/noah-isme/campus-portal/internal/handler"
	"github.com/noah-isme/campus-portal/internal/middleware"
	"github.com/noah-isme/campus-portal/internal/repository"
	"github.com/noah-isme/campus-portal/internal/resolver"
	"github.com/noah-isme/campus-portal/internal/service"
	"github.com/noah-isme/campus-portal/pkg/cache"
	"github.com/noah-isme/campus-portal/pkg/config"
	"github.com/noah-isme/campus-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-portal/pkg/middleware/requestid"
)

// @title Campus Portal API
// @version 0.1.0
// @description Page sessions, detail pages and relays in front of the campus API gateway
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()

	gw := gateway.New(gateway.Config{
		BaseURL:    cfg.Gateway.BaseURL,
		GraphQLURL: cfg.Gateway.GraphQLURL,
		Timeout:    cfg.Gateway.Timeout,
	}, nil, metricsSvc, logr)

	cacheSvc := newGraphQLCache(ctx, cfg, metricsSvc, logr)

	pageSvc := service.NewPageService(service.PageGateways{
		Students:     gw.Students(),
		Courses:      gw.Courses(),
		Universities: gw.Universities(),
	}, service.PageConfig{
		SessionTTL:    cfg.Pages.SessionTTL,
		SweepInterval: cfg.Pages.SweepInterval,
	}, metricsSvc, logr)
	pageSvc.Start(ctx)
	defer pageSvc.Stop()

	detailSvc := service.NewDetailService(gw, resolver.SampleEnrollments(), logr)
	enrollmentSvc := service.NewEnrollmentService(resolver.NewSimulator(cfg.Enrollment.Simulated, gw, nil), logr)
	proxySvc := service.NewGraphQLProxyService(gw, cacheSvc, cfg.GraphQL.CacheTTL, logr)
	chatSvc := service.NewChatService(service.ChatConfig{BaseURL: cfg.Chatbot.BaseURL, Timeout: cfg.Chatbot.Timeout}, nil, metricsSvc, logr)

	var shuttingDown atomic.Bool

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc, "/metrics", "/health"))
	r.Use(corsmiddleware.New(corsmiddleware.Options{AllowedOrigins: cfg.CORS.AllowedOrigins}))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, func() bool { return !shuttingDown.Load() })
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	graphqlHandler := handler.NewGraphQLHandler(proxySvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	r.POST("/api/graphql", graphqlHandler.Proxy)
	r.POST("/api/chat/:action", chatHandler.Relay)

	pageHandler := handler.NewPageHandler(pageSvc)
	detailHandler := handler.NewDetailHandler(detailSvc, enrollmentSvc)

	api := r.Group(cfg.APIPrefix)
	pages := api.Group("/pages")
	pages.POST("/:id", pageHandler.Mount)
	pages.GET("/:id", pageHandler.View)
	pages.POST("/:id/reload", pageHandler.Reload)
	pages.DELETE("/:id", pageHandler.Unmount)
	pages.POST("/:id/form", pageHandler.OpenForm)
	pages.POST("/:id/form/submit", pageHandler.SubmitForm)
	pages.DELETE("/:id/form", pageHandler.CloseForm)
	pages.DELETE("/:id/entities/:entityId", pageHandler.DeleteEntity)
	pages.GET("/:id/export", pageHandler.Export)

	api.GET("/students/:id", detailHandler.Student)
	api.GET("/courses/enrollments", detailHandler.Enrollments)
	api.GET("/courses/:id", detailHandler.Course)
	api.GET("/universities/:id", detailHandler.University)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "gateway", cfg.Gateway.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shuttingDown.Store(true)
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
}

// newGraphQLCache connects to Redis when the GraphQL cache is enabled. Without Redis the
// proxy runs uncached.
func newGraphQLCache(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) *service.CacheService {
	if !cfg.GraphQL.CacheEnabled {
		return nil
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, graphql cache disabled", zap.Error(err))
		return nil
	}
	repo := repository.NewCacheRepository(client, logr)
	return service.NewCacheService(repo, metrics, cfg.GraphQL.CacheTTL, logr, true)
}
