package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	apicontext "github.com/omnistat/platform-server/internal/api/http/context"
	"github.com/omnistat/platform-server/internal/api/http/router"
	"github.com/omnistat/platform-server/internal/api/http/server"
	"github.com/omnistat/platform-server/internal/cache"
	"github.com/omnistat/platform-server/internal/config"
	"github.com/omnistat/platform-server/internal/hash"
	"github.com/omnistat/platform-server/internal/logger"
	"github.com/omnistat/platform-server/internal/model"
	"github.com/omnistat/platform-server/internal/repository/postgres"
	"github.com/omnistat/platform-server/internal/service"
	"github.com/omnistat/platform-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	var appCache model.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("failed to connect to redis", "error", err)
		}
		defer redisCache.Close()
		appCache = redisCache
	} else {
		logger.Info("cache disabled, reading straight from the store")
		appCache = cache.NewNoop()
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	metricRepo := postgres.NewMetricRepository(db)

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	tokenService := service.NewTokenService(tokenManager, appCache, logger)
	hasher := hash.NewBcrypt(cfg.Auth.BcryptCost)

	authService := service.NewAuth(userRepo, hasher, tokenService, cfg.Auth.PasswordMinLength, logger)
	analyticsService := service.NewAnalytics(eventRepo, metricRepo, appCache, service.AnalyticsConfig{
		MaxBatchSize:     cfg.Analytics.MaxBatchSize,
		DefaultStatsDays: cfg.Analytics.DefaultStatsDays,
		MaxStatsDays:     cfg.Analytics.MaxStatsDays,
		CostPeriodDays:   cfg.Analytics.CostPeriodDays,
		UsageCacheTTL:    cfg.Analytics.UsageCacheTTL,
		SummaryCacheTTL:  cfg.Analytics.SummaryCacheTTL,
		DashboardPeriod:  cfg.Analytics.DashboardPeriod,
		MetricsListLimit: cfg.Analytics.MetricsListLimit,
	}, logger)
	healthService := service.NewHealth(db, appCache)

	ctxMgr := apicontext.NewManager()
	r := router.New(authService, analyticsService, healthService, tokenService, ctxMgr, logger.With("component", "http"))
	httpServer := server.New(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting server on", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
