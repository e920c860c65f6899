// Command api runs the TransportConnect HTTP API.
//
// @title                       TransportConnect API
// @version                     1.0
// @description                 Driver routes, shipment demandes and their delivery workflow.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/transportconnect/marketplace/internal/api"
	"github.com/transportconnect/marketplace/internal/core/service"
	"github.com/transportconnect/marketplace/internal/infrastructure/db/mongo"
	"github.com/transportconnect/marketplace/internal/infrastructure/db/redis"
	"github.com/transportconnect/marketplace/internal/infrastructure/http/handlers"
	"github.com/transportconnect/marketplace/internal/infrastructure/queue"
	"github.com/transportconnect/marketplace/internal/jobs"
	"github.com/transportconnect/marketplace/internal/pkg/config"
	"github.com/transportconnect/marketplace/pkg/logger"
)

const (
	serviceName     = "transportconnect-api"
	shutdownTimeout = 15 * time.Second
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: serviceName, Version: version})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	format := logger.Format(cfg.LogFormat)
	if cfg.IsProduction() {
		format = logger.FormatJSON
	}
	log := *logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Format:  format,
		Service: serviceName,
		Env:     cfg.Env,
		Version: version,
	})

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	store, err := redis.Connect(ctx, redis.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		Namespace:    cfg.Redis.Namespace,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer store.Close()

	// --- Repositories ---
	demandeRepo := mongo.NewDemandeRepository(db)
	annonceRepo := mongo.NewAnnonceRepository(db)
	userRepo := mongo.NewUserRepository(db)
	notificationRepo := mongo.NewNotificationRepository(db)
	eventRepo := mongo.NewEventRepository(db)

	if err := mongo.EnsureIndexes(ctx, demandeRepo, annonceRepo, userRepo, notificationRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	// --- Services ---
	notificationService := service.NewNotificationService(notificationRepo, logger.Component("notifications"))
	demandeService := service.NewDemandeService(
		demandeRepo, eventRepo, annonceRepo, userRepo, notificationService, logger.Component("workflow"),
	)
	annonceService := service.NewAnnonceService(annonceRepo, demandeRepo, demandeService, logger.Component("annonces"))
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	statsService := service.NewStatsService(demandeRepo, annonceRepo, userRepo)
	positionService := service.NewPositionService(
		demandeRepo, eventRepo, redis.NewDedupChecker(store), logger.Component("positions"),
	)

	// --- Background workers ---
	workersCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Workers.PositionWorkers, positionService, logger.Component("dispatcher"))
	dispatcher.Start(workersCtx)

	jobManager := jobs.NewJobManager(annonceService, cfg.Workers.AnnonceExpirySchedule, log)
	if err := jobManager.StartAll(); err != nil {
		log.Fatal().Err(err).Msg("failed to start jobs")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		JWTSecret:     cfg.JWTSecret,
		Auth:          authService,
		Demandes:      demandeService,
		Annonces:      annonceService,
		Notifications: notificationService,
		Stats:         statsService,
		Positions:     dispatcher,
		LoginLimiter:  redis.NewRateLimiter(store, "login", cfg.RateLimit.LoginAttempts, cfg.RateLimit.LoginWindow),
		Health:        handlers.NewHealthHandler(serviceName),
		Readiness:     handlers.NewHealthDependenciesHandler(handlers.MongoCheck(db), handlers.RedisCheck(store.Client)),
		Logger:        log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	jobManager.StopAll()
	cancelWorkers()
	dispatcher.Wait()

	log.Info().Msg("shutdown complete")
}
