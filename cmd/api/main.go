package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/studioshot/backdrop-system/internal/api"
	"github.com/studioshot/backdrop-system/internal/core/service"
	"github.com/studioshot/backdrop-system/internal/infrastructure/config"
	mongodb "github.com/studioshot/backdrop-system/internal/infrastructure/db/mongo"
	redisdb "github.com/studioshot/backdrop-system/internal/infrastructure/db/redis"
	"github.com/studioshot/backdrop-system/internal/infrastructure/gateway"
	"github.com/studioshot/backdrop-system/internal/infrastructure/queue"
	"github.com/studioshot/backdrop-system/internal/infrastructure/storage"
	"github.com/studioshot/backdrop-system/pkg/logger"
)

// @title           Backdrop Studio API
// @version         1.0
// @description     Product photo background replacement with credit metering.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "backdrop-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	store, err := storage.NewMinioStore(ctx, storage.Config{
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Bucket:        cfg.Storage.Bucket,
		UseSSL:        cfg.Storage.UseSSL,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("artifact store initialisation failed")
	}

	// --- Repositories ---
	generationRepo := mongodb.NewGenerationRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	transactionRepo := mongodb.NewTransactionRepository(db)
	styleRepo := mongodb.NewStyleRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"generations":         generationRepo.EnsureIndexes,
		"users":               userRepo.EnsureIndexes,
		"credit_transactions": transactionRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Core services ---
	ownerLock := redisdb.NewOwnerLock(rdb)
	creditService := service.NewCreditService(userRepo, transactionRepo, ownerLock, log)

	gw := gateway.New(gateway.Config{
		ClipdropAPIKey: cfg.Gateway.ClipdropAPIKey,
		OpenAIAPIKey:   cfg.Gateway.OpenAIAPIKey,
		StageTimeout:   cfg.Gateway.StageTimeout,
	}, store, log)

	pipeline := service.NewPipeline(generationRepo, gw, store, creditService, log)
	dispatcher := queue.NewDispatcher(cfg.Pipeline.Workers, pipeline, log)
	dispatcher.Start(ctx)

	generationService := service.NewGenerationService(generationRepo, styleRepo, creditService, dispatcher, log)
	authService := service.NewAuthService(userRepo, creditService, cfg.JWTSecret, 7*24*time.Hour, log)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Mongo:       db,
		Redis:       rdb,
		JWTSecret:   cfg.JWTSecret,
		Generations: generationService,
		Credits:     creditService,
		Auth:        authService,
		Users:       userRepo,
		Styles:      styleRepo,
		Logger:      log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
