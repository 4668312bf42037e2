package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Takamichi23/Nike-microservice/pkg/circuitbreaker"
	"github.com/Takamichi23/Nike-microservice/pkg/logger"
	"github.com/Takamichi23/Nike-microservice/pkg/metrics"
	"github.com/Takamichi23/Nike-microservice/pkg/telemetry"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/cache"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/checkout"
	storefronthttp "github.com/Takamichi23/Nike-microservice/storefront-service/internal/http"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/repository"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/service"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/session"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/storeclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const serviceName = "storefront-service"

func main() {
	cfg, err := loadConfig()
	log := logger.New(serviceName, "info")
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log = logger.New(serviceName, cfg.LogLevel)
	log.Info("storefront-service starting...")

	ctx := context.Background()

	tp, err := telemetry.InitTracerProvider(ctx, serviceName, "1.0.0", cfg.OTLPEndpoint)
	if err != nil {
		log.WithError(err).Fatal("failed to init tracer provider")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("tracer provider shutdown")
		}
	}()

	mongoDB, err := repository.ConnectMongoDB(ctx, repository.MongoOptions{
		URI:                    cfg.Mongo.URI,
		Database:               cfg.Mongo.Database,
		ConnectTimeout:         time.Duration(cfg.Mongo.ConnectTimeout),
		ServerSelectionTimeout: time.Duration(cfg.Mongo.ServerSelectionTimeout),
		MaxPoolSize:            uint64(cfg.Mongo.MaxPoolSize),
		MinPoolSize:            uint64(cfg.Mongo.MinPoolSize),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("mongo disconnect")
		}
	}()

	profileRepo := repository.NewMongoProfileRepository(mongoDB)
	userRepo := repository.NewMongoUserRepository(mongoDB)
	if err := profileRepo.CreateIndexes(ctx); err != nil {
		log.WithError(err).Fatal("failed to create profile indexes")
	}
	if err := userRepo.CreateIndexes(ctx); err != nil {
		log.WithError(err).Fatal("failed to create user indexes")
	}
	log.WithField("database", cfg.Mongo.Database).Info("connected to MongoDB")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("redis connection failed")
	}
	log.Info("redis ping succeeded")

	breaker := circuitbreaker.DefaultSettings("store-api")
	breaker.ConsecutiveFailures = uint32(cfg.StoreAPI.BreakerFailures)
	breaker.Timeout = time.Duration(cfg.StoreAPI.BreakerOpen)
	store := storeclient.New(cfg.StoreAPI.BaseURL, time.Duration(cfg.StoreAPI.Timeout), breaker, log.WithField("component", "storeclient"))

	profiles := service.NewProfileService(profileRepo, cache.NewRedisCache(redisClient), log.WithField("component", "profiles"))
	accounts := service.NewAccountService(userRepo, profiles, log.WithField("component", "accounts"))
	checkoutSvc := checkout.NewService(store, store, profiles, log.WithField("component", "checkout"))

	sessions := session.NewManager(
		session.NewRedisStore(redisClient, time.Duration(cfg.Session.TTL)),
		session.CookieConfig{Secure: cfg.Session.CookieSecure, MaxAge: time.Duration(cfg.Session.TTL)},
		log.WithField("component", "session"),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, "storefront")

	handler := storefronthttp.NewHandler(store, profiles, accounts, checkoutSvc, time.Duration(cfg.RequestTimeout), log)
	router := storefronthttp.NewRouter(handler, sessions, serverMetrics, metrics.Handler(reg), log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      telemetry.Handler(router, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down storefront service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	log.Info("storefront service stopped")
}
