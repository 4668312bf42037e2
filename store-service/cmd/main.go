package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Takamichi23/Nike-microservice/pkg/logger"
	"github.com/Takamichi23/Nike-microservice/pkg/metrics"
	"github.com/Takamichi23/Nike-microservice/pkg/telemetry"
	storehttp "github.com/Takamichi23/Nike-microservice/store-service/internal/http"
	"github.com/Takamichi23/Nike-microservice/store-service/internal/publisher"
	"github.com/Takamichi23/Nike-microservice/store-service/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "store-service"

func main() {
	cfg, err := loadConfig()
	log := logger.New(serviceName, "info")
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log = logger.New(serviceName, cfg.LogLevel)
	log.Info("store-service starting...")

	tp, err := telemetry.InitTracerProvider(context.Background(), serviceName, "1.0.0", cfg.OTLPEndpoint)
	if err != nil {
		log.WithError(err).Fatal("failed to init tracer provider")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("tracer provider shutdown")
		}
	}()

	db := cfg.Database
	creds := &repository.Credentials{
		Driver:            db.Driver,
		SQLitePath:        db.SQLitePath,
		Host:              db.Host,
		Port:              db.Port,
		User:              db.User,
		Password:          db.Password,
		DBName:            db.Name,
		MigrationsDirPath: db.MigrationsPath,
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds.MigrationsDirPath); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.WithField("driver", repo.Driver()).Info("database migrations completed")

	var wg sync.WaitGroup
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	var poller *publisher.OutboxPoller
	if len(cfg.Kafka.Brokers) > 0 {
		poller = publisher.NewOutboxPoller(repo, log.WithField("component", "outbox"), cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(pollerCtx)
		}()
		log.WithField("brokers", cfg.Kafka.Brokers).Info("outbox publisher started")
	} else {
		log.Info("KAFKA_BROKERS not set, outbox publisher disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, "store")

	handler := storehttp.NewHandler(repo, time.Duration(cfg.RequestTimeout), log)
	router := storehttp.NewRouter(handler, serverMetrics, metrics.Handler(reg), log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      telemetry.Handler(router, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("store API listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down store service...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	pollerCancel()
	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
	case <-ctx.Done():
		log.Warn("outbox publisher didn't stop in time")
	}

	if poller != nil {
		if err := poller.Close(); err != nil {
			log.WithError(err).Warn("failed to close kafka writer")
		}
	}
	log.Info("store service stopped")
}
