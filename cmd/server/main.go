package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"carshare/internal/app"
	"carshare/internal/auth"
	"carshare/internal/config"
	"carshare/internal/handler"
	"carshare/internal/jobs"
	"carshare/internal/logger"
	"carshare/internal/metrics"
	"carshare/internal/notify"
	internalRedis "carshare/internal/redis"
	"carshare/internal/repository"
	"carshare/internal/repository/memory"
	"carshare/internal/repository/postgres"
	"carshare/internal/scheduler"
	"carshare/internal/service"
	"carshare/internal/stripe"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	log := logger.WithService("server")
	metrics.Init()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	// Initialize storage.
	var store repository.Transactor
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store = memory.NewStore()
		log.Warn("using in-memory storage, data is lost on restart")
	default:
		db, err := openPostgres(ctx, cfg.Database, nrApp)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to database")
		}
		defer db.Close()
		store = postgres.NewStore(db)
		log.Info("Connected to PostgreSQL")
	}

	// Initialize Redis with New Relic instrumentation.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info("Connected to Redis")
	}

	// Wire dependencies.
	server, sched, err := wireServer(store, redisClient, nrApp, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to wire server")
	}
	if sched != nil {
		sched.Start()
	}

	// Start server in goroutine.
	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("Server exited")
}

// openPostgres connects to PostgreSQL and applies the schema when enabled.
func openPostgres(ctx context.Context, cfg config.DatabaseConfig, nrApp *newrelic.Application) (*sql.DB, error) {
	db, err := app.NewDatabase(ctx, cfg, nrApp)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}

// wireServer wires all dependencies and returns the HTTP server and the
// scheduler, which is nil when scheduled jobs are disabled.
func wireServer(
	store repository.Transactor,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
	log *logrus.Entry,
) (*http.Server, *scheduler.Scheduler, error) {
	// Initialize Redis stores. Both stay nil without Redis.
	var (
		locker service.SessionLocker
		cache  service.VehicleCache
	)
	if redisClient != nil {
		locker = internalRedis.NewLockStore(redisClient)
		cache = internalRedis.NewCacheStore(redisClient)
	}

	// Notification channel.
	var channel notify.Channel
	if cfg.Telegram.BotToken != "" {
		channel = notify.NewTelegramChannel(cfg.Telegram.APIURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Timeout)
	} else {
		channel = notify.NewLogChannel(logger.WithService("notify"))
	}

	// Payment provider.
	var provider service.PaymentProvider
	switch cfg.Payments.Provider {
	case config.ProviderMock:
		provider = service.NewMockProvider(cfg.Server.PublicURL)
	default:
		p, err := stripe.NewProvider(stripe.Config{
			SecretKey:  cfg.Payments.StripeSecretKey,
			Currency:   cfg.Payments.Currency,
			BackendURL: cfg.Payments.StripeAPIURL,
			SessionTTL: cfg.Payments.SessionTTL,
		})
		if err != nil {
			return nil, nil, err
		}
		provider = p
	}

	// Initialize services.
	notificationService := service.NewNotificationService(channel)
	vehicleService := service.NewVehicleService(store.Vehicles(), cache)
	rentalService := service.NewRentalService(store, notificationService)
	paymentService := service.NewPaymentService(store, provider, notificationService, locker, service.PaymentConfig{
		PublicURL:       cfg.Server.PublicURL,
		ProviderTimeout: cfg.Payments.ProviderTimeout,
		LockTTL:         cfg.Payments.LockTTL,
	})

	// Scheduled jobs.
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobRunner := jobs.NewJobRunner(rentalService, notificationService, time.Minute)
		s, err := scheduler.NewScheduler(cfg.Scheduler, jobRunner)
		if err != nil {
			return nil, nil, err
		}
		sched = s
	}

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		VehicleHandler: handler.NewVehicleHandler(vehicleService),
		RentalHandler:  handler.NewRentalHandler(rentalService),
		PaymentHandler: handler.NewPaymentHandler(paymentService),
		Tokens:         auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		Logger:         logger.WithService("http"),
	})

	log.WithFields(logrus.Fields{
		"storage":  cfg.Storage.Driver,
		"provider": cfg.Payments.Provider,
		"redis":    redisClient != nil,
	}).Info("dependencies wired")

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, sched, nil
}
