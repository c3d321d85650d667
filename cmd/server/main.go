package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aapkitaxi/service-booking/internal/application"
	"github.com/aapkitaxi/service-booking/internal/config"
	bookingDomain "github.com/aapkitaxi/service-booking/internal/domain/booking"
	"github.com/aapkitaxi/service-booking/internal/events"
	"github.com/aapkitaxi/service-booking/internal/handler"
	"github.com/aapkitaxi/service-booking/internal/logger"
	"github.com/aapkitaxi/service-booking/internal/middleware"
	"github.com/aapkitaxi/service-booking/internal/notification"
	"github.com/aapkitaxi/service-booking/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("storage_driver", cfg.StorageDriver),
	)

	// Connect storage
	repo, closeStorage, err := openStorage(cfg, log)
	if err != nil {
		log.Fatal("failed to connect storage", zap.Error(err))
	}
	defer closeStorage()

	// Initialize SMS channel. A failure here degrades the feature, it never
	// keeps the service from starting.
	var notifier notification.Notifier
	if cfg.Twilio.Enabled() {
		tw, err := notification.NewTwilioNotifier(
			cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, log)
		if err != nil {
			log.Warn("twilio connection failed, sms disabled", zap.Error(err))
			notifier = notification.NewDisabled(log)
		} else {
			notifier = tw
		}
	} else {
		log.Info("no sms credentials configured, sms disabled")
		notifier = notification.NewDisabled(log)
	}

	// Initialize Kafka producer when brokers are configured
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, log)
		defer func() { _ = producer.Close() }()
	}

	// Initialize application service
	allocator := application.NewIDAllocator(repo, log)
	bookingService := application.NewBookingService(repo, allocator, notifier, producer, log)

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService, log)
	healthHandler := handler.NewHealthHandler(bookingService, log)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())

	// Register routes
	healthHandler.RegisterRoutes(&router.RouterGroup)
	bookingHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}

// openStorage builds the configured booking repository. The returned close
// function releases the store handle at process exit.
func openStorage(cfg *config.Config, log *zap.Logger) (bookingDomain.Repository, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, nil, err
		}
		return openGorm(db, log)

	case config.DriverPostgres:
		db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), &gorm.Config{})
		if err != nil {
			return nil, nil, err
		}
		return openGorm(db, log)

	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().
			ApplyURI(cfg.Mongo.URI).
			SetServerSelectionTimeout(30*time.Second).
			SetConnectTimeout(30*time.Second))
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, nil, err
		}

		repo, err := repository.NewMongoBookingRepository(ctx, client, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}

		log.Info("mongodb connected", zap.String("database", cfg.Mongo.Database))
		closeFn := func() {
			disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer disconnectCancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return repo, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
}

func openGorm(db *gorm.DB, log *zap.Logger) (bookingDomain.Repository, func(), error) {
	if err := db.AutoMigrate(&repository.BookingModel{}); err != nil {
		return nil, nil, err
	}
	log.Info("database migration completed")

	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repository.NewGormBookingRepository(db), closeFn, nil
}
