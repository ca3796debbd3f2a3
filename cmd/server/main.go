package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mohashafici/DalagHub/internal/adapter/auth"
	natsadapter "github.com/mohashafici/DalagHub/internal/adapter/messaging/nats"
	"github.com/mohashafici/DalagHub/internal/adapter/repository/cache"
	"github.com/mohashafici/DalagHub/internal/adapter/repository/mongodb"
	"github.com/mohashafici/DalagHub/internal/adapter/storage/s3"
	"github.com/mohashafici/DalagHub/internal/config"
	"github.com/mohashafici/DalagHub/internal/handler"
	"github.com/mohashafici/DalagHub/internal/mailer"
	"github.com/mohashafici/DalagHub/internal/marketplace/catalog"
	"github.com/mohashafici/DalagHub/internal/marketplace/session"
	"github.com/mohashafici/DalagHub/internal/platform/logger"
	"github.com/mohashafici/DalagHub/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewZapLogger(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	cancel()
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.MongoDB)

	redisClient, err := cache.NewClient(cfg.RedisAddress)
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}

	storageClient, err := s3.NewS3Storage(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize storage: %v", err)
	}

	var publisher *natsadapter.Publisher
	publisher, err = natsadapter.NewPublisher(cfg.NATSURL)
	if err != nil {
		appLogger.Warnf("NATS unavailable, domain events disabled: %v", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	listingRepo := mongodb.NewListingRepository(db)
	profileRepo := mongodb.NewProfileRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	reportRepo := mongodb.NewReportRepository(db)
	listingCache := cache.NewListingCache(redisClient)

	authService := auth.NewService(db, redisClient, cfg.JWTSecret, appLogger)

	var sessionPublisher session.EventPublisher
	var catalogPublisher catalog.EventPublisher
	if publisher != nil {
		sessionPublisher = publisher
		catalogPublisher = publisher
	}

	sessionStore := session.NewStore(authService, profileRepo, roleRepo, sessionPublisher, appLogger)
	defer sessionStore.Close()

	var reportMailer catalog.ReportMailer
	if cfg.SMTPEmail != "" && cfg.ModerationEmail != "" {
		reportMailer = mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
	}

	catalogStore := catalog.NewStore(listingRepo, profileRepo, reportRepo, sessionStore, catalog.Config{
		Cache:           listingCache,
		Publisher:       catalogPublisher,
		Mailer:          reportMailer,
		ModerationEmail: cfg.ModerationEmail,
	}, appLogger)
	defer catalogStore.Close()

	// Initial catalog load; failures land in the store's error state and
	// are retried on the next session change.
	fetchCtx, cancelFetch := context.WithTimeout(context.Background(), 15*time.Second)
	if err := catalogStore.FetchProducts(fetchCtx); err != nil {
		appLogger.Warnf("Initial product fetch failed: %v", err)
	}
	cancelFetch()

	authHandler := handler.NewAuthHandler(sessionStore, authService, appLogger)
	productHandler := handler.NewProductHandler(catalogStore, appLogger)
	uploadHandler := handler.NewUploadHandler(storageClient, sessionStore, appLogger)

	mux := router.New(authHandler, productHandler, uploadHandler, cfg.JWTSecret, appLogger)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: mux,
	}

	go func() {
		appLogger.Infof("Starting HTTP server on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("Server shutdown error: %v", err)
	}
}
