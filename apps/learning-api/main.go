package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/di"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/gateway"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/handler"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/migrations"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/oauth"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/repository"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/service"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/storage"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/config"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/database"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/errreport"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/logger"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/middleware"
	pkgredis "github.com/archieQa/backend-ZgjidhjeAI/pkg/redis"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "learning-api"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Learning API...")

	ctx := context.Background()

	// Initialize tracing
	if err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn("Tracing disabled", zap.Error(err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, migrations.FS, migrations.Dir); err != nil {
			appLog.Fatal(fmt.Sprintf("Database migration failed: %v", err))
		}
		appLog.Info("Database migrations applied")
	}

	// Initialize Redis connection; the API runs without it, uncached and
	// without idempotency replay
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed: %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info("Redis connected")
	}

	// Initialize event publisher
	var publisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			ServiceName: serviceName,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka publisher disabled: %v", err))
		} else {
			publisher = kafkaPublisher
			appLog.Info("Kafka event publisher initialized")
		}
	}
	defer publisher.Close()

	// Initialize usage ledger
	var usage repository.UsageRepository = repository.NoOpUsageRepository{}
	if cfg.Usage.Enabled {
		dynamo, err := repository.NewDynamoClient(ctx, cfg.Usage.Region, cfg.Usage.Endpoint)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("DynamoDB client failed: %v", err))
		}
		usage = repository.NewDynamoUsageRepository(dynamo, cfg.Usage.TableName)
		appLog.Info(fmt.Sprintf("Usage ledger writing to %s", cfg.Usage.TableName))
	}

	// Initialize object storage
	var objects storage.ObjectStorage
	if cfg.Storage.Bucket != "" {
		s3Cfg := &storage.S3Config{
			Endpoint:      cfg.Storage.Endpoint,
			Region:        cfg.Storage.Region,
			Bucket:        cfg.Storage.Bucket,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		}
		client, err := storage.NewS3Client(ctx, s3Cfg)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("S3 client failed: %v", err))
		}
		objects = storage.NewS3Storage(client, s3Cfg)
	} else {
		if !cfg.IsDevelopment() {
			appLog.Fatal("storage.bucket is required outside development")
		}
		appLog.Warn("No storage bucket configured, keeping uploads in memory")
		objects = storage.NewMemoryStorage(cfg.Storage.PublicBaseURL)
	}

	// Initialize payment gateway
	paymentGateway, err := gateway.NewPaymentGateway(cfg.Stripe.GatewayType, &gateway.GatewayConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Payment gateway failed: %v", err))
	}
	appLog.Info(fmt.Sprintf("Payment gateway: %s", paymentGateway.Name()))

	// Initialize OAuth providers
	var providers []oauth.Provider
	if cfg.OAuth.Google.Enabled() {
		google, err := oauth.NewGoogleProvider(ctx, &oauth.ProviderConfig{
			ClientID:     cfg.OAuth.Google.ClientID,
			ClientSecret: cfg.OAuth.Google.ClientSecret,
			RedirectURL:  cfg.OAuth.Google.RedirectURL,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Google sign-in disabled: %v", err))
		} else {
			providers = append(providers, google)
		}
	}
	if cfg.OAuth.GitHub.Enabled() {
		providers = append(providers, oauth.NewGitHubProvider(&oauth.ProviderConfig{
			ClientID:     cfg.OAuth.GitHub.ClientID,
			ClientSecret: cfg.OAuth.GitHub.ClientSecret,
			RedirectURL:  cfg.OAuth.GitHub.RedirectURL,
		}))
	}

	// Build dependency injection container
	container, err := di.NewContainer(&di.ContainerConfig{
		DB:        db,
		Redis:     redisClient,
		CacheTTL:  cfg.Redis.CacheTTL,
		Publisher: publisher,
		Usage:     usage,
		Storage:   objects,
		Gateway:   paymentGateway,
		OAuth:     oauth.NewRegistry(providers...),
		TokenConfig: &service.TokenServiceConfig{
			AccessSecret:       cfg.JWT.Secret,
			RefreshSecret:      cfg.JWT.RefreshSecret,
			AccessTokenExpiry:  cfg.JWT.AccessTokenTTL,
			TutorAccessExpiry:  cfg.JWT.TutorAccessTokenTTL,
			RefreshTokenExpiry: cfg.JWT.RefreshTokenTTL,
			Issuer:             cfg.JWT.Issuer,
		},
		AuthConfig: &service.AuthServiceConfig{
			BcryptCost: 12,
		},
		QuotaConfig: &service.QuotaServiceConfig{
			Window:       cfg.Quota.Window,
			StoreTimeout: cfg.Quota.StoreTimeout,
		},
		SubscriptionConfig: &service.SubscriptionServiceConfig{
			PriceIDs: map[domain.Plan]string{
				domain.PlanStudent: cfg.Stripe.StudentPriceID,
				domain.PlanPremium: cfg.Stripe.PremiumPriceID,
			},
		},
		MaxUploadSize: cfg.Storage.MaxUploadSize,
		SecureCookies: !cfg.IsDevelopment(),
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to build container: %v", err))
	}

	// Initialize error reporting
	hostname, _ := os.Hostname()
	reporter := errreport.New(errreport.Config{
		Token:       cfg.Rollbar.Token,
		Environment: cfg.App.Environment,
		CodeVersion: cfg.App.Version,
		ServerHost:  hostname,
	})
	defer reporter.Close()

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	}

	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		telemetry.TracingMiddleware(),
		middleware.Logger(appLog),
		middleware.CORSWithConfig(corsCfg),
		handler.ReportErrors(reporter),
	)

	routerCfg := &handler.RouterConfig{Authenticator: container.Authenticator}
	if redisClient != nil {
		routerCfg.Idempotency = middleware.Idempotency(middleware.DefaultIdempotencyConfig(redisClient))
	}
	handler.RegisterRoutes(router, container.Handlers, routerCfg)

	// Create HTTP server
	port := cfg.Server.Port
	if port == 0 {
		port = 5000
	}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Learning API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("Failed to flush traces", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}
