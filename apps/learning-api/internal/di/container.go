package di

import (
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/gateway"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/handler"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/oauth"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/repository"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/service"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/storage"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/database"
	pkgredis "github.com/archieQa/backend-ZgjidhjeAI/pkg/redis"
)

// Container holds all dependencies for the learning API
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *pkgredis.Client

	// Repositories
	UserRepo    *repository.PostgresUserRepository
	TutorRepo   repository.TutorRepository
	ContentRepo repository.ContentRepository
	DataRepo    repository.DataRepository

	// Services
	Tokens              *service.TokenService
	Authenticator       *service.Authenticator
	AuthService         service.AuthService
	QuotaService        service.QuotaService
	PlanService         service.PlanService
	UserService         service.UserService
	DataService         service.DataService
	ContentService      service.ContentService
	SubscriptionService service.SubscriptionService

	// Handlers
	Handlers *handler.Handlers
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB *database.PostgresDB
	// Redis is optional; without it content lists are not cached
	Redis    *pkgredis.Client
	CacheTTL time.Duration

	Publisher service.EventPublisher
	Usage     repository.UsageRepository
	Storage   storage.ObjectStorage
	Gateway   gateway.PaymentGateway
	OAuth     oauth.Registry

	TokenConfig        *service.TokenServiceConfig
	AuthConfig         *service.AuthServiceConfig
	QuotaConfig        *service.QuotaServiceConfig
	SubscriptionConfig *service.SubscriptionServiceConfig
	MaxUploadSize      int64
	SecureCookies      bool
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	// Initialize repositories
	c.UserRepo = repository.NewPostgresUserRepository(cfg.DB)
	c.TutorRepo = repository.NewPostgresTutorRepository(cfg.DB)
	c.ContentRepo = repository.NewPostgresContentRepository(cfg.DB)
	c.DataRepo = repository.NewPostgresDataRepository(cfg.DB)
	if cfg.Redis != nil {
		c.TutorRepo = repository.NewCachedTutorRepository(c.TutorRepo, cfg.Redis, cfg.CacheTTL)
		c.ContentRepo = repository.NewCachedContentRepository(c.ContentRepo, cfg.Redis, cfg.CacheTTL)
	}

	// Initialize services
	tokens, err := service.NewTokenService(cfg.TokenConfig)
	if err != nil {
		return nil, err
	}
	c.Tokens = tokens
	c.Authenticator = service.NewAuthenticator(tokens, c.UserRepo, c.TutorRepo)
	c.AuthService = service.NewAuthService(c.UserRepo, c.TutorRepo, tokens, cfg.AuthConfig)
	c.QuotaService = service.NewQuotaService(c.UserRepo, cfg.QuotaConfig)
	c.PlanService = service.NewPlanService(c.UserRepo, cfg.Publisher)
	c.UserService = service.NewUserService(
		c.UserRepo,
		c.QuotaService,
		cfg.Usage,
		cfg.Storage,
		cfg.Publisher,
		&service.UserServiceConfig{MaxUploadSize: cfg.MaxUploadSize},
	)
	c.DataService = service.NewDataService(c.DataRepo, cfg.Storage, cfg.MaxUploadSize)
	c.ContentService = service.NewContentService(c.ContentRepo)
	c.SubscriptionService = service.NewSubscriptionService(cfg.Gateway, c.PlanService, cfg.SubscriptionConfig)

	// Initialize handlers
	var redisPinger handler.Pinger
	if cfg.Redis != nil {
		redisPinger = cfg.Redis
	}

	h := &handler.Handlers{
		Health:        handler.NewHealthHandler(cfg.DB, redisPinger),
		Auth:          handler.NewAuthHandler(c.AuthService),
		User:          handler.NewUserHandler(c.UserService, c.PlanService, cfg.MaxUploadSize),
		Data:          handler.NewDataHandler(c.DataService, cfg.MaxUploadSize),
		Payment:       handler.NewPaymentHandler(c.SubscriptionService),
		Blogs:         handler.NewContentHandler(c.ContentService, domain.ContentBlog),
		LearningPaths: handler.NewContentHandler(c.ContentService, domain.ContentLearningPath),
		Resources:     handler.NewContentHandler(c.ContentService, domain.ContentResource),
	}
	if len(cfg.OAuth) > 0 {
		h.OAuth = handler.NewOAuthHandler(c.AuthService, cfg.OAuth, cfg.SecureCookies)
	}
	c.Handlers = h

	return c, nil
}
