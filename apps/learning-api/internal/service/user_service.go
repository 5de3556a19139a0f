package service

import (
	"context"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/repository"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/storage"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/logger"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/middleware"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/telemetry"
	"go.uber.org/zap"
)

// UserServiceConfig holds configuration for UserService
type UserServiceConfig struct {
	MaxUploadSize int64
}

// UserService covers the user area: profile, AI usage and profile picture
type UserService interface {
	// Profile returns the user with its quota state
	Profile(ctx context.Context, userID string) (*domain.User, error)
	// UseAI runs one quota-gated AI request. The decision is returned
	// with domain.ErrDailyLimitReached when denied.
	UseAI(ctx context.Context, userID, prompt string) (*dto.UseAIResponse, *domain.Decision, error)
	// UploadProfilePicture stores a new picture and removes the old one
	UploadProfilePicture(ctx context.Context, userID string, upload *Upload) (string, error)
	// DeleteProfilePicture removes the picture from storage and the profile
	DeleteProfilePicture(ctx context.Context, userID string) error
}

type userService struct {
	users     repository.UserRepository
	quota     QuotaService
	usage     repository.UsageRepository
	storage   storage.ObjectStorage
	publisher EventPublisher
	config    *UserServiceConfig
	now       func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(
	users repository.UserRepository,
	quota QuotaService,
	usage repository.UsageRepository,
	objects storage.ObjectStorage,
	publisher EventPublisher,
	config *UserServiceConfig,
) UserService {
	if config == nil {
		config = &UserServiceConfig{}
	}
	if config.MaxUploadSize == 0 {
		config.MaxUploadSize = DefaultMaxUploadSize
	}
	if usage == nil {
		usage = repository.NoOpUsageRepository{}
	}
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &userService{
		users:     users,
		quota:     quota,
		usage:     usage,
		storage:   objects,
		publisher: publisher,
		config:    config,
		now:       time.Now,
	}
}

// Profile returns the user with its quota state
func (s *userService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// UseAI consumes one token and answers the prompt
func (s *userService) UseAI(ctx context.Context, userID, prompt string) (*dto.UseAIResponse, *domain.Decision, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.use_ai")
	defer span.End()

	decision, err := s.quota.CheckAndConsume(ctx, userID)
	if err != nil {
		return nil, decision, err
	}

	log := logger.Get().With(zap.String("user_id", userID))

	// The token is spent; bookkeeping failures are logged only
	if err := s.users.IncrementAIUsage(ctx, userID); err != nil {
		log.WarnContext(ctx, "failed to increment ai usage count", zap.Error(err))
	}

	record := &domain.UsageRecord{
		UserID:     userID,
		RecordedAt: s.now().UTC(),
		Plan:       decision.Plan,
		TokensLeft: decision.TokensLeft.String(),
		PromptSize: len(prompt),
		RequestID:  middleware.RequestIDFromContext(ctx),
	}
	if err := s.usage.Record(ctx, record); err != nil {
		log.WarnContext(ctx, "failed to record ai usage", zap.Error(err))
	}

	if err := s.publisher.PublishAIUsage(ctx, userID, decision); err != nil {
		log.WarnContext(ctx, "failed to publish ai usage", zap.Error(err))
	}

	return &dto.UseAIResponse{
		Response:     "AI processed your request successfully",
		TokensLeft:   decision.TokensLeft,
		NextRefillAt: decision.NextRefillAt,
	}, decision, nil
}

// UploadProfilePicture stores a JPEG or PNG picture
func (s *userService) UploadProfilePicture(ctx context.Context, userID string, upload *Upload) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.upload_profile_picture")
	defer span.End()

	if err := validateUpload(upload, imageTypes, s.config.MaxUploadSize, domain.ErrImageTypeRejected); err != nil {
		return "", err
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return "", err
	}

	stored, err := s.storage.Upload(ctx, &storage.Object{
		Folder:       storage.FolderProfilePictures,
		OriginalName: upload.FileName,
		ContentType:  upload.ContentType,
		Data:         upload.Data,
	})
	if err != nil {
		telemetry.SetSpanError(span, err)
		return "", err
	}

	if err := s.users.UpdateProfilePicture(ctx, userID, &stored.URL, &stored.StorageID); err != nil {
		s.discard(ctx, stored.StorageID)
		telemetry.SetSpanError(span, err)
		return "", err
	}

	if user.ProfilePictureKey != nil {
		s.discard(ctx, *user.ProfilePictureKey)
	}

	return stored.URL, nil
}

// DeleteProfilePicture removes the current picture
func (s *userService) DeleteProfilePicture(ctx context.Context, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.user.delete_profile_picture")
	defer span.End()

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if user.ProfilePictureKey == nil {
		return domain.ErrNoProfilePicture
	}

	if err := s.storage.Delete(ctx, *user.ProfilePictureKey); err != nil {
		telemetry.SetSpanError(span, err)
		return err
	}

	return s.users.UpdateProfilePicture(ctx, userID, nil, nil)
}

// discard removes an object that is no longer referenced
func (s *userService) discard(ctx context.Context, storageID string) {
	if err := s.storage.Delete(ctx, storageID); err != nil {
		logger.Get().WarnContext(ctx, "failed to delete stale object",
			zap.String("storage_id", storageID),
			zap.Error(err),
		)
	}
}
