package service

import (
	"context"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/repository"
	"github.com/google/uuid"
)

// ContentService manages tutor blogs, learning paths and resources
type ContentService interface {
	Create(ctx context.Context, tutorID string, kind domain.ContentKind, req *dto.CreateContentRequest) (*domain.Content, error)
	List(ctx context.Context, tutorID string, kind domain.ContentKind) ([]*domain.Content, error)
	// Update changes only the fields set in req
	Update(ctx context.Context, tutorID string, kind domain.ContentKind, id string, req *dto.UpdateContentRequest) (*domain.Content, error)
	Delete(ctx context.Context, tutorID string, kind domain.ContentKind, id string) error
}

type contentService struct {
	repo repository.ContentRepository
	now  func() time.Time
}

// NewContentService creates a new ContentService
func NewContentService(repo repository.ContentRepository) ContentService {
	return &contentService{repo: repo, now: time.Now}
}

func (s *contentService) Create(ctx context.Context, tutorID string, kind domain.ContentKind, req *dto.CreateContentRequest) (*domain.Content, error) {
	if ok, msg := req.Validate(); !ok {
		return nil, domain.NewError(domain.KindInvalidInput, msg)
	}

	now := s.now()
	content := &domain.Content{
		ID:        uuid.New().String(),
		TutorID:   tutorID,
		Kind:      kind,
		Title:     req.Title,
		Body:      req.Body(),
		ImageURL:  req.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if kind == domain.ContentLearningPath {
		content.Level = req.Level
	}

	if err := s.repo.Create(ctx, content); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *contentService) List(ctx context.Context, tutorID string, kind domain.ContentKind) ([]*domain.Content, error) {
	return s.repo.ListByTutor(ctx, tutorID, kind)
}

func (s *contentService) Update(ctx context.Context, tutorID string, kind domain.ContentKind, id string, req *dto.UpdateContentRequest) (*domain.Content, error) {
	content, err := s.repo.GetByID(ctx, tutorID, kind, id)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, domain.ErrContentNotFound
	}

	if req.Title != nil {
		content.Title = *req.Title
	}
	if body := req.Body(); body != nil {
		content.Body = *body
	}
	if req.ImageURL != nil {
		content.ImageURL = *req.ImageURL
	}
	if req.Level != nil && kind == domain.ContentLearningPath {
		content.Level = req.Level
	}
	content.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, content); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *contentService) Delete(ctx context.Context, tutorID string, kind domain.ContentKind, id string) error {
	return s.repo.Delete(ctx, tutorID, kind, id)
}
