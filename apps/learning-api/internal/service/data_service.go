package service

import (
	"context"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/repository"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/storage"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/logger"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DataService manages the files and AI packages a user saves
type DataService interface {
	// Create saves a data item without a file
	Create(ctx context.Context, userID string, req *dto.CreateDataRequest) (*domain.DataItem, error)
	// List returns the items of a user
	List(ctx context.Context, userID string) ([]*domain.DataItem, error)
	// UpdateContent replaces the content of an owned item
	UpdateContent(ctx context.Context, userID, id, content string) (*domain.DataItem, error)
	// Delete removes an owned item and its stored file
	Delete(ctx context.Context, userID, id string) error
	// Upload stores a document and saves it as a data item of dataType
	Upload(ctx context.Context, userID string, dataType domain.DataType, fields *dto.UploadDataRequest, upload *Upload) (*domain.DataItem, error)
}

type dataService struct {
	repo          repository.DataRepository
	storage       storage.ObjectStorage
	maxUploadSize int64
	now           func() time.Time
}

// NewDataService creates a new DataService
func NewDataService(repo repository.DataRepository, objects storage.ObjectStorage, maxUploadSize int64) DataService {
	if maxUploadSize == 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &dataService{
		repo:          repo,
		storage:       objects,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
	}
}

func (s *dataService) Create(ctx context.Context, userID string, req *dto.CreateDataRequest) (*domain.DataItem, error) {
	dataType, err := domain.ParseDataType(req.Type)
	if err != nil {
		return nil, err
	}

	item := &domain.DataItem{
		ID:         uuid.New().String(),
		UserID:     userID,
		Type:       dataType,
		Content:    req.Content,
		AISolution: req.AISolution,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *dataService) List(ctx context.Context, userID string) ([]*domain.DataItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *dataService) UpdateContent(ctx context.Context, userID, id, content string) (*domain.DataItem, error) {
	return s.repo.UpdateContent(ctx, userID, id, content)
}

// Delete removes the row first; a file left behind by a failed storage
// delete is only logged
func (s *dataService) Delete(ctx context.Context, userID, id string) error {
	item, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}

	if item.File != nil && item.File.StorageID != "" {
		if err := s.storage.Delete(ctx, item.File.StorageID); err != nil {
			logger.Get().WarnContext(ctx, "failed to delete stored file",
				zap.String("data_id", id),
				zap.String("storage_id", item.File.StorageID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Upload accepts JPEG, PNG, PDF and MS Word documents. Packages go to
// their own folder. Optional form fields become the item's content and AI
// solution.
func (s *dataService) Upload(ctx context.Context, userID string, dataType domain.DataType, fields *dto.UploadDataRequest, upload *Upload) (*domain.DataItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.data.upload")
	defer span.End()

	if err := validateUpload(upload, documentTypes, s.maxUploadSize, domain.ErrFileTypeRejected); err != nil {
		return nil, err
	}

	folder := storage.FolderFiles
	if dataType == domain.DataAIPackage {
		folder = storage.FolderPackages
	}

	stored, err := s.storage.Upload(ctx, &storage.Object{
		Folder:       folder,
		OriginalName: upload.FileName,
		ContentType:  upload.ContentType,
		Data:         upload.Data,
	})
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	item := &domain.DataItem{
		ID:     uuid.New().String(),
		UserID: userID,
		Type:   dataType,
		File: &domain.FileInfo{
			OriginalName: upload.FileName,
			MimeType:     upload.ContentType,
			Size:         upload.Size,
			StorageID:    stored.StorageID,
			URL:          stored.URL,
		},
		CreatedAt: s.now(),
	}
	if fields != nil {
		item.Content = fields.ExtractedText
		item.AISolution = fields.AISolution
	}

	if err := s.repo.Create(ctx, item); err != nil {
		telemetry.SetSpanError(span, err)
		if delErr := s.storage.Delete(ctx, stored.StorageID); delErr != nil {
			logger.Get().WarnContext(ctx, "failed to remove orphaned upload",
				zap.String("storage_id", stored.StorageID),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	return item, nil
}
