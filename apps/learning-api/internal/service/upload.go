package service

import (
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
)

// DefaultMaxUploadSize is the upload limit used when none is configured
const DefaultMaxUploadSize = 5 << 20

// Upload is a file received from a client
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

var (
	documentTypes = map[string]bool{
		"image/jpeg":         true,
		"image/png":          true,
		"application/pdf":    true,
		"application/msword": true,
	}
	imageTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
	}
)

func validateUpload(u *Upload, allowed map[string]bool, maxSize int64, typeErr error) error {
	if u == nil || u.Size == 0 || len(u.Data) == 0 {
		return domain.ErrNoFileUploaded
	}
	if u.Size > maxSize || int64(len(u.Data)) > maxSize {
		return domain.ErrFileTooLarge
	}
	if !allowed[u.ContentType] {
		return typeErr
	}
	return nil
}
