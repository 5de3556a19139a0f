package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	uploadField = "file"
	// Room for the other form fields and multipart framing
	multipartOverhead = 1 << 20
)

const invalidUpload = "Invalid multipart upload"

// readUpload reads the multipart file field. A missing file yields a nil
// upload so the service reports it. At most maxSize+1 bytes are read; the
// declared size decides whether the file is too large.
func readUpload(c *gin.Context, maxSize int64) (*service.Upload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	header, err := c.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.WrapError(domain.KindInvalidInput, domain.ErrFileTooLarge.Message, err)
		}
		return nil, domain.WrapError(domain.KindInvalidInput, invalidUpload, err)
	}

	f, err := header.Open()
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidInput, invalidUpload, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, domain.WrapError(domain.KindInvalidInput, invalidUpload, err)
	}

	return &service.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}, nil
}
