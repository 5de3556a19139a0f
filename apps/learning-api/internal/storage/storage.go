// Package storage uploads user files and profile pictures to object storage.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Folders used by the application
const (
	FolderFiles           = "files"
	FolderPackages        = "packages"
	FolderProfilePictures = "profile_pictures"
)

// ObjectStorage stores and removes uploaded objects. Failures are
// domain.ErrUpstream errors.
type ObjectStorage interface {
	Upload(ctx context.Context, obj *Object) (*StoredObject, error)
	Delete(ctx context.Context, storageID string) error
}

// Object is a file to upload
type Object struct {
	Folder       string
	OriginalName string
	ContentType  string
	Data         []byte
}

// StoredObject is the location of an uploaded object
type StoredObject struct {
	StorageID string
	URL       string
}

// objectKey builds a unique key under folder, keeping the file extension
func objectKey(folder, originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
}

// publicURL joins a base URL and an object key
func publicURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + key
}
