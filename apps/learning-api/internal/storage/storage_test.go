package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/retry"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu       sync.Mutex
	puts     []*s3.PutObjectInput
	bodies   []string
	deletes  []string
	failures int
	err      error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, _ := io.ReadAll(params.Body)
	f.puts = append(f.puts, params)
	f.bodies = append(f.bodies, string(body))
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("503 slow down")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func newTestStorage(client S3API) *S3Storage {
	s := NewS3Storage(client, &S3Config{Bucket: "uploads", Region: "eu-central-1"})
	s.retry = &retry.Config{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1}
	return s
}

func TestS3Storage_Upload(t *testing.T) {
	client := &fakeS3{}
	s := newTestStorage(client)

	obj, err := s.Upload(context.Background(), &Object{
		Folder:       FolderFiles,
		OriginalName: "Notes.PDF",
		ContentType:  "application/pdf",
		Data:         []byte("%PDF-1.4"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.StorageID, "files/"))
	assert.True(t, strings.HasSuffix(obj.StorageID, ".pdf"))
	assert.Equal(t, "https://uploads.s3.eu-central-1.amazonaws.com/"+obj.StorageID, obj.URL)
	require.Len(t, client.puts, 1)
	assert.Equal(t, "uploads", *client.puts[0].Bucket)
	assert.Equal(t, "application/pdf", *client.puts[0].ContentType)
}

func TestS3Storage_UploadRetriesWithFullBody(t *testing.T) {
	client := &fakeS3{failures: 1}
	s := newTestStorage(client)

	_, err := s.Upload(context.Background(), &Object{Folder: FolderFiles, OriginalName: "a.png", Data: []byte("png-bytes")})
	require.NoError(t, err)
	require.Len(t, client.bodies, 2)
	assert.Equal(t, "png-bytes", client.bodies[1])
}

func TestS3Storage_FailuresAreUpstream(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	s := newTestStorage(client)

	_, err := s.Upload(context.Background(), &Object{Folder: FolderFiles, OriginalName: "a.png"})
	assert.ErrorIs(t, err, domain.ErrUpstream)

	err = s.Delete(context.Background(), "files/a.png")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestS3Storage_Delete(t *testing.T) {
	client := &fakeS3{}
	s := newTestStorage(client)

	require.NoError(t, s.Delete(context.Background(), "profile_pictures/x.png"))
	assert.Equal(t, []string{"profile_pictures/x.png"}, client.deletes)
}

func TestS3Storage_CustomEndpointURL(t *testing.T) {
	s := NewS3Storage(&fakeS3{}, &S3Config{Bucket: "uploads", Endpoint: "http://minio:9000/"})
	obj, err := s.Upload(context.Background(), &Object{Folder: FolderPackages, OriginalName: "p.doc"})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/uploads/"+obj.StorageID, obj.URL)
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage("")
	obj, err := m.Upload(context.Background(), &Object{Folder: FolderProfilePictures, OriginalName: "me.jpg"})
	require.NoError(t, err)
	assert.True(t, m.Has(obj.StorageID))

	require.NoError(t, m.Delete(context.Background(), obj.StorageID))
	assert.False(t, m.Has(obj.StorageID))
}
