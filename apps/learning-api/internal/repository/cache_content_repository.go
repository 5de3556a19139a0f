package repository

import (
	"context"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
)

const (
	// Cache key prefixes
	contentListKeyPrefix = "content:list:"
	tutorDetailKeyPrefix = "tutor:detail:"

	// DefaultCacheTTL is the TTL used when none is configured
	DefaultCacheTTL = 5 * time.Minute
)

// Cache is the subset of the Redis client used for read-through caching
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

var _ Cache = (*redis.Client)(nil)

// CachedContentRepository wraps ContentRepository with Redis caching of
// per-tutor lists
type CachedContentRepository struct {
	repo  ContentRepository
	cache Cache
	ttl   time.Duration
}

// NewCachedContentRepository creates a new CachedContentRepository
func NewCachedContentRepository(repo ContentRepository, cache Cache, ttl time.Duration) *CachedContentRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedContentRepository{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

// Create creates a new item and invalidates the tutor's list cache
func (r *CachedContentRepository) Create(ctx context.Context, content *domain.Content) error {
	if err := r.repo.Create(ctx, content); err != nil {
		return err
	}
	r.invalidateList(ctx, content.TutorID, content.Kind)
	return nil
}

// GetByID bypasses the cache
func (r *CachedContentRepository) GetByID(ctx context.Context, tutorID string, kind domain.ContentKind, id string) (*domain.Content, error) {
	return r.repo.GetByID(ctx, tutorID, kind, id)
}

// ListByTutor lists items with caching
func (r *CachedContentRepository) ListByTutor(ctx context.Context, tutorID string, kind domain.ContentKind) ([]*domain.Content, error) {
	cacheKey := contentListKey(tutorID, kind)

	var cached []*domain.Content
	if err := r.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	// Cache miss - get from database
	items, err := r.repo.ListByTutor(ctx, tutorID, kind)
	if err != nil {
		return nil, err
	}

	// Cache write failures only cost a later miss
	_ = r.cache.SetJSON(ctx, cacheKey, items, r.ttl)

	return items, nil
}

// Update updates an item and invalidates the tutor's list cache
func (r *CachedContentRepository) Update(ctx context.Context, content *domain.Content) error {
	if err := r.repo.Update(ctx, content); err != nil {
		return err
	}
	r.invalidateList(ctx, content.TutorID, content.Kind)
	return nil
}

// Delete deletes an item and invalidates the tutor's list cache
func (r *CachedContentRepository) Delete(ctx context.Context, tutorID string, kind domain.ContentKind, id string) error {
	if err := r.repo.Delete(ctx, tutorID, kind, id); err != nil {
		return err
	}
	r.invalidateList(ctx, tutorID, kind)
	return nil
}

func (r *CachedContentRepository) invalidateList(ctx context.Context, tutorID string, kind domain.ContentKind) {
	r.cache.Del(ctx, contentListKey(tutorID, kind))
}

func contentListKey(tutorID string, kind domain.ContentKind) string {
	return contentListKeyPrefix + tutorID + ":" + string(kind)
}

// CachedTutorRepository caches tutor profiles by ID. Email lookups used
// by login bypass the cache so password hashes are never cached.
type CachedTutorRepository struct {
	repo  TutorRepository
	cache Cache
	ttl   time.Duration
}

// NewCachedTutorRepository creates a new CachedTutorRepository
func NewCachedTutorRepository(repo TutorRepository, cache Cache, ttl time.Duration) *CachedTutorRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedTutorRepository{repo: repo, cache: cache, ttl: ttl}
}

// FindByID retrieves a tutor with caching. The cached copy carries no
// password hash.
func (r *CachedTutorRepository) FindByID(ctx context.Context, id string) (*domain.Tutor, error) {
	cacheKey := tutorDetailKeyPrefix + id

	var cached domain.Tutor
	if err := r.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	tutor, err := r.repo.FindByID(ctx, id)
	if err != nil || tutor == nil {
		return tutor, err
	}

	_ = r.cache.SetJSON(ctx, cacheKey, tutor, r.ttl)
	return tutor, nil
}

// FindByEmail bypasses the cache
func (r *CachedTutorRepository) FindByEmail(ctx context.Context, email string) (*domain.Tutor, error) {
	return r.repo.FindByEmail(ctx, email)
}

// Insert bypasses the cache
func (r *CachedTutorRepository) Insert(ctx context.Context, tutor *domain.Tutor) error {
	return r.repo.Insert(ctx, tutor)
}
