package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/redis"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is an in-memory Cache for testing
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	dels int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memoryCache) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.data[k]; ok {
			delete(c.data, k)
			n++
		}
	}
	c.dels++
	return goredis.NewIntResult(n, nil)
}

// mockContentRepository is a mock implementation of ContentRepository
type mockContentRepository struct {
	items     map[string]*domain.Content
	listCount int
}

func newMockContentRepository() *mockContentRepository {
	return &mockContentRepository{items: make(map[string]*domain.Content)}
}

func (m *mockContentRepository) Create(ctx context.Context, content *domain.Content) error {
	m.items[content.ID] = content
	return nil
}

func (m *mockContentRepository) GetByID(ctx context.Context, tutorID string, kind domain.ContentKind, id string) (*domain.Content, error) {
	c, ok := m.items[id]
	if !ok || c.TutorID != tutorID || c.Kind != kind {
		return nil, nil
	}
	return c, nil
}

func (m *mockContentRepository) ListByTutor(ctx context.Context, tutorID string, kind domain.ContentKind) ([]*domain.Content, error) {
	m.listCount++
	var out []*domain.Content
	for _, c := range m.items {
		if c.TutorID == tutorID && c.Kind == kind {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockContentRepository) Update(ctx context.Context, content *domain.Content) error {
	c, ok := m.items[content.ID]
	if !ok || c.TutorID != content.TutorID {
		return domain.ErrContentNotFound
	}
	m.items[content.ID] = content
	return nil
}

func (m *mockContentRepository) Delete(ctx context.Context, tutorID string, kind domain.ContentKind, id string) error {
	c, ok := m.items[id]
	if !ok || c.TutorID != tutorID {
		return domain.ErrContentNotFound
	}
	delete(m.items, id)
	return nil
}

func TestCachedContentRepository_ListServedFromCache(t *testing.T) {
	ctx := context.Background()
	repo := newMockContentRepository()
	cache := newMemoryCache()
	cached := NewCachedContentRepository(repo, cache, time.Minute)

	require.NoError(t, repo.Create(ctx, &domain.Content{ID: "b1", TutorID: "t1", Kind: domain.ContentBlog, Title: "Fractions"}))

	first, err := cached.ListByTutor(ctx, "t1", domain.ContentBlog)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := cached.ListByTutor(ctx, "t1", domain.ContentBlog)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Fractions", second[0].Title)
	assert.Equal(t, 1, repo.listCount)
}

func TestCachedContentRepository_WritesInvalidateList(t *testing.T) {
	ctx := context.Background()
	repo := newMockContentRepository()
	cache := newMemoryCache()
	cached := NewCachedContentRepository(repo, cache, time.Minute)

	require.NoError(t, cached.Create(ctx, &domain.Content{ID: "b1", TutorID: "t1", Kind: domain.ContentBlog, Title: "One"}))
	_, err := cached.ListByTutor(ctx, "t1", domain.ContentBlog)
	require.NoError(t, err)

	require.NoError(t, cached.Create(ctx, &domain.Content{ID: "b2", TutorID: "t1", Kind: domain.ContentBlog, Title: "Two"}))
	items, err := cached.ListByTutor(ctx, "t1", domain.ContentBlog)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, repo.listCount)

	require.NoError(t, cached.Update(ctx, &domain.Content{ID: "b1", TutorID: "t1", Kind: domain.ContentBlog, Title: "One v2"}))
	_, err = cached.ListByTutor(ctx, "t1", domain.ContentBlog)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.listCount)

	require.NoError(t, cached.Delete(ctx, "t1", domain.ContentBlog, "b2"))
	items, err = cached.ListByTutor(ctx, "t1", domain.ContentBlog)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 4, repo.listCount)
}

func TestCachedContentRepository_FailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	repo := newMockContentRepository()
	cache := newMemoryCache()
	cached := NewCachedContentRepository(repo, cache, time.Minute)

	err := cached.Delete(ctx, "t1", domain.ContentBlog, "missing")
	assert.ErrorIs(t, err, domain.ErrContentNotFound)
	assert.Equal(t, 0, cache.dels)
}

func TestCachedContentRepository_KeysScopedByTutorAndKind(t *testing.T) {
	assert.Equal(t, "content:list:t1:blog", contentListKey("t1", domain.ContentBlog))
	assert.NotEqual(t, contentListKey("t1", domain.ContentBlog), contentListKey("t1", domain.ContentResource))
	assert.NotEqual(t, contentListKey("t1", domain.ContentBlog), contentListKey("t2", domain.ContentBlog))
}

type mockTutorRepository struct {
	tutors    map[string]*domain.Tutor
	findCount int
}

func (m *mockTutorRepository) FindByID(ctx context.Context, id string) (*domain.Tutor, error) {
	m.findCount++
	return m.tutors[id], nil
}

func (m *mockTutorRepository) FindByEmail(ctx context.Context, email string) (*domain.Tutor, error) {
	for _, t := range m.tutors {
		if t.Email == email {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockTutorRepository) Insert(ctx context.Context, tutor *domain.Tutor) error {
	m.tutors[tutor.ID] = tutor
	return nil
}

func TestCachedTutorRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	repo := &mockTutorRepository{tutors: map[string]*domain.Tutor{
		"t1": {ID: "t1", Name: "Ada", Email: "ada@example.com", PasswordHash: "secret-hash"},
	}}
	cache := newMemoryCache()
	cached := NewCachedTutorRepository(repo, cache, 0)

	first, err := cached.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", first.Name)

	second, err := cached.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", second.Name)
	assert.Empty(t, second.PasswordHash)
	assert.Equal(t, 1, repo.findCount)

	missing, err := cached.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

type fakeDynamo struct {
	input *dynamodb.PutItemInput
	err   error
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoUsageRepository_Record(t *testing.T) {
	client := &fakeDynamo{}
	repo := NewDynamoUsageRepository(client, "ai_usage")

	err := repo.Record(context.Background(), &domain.UsageRecord{
		UserID:     "u1",
		RecordedAt: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		Plan:       domain.PlanStudent,
		TokensLeft: "99",
		PromptSize: 42,
	})
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "ai_usage", *client.input.TableName)
	userID, ok := client.input.Item["user_id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "u1", userID.Value)
	plan, ok := client.input.Item["plan"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "student", plan.Value)
	_, hasRequestID := client.input.Item["request_id"]
	assert.False(t, hasRequestID)
}

func TestDynamoUsageRepository_RecordError(t *testing.T) {
	client := &fakeDynamo{err: errors.New("throttled")}
	repo := NewDynamoUsageRepository(client, "ai_usage")

	err := repo.Record(context.Background(), &domain.UsageRecord{UserID: "u1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestExternalIDColumn(t *testing.T) {
	col, err := externalIDColumn(domain.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "google_id", col)

	col, err = externalIDColumn(domain.ProviderGitHub)
	require.NoError(t, err)
	assert.Equal(t, "github_id", col)

	_, err = externalIDColumn(domain.ProviderLocal)
	assert.Error(t, err)
}

func TestPostgresRepositories_MalformedIDsAreNotFound(t *testing.T) {
	ctx := context.Background()
	const badID = "abc"

	data := NewPostgresDataRepository(nil)
	_, err := data.UpdateContent(ctx, "7c0e3b9e-7d55-4a4f-9d1e-6f1f7f3f0a11", badID, "text")
	assert.ErrorIs(t, err, domain.ErrDataNotFound)
	_, err = data.Delete(ctx, "7c0e3b9e-7d55-4a4f-9d1e-6f1f7f3f0a11", badID)
	assert.ErrorIs(t, err, domain.ErrDataNotFound)

	content := NewPostgresContentRepository(nil)
	item, err := content.GetByID(ctx, "tutor-1", domain.ContentBlog, badID)
	assert.NoError(t, err)
	assert.Nil(t, item)
	assert.ErrorIs(t, content.Update(ctx, &domain.Content{ID: badID}), domain.ErrContentNotFound)
	assert.ErrorIs(t, content.Delete(ctx, "tutor-1", domain.ContentBlog, badID), domain.ErrContentNotFound)

	tutors := NewPostgresTutorRepository(nil)
	tutor, err := tutors.FindByID(ctx, badID)
	assert.NoError(t, err)
	assert.Nil(t, tutor)

	users := NewPostgresUserRepository(nil)
	user, err := users.FindByID(ctx, badID)
	assert.NoError(t, err)
	assert.Nil(t, user)
	_, err = users.GetQuota(ctx, badID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = users.SetPlan(ctx, badID, domain.PlanStudent)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, applied, err := users.RefillQuota(ctx, badID, domain.PlanFree, time.Now(), 24*time.Hour)
	assert.NoError(t, err)
	assert.False(t, applied)
	_, ok, err := users.ConsumeToken(ctx, badID)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, users.IncrementAIUsage(ctx, badID), domain.ErrUserNotFound)
	assert.ErrorIs(t, users.UpdateProfilePicture(ctx, badID, nil, nil), domain.ErrUserNotFound)
	assert.ErrorIs(t, users.LinkExternalID(ctx, badID, domain.ProviderGoogle, "g-1"), domain.ErrUserNotFound)
}
