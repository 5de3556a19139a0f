package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/storage"
)

// memoryUserStore is an in-memory UserRepository and QuotaStore. Each
// quota mutation runs under one lock, like the conditional statements of
// the Postgres store.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User

	// quotaErr fails every quota call
	quotaErr error
	// block makes quota calls wait for the context to end
	block bool
	// onConsume runs before ConsumeToken with the lock held
	onConsume func(u *domain.User)
	setPlans  int
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]*domain.User)}
}

func (s *memoryUserStore) put(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *memoryUserStore) get(id string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func (s *memoryUserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.get(id), nil
}

func (s *memoryUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryUserStore) FindByExternalID(ctx context.Context, provider domain.AuthProvider, externalID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		var id *string
		switch provider {
		case domain.ProviderGoogle:
			id = u.GoogleID
		case domain.ProviderGitHub:
			id = u.GitHubID
		}
		if id != nil && *id == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryUserStore) Insert(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return domain.ErrIdentityExists
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memoryUserStore) LinkExternalID(ctx context.Context, userID string, provider domain.AuthProvider, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	if u == nil {
		return domain.ErrUserNotFound
	}
	id := externalID
	switch provider {
	case domain.ProviderGoogle:
		u.GoogleID = &id
	case domain.ProviderGitHub:
		u.GitHubID = &id
	default:
		return errors.New("unsupported provider")
	}
	return nil
}

func (s *memoryUserStore) UpdateProfilePicture(ctx context.Context, userID string, url, key *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	if u == nil {
		return domain.ErrUserNotFound
	}
	u.ProfilePictureURL, u.ProfilePictureKey = url, key
	return nil
}

func (s *memoryUserStore) IncrementAIUsage(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	if u == nil {
		return domain.ErrUserNotFound
	}
	u.AIUsageCount++
	return nil
}

func (s *memoryUserStore) quotaCall(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.quotaErr
}

func (s *memoryUserStore) GetQuota(ctx context.Context, userID string) (*domain.QuotaState, error) {
	if err := s.quotaCall(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	q := u.Quota
	return &q, nil
}

func (s *memoryUserStore) RefillQuota(ctx context.Context, userID string, plan domain.Plan, now time.Time, window time.Duration) (*domain.QuotaState, bool, error) {
	if err := s.quotaCall(ctx); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	if u == nil || u.Quota.Plan != plan || u.Quota.LastReset.After(now.Add(-window)) {
		return nil, false, nil
	}
	u.Quota = u.Quota.Refilled(now)
	q := u.Quota
	return &q, true, nil
}

func (s *memoryUserStore) ConsumeToken(ctx context.Context, userID string) (int, bool, error) {
	if err := s.quotaCall(ctx); err != nil {
		return 0, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	if u == nil {
		return 0, false, nil
	}
	if s.onConsume != nil {
		s.onConsume(u)
	}
	n, ok := u.Quota.TokensLeft.Count()
	if !ok || n <= 0 {
		return 0, false, nil
	}
	u.Quota.TokensLeft = domain.Bounded(n - 1)
	return n - 1, true, nil
}

func (s *memoryUserStore) SetPlan(ctx context.Context, userID string, plan domain.Plan) (*domain.QuotaState, error) {
	if err := s.quotaCall(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	s.setPlans++
	u.Quota = u.Quota.WithPlan(plan)
	q := u.Quota
	return &q, nil
}

// newTestUser stores a user with the given quota
func newTestUser(store *memoryUserStore, id string, plan domain.Plan, tokens domain.Allowance, lastReset time.Time) *domain.User {
	u := domain.NewUser("user-"+id, id+"@example.com", domain.ProviderLocal, lastReset)
	u.ID = id
	u.Quota = domain.QuotaState{
		Plan:       plan,
		DailyLimit: plan.Limit(),
		TokensLeft: tokens,
		LastReset:  lastReset,
	}
	store.put(u)
	return u
}

type memoryTutorStore struct {
	mu     sync.Mutex
	tutors map[string]*domain.Tutor
}

func newMemoryTutorStore() *memoryTutorStore {
	return &memoryTutorStore{tutors: make(map[string]*domain.Tutor)}
}

func (s *memoryTutorStore) FindByID(ctx context.Context, id string) (*domain.Tutor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tutors[id]
	if t == nil {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *memoryTutorStore) FindByEmail(ctx context.Context, email string) (*domain.Tutor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tutors {
		if t.Email == email {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memoryTutorStore) Insert(ctx context.Context, tutor *domain.Tutor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tutors {
		if t.Email == tutor.Email {
			return domain.ErrTutorExists
		}
	}
	cp := *tutor
	s.tutors[tutor.ID] = &cp
	return nil
}

type memoryContentStore struct {
	items map[string]*domain.Content
}

func newMemoryContentStore() *memoryContentStore {
	return &memoryContentStore{items: make(map[string]*domain.Content)}
}

func (s *memoryContentStore) Create(ctx context.Context, content *domain.Content) error {
	cp := *content
	s.items[content.ID] = &cp
	return nil
}

func (s *memoryContentStore) GetByID(ctx context.Context, tutorID string, kind domain.ContentKind, id string) (*domain.Content, error) {
	c := s.items[id]
	if c == nil || c.TutorID != tutorID || c.Kind != kind {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memoryContentStore) ListByTutor(ctx context.Context, tutorID string, kind domain.ContentKind) ([]*domain.Content, error) {
	out := make([]*domain.Content, 0)
	for _, c := range s.items {
		if c.TutorID == tutorID && c.Kind == kind {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryContentStore) Update(ctx context.Context, content *domain.Content) error {
	c := s.items[content.ID]
	if c == nil || c.TutorID != content.TutorID || c.Kind != content.Kind {
		return domain.ErrContentNotFound
	}
	cp := *content
	s.items[content.ID] = &cp
	return nil
}

func (s *memoryContentStore) Delete(ctx context.Context, tutorID string, kind domain.ContentKind, id string) error {
	c := s.items[id]
	if c == nil || c.TutorID != tutorID || c.Kind != kind {
		return domain.ErrContentNotFound
	}
	delete(s.items, id)
	return nil
}

type memoryDataStore struct {
	items     map[string]*domain.DataItem
	createErr error
}

func newMemoryDataStore() *memoryDataStore {
	return &memoryDataStore{items: make(map[string]*domain.DataItem)}
}

func (s *memoryDataStore) Create(ctx context.Context, item *domain.DataItem) error {
	if s.createErr != nil {
		return s.createErr
	}
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *memoryDataStore) ListByUser(ctx context.Context, userID string) ([]*domain.DataItem, error) {
	out := make([]*domain.DataItem, 0)
	for _, it := range s.items {
		if it.UserID == userID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memoryDataStore) UpdateContent(ctx context.Context, userID, id, content string) (*domain.DataItem, error) {
	it := s.items[id]
	if it == nil || it.UserID != userID {
		return nil, domain.ErrDataNotFound
	}
	it.Content = content
	cp := *it
	return &cp, nil
}

func (s *memoryDataStore) Delete(ctx context.Context, userID, id string) (*domain.DataItem, error) {
	it := s.items[id]
	if it == nil || it.UserID != userID {
		return nil, domain.ErrDataNotFound
	}
	delete(s.items, id)
	return it, nil
}

type recordingUsage struct {
	mu      sync.Mutex
	records []*domain.UsageRecord
}

func (r *recordingUsage) Record(ctx context.Context, record *domain.UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

type planEvent struct {
	userID string
	quota  domain.QuotaState
	source domain.PlanChangeSource
}

type recordingPublisher struct {
	mu          sync.Mutex
	planChanges []planEvent
	aiUsage     []domain.Decision
	err         error
}

func (p *recordingPublisher) PublishPlanChanged(ctx context.Context, userID string, quota *domain.QuotaState, source domain.PlanChangeSource) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.planChanges = append(p.planChanges, planEvent{userID: userID, quota: *quota, source: source})
	return p.err
}

func (p *recordingPublisher) PublishAIUsage(ctx context.Context, userID string, decision *domain.Decision) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.aiUsage = append(p.aiUsage, *decision)
	return p.err
}

func (p *recordingPublisher) Close() error {
	return nil
}

// failingStorage fails every call with an upstream error
type failingStorage struct{}

func (failingStorage) Upload(context.Context, *storage.Object) (*storage.StoredObject, error) {
	return nil, errUpstreamStorage
}

func (failingStorage) Delete(context.Context, string) error {
	return errUpstreamStorage
}

var errUpstreamStorage = domain.WrapError(domain.KindUpstream, "File storage is unavailable", errors.New("connection refused"))

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
