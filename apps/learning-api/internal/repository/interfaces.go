package repository

import (
	"context"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
)

// UserRepository defines the interface for user account data access.
// Lookups return nil, nil when no row matches.
type UserRepository interface {
	// FindByID retrieves a user by ID
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail retrieves a user by email, the login identifier
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByExternalID retrieves a user by OAuth provider account id
	FindByExternalID(ctx context.Context, provider domain.AuthProvider, externalID string) (*domain.User, error)
	// Insert creates a new user. Returns domain.ErrIdentityExists on a
	// duplicate email or username.
	Insert(ctx context.Context, user *domain.User) error
	// LinkExternalID attaches an OAuth provider account id to a user
	LinkExternalID(ctx context.Context, userID string, provider domain.AuthProvider, externalID string) error
	// UpdateProfilePicture sets or clears the profile picture
	UpdateProfilePicture(ctx context.Context, userID string, url, key *string) error
	// IncrementAIUsage bumps the lifetime AI usage counter
	IncrementAIUsage(ctx context.Context, userID string) error
}

// QuotaStore holds the per-user quota state. Every mutation is a single
// conditional statement so concurrent callers never overdraw.
type QuotaStore interface {
	// GetQuota returns the quota state of a user
	GetQuota(ctx context.Context, userID string) (*domain.QuotaState, error)
	// RefillQuota resets the allowance to the plan ceiling and moves the
	// window anchor to now, only if the user is still on plan and the
	// anchor is at or before now-window. applied is false when another
	// caller refilled first or the plan changed.
	RefillQuota(ctx context.Context, userID string, plan domain.Plan, now time.Time, window time.Duration) (state *domain.QuotaState, applied bool, err error)
	// ConsumeToken decrements tokens_left by one if it is positive.
	// ok is false when nothing was left to consume.
	ConsumeToken(ctx context.Context, userID string) (left int, ok bool, err error)
	// SetPlan switches the plan and sets limit and tokens left to the new
	// ceiling, leaving the window anchor untouched.
	SetPlan(ctx context.Context, userID string, plan domain.Plan) (*domain.QuotaState, error)
}

// TutorRepository defines the interface for tutor account data access
type TutorRepository interface {
	// FindByID retrieves a tutor by ID
	FindByID(ctx context.Context, id string) (*domain.Tutor, error)
	// FindByEmail retrieves a tutor by email
	FindByEmail(ctx context.Context, email string) (*domain.Tutor, error)
	// Insert creates a new tutor. Returns domain.ErrTutorExists on a
	// duplicate email.
	Insert(ctx context.Context, tutor *domain.Tutor) error
}

// ContentRepository defines the interface for tutor content.
// Every query is scoped by tutor and kind.
type ContentRepository interface {
	// Create creates a new content item
	Create(ctx context.Context, content *domain.Content) error
	// GetByID retrieves one item owned by tutorID
	GetByID(ctx context.Context, tutorID string, kind domain.ContentKind, id string) (*domain.Content, error)
	// ListByTutor lists the items of one kind owned by tutorID, newest first
	ListByTutor(ctx context.Context, tutorID string, kind domain.ContentKind) ([]*domain.Content, error)
	// Update updates an item. Returns domain.ErrContentNotFound when the
	// item does not belong to the tutor.
	Update(ctx context.Context, content *domain.Content) error
	// Delete deletes an item owned by tutorID
	Delete(ctx context.Context, tutorID string, kind domain.ContentKind, id string) error
}

// DataRepository defines the interface for user data items
type DataRepository interface {
	// Create stores a new data item
	Create(ctx context.Context, item *domain.DataItem) error
	// ListByUser lists all items of a user, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.DataItem, error)
	// UpdateContent replaces the content of an item owned by userID
	UpdateContent(ctx context.Context, userID, id, content string) (*domain.DataItem, error)
	// Delete deletes an item owned by userID and returns it, so any
	// stored file can be removed
	Delete(ctx context.Context, userID, id string) (*domain.DataItem, error)
}

// UsageRepository is the append-only AI usage ledger
type UsageRepository interface {
	// Record appends one usage entry
	Record(ctx context.Context, record *domain.UsageRecord) error
}
