package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error code for unique violation
const pgUniqueViolationCode = "23505"

const userColumns = `
	id, username, email, COALESCE(password_hash, ''), provider, google_id, github_id,
	profile_picture_url, profile_picture_key, ai_usage_count,
	plan, daily_token_limit, tokens_left, last_reset, created_at, updated_at`

const quotaColumns = `plan, daily_token_limit, tokens_left, last_reset`

// PostgresUserRepository implements UserRepository and QuotaStore using PostgreSQL
type PostgresUserRepository struct {
	db *database.PostgresDB
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *database.PostgresDB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// FindByID retrieves a user by ID
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.Pool().QueryRow(ctx, query, id))
}

// FindByEmail retrieves a user by email
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.Pool().QueryRow(ctx, query, email))
}

// FindByExternalID retrieves a user by OAuth provider account id
func (r *PostgresUserRepository) FindByExternalID(ctx context.Context, provider domain.AuthProvider, externalID string) (*domain.User, error) {
	column, err := externalIDColumn(provider)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	return r.scanUser(r.db.Pool().QueryRow(ctx, query, externalID))
}

// Insert creates a new user
func (r *PostgresUserRepository) Insert(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, username, email, password_hash, provider, google_id, github_id,
			ai_usage_count, plan, daily_token_limit, tokens_left, last_reset,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	var passwordHash *string
	if user.PasswordHash != "" {
		passwordHash = &user.PasswordHash
	}

	_, err := r.db.Pool().Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		passwordHash,
		string(user.Provider),
		user.GoogleID,
		user.GitHubID,
		user.AIUsageCount,
		string(user.Quota.Plan),
		user.Quota.DailyLimit.Ptr(),
		user.Quota.TokensLeft.Ptr(),
		user.Quota.LastReset,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return domain.ErrIdentityExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// LinkExternalID attaches an OAuth provider account id to a user
func (r *PostgresUserRepository) LinkExternalID(ctx context.Context, userID string, provider domain.AuthProvider, externalID string) error {
	if !validID(userID) {
		return domain.ErrUserNotFound
	}
	column, err := externalIDColumn(provider)
	if err != nil {
		return err
	}
	query := `UPDATE users SET ` + column + ` = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "link external id", query, userID, externalID)
}

// UpdateProfilePicture sets or clears the profile picture
func (r *PostgresUserRepository) UpdateProfilePicture(ctx context.Context, userID string, url, key *string) error {
	if !validID(userID) {
		return domain.ErrUserNotFound
	}
	query := `
		UPDATE users
		SET profile_picture_url = $2, profile_picture_key = $3, updated_at = NOW()
		WHERE id = $1`
	return r.execOne(ctx, "update profile picture", query, userID, url, key)
}

// IncrementAIUsage bumps the lifetime AI usage counter
func (r *PostgresUserRepository) IncrementAIUsage(ctx context.Context, userID string) error {
	if !validID(userID) {
		return domain.ErrUserNotFound
	}
	query := `UPDATE users SET ai_usage_count = ai_usage_count + 1 WHERE id = $1`
	return r.execOne(ctx, "increment ai usage", query, userID)
}

// GetQuota returns the quota state of a user
func (r *PostgresUserRepository) GetQuota(ctx context.Context, userID string) (*domain.QuotaState, error) {
	if !validID(userID) {
		return nil, domain.ErrUserNotFound
	}
	query := `SELECT ` + quotaColumns + ` FROM users WHERE id = $1`
	q, err := scanQuota(r.db.Pool().QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}
	return q, nil
}

// RefillQuota resets the allowance if the window has elapsed and the plan
// is unchanged since it was read
func (r *PostgresUserRepository) RefillQuota(ctx context.Context, userID string, plan domain.Plan, now time.Time, window time.Duration) (*domain.QuotaState, bool, error) {
	if !validID(userID) {
		return nil, false, nil
	}

	query := `
		UPDATE users
		SET daily_token_limit = $2, tokens_left = $2, last_reset = $3, updated_at = $3
		WHERE id = $1 AND plan = $4 AND last_reset <= $5
		RETURNING ` + quotaColumns

	q, err := scanQuota(r.db.Pool().QueryRow(ctx, query,
		userID,
		plan.Limit().Ptr(),
		now,
		string(plan),
		now.Add(-window),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to refill quota: %w", err)
	}
	return q, true, nil
}

// ConsumeToken atomically takes one token if any is left
func (r *PostgresUserRepository) ConsumeToken(ctx context.Context, userID string) (int, bool, error) {
	if !validID(userID) {
		return 0, false, nil
	}

	query := `
		UPDATE users
		SET tokens_left = tokens_left - 1
		WHERE id = $1 AND tokens_left > 0
		RETURNING tokens_left`

	var left int
	err := r.db.Pool().QueryRow(ctx, query, userID).Scan(&left)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to consume token: %w", err)
	}
	return left, true, nil
}

// SetPlan switches the plan and grants the new ceiling immediately
func (r *PostgresUserRepository) SetPlan(ctx context.Context, userID string, plan domain.Plan) (*domain.QuotaState, error) {
	if !validID(userID) {
		return nil, domain.ErrUserNotFound
	}

	query := `
		UPDATE users
		SET plan = $2, daily_token_limit = $3, tokens_left = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + quotaColumns

	q, err := scanQuota(r.db.Pool().QueryRow(ctx, query, userID, string(plan), plan.Limit().Ptr()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set plan: %w", err)
	}
	return q, nil
}

func (r *PostgresUserRepository) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.Pool().Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return domain.ErrIdentityExists
		}
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// scanUser scans a single user from a row
func (r *PostgresUserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var provider, plan string
	var limit, left *int

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&provider,
		&user.GoogleID,
		&user.GitHubID,
		&user.ProfilePictureURL,
		&user.ProfilePictureKey,
		&user.AIUsageCount,
		&plan,
		&limit,
		&left,
		&user.Quota.LastReset,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.Provider = domain.AuthProvider(provider)
	user.Quota.Plan = domain.Plan(plan)
	user.Quota.DailyLimit = domain.AllowanceFromPtr(limit)
	user.Quota.TokensLeft = domain.AllowanceFromPtr(left)

	return &user, nil
}

func scanQuota(row pgx.Row) (*domain.QuotaState, error) {
	var q domain.QuotaState
	var plan string
	var limit, left *int

	if err := row.Scan(&plan, &limit, &left, &q.LastReset); err != nil {
		return nil, err
	}

	q.Plan = domain.Plan(plan)
	q.DailyLimit = domain.AllowanceFromPtr(limit)
	q.TokensLeft = domain.AllowanceFromPtr(left)
	return &q, nil
}

func externalIDColumn(provider domain.AuthProvider) (string, error) {
	switch provider {
	case domain.ProviderGoogle:
		return "google_id", nil
	case domain.ProviderGitHub:
		return "github_id", nil
	}
	return "", fmt.Errorf("unsupported auth provider %q", provider)
}
