package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/oauth"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/repository"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	BcryptCost int
}

// AuthService defines the interface for credential verification
type AuthService interface {
	// RegisterUser creates a local user account and signs it in
	RegisterUser(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	// LoginUser verifies user credentials
	LoginUser(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// RegisterTutor creates a tutor account and signs it in
	RegisterTutor(ctx context.Context, req *dto.TutorRegisterRequest) (*dto.AuthResponse, error)
	// LoginTutor verifies tutor credentials
	LoginTutor(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Refresh issues a new access token for a valid refresh token
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	// OAuthLogin finds or creates the user behind an external identity
	OAuthLogin(ctx context.Context, ext *oauth.ExternalIdentity) (*dto.AuthResponse, error)
}

// authService implements AuthService
type authService struct {
	users     repository.UserRepository
	tutors    repository.TutorRepository
	tokens    *TokenService
	config    *AuthServiceConfig
	dummyHash []byte
	now       func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repository.UserRepository,
	tutors repository.TutorRepository,
	tokens *TokenService,
	config *AuthServiceConfig,
) AuthService {
	if config == nil {
		config = &AuthServiceConfig{}
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}

	// Compared against when the account does not exist, so unknown
	// identifiers cost the same as wrong passwords.
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), config.BcryptCost)

	return &authService{
		users:     users,
		tutors:    tutors,
		tokens:    tokens,
		config:    config,
		dummyHash: dummyHash,
		now:       time.Now,
	}
}

// RegisterUser creates a local user account on the free plan
func (s *authService) RegisterUser(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register_user")
	defer span.End()

	span.SetAttributes(attribute.String("email", req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	user := domain.NewUser(req.Username, req.Email, domain.ProviderLocal, s.now())
	user.ID = uuid.New().String()
	user.PasswordHash = string(hash)

	if err := s.users.Insert(ctx, user); err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	return s.issue(user.ID, domain.KindUser)
}

// LoginUser verifies user credentials. Unknown emails, OAuth-only
// accounts and wrong passwords all fail with ErrInvalidCredentials.
func (s *authService) LoginUser(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login_user")
	defer span.End()

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	var hash string
	if user != nil {
		hash = user.PasswordHash
	}
	if !s.verifyPassword(hash, req.Password) {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user.ID, domain.KindUser)
}

// RegisterTutor creates a tutor account
func (s *authService) RegisterTutor(ctx context.Context, req *dto.TutorRegisterRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register_tutor")
	defer span.End()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	now := s.now()
	tutor := &domain.Tutor{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Subject:         req.Subject,
		Expertise:       req.Expertise,
		YearsExperience: *req.YearsExperience,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Email:           req.Email,
		PasswordHash:    string(hash),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.tutors.Insert(ctx, tutor); err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	return s.issue(tutor.ID, domain.KindTutor)
}

// LoginTutor verifies tutor credentials
func (s *authService) LoginTutor(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login_tutor")
	defer span.End()

	tutor, err := s.tutors.FindByEmail(ctx, req.Email)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}

	var hash string
	if tutor != nil {
		hash = tutor.PasswordHash
	}
	if !s.verifyPassword(hash, req.Password) {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(tutor.ID, domain.KindTutor)
}

// Refresh verifies a refresh token against the refresh key and issues a
// new access token. The identity must still exist.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.refresh")
	defer span.End()

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	exists, err := s.identityExists(ctx, claims.Subject, claims.Kind)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}
	if !exists {
		return nil, domain.ErrInvalidToken
	}

	pair, err := s.tokens.Issue(claims.Subject, claims.Kind, false)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{AccessToken: pair.AccessToken, ExpiresIn: pair.ExpiresIn}, nil
}

// OAuthLogin signs in the user linked to the external account. A local
// account with the same email gets the external id linked; otherwise a
// new password-less user is created.
func (s *authService) OAuthLogin(ctx context.Context, ext *oauth.ExternalIdentity) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.oauth_login")
	defer span.End()

	span.SetAttributes(attribute.String("provider", string(ext.Provider)))

	user, err := s.users.FindByExternalID(ctx, ext.Provider, ext.ExternalID)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}
	if user != nil {
		return s.issue(user.ID, domain.KindUser)
	}

	if ext.Email == "" {
		return nil, domain.ErrOAuthEmailMissing
	}

	user, err = s.users.FindByEmail(ctx, ext.Email)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}
	if user != nil {
		if err := s.users.LinkExternalID(ctx, user.ID, ext.Provider, ext.ExternalID); err != nil {
			telemetry.SetSpanError(span, err)
			return nil, err
		}
		return s.issue(user.ID, domain.KindUser)
	}

	user, err = s.createExternalUser(ctx, ext)
	if err != nil {
		telemetry.SetSpanError(span, err)
		return nil, err
	}
	return s.issue(user.ID, domain.KindUser)
}

func (s *authService) createExternalUser(ctx context.Context, ext *oauth.ExternalIdentity) (*domain.User, error) {
	base := usernameFrom(ext)
	externalID := ext.ExternalID

	// A taken username gets a short random suffix on the second attempt
	for attempt := 0; attempt < 2; attempt++ {
		username := base
		if attempt > 0 {
			username = base + "-" + uuid.New().String()[:6]
		}

		user := domain.NewUser(username, ext.Email, ext.Provider, s.now())
		user.ID = uuid.New().String()
		switch ext.Provider {
		case domain.ProviderGoogle:
			user.GoogleID = &externalID
		case domain.ProviderGitHub:
			user.GitHubID = &externalID
		}

		err := s.users.Insert(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, domain.ErrIdentityExists) {
			return nil, err
		}
	}
	return nil, domain.ErrIdentityExists
}

var usernameInvalidChars = regexp.MustCompile(`[^a-z0-9_.-]+`)

func usernameFrom(ext *oauth.ExternalIdentity) string {
	name := ext.DisplayName
	if name == "" {
		name, _, _ = strings.Cut(ext.Email, "@")
	}
	name = usernameInvalidChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "")
	if name == "" {
		name = string(ext.Provider) + "-user"
	}
	return name
}

// verifyPassword always runs one bcrypt comparison
func (s *authService) verifyPassword(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *authService) identityExists(ctx context.Context, id string, kind domain.IdentityKind) (bool, error) {
	switch kind {
	case domain.KindUser:
		u, err := s.users.FindByID(ctx, id)
		return u != nil, err
	case domain.KindTutor:
		t, err := s.tutors.FindByID(ctx, id)
		return t != nil, err
	}
	return false, nil
}

func (s *authService) issue(id string, kind domain.IdentityKind) (*dto.AuthResponse, error) {
	pair, err := s.tokens.Issue(id, kind, true)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
