package service

import (
	"context"
	"strings"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/repository"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Authenticator resolves a bearer token to the identity it names
type Authenticator struct {
	tokens *TokenService
	users  repository.UserRepository
	tutors repository.TutorRepository
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(tokens *TokenService, users repository.UserRepository, tutors repository.TutorRepository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, tutors: tutors}
}

// Authenticate verifies the Authorization header value and loads the
// identity. A token naming a deleted account is ErrInvalidToken, never
// a not-found error. The returned identity carries no password hash.
func (a *Authenticator) Authenticate(ctx context.Context, authorization string) (*domain.Identity, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.authenticator.authenticate")
	defer span.End()

	token, ok := bearerToken(authorization)
	if !ok {
		return nil, domain.ErrMissingToken
	}

	claims, err := a.tokens.VerifyAccess(token)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("identity.kind", string(claims.Kind)))

	var identity *domain.Identity
	switch claims.Kind {
	case domain.KindUser:
		user, err := a.users.FindByID(ctx, claims.Subject)
		if err != nil {
			telemetry.SetSpanError(span, err)
			return nil, err
		}
		if user != nil {
			identity = domain.UserIdentity(user)
		}
	case domain.KindTutor:
		tutor, err := a.tutors.FindByID(ctx, claims.Subject)
		if err != nil {
			telemetry.SetSpanError(span, err)
			return nil, err
		}
		if tutor != nil {
			identity = domain.TutorIdentity(tutor)
		}
	}

	if identity == nil {
		return nil, domain.ErrInvalidToken
	}
	return identity.StripCredentials(), nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
