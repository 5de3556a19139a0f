package handler

import (
	"context"
	"net/http"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/errreport"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// ContextKeyIdentity is the gin context key holding the *domain.Identity
const ContextKeyIdentity = "identity"

// IdentityAuthenticator resolves an Authorization header to an identity
type IdentityAuthenticator interface {
	Authenticate(ctx context.Context, authorization string) (*domain.Identity, error)
}

// Authenticate rejects requests without a valid bearer token and stores
// the identity on the context
func Authenticate(authn IdentityAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authn.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(ContextKeyIdentity, identity)
		middleware.SetIdentityID(c, identity.ID())
		c.Next()
	}
}

// RequireUser only lets user identities through
func RequireUser() gin.HandlerFunc {
	return requireKind(domain.KindUser, domain.ErrUserRequired)
}

// RequireTutor only lets tutor identities through
func RequireTutor() gin.HandlerFunc {
	return requireKind(domain.KindTutor, domain.ErrTutorRequired)
}

func requireKind(kind domain.IdentityKind, denied error) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := currentIdentity(c)
		if identity == nil || identity.Kind != kind {
			respondError(c, denied)
			return
		}
		c.Next()
	}
}

// currentIdentity returns the identity stored by Authenticate
func currentIdentity(c *gin.Context) *domain.Identity {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return nil
	}
	identity, _ := v.(*domain.Identity)
	return identity
}

// currentUser returns the user behind a RequireUser route
func currentUser(c *gin.Context) *domain.User {
	if identity := currentIdentity(c); identity != nil && identity.Kind == domain.KindUser {
		return identity.User
	}
	return nil
}

// currentTutor returns the tutor behind a RequireTutor route
func currentTutor(c *gin.Context) *domain.Tutor {
	if identity := currentIdentity(c); identity != nil && identity.Kind == domain.KindTutor {
		return identity.Tutor
	}
	return nil
}

// ReportErrors forwards the errors of failed requests to the reporter
func ReportErrors(reporter errreport.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < http.StatusInternalServerError || len(c.Errors) == 0 {
			return
		}
		reporter.Report(c.Request, c.Errors.Last().Err)
	}
}
