// Package oauth exchanges OAuth authorization codes for external identities.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
)

// Provider is an OAuth identity provider
type Provider interface {
	// Name returns the provider the identities belong to
	Name() domain.AuthProvider
	// AuthCodeURL returns the consent page URL carrying state
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the external identity.
	// Failures are domain.ErrUpstream errors.
	Exchange(ctx context.Context, code string) (*ExternalIdentity, error)
}

// ExternalIdentity is the account returned by a provider
type ExternalIdentity struct {
	Provider    domain.AuthProvider
	ExternalID  string
	Email       string
	DisplayName string
}

// Registry holds the configured providers by name
type Registry map[domain.AuthProvider]Provider

// NewRegistry indexes providers by name, skipping nil entries
func NewRegistry(providers ...Provider) Registry {
	r := make(Registry)
	for _, p := range providers {
		if p != nil {
			r[p.Name()] = p
		}
	}
	return r
}

// Get returns the provider registered under name
func (r Registry) Get(name domain.AuthProvider) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}

// GenerateState returns a random value for the OAuth state parameter
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func upstream(err error) error {
	return domain.WrapError(domain.KindUpstream, "Identity provider request failed", err)
}
