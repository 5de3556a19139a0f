package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// ProviderConfig holds OAuth client credentials
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleProvider signs users in with Google using OpenID Connect
type GoogleProvider struct {
	oauth2   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleProvider discovers the Google OIDC configuration
func NewGoogleProvider(ctx context.Context, cfg *ProviderConfig) (*GoogleProvider, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover google oidc provider: %w", err)
	}

	return &GoogleProvider{
		oauth2: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (p *GoogleProvider) Name() domain.AuthProvider {
	return domain.ProviderGoogle
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth2.AuthCodeURL(state)
}

// Exchange trades the code for tokens and verifies the ID token
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*ExternalIdentity, error) {
	token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, upstream(err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, upstream(errors.New("no id_token in token response"))
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, upstream(err)
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, upstream(err)
	}

	return &ExternalIdentity{
		Provider:    domain.ProviderGoogle,
		ExternalID:  claims.Sub,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}
