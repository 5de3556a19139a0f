package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGitHubTestServer(t *testing.T, profileEmail string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "gho_test", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_test", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(githubUser{ID: 4242, Login: "octo", Email: profileEmail})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]githubEmail{
			{Email: "old@example.com", Primary: false, Verified: true},
			{Email: "Octo@Example.com", Primary: true, Verified: true},
		})
	})
	return httptest.NewServer(mux)
}

func newTestGitHubProvider(srv *httptest.Server) *GitHubProvider {
	p := NewGitHubProvider(&ProviderConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})
	p.oauth2.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}
	p.apiBaseURL = srv.URL
	return p
}

func TestGitHubProvider_Exchange(t *testing.T) {
	srv := newGitHubTestServer(t, "")
	defer srv.Close()
	p := newTestGitHubProvider(srv)

	ident, err := p.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderGitHub, ident.Provider)
	assert.Equal(t, "4242", ident.ExternalID)
	assert.Equal(t, "octo@example.com", ident.Email)
	assert.Equal(t, "octo", ident.DisplayName)
}

func TestGitHubProvider_ExchangePublicEmail(t *testing.T) {
	srv := newGitHubTestServer(t, "public@example.com")
	defer srv.Close()
	p := newTestGitHubProvider(srv)

	ident, err := p.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "public@example.com", ident.Email)
}

func TestGitHubProvider_ExchangeFailureIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad_verification_code", http.StatusBadRequest)
	}))
	defer srv.Close()
	p := newTestGitHubProvider(srv)

	_, err := p.Exchange(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestGitHubProvider_AuthCodeURL(t *testing.T) {
	p := NewGitHubProvider(&ProviderConfig{ClientID: "id", ClientSecret: "secret"})
	u, err := url.Parse(p.AuthCodeURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "id", u.Query().Get("client_id"))
}

func TestRegistryAndState(t *testing.T) {
	gh := NewGitHubProvider(&ProviderConfig{ClientID: "id"})
	reg := NewRegistry(gh, nil)

	p, ok := reg.Get(domain.ProviderGitHub)
	assert.True(t, ok)
	assert.Equal(t, gh, p)
	_, ok = reg.Get(domain.ProviderGoogle)
	assert.False(t, ok)

	s1, err := GenerateState()
	require.NoError(t, err)
	s2, err := GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
	assert.NotEmpty(t, s1)
}
