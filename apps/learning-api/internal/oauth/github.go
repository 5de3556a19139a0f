package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const githubAPIBaseURL = "https://api.github.com"

// GitHubProvider signs users in with GitHub OAuth apps
type GitHubProvider struct {
	oauth2     *oauth2.Config
	apiBaseURL string
}

// NewGitHubProvider creates a new GitHubProvider
func NewGitHubProvider(cfg *ProviderConfig) *GitHubProvider {
	return &GitHubProvider{
		oauth2: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoints.GitHub,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBaseURL: githubAPIBaseURL,
	}
}

func (p *GitHubProvider) Name() domain.AuthProvider {
	return domain.ProviderGitHub
}

func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.oauth2.AuthCodeURL(state)
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades the code for a token and reads the GitHub profile. The
// primary verified address is used when the profile email is private.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*ExternalIdentity, error) {
	token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, upstream(err)
	}
	client := p.oauth2.Client(ctx, token)

	var user githubUser
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, upstream(err)
	}

	email := user.Email
	if email == "" {
		var emails []githubEmail
		if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
			return nil, upstream(err)
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &ExternalIdentity{
		Provider:    domain.ProviderGitHub,
		ExternalID:  strconv.FormatInt(user.ID, 10),
		Email:       strings.ToLower(email),
		DisplayName: name,
	}, nil
}

func (p *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github %s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
