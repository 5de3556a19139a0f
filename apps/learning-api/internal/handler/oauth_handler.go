package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/oauth"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/service"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 300
	oauthCookiePath  = "/api/auth"
)

// OAuthHandler runs the authorization code flow of the configured providers
type OAuthHandler struct {
	authService  service.AuthService
	providers    oauth.Registry
	secureCookie bool
}

// NewOAuthHandler creates a new OAuthHandler
func NewOAuthHandler(authService service.AuthService, providers oauth.Registry, secureCookie bool) *OAuthHandler {
	return &OAuthHandler{
		authService:  authService,
		providers:    providers,
		secureCookie: secureCookie,
	}
}

// Start redirects to the provider consent page
// GET /api/auth/:provider
func (h *OAuthHandler) Start(c *gin.Context) {
	provider, ok := h.provider(c)
	if !ok {
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, oauthCookiePath, "", h.secureCookie, true)
	c.Redirect(http.StatusFound, provider.AuthCodeURL(state))
}

// Callback verifies the state, exchanges the code and signs the user in
// GET /api/auth/:provider/callback
func (h *OAuthHandler) Callback(c *gin.Context) {
	provider, ok := h.provider(c)
	if !ok {
		return
	}

	cookie, err := c.Cookie(oauthStateCookie)
	state := c.Query("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(state)) != 1 {
		respondError(c, domain.ErrInvalidOAuthState)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, "", -1, oauthCookiePath, "", h.secureCookie, true)

	code := c.Query("code")
	if code == "" {
		invalid(c, "Missing authorization code")
		return
	}

	ext, err := provider.Exchange(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.authService.OAuthLogin(c.Request.Context(), ext)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

func (h *OAuthHandler) provider(c *gin.Context) (oauth.Provider, bool) {
	provider, ok := h.providers.Get(domain.AuthProvider(c.Param("provider")))
	if !ok {
		response.NotFound(c, "Unknown identity provider")
		c.Abort()
		return nil, false
	}
	return provider, true
}
