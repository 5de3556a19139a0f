package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType separates access and refresh tokens
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims are the JWT claims of a session token. Subject is the identity id.
type Claims struct {
	jwt.RegisteredClaims
	Kind      domain.IdentityKind `json:"kind"`
	TokenType TokenType           `json:"typ"`
}

// TokenServiceConfig holds configuration for TokenService
type TokenServiceConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	TutorAccessExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
}

// TokenPair is an issued access token with its optional refresh token
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TokenService signs and verifies session tokens. Access and refresh
// tokens use distinct keys, so one is never accepted as the other.
type TokenService struct {
	config *TokenServiceConfig
	now    func() time.Time
}

// NewTokenService creates a new TokenService
func NewTokenService(config *TokenServiceConfig) (*TokenService, error) {
	if config.AccessSecret == "" || config.RefreshSecret == "" {
		return nil, errors.New("token secrets are required")
	}
	if config.AccessSecret == config.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if config.AccessTokenExpiry == 0 {
		config.AccessTokenExpiry = time.Hour
	}
	if config.TutorAccessExpiry == 0 {
		config.TutorAccessExpiry = config.AccessTokenExpiry
	}
	if config.RefreshTokenExpiry == 0 {
		config.RefreshTokenExpiry = 7 * 24 * time.Hour
	}
	return &TokenService{config: config, now: time.Now}, nil
}

// Issue signs an access token, and a refresh token when withRefresh is set
func (s *TokenService) Issue(id string, kind domain.IdentityKind, withRefresh bool) (*TokenPair, error) {
	expiry := s.config.AccessTokenExpiry
	if kind == domain.KindTutor {
		expiry = s.config.TutorAccessExpiry
	}

	access, err := s.sign(id, kind, TokenAccess, expiry)
	if err != nil {
		return nil, err
	}

	pair := &TokenPair{
		AccessToken: access,
		ExpiresIn:   int64(expiry.Seconds()),
	}

	if withRefresh {
		refresh, err := s.sign(id, kind, TokenRefresh, s.config.RefreshTokenExpiry)
		if err != nil {
			return nil, err
		}
		pair.RefreshToken = refresh
	}

	return pair, nil
}

// VerifyAccess validates an access token and returns its claims
func (s *TokenService) VerifyAccess(token string) (*Claims, error) {
	return s.verify(token, TokenAccess)
}

// VerifyRefresh validates a refresh token and returns its claims
func (s *TokenService) VerifyRefresh(token string) (*Claims, error) {
	return s.verify(token, TokenRefresh)
}

func (s *TokenService) sign(id string, kind domain.IdentityKind, typ TokenType, expiry time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   id,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Kind:      kind,
		TokenType: typ,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret(typ))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (s *TokenService) verify(token string, typ TokenType) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret(typ), nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	if claims.TokenType != typ || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	if claims.Kind != domain.KindUser && claims.Kind != domain.KindTutor {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

func (s *TokenService) secret(typ TokenType) []byte {
	if typ == TokenRefresh {
		return []byte(s.config.RefreshSecret)
	}
	return []byte(s.config.AccessSecret)
}
