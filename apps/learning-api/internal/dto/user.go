package dto

import (
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
)

// ProfileResponse is the user profile including quota state
type ProfileResponse struct {
	ID                string           `json:"id"`
	Username          string           `json:"username"`
	Email             string           `json:"email"`
	Provider          string           `json:"provider"`
	Plan              domain.Plan      `json:"plan"`
	DailyTokenLimit   domain.Allowance `json:"dailyTokenLimit"`
	TokensLeft        domain.Allowance `json:"tokensLeft"`
	LastReset         time.Time        `json:"lastReset"`
	AIUsageCount      int              `json:"aiUsageCount"`
	ProfilePictureURL *string          `json:"profilePictureUrl,omitempty"`
}

// NewProfileResponse builds a ProfileResponse from a user
func NewProfileResponse(u *domain.User) *ProfileResponse {
	return &ProfileResponse{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Provider:          string(u.Provider),
		Plan:              u.Quota.Plan,
		DailyTokenLimit:   u.Quota.DailyLimit,
		TokensLeft:        u.Quota.TokensLeft,
		LastReset:         u.Quota.LastReset,
		AIUsageCount:      u.AIUsageCount,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// UpdatePlanRequest represents a plan change request
type UpdatePlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// QuotaResponse is the quota state returned after a plan change
type QuotaResponse struct {
	Plan            domain.Plan      `json:"plan"`
	DailyTokenLimit domain.Allowance `json:"dailyTokenLimit"`
	TokensLeft      domain.Allowance `json:"tokensLeft"`
	LastReset       time.Time        `json:"lastReset"`
}

// NewQuotaResponse builds a QuotaResponse from quota state
func NewQuotaResponse(q *domain.QuotaState) *QuotaResponse {
	return &QuotaResponse{
		Plan:            q.Plan,
		DailyTokenLimit: q.DailyLimit,
		TokensLeft:      q.TokensLeft,
		LastReset:       q.LastReset,
	}
}

// UseAIRequest represents a quota-gated AI request
type UseAIRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// UseAIResponse is returned for a permitted AI request
type UseAIResponse struct {
	Response     string           `json:"response"`
	TokensLeft   domain.Allowance `json:"tokensLeft"`
	NextRefillAt time.Time        `json:"nextRefillAt"`
}

// QuotaExceededDetails is attached to a denied AI request
type QuotaExceededDetails struct {
	Plan         domain.Plan      `json:"plan"`
	TokensLeft   domain.Allowance `json:"tokensLeft"`
	NextRefillAt time.Time        `json:"nextRefillAt"`
}

// CreateDataRequest represents a new data item
type CreateDataRequest struct {
	Type       string `json:"type" binding:"required"`
	Content    string `json:"content"`
	AISolution string `json:"aiSolution"`
}

// UploadDataRequest carries the form fields sent with an uploaded document
type UploadDataRequest struct {
	ExtractedText string `form:"extractedText"`
	AISolution    string `form:"aiSolution"`
}

// UpdateDataRequest replaces the content of a data item
type UpdateDataRequest struct {
	Content string `json:"content"`
}

// ProfilePictureResponse is returned after a profile picture upload
type ProfilePictureResponse struct {
	ProfilePictureURL string `json:"profilePictureUrl"`
}
