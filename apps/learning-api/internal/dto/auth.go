package dto

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RegisterRequest represents user registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// Normalize trims whitespace and lower-cases the email
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks required fields
func (r *RegisterRequest) Validate() (bool, string) {
	if r.Username == "" || r.Email == "" || r.Password == "" {
		return false, "Username, email and password are required"
	}
	if !emailRegex.MatchString(r.Email) {
		return false, "Invalid email format"
	}
	if len(r.Password) < 6 {
		return false, "Password must be at least 6 characters"
	}
	// bcrypt ignores bytes past 72
	if len(r.Password) > 72 {
		return false, "Password must not exceed 72 characters"
	}
	return true, ""
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Normalize lower-cases the email
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks required fields
func (r *LoginRequest) Validate() (bool, string) {
	if r.Email == "" || r.Password == "" {
		return false, "Email and password are required"
	}
	return true, ""
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TutorRegisterRequest represents tutor registration request.
// Every field is required.
type TutorRegisterRequest struct {
	Name            string   `json:"name"`
	Subject         string   `json:"subject"`
	Expertise       []string `json:"expertise"`
	YearsExperience *int     `json:"yearsExperience"`
	Email           string   `json:"email" binding:"required,email"`
	Password        string   `json:"password" binding:"required,max=72"`
	Description     string   `json:"description"`
	ImageURL        string   `json:"imageUrl"`
}

// Normalize trims whitespace and lower-cases the email
func (r *TutorRegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Description = strings.TrimSpace(r.Description)
}

// Validate checks required fields
func (r *TutorRegisterRequest) Validate() (bool, string) {
	if r.Name == "" || r.Subject == "" || len(r.Expertise) == 0 || r.YearsExperience == nil ||
		r.Email == "" || r.Password == "" || r.Description == "" {
		return false, "All fields are required"
	}
	if *r.YearsExperience < 0 {
		return false, "Years of experience must not be negative"
	}
	if !emailRegex.MatchString(r.Email) {
		return false, "Invalid email format"
	}
	if len(r.Password) > 72 {
		return false, "Password must not exceed 72 characters"
	}
	return true, ""
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn"`
}
