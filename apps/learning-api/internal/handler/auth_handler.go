package handler

import (
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/service"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/response"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles user and tutor credential endpoints
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	req.Normalize()
	if valid, msg := req.Validate(); !valid {
		invalid(c, msg)
		return
	}

	result, err := h.authService.RegisterUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	req.Normalize()
	if valid, msg := req.Validate(); !valid {
		invalid(c, msg)
		return
	}

	result, err := h.authService.LoginUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// Refresh exchanges a refresh token for a new access token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// RegisterTutor handles tutor registration
// POST /api/tutors/register
func (h *AuthHandler) RegisterTutor(c *gin.Context) {
	var req dto.TutorRegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	req.Normalize()
	if valid, msg := req.Validate(); !valid {
		invalid(c, msg)
		return
	}

	result, err := h.authService.RegisterTutor(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// LoginTutor handles tutor login
// POST /api/tutors/login
func (h *AuthHandler) LoginTutor(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	req.Normalize()
	if valid, msg := req.Validate(); !valid {
		invalid(c, msg)
		return
	}

	result, err := h.authService.LoginTutor(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}
