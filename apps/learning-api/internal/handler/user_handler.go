package handler

import (
	"errors"
	"fmt"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/service"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/response"
	"github.com/gin-gonic/gin"
)

// UserHandler handles the profile, plan and AI endpoints of a user
type UserHandler struct {
	userService   service.UserService
	planService   service.PlanService
	maxUploadSize int64
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, planService service.PlanService, maxUploadSize int64) *UserHandler {
	if maxUploadSize == 0 {
		maxUploadSize = service.DefaultMaxUploadSize
	}
	return &UserHandler{
		userService:   userService,
		planService:   planService,
		maxUploadSize: maxUploadSize,
	}
}

// Profile returns the current user with its quota
// GET /api/user/profile
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.userService.Profile(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.NewProfileResponse(user))
}

// UpdatePlan switches the current user to another plan
// PUT /api/user/update-plan
func (h *UserHandler) UpdatePlan(c *gin.Context) {
	var req dto.UpdatePlanRequest
	if !bindJSON(c, &req) {
		return
	}

	quota, err := h.planService.ChangePlan(c.Request.Context(), currentUser(c).ID, req.Plan, domain.PlanSourceUser)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessMessage(c, fmt.Sprintf("Plan updated to %s successfully.", quota.Plan), dto.NewQuotaResponse(quota))
}

// UseAI runs one quota-gated AI request
// POST /api/user/use-ai
func (h *UserHandler) UseAI(c *gin.Context) {
	var req dto.UseAIRequest
	if !bindJSON(c, &req) {
		return
	}

	result, decision, err := h.userService.UseAI(c.Request.Context(), currentUser(c).ID, req.Prompt)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			respondQuotaExceeded(c, err, decision)
			return
		}
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// UploadProfilePicture replaces the profile picture
// POST /api/user/profile-picture
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	upload, err := readUpload(c, h.maxUploadSize)
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := h.userService.UploadProfilePicture(c.Request.Context(), currentUser(c).ID, upload)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, &dto.ProfilePictureResponse{ProfilePictureURL: url})
}

// DeleteProfilePicture removes the profile picture
// DELETE /api/user/profile-picture
func (h *UserHandler) DeleteProfilePicture(c *gin.Context) {
	if err := h.userService.DeleteProfilePicture(c.Request.Context(), currentUser(c).ID); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessMessage(c, "Profile picture deleted successfully", nil)
}
