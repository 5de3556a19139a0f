package handler

import (
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/service"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/response"
	"github.com/gin-gonic/gin"
)

// Me returns the authenticated tutor
// GET /api/tutors/me
func Me(c *gin.Context) {
	tutor := currentTutor(c)
	if tutor == nil {
		respondError(c, domain.ErrTutorNotFound)
		return
	}

	response.Success(c, tutor)
}

// ContentHandler serves one kind of tutor content
type ContentHandler struct {
	contentService service.ContentService
	kind           domain.ContentKind
}

// NewContentHandler creates a ContentHandler for kind
func NewContentHandler(contentService service.ContentService, kind domain.ContentKind) *ContentHandler {
	return &ContentHandler{contentService: contentService, kind: kind}
}

// Create adds content owned by the current tutor
// POST /api/tutors/{blogs,learning-paths,resources}
func (h *ContentHandler) Create(c *gin.Context) {
	var req dto.CreateContentRequest
	if !bindJSON(c, &req) {
		return
	}

	content, err := h.contentService.Create(c.Request.Context(), currentTutor(c).ID, h.kind, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, content)
}

// List returns the content of the current tutor
// GET /api/tutors/{blogs,learning-paths,resources}
func (h *ContentHandler) List(c *gin.Context) {
	items, err := h.contentService.List(c.Request.Context(), currentTutor(c).ID, h.kind)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, items)
}

// Update changes the fields present in the body
// PUT /api/tutors/{blogs,learning-paths,resources}/:id
func (h *ContentHandler) Update(c *gin.Context) {
	var req dto.UpdateContentRequest
	if !bindJSON(c, &req) {
		return
	}

	content, err := h.contentService.Update(c.Request.Context(), currentTutor(c).ID, h.kind, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, content)
}

// Delete removes content owned by the current tutor
// DELETE /api/tutors/{blogs,learning-paths,resources}/:id
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.contentService.Delete(c.Request.Context(), currentTutor(c).ID, h.kind, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessMessage(c, "Deleted successfully", nil)
}
