package handler

import (
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/service"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/response"
	"github.com/gin-gonic/gin"
)

// DataHandler handles the files and AI packages a user saves
type DataHandler struct {
	dataService   service.DataService
	maxUploadSize int64
}

// NewDataHandler creates a new DataHandler
func NewDataHandler(dataService service.DataService, maxUploadSize int64) *DataHandler {
	if maxUploadSize == 0 {
		maxUploadSize = service.DefaultMaxUploadSize
	}
	return &DataHandler{dataService: dataService, maxUploadSize: maxUploadSize}
}

// Create saves a data item
// POST /api/user/data
func (h *DataHandler) Create(c *gin.Context) {
	var req dto.CreateDataRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.dataService.Create(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, item)
}

// List returns the data items of the current user
// GET /api/user/data
func (h *DataHandler) List(c *gin.Context) {
	items, err := h.dataService.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, items)
}

// Update replaces the content of a data item
// PUT /api/user/data/:id
func (h *DataHandler) Update(c *gin.Context) {
	var req dto.UpdateDataRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.dataService.UpdateContent(c.Request.Context(), currentUser(c).ID, c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, item)
}

// Delete removes a data item and its file
// DELETE /api/user/data/:id
func (h *DataHandler) Delete(c *gin.Context) {
	if err := h.dataService.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessMessage(c, "Data deleted successfully", nil)
}

// Upload stores a document as a file item
// POST /api/user/data/upload
func (h *DataHandler) Upload(c *gin.Context) {
	h.upload(c, domain.DataFile)
}

// UploadPackage stores a document as an AI package
// POST /api/user/data/upload-package
func (h *DataHandler) UploadPackage(c *gin.Context) {
	h.upload(c, domain.DataAIPackage)
}

func (h *DataHandler) upload(c *gin.Context, dataType domain.DataType) {
	upload, err := readUpload(c, h.maxUploadSize)
	if err != nil {
		respondError(c, err)
		return
	}

	fields := &dto.UploadDataRequest{
		ExtractedText: c.PostForm("extractedText"),
		AISolution:    c.PostForm("aiSolution"),
	}

	item, err := h.dataService.Upload(c.Request.Context(), currentUser(c).ID, dataType, fields, upload)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, item)
}
