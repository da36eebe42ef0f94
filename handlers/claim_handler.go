package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"sinistro-backend/service"

	"github.com/gin-gonic/gin"
)

// ClaimHandler handles HTTP requests for claims and their documents
type ClaimHandler struct {
	claimService *service.ClaimService
	logger       *slog.Logger
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler(claimService *service.ClaimService, logger *slog.Logger) *ClaimHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimHandler{
		claimService: claimService,
		logger:       logger.With("handler", "claims"),
	}
}

// RegisterRoutes mounts the claim endpoints on the API group
func (h *ClaimHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/claims", h.RegisterClaim)
	api.GET("/claims/:id", h.TrackClaim)
	api.POST("/claims/:id/documents", h.AttachDocument)
	api.GET("/claims/:id/documents", h.ListDocuments)
	api.GET("/documents/:id", h.GetDocument)
}

// RegisterClaimRequest represents the request body for registering a claim
type RegisterClaimRequest struct {
	Description string `json:"description" binding:"required"`
}

// RegisterClaim handles POST /api/claims
func (h *ClaimHandler) RegisterClaim(c *gin.Context) {
	var req RegisterClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.claimService.RegisterClaim(c.Request.Context(), service.RegisterClaimRequest{
		Description: req.Description,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/claims/%d", result.ID))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}

// TrackClaim handles GET /api/claims/:id
func (h *ClaimHandler) TrackClaim(c *gin.Context) {
	id, ok := parseID(c, "Invalid claim ID format")
	if !ok {
		return
	}

	result, found, err := h.claimService.TrackClaim(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	if !found {
		h.respondServiceError(c, service.ErrClaimNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// AttachDocument handles POST /api/claims/:id/documents with a multipart "document" field
func (h *ClaimHandler) AttachDocument(c *gin.Context) {
	id, ok := parseID(c, "Invalid claim ID format")
	if !ok {
		return
	}

	// A missing file is passed through as a nil upload so the service rejects it.
	var upload *service.DocumentUpload
	if fileHeader, err := c.FormFile("document"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", "Failed to read uploaded document")
			return
		}
		defer file.Close()

		upload = &service.DocumentUpload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Content:  file,
		}
	}

	result, err := h.claimService.AttachDocument(c.Request.Context(), id, upload)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// ListDocuments handles GET /api/claims/:id/documents
func (h *ClaimHandler) ListDocuments(c *gin.Context) {
	id, ok := parseID(c, "Invalid claim ID format")
	if !ok {
		return
	}

	docs, err := h.claimService.ListDocuments(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    docs,
	})
}

// GetDocument handles GET /api/documents/:id
func (h *ClaimHandler) GetDocument(c *gin.Context) {
	id, ok := parseID(c, "Invalid document ID format")
	if !ok {
		return
	}

	doc, reader, err := h.claimService.GetDocumentContent(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.DataFromReader(http.StatusOK, doc.Size, doc.ContentType, reader, nil)
}

func parseID(c *gin.Context, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", message)
		return 0, false
	}
	return id, true
}

// respondServiceError maps service errors to HTTP responses
func (h *ClaimHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDocument):
		respondError(c, http.StatusBadRequest, "INVALID_DOCUMENT", "Invalid document.")
	case errors.Is(err, service.ErrDocumentTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "DOCUMENT_TOO_LARGE", "Document exceeds the maximum allowed size.")
	case errors.Is(err, service.ErrInvalidClaim):
		respondError(c, http.StatusBadRequest, "INVALID_CLAIM", "Description is required.")
	case errors.Is(err, service.ErrClaimNotFound):
		respondError(c, http.StatusNotFound, "CLAIM_NOT_FOUND", "Claim not found.")
	case errors.Is(err, service.ErrDocumentNotFound):
		respondError(c, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found.")
	default:
		h.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process request.")
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
