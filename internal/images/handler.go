package images

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/server/middleware"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/server/respond"
	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/telemetry"
)

// maxRequestBytes allows for multipart framing overhead on top of the image
// size cap, so a file of exactly MaxUploadBytes still fits in the request.
const maxRequestBytes = MaxUploadBytes + 1<<20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches image routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
	rg.GET("/images", h.list)
	rg.DELETE("/images/delete", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	if ownerID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthenticated", "User ID is required for upload")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file provided")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	img, err := h.Svc.Upload(c.Request.Context(), ownerID, fileHeader.Filename, contentType, fileHeader.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidType):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid file type. Only JPEG, PNG, WebP, and SVG images are allowed.")
		case errors.Is(err, ErrTooLarge):
			respond.Error(c, http.StatusBadRequest, "validation_error", "File too large. Maximum size is 10MB.")
		case errors.Is(err, ErrUnauthenticated):
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "User ID is required for upload")
		default:
			telemetry.Error("images.upload.failed", map[string]any{
				"err":        err.Error(),
				"owner_id":   ownerID,
				"file_name":  fileHeader.Filename,
				"size":       fileHeader.Size,
				"request_id": middleware.RequestIDFromContext(c),
			})
			respond.Error(c, http.StatusInternalServerError, "upstream_error", "Upload failed. Please try again.")
		}
		return
	}

	respond.OK(c, gin.H{
		"success":  true,
		"url":      img.URL,
		"filename": img.Filename,
		"size":     img.Size,
		"type":     img.MimeType,
	})
}

func (h *Handler) list(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	imgs, err := h.Svc.List(c.Request.Context(), ownerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthenticated):
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "User ID is required")
		default:
			telemetry.Error("images.list.failed", map[string]any{
				"err":        err.Error(),
				"owner_id":   ownerID,
				"request_id": middleware.RequestIDFromContext(c),
			})
			respond.Error(c, http.StatusInternalServerError, "upstream_error", "Failed to fetch images")
		}
		return
	}

	respond.OK(c, gin.H{
		"success": true,
		"images":  imgs,
		"count":   len(imgs),
	})
}

func (h *Handler) remove(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Image URL is required")
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), ownerID, url); err != nil {
		switch {
		case errors.Is(err, ErrUnauthenticated):
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "User ID is required")
		case errors.Is(err, ErrUnauthorized):
			respond.Error(c, http.StatusForbidden, "unauthorized", "Unauthorized: Cannot delete images not belonging to this account.")
		default:
			telemetry.Error("images.delete.failed", map[string]any{
				"err":        err.Error(),
				"owner_id":   ownerID,
				"url":        url,
				"request_id": middleware.RequestIDFromContext(c),
			})
			respond.Error(c, http.StatusInternalServerError, "upstream_error", "Failed to delete image")
		}
		return
	}

	respond.OK(c, gin.H{"success": true})
}
