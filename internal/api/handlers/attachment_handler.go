package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rumahkita/rumahkita-backend/internal/api/response"
	"github.com/rumahkita/rumahkita-backend/internal/inquiry"
	"github.com/rumahkita/rumahkita-backend/internal/repository"
)

// AttachmentHandler handles attachment-related HTTP requests
type AttachmentHandler struct {
	service        *inquiry.Service
	attachmentRepo repository.AttachmentRepository
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(service *inquiry.Service, attachmentRepo repository.AttachmentRepository) *AttachmentHandler {
	return &AttachmentHandler{
		service:        service,
		attachmentRepo: attachmentRepo,
	}
}

// List handles GET /api/inquiries/:id/attachments. Metadata only; content is
// fetched per attachment through Download.
func (h *AttachmentHandler) List(c echo.Context) error {
	inquiryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid inquiry ID")
	}

	if _, err := h.service.GetInquiry(c.Request().Context(), uint(inquiryID)); err != nil {
		return response.Error(c, err)
	}

	attachments, err := h.attachmentRepo.ListByInquiry(c.Request().Context(), uint(inquiryID))
	if err != nil {
		return response.InternalError(c, "failed to list attachments")
	}

	return response.Success(c, attachments)
}

// Upload handles POST /api/inquiries/:id/attachments (multipart/form-data,
// field name "files"). Returns the created metadata in upload order.
func (h *AttachmentHandler) Upload(c echo.Context) error {
	inquiryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid inquiry ID")
	}

	uploadedBy, err := strconv.ParseUint(c.FormValue("uploaded_by"), 10, 32)
	if err != nil || uploadedBy == 0 {
		return response.BadRequest(c, "uploaded_by is required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, "invalid multipart form")
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return response.BadRequest(c, "no files provided")
	}

	files := make([]inquiry.UploadFile, 0, len(fileHeaders))
	opened := make([]interface{ Close() error }, 0, len(fileHeaders))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, fh := range fileHeaders {
		src, err := fh.Open()
		if err != nil {
			return response.InternalError(c, "failed to read uploaded file")
		}
		opened = append(opened, src)

		files = append(files, inquiry.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     src,
		})
	}

	created, err := h.service.UploadAttachments(c.Request().Context(), uint(inquiryID), uint(uploadedBy), files)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, created)
}

// Get handles GET /api/attachments/:id
func (h *AttachmentHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	attachment, err := h.attachmentRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "attachment not found")
		}
		return response.InternalError(c, "failed to get attachment")
	}

	return response.Success(c, attachment)
}

// Download handles GET /api/attachments/:id/download. Repeat downloads of
// the same attachment are served from the session media cache.
func (h *AttachmentHandler) Download(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	blob, err := h.service.DownloadAttachment(c.Request().Context(), uint(id))
	if err != nil {
		return response.Error(c, err)
	}

	mimeType := blob.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, blob.FileName))

	return c.Blob(http.StatusOK, mimeType, blob.Data)
}
