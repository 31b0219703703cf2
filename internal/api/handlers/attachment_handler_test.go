package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumahkita/rumahkita-backend/internal/models"
)

func multipartUpload(t *testing.T, files map[string]string, uploadedBy string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if uploadedBy != "" {
		require.NoError(t, writer.WriteField("uploaded_by", uploadedBy))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func (env *handlerEnv) uploadRequest(t *testing.T, target string, files map[string]string, uploadedBy string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	body, contentType := multipartUpload(t, files, uploadedBy)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	return rec, env.e.NewContext(req, rec)
}

// ==================== Upload Tests ====================

func TestAttachmentHandler_Upload_StoresFiles(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewAttachmentHandler(env.service, env.attachmentRepo)

	env.seedInquiry(t, &models.Inquiry{ID: 3, PropertyID: 10, TenantID: 100, ManagerID: 7, Status: models.InquiryStatusActive})

	rec, c := env.uploadRequest(t, "/api/inquiries/3/attachments", map[string]string{
		"floorplan.pdf": "pdf bytes",
	}, "100")
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := handler.Upload(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data []models.Attachment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "floorplan.pdf", resp.Data[0].FileName)
	assert.Equal(t, uint(100), resp.Data[0].UploadedBy)
	assert.NotEmpty(t, resp.Data[0].FilePath)
}

func TestAttachmentHandler_Upload_BlockedExtensionRejected(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewAttachmentHandler(env.service, env.attachmentRepo)

	env.seedInquiry(t, &models.Inquiry{ID: 3, PropertyID: 10, TenantID: 100, ManagerID: 7, Status: models.InquiryStatusActive})

	rec, c := env.uploadRequest(t, "/api/inquiries/3/attachments", map[string]string{
		"payload.exe": "MZ",
	}, "100")
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := handler.Upload(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	env.db.Model(&models.Attachment{}).Count(&count)
	assert.Zero(t, count)
}

func TestAttachmentHandler_Upload_RequiresUploadedBy(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewAttachmentHandler(env.service, env.attachmentRepo)

	env.seedInquiry(t, &models.Inquiry{ID: 3, PropertyID: 10, TenantID: 100, ManagerID: 7, Status: models.InquiryStatusActive})

	rec, c := env.uploadRequest(t, "/api/inquiries/3/attachments", map[string]string{
		"photo.jpg": "jpeg bytes",
	}, "")
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := handler.Upload(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttachmentHandler_Upload_ClosedInquiryConflict(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewAttachmentHandler(env.service, env.attachmentRepo)

	env.seedInquiry(t, &models.Inquiry{ID: 3, PropertyID: 10, TenantID: 100, ManagerID: 7, Status: models.InquiryStatusClosed})

	rec, c := env.uploadRequest(t, "/api/inquiries/3/attachments", map[string]string{
		"photo.jpg": "jpeg bytes",
	}, "100")
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := handler.Upload(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// ==================== List Tests ====================

func TestAttachmentHandler_List_ReturnsMetadata(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewAttachmentHandler(env.service, env.attachmentRepo)

	env.seedInquiry(t, &models.Inquiry{ID: 3, PropertyID: 10, TenantID: 100, ManagerID: 7, Status: models.InquiryStatusActive})
	require.NoError(t, env.db.Create(&models.Attachment{
		ID:         1,
		InquiryID:  3,
		FileName:   "photo.jpg",
		FileType:   "image/jpeg",
		FileSize:   1024,
		FilePath:   "/tmp/nonexistent",
		UploadedBy: 100,
		CreatedAt:  time.Now(),
	}).Error)

	rec, c := env.request(http.MethodGet, "/api/inquiries/3/attachments", "")
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := handler.List(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "photo.jpg")
}

func TestAttachmentHandler_List_UnknownInquiry(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewAttachmentHandler(env.service, env.attachmentRepo)

	rec, c := env.request(http.MethodGet, "/api/inquiries/404/attachments", "")
	c.SetParamNames("id")
	c.SetParamValues("404")

	err := handler.List(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ==================== Download Tests ====================

func TestAttachmentHandler_Download_ReturnsContent(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewAttachmentHandler(env.service, env.attachmentRepo)

	env.seedInquiry(t, &models.Inquiry{ID: 3, PropertyID: 10, TenantID: 100, ManagerID: 7, Status: models.InquiryStatusActive})

	// Upload through the service so the file exists on disk
	uploadRec, uploadCtx := env.uploadRequest(t, "/api/inquiries/3/attachments", map[string]string{
		"photo.jpg": "jpeg bytes",
	}, "100")
	uploadCtx.SetParamNames("id")
	uploadCtx.SetParamValues("3")
	require.NoError(t, handler.Upload(uploadCtx))
	require.Equal(t, http.StatusCreated, uploadRec.Code)

	var created struct {
		Data []models.Attachment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(uploadRec.Body.Bytes(), &created))
	require.Len(t, created.Data, 1)

	rec, c := env.request(http.MethodGet, "/api/attachments/1/download", "")
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := handler.Download(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg bytes", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="photo.jpg"`)
}

func TestAttachmentHandler_Download_NotFound(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewAttachmentHandler(env.service, env.attachmentRepo)

	rec, c := env.request(http.MethodGet, "/api/attachments/404/download", "")
	c.SetParamNames("id")
	c.SetParamValues("404")

	err := handler.Download(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttachmentHandler_Get_ReturnsMetadata(t *testing.T) {
	env := newHandlerEnv(t)
	handler := NewAttachmentHandler(env.service, env.attachmentRepo)

	env.seedInquiry(t, &models.Inquiry{ID: 3, PropertyID: 10, TenantID: 100, ManagerID: 7, Status: models.InquiryStatusActive})
	require.NoError(t, env.db.Create(&models.Attachment{
		ID:         8,
		InquiryID:  3,
		FileName:   "contract.pdf",
		FileType:   "application/pdf",
		FileSize:   2048,
		FilePath:   "/tmp/nonexistent",
		UploadedBy: 7,
		CreatedAt:  time.Now(),
	}).Error)

	rec, c := env.request(http.MethodGet, "/api/attachments/8", "")
	c.SetParamNames("id")
	c.SetParamValues("8")

	err := handler.Get(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "contract.pdf")
}
