package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rumahkita/rumahkita-backend/internal/api/response"
	"github.com/rumahkita/rumahkita-backend/internal/inquiry"
	"github.com/rumahkita/rumahkita-backend/internal/thread"
	"github.com/rumahkita/rumahkita-backend/internal/validator"
)

// InquiryHandler handles inquiry-related HTTP requests
type InquiryHandler struct {
	service *inquiry.Service
}

// NewInquiryHandler creates a new InquiryHandler
func NewInquiryHandler(service *inquiry.Service) *InquiryHandler {
	return &InquiryHandler{service: service}
}

// ThreadResponse is the reconstructed timeline of one inquiry
type ThreadResponse struct {
	InquiryID uint           `json:"inquiry_id"`
	Status    string         `json:"status"`
	Entries   []thread.Entry `json:"entries"`
	Messages  []thread.Message `json:"messages"`
}

// SendMessageRequest is the body of POST /api/inquiries/:id/messages
type SendMessageRequest struct {
	SenderID uint   `json:"sender_id"`
	Text     string `json:"text"`
}

// AssignRequest is the body of POST /api/inquiries/:id/assign
type AssignRequest struct {
	UnitID uint `json:"unit_id"`
}

// List handles GET /api/inquiries. The list is deduplicated to one row per
// listing; the manager view shows a single merged thread per property.
func (h *InquiryHandler) List(c echo.Context) error {
	managerID, err := strconv.ParseUint(c.QueryParam("manager_id"), 10, 32)
	if err != nil || managerID == 0 {
		return response.BadRequest(c, "manager_id is required")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = validator.ValidatePagination(limit, offset)

	items, total, err := h.service.ListItemsForManager(c.Request().Context(), uint(managerID), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, limit, offset)
}

// Get handles GET /api/inquiries/:id
func (h *InquiryHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid inquiry ID")
	}

	inq, err := h.service.GetInquiry(c.Request().Context(), uint(id))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, inq)
}

// GetThread handles GET /api/inquiries/:id/thread. It returns the
// reconstructed timeline for both structured and legacy inquiries.
func (h *InquiryHandler) GetThread(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid inquiry ID")
	}

	inq, timeline, err := h.service.GetThread(c.Request().Context(), uint(id))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, ThreadResponse{
		InquiryID: inq.ID,
		Status:    string(inq.Status),
		Entries:   timeline.Entries,
		Messages:  timeline.Messages,
	})
}

// SendMessage handles POST /api/inquiries/:id/messages. The response is an
// acknowledgement only; the stored message is obtained by re-fetching the
// thread, which is what keeps optimistic clients honest.
func (h *InquiryHandler) SendMessage(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid inquiry ID")
	}

	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.SenderID == 0 {
		return response.BadRequest(c, "sender_id is required")
	}
	if req.Text == "" {
		return response.BadRequest(c, "text is required")
	}

	if err := h.service.SendMessage(c.Request().Context(), uint(id), req.SenderID, req.Text); err != nil {
		return response.Error(c, err)
	}

	return response.Accepted(c, nil)
}

// Assign handles POST /api/inquiries/:id/assign
func (h *InquiryHandler) Assign(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid inquiry ID")
	}

	var req AssignRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.UnitID == 0 {
		return response.BadRequest(c, "unit_id is required")
	}

	if err := h.service.AssignTenant(c.Request().Context(), uint(id), req.UnitID); err != nil {
		return response.Error(c, err)
	}

	return response.SuccessWithMessage(c, nil, "tenant assigned")
}
