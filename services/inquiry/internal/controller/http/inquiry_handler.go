package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"estate-market/pkg/logger"
	"estate-market/services/inquiry/internal/entity"
	"estate-market/services/inquiry/internal/usecase"

	"github.com/gin-gonic/gin"
)

type InquiryHandler struct {
	inquiryUseCase      usecase.InquiryUseCase
	notificationUseCase usecase.NotificationUseCase
	logger              *logger.Logger
}

func NewInquiryHandler(inquiryUseCase usecase.InquiryUseCase, notificationUseCase usecase.NotificationUseCase, logger *logger.Logger) *InquiryHandler {
	return &InquiryHandler{
		inquiryUseCase:      inquiryUseCase,
		notificationUseCase: notificationUseCase,
		logger:              logger,
	}
}

func viewerFrom(c *gin.Context) entity.Viewer {
	return entity.Viewer{UserID: c.GetString("user_id"), Role: c.GetString("user_role")}
}

func (h *InquiryHandler) respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, entity.ErrListingNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": "Listing is not accepting inquiries"})
	case errors.Is(err, entity.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("[INQUIRY] %s: %v", message, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

func paging(c *gin.Context) (int, int, error) {
	limit, offset := 0, 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: limit must be an integer", entity.ErrInvalidInput)
		}
		limit = v
	}
	if raw := c.Query("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, 0, fmt.Errorf("%w: offset must be a non-negative integer", entity.ErrInvalidInput)
		}
		offset = v
	}
	return limit, offset, nil
}

type InquiryRequest struct {
	Message      string `json:"message" binding:"required"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateInquiry godoc
// @Summary      Send an inquiry
// @Description  Send a message to the seller of an active listing
// @Tags         inquiries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Listing ID"
// @Param        request body InquiryRequest true "Inquiry"
// @Success      201  {object}  entity.Inquiry
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /listings/{id}/inquiries [post]
func (h *InquiryHandler) CreateInquiry(c *gin.Context) {
	var req InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := h.inquiryUseCase.CreateInquiry(c.Request.Context(), viewerFrom(c), c.Param("id"), entity.InquiryInput{
		Message:      req.Message,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		h.respondError(c, err, "Failed to send inquiry")
		return
	}
	c.JSON(http.StatusCreated, inquiry)
}

type listFunc func(c *gin.Context, viewer entity.Viewer, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error)

func (h *InquiryHandler) list(c *gin.Context, fetch listFunc) {
	limit, offset, err := paging(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	inquiries, total, err := fetch(c, viewerFrom(c), entity.Status(c.Query("status")), limit, offset)
	if err != nil {
		h.respondError(c, err, "Failed to get inquiries")
		return
	}
	if inquiries == nil {
		inquiries = []*entity.Inquiry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"inquiries": inquiries,
		"count":     len(inquiries),
		"total":     total,
		"offset":    offset,
	})
}

// ListSent godoc
// @Summary      Sent inquiries
// @Description  Inquiries the caller sent, newest first
// @Tags         inquiries
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Inquiry status" Enums(new, read, replied, closed)
// @Param        limit query int false "Page size (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /me/inquiries/sent [get]
func (h *InquiryHandler) ListSent(c *gin.Context) {
	h.list(c, func(c *gin.Context, v entity.Viewer, s entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error) {
		return h.inquiryUseCase.ListSent(c.Request.Context(), v, s, limit, offset)
	})
}

// ListReceived godoc
// @Summary      Received inquiries
// @Description  Inquiries on the caller's listings, newest first
// @Tags         inquiries
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Inquiry status" Enums(new, read, replied, closed)
// @Param        limit query int false "Page size (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /me/inquiries/received [get]
func (h *InquiryHandler) ListReceived(c *gin.Context) {
	h.list(c, func(c *gin.Context, v entity.Viewer, s entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error) {
		return h.inquiryUseCase.ListReceived(c.Request.Context(), v, s, limit, offset)
	})
}

// GetInquiry godoc
// @Summary      Get inquiry
// @Description  Visible to the buyer, the seller and admins
// @Tags         inquiries
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Inquiry ID"
// @Success      200  {object}  entity.Inquiry
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /inquiries/{id} [get]
func (h *InquiryHandler) GetInquiry(c *gin.Context) {
	inquiry, err := h.inquiryUseCase.GetInquiry(c.Request.Context(), viewerFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to get inquiry")
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

// UpdateStatus godoc
// @Summary      Update inquiry status
// @Description  Move the inquiry forward. Sellers may mark it read, replied or closed; buyers may only close it.
// @Tags         inquiries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Inquiry ID"
// @Param        request body StatusRequest true "New status"
// @Success      200  {object}  entity.Inquiry
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /inquiries/{id}/status [patch]
func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inquiry, err := h.inquiryUseCase.UpdateStatus(c.Request.Context(), viewerFrom(c), c.Param("id"), entity.Status(req.Status))
	if err != nil {
		h.respondError(c, err, "Failed to update inquiry")
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

// ListNotifications godoc
// @Summary      Notifications
// @Description  Inquiry notifications for the caller, newest first. Only the latest 100 are kept.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Page size (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /me/notifications [get]
func (h *InquiryHandler) ListNotifications(c *gin.Context) {
	limit, offset, err := paging(c)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	notifications, total, err := h.notificationUseCase.Notifications(c.Request.Context(), viewerFrom(c), limit, offset)
	if err != nil {
		h.respondError(c, err, "Failed to get notifications")
		return
	}
	if notifications == nil {
		notifications = []entity.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
		"total":         total,
	})
}
