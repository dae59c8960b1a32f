package payment

import (
	"errors"
	"net/http"
	"strconv"

	"mentorhub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/appointments/:id/payment", h.GetPaymentInfo)
	rg.POST("/appointments/:id/payment/verify", h.VerifyPayment)
}

// RegisterMentorRoutes attaches the endpoints that require a mentor token.
func (h *Handler) RegisterMentorRoutes(rg *gin.RouterGroup) {
	rg.POST("/appointments/:id/payment/paid", h.MarkPaid)
}

func (h *Handler) GetPaymentInfo(c *gin.Context) {
	id, ok := h.appointmentID(c)
	if !ok {
		return
	}

	info, err := h.service.GetPaymentInfo(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err, "Failed to load payment info")
		return
	}

	response.Success(c, http.StatusOK, info)
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	id, ok := h.appointmentID(c)
	if !ok {
		return
	}

	result, err := h.service.VerifyPayment(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err, "Failed to verify payment")
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *Handler) MarkPaid(c *gin.Context) {
	id, ok := h.appointmentID(c)
	if !ok {
		return
	}

	info, err := h.service.MarkPaid(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeError(c, err, "Failed to mark appointment paid")
		return
	}

	response.Success(c, http.StatusOK, info)
}

func (h *Handler) appointmentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid appointment id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Appointment not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed for this appointment")
	case errors.Is(err, ErrNotDue):
		response.Error(c, http.StatusConflict, "NOT_DUE", "Appointment has no payment due")
	default:
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
