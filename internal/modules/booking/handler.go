package booking

import (
	"errors"
	"net/http"
	"strconv"

	"mentorhub/internal/domain"
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
	rg.GET("/appointments", h.ListMyAppointments)
	rg.GET("/appointments/:id", h.GetAppointment)
	rg.POST("/appointments/:id/accept", h.AcceptAppointment)
	rg.POST("/appointments/:id/cancel", h.CancelAppointment)
	rg.POST("/appointments/:id/complete", h.CompleteAppointment)
}

// RegisterMenteeRoutes holds the routes mounted behind the mentee-only
// middleware. Only mentees may request sessions.
func (h *Handler) RegisterMenteeRoutes(rg *gin.RouterGroup) {
	rg.POST("/appointments", h.CreateAppointment)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	a, err := h.service.RequestBooking(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Mentor not found")
		case errors.Is(err, ErrOutsideAvailability):
			response.Error(c, http.StatusUnprocessableEntity, "OUTSIDE_AVAILABILITY", "Requested time is outside the mentor's availability")
		case errors.Is(err, ErrConflict):
			response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "Time slot is already taken")
		default:
			c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create appointment")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"appointment": toPublic(a)})
}

func (h *Handler) AcceptAppointment(c *gin.Context) {
	id, ok := h.appointmentID(c)
	if !ok {
		return
	}

	a, err := h.service.AcceptBooking(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrMeetingProvider):
			response.Error(c, http.StatusBadGateway, "MEETING_PROVIDER_ERROR", "Could not create the meeting, try again later")
		default:
			h.writeLifecycleError(c, err, "Failed to accept appointment")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"appointment": toPublic(a)})
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := h.appointmentID(c)
	if !ok {
		return
	}

	a, err := h.service.CancelBooking(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeLifecycleError(c, err, "Failed to cancel appointment")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"appointment": toPublic(a)})
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	id, ok := h.appointmentID(c)
	if !ok {
		return
	}

	a, err := h.service.CompleteBooking(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooEarly):
			response.Error(c, http.StatusUnprocessableEntity, "TOO_EARLY", "Session has not ended yet")
		case errors.Is(err, ErrAlreadyCompleted):
			response.Error(c, http.StatusConflict, "ALREADY_COMPLETED", "Appointment is already completed")
		default:
			h.writeLifecycleError(c, err, "Failed to complete appointment")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"appointment": toPublic(a)})
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := h.appointmentID(c)
	if !ok {
		return
	}

	a, err := h.service.GetAppointment(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.writeLifecycleError(c, err, "Failed to load appointment")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"appointment": toPublic(a)})
}

func (h *Handler) ListMyAppointments(c *gin.Context) {
	userID := c.GetInt64("user_id")
	role := domain.UserRole(c.GetString("role"))

	list, err := h.service.ListMyAppointments(c.Request.Context(), userID, role)
	if err != nil {
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list appointments")
		return
	}

	out := make([]AppointmentPublic, 0, len(list))
	for i := range list {
		out = append(out, toPublic(&list[i]))
	}
	response.Success(c, http.StatusOK, gin.H{"appointments": out})
}

func (h *Handler) appointmentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid appointment id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeLifecycleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Appointment not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed for this appointment")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Appointment status does not allow this action")
	default:
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
