package availability

import (
	"errors"
	"net/http"
	"strconv"

	"mentorhub/internal/pkg/response"
	"mentorhub/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the public read endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/mentors/:id/availability", h.GetAvailability)
	rg.GET("/mentors/:id/slots", h.GetDaySlots)
}

// RegisterMentorRoutes attaches the endpoints that require a mentor token.
func (h *Handler) RegisterMentorRoutes(rg *gin.RouterGroup) {
	rg.PUT("/mentors/me/availability", h.SetAvailability)
}

func (h *Handler) SetAvailability(c *gin.Context) {
	mentorID := c.GetInt64("user_id")

	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	for _, w := range req.Windows {
		if details := validator.Validate(w); details != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid availability window", details)
			return
		}
	}

	windows, err := h.service.SetWeeklyAvailability(c.Request.Context(), mentorID, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update availability")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"windows": ToPublicWindows(windows)})
}

func (h *Handler) GetAvailability(c *gin.Context) {
	mentorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || mentorID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid mentor id")
		return
	}

	windows, err := h.service.GetWeeklyAvailability(c.Request.Context(), mentorID)
	if err != nil {
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load availability")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"windows": ToPublicWindows(windows)})
}

func (h *Handler) GetDaySlots(c *gin.Context) {
	mentorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || mentorID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid mentor id")
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date query parameter is required")
		return
	}

	slots, err := h.service.GetDaySlots(c.Request.Context(), mentorID, dateStr)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrMentorNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Mentor not found")
		default:
			c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute slots")
		}
		return
	}

	response.Success(c, http.StatusOK, slots)
}
