package auth

import (
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
	rg.POST("/auth/register/mentee", h.RegisterMentee)
	rg.POST("/auth/register/mentor", h.RegisterMentor)
	rg.POST("/auth/login", h.Login)
	rg.GET("/mentors", h.ListMentors)
}

// RegisterProtectedRoutes attaches routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me", h.Me)
}

func (h *Handler) RegisterMentee(c *gin.Context) {
	var req RegisterMenteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	u, err := h.service.RegisterMentee(c.Request.Context(), req)
	if err != nil {
		h.writeRegisterError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": ToPublic(u)})
}

func (h *Handler) RegisterMentor(c *gin.Context) {
	var req RegisterMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	u, err := h.service.RegisterMentor(c.Request.Context(), req)
	if err != nil {
		h.writeRegisterError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": ToPublic(u)})
}

func (h *Handler) writeRegisterError(c *gin.Context, err error) {
	switch err {
	case ErrValidation:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid registration data")
	case ErrEmailTaken:
		response.Error(c, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
	default:
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register user")
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	token, u, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Wrong email or password")
		default:
			c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		}
		return
	}

	response.Success(c, http.StatusOK, LoginResponse{Token: token, User: ToPublic(u)})
}

func (h *Handler) Me(c *gin.Context) {
	userID := c.GetInt64("user_id")

	u, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		switch err {
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": ToPublic(u)})
}

func (h *Handler) ListMentors(c *gin.Context) {
	var maxRate int64
	if raw := c.Query("max_hourly_rate"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "max_hourly_rate must be a non-negative integer")
			return
		}
		maxRate = v
	}

	mentors, err := h.service.ListMentors(c.Request.Context(), maxRate)
	if err != nil {
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list mentors")
		return
	}

	out := make([]UserPublic, 0, len(mentors))
	for i := range mentors {
		out = append(out, ToPublic(&mentors[i]))
	}
	response.Success(c, http.StatusOK, gin.H{"mentors": out})
}
