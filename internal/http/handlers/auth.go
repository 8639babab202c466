package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"traintrack/internal/http/middleware"
	"traintrack/internal/services"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, token, err := h.Auth.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "User registered successfully",
		"data":    user,
		"token":   token,
	})
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "email and password are required")
		return
	}
	user, token, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Login successful",
		"data":    user,
		"token":   token,
	})
}

// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	rc := middleware.RequestContext(c)
	if err := h.Auth.Logout(c.Request.Context(), rc.Token); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondMessage(c, http.StatusOK, "Logged out successfully", nil)
}

// GET /api/auth/profile
func (h *Handler) Profile(c *gin.Context) {
	user, err := h.Auth.Profile(c.Request.Context(), middleware.RequestContext(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondSuccess(c, http.StatusOK, user)
}

// PUT /api/auth/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := h.Auth.UpdateProfile(c.Request.Context(), middleware.RequestContext(c).UserID, services.ProfileUpdate{
		Name:            req.Name,
		Phone:           req.Phone,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondMessage(c, http.StatusOK, "Profile updated successfully", user)
}
