package app

import (
	"errors"
	"net/http"

	"ridelink/internal/service"
	"ridelink/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		// Parse validation errors and provide user-friendly messages
		var validationErr validator.ValidationErrors
		if errors.As(err, &validationErr) {
			for _, fieldErr := range validationErr {
				switch fieldErr.Field() {
				case "Password":
					util.BadRequest(c, "Password must be at least 8 characters")
					return
				case "Email":
					util.BadRequest(c, "Invalid email format")
					return
				case "Name":
					util.BadRequest(c, "Name is required")
					return
				}
			}
		}
		util.BadRequest(c, err.Error())
		return
	}

	user, token, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Account created", gin.H{
		"user":  user,
		"token": token,
	})
}

// Login authenticates a user and returns a JWT
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			util.Unauthorized(c, "Invalid email or password")
			return
		}
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Logged in", gin.H{
		"user":  user,
		"token": token,
	})
}

// GetMe returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.GetMe(userID.(string))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User retrieved", gin.H{"user": user})
}
