package app

import (
	"net/http"
	"strconv"

	"ridelink/internal/repository"
	"ridelink/internal/util"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userRepo   repository.UserRepository
	cloudinary *util.CloudinaryClient
}

func NewUserHandler(userRepo repository.UserRepository, cloudinary *util.CloudinaryClient) *UserHandler {
	return &UserHandler{
		userRepo:   userRepo,
		cloudinary: cloudinary,
	}
}

// SearchUsers searches users by display name
// GET /api/v1/users/search?q=xxx&limit=20&offset=0
func (h *UserHandler) SearchUsers(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		util.BadRequest(c, "q is required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	users, err := h.userRepo.SearchUsers(keyword, limit, offset)
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, "Failed to search users", nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Users retrieved", gin.H{"users": users})
}

// GetUser returns a user's public profile
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userRepo.FindByID(c.Param("id"))
	if err != nil {
		util.NotFound(c, "User not found")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User retrieved", gin.H{"user": user})
}

// UploadAvatar uploads a profile image to Cloudinary
// POST /api/v1/users/me/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if h.cloudinary == nil {
		util.ErrorResponse(c, http.StatusServiceUnavailable, "Image uploads are disabled", nil)
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		util.BadRequest(c, "avatar file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, "Failed to read file", nil)
		return
	}
	defer file.Close()

	url, err := h.cloudinary.UploadAvatar(file, fileHeader.Filename)
	if err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.userRepo.UpdateAvatar(userID.(string), url); err != nil {
		util.ErrorResponse(c, http.StatusInternalServerError, "Failed to save avatar", nil)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Avatar updated", gin.H{"avatar_url": url})
}
