package handler

import (
	"context"
	"net/http"
	"time"

	"comichub/internal/http-api/dto"
	"comichub/internal/http-api/middleware"
	"comichub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users  service.UserService
	comics service.ComicService
}

func NewUserHandler(users service.UserService, comics service.ComicService) *UserHandler {
	return &UserHandler{users: users, comics: comics}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/:username", h.Profile)
	rg.GET("/:username/comics", h.Comics)
	rg.POST("/:username/avatar", authMW, h.UploadAvatar)
}

func (h *UserHandler) Profile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Role:       user.Role,
		AvatarPath: user.AvatarPath,
	})
}

// Comics lists everything the user has uploaded, newest first.
func (h *UserHandler) Comics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		renderError(c, err)
		return
	}
	list, err := h.comics.GetByUser(ctx, user.ID)
	if err != nil {
		renderError(c, err)
		return
	}
	total, err := h.comics.CountByUser(ctx, user.ID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.FromModelsToResponses(list), "total": total})
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	user, err := h.users.UploadAvatar(ctx, c.Param("username"), service.MultipartFile(fh), middleware.CurrentUser(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Role:       user.Role,
		AvatarPath: user.AvatarPath,
	})
}
