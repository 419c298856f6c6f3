package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medihack/competency-service/internal/services"
	"github.com/medihack/competency-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// GetProfile returns the caller's account
// @Summary Get profile
// @Tags user
// @Produce json
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /user/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get profile")
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetProgress returns one row per assessed competency, most recent first
// @Summary Get progress
// @Tags user
// @Produce json
// @Success 200 {array} models.ProgressTracking
// @Router /user/progress [get]
func (h *UserHandler) GetProgress(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	progress, err := h.userService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get progress")
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *UserHandler) GetHistory(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	history, err := h.userService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get history")
		return
	}

	c.JSON(http.StatusOK, history)
}
