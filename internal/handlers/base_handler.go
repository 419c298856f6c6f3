package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medihack/competency-service/internal/gateway"
	"github.com/medihack/competency-service/internal/services"
	"github.com/medihack/competency-service/internal/utils"
	"github.com/medihack/competency-service/internal/validator"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

const (
	msgSessionIDRequired  = "Session ID is required"
	msgSessionNotFound    = "Session not found. Please start a new assessment session."
	msgSessionForbidden   = "Unauthorized access to session"
	msgInvalidPayload     = "Invalid request payload"
	msgValidationFailed   = "Validation failed"
	msgUserNotFound       = "User not found"
	msgUsernameTaken      = "Username already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgAuthRequired       = "Authentication required"
	msgInvalidToken       = "Invalid or expired token"
	msgAdminRequired      = "Admin access required"
	msgUserRequired       = "User access required"
)

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c, h.logger).Error(msg, args...)
}

// bindJSON decodes the body into req and writes a 400 on failure.
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   msgInvalidPayload,
			Details: err.Error(),
		})
		return false
	}
	return true
}

// requireUserID returns the authenticated user's id or writes a 401.
func (h *BaseHandler) requireUserID(c *gin.Context) (string, bool) {
	userID, err := GetUserIDFromContext(c)
	if err != nil || userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: msgAuthRequired})
		return "", false
	}
	return userID, true
}

// handleServiceError maps service and gateway errors to a status code.
// failureMsg is used for anything that is not a client error.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error, failureMsg string) {
	var ve validator.ValidationErrors

	switch {
	case errors.Is(err, services.ErrSessionIDRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgSessionIDRequired})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgValidationFailed, Details: ve})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgValidationFailed, Details: err.Error()})
	case errors.Is(err, services.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgUsernameTaken})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: msgInvalidCredentials})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgSessionNotFound})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: msgSessionForbidden})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: msgUserNotFound})
	default:
		h.LogError(c, err, failureMsg, "upstream", isUpstreamError(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: failureMsg})
	}
}

func isUpstreamError(err error) bool {
	var (
		upstream *gateway.UpstreamGenerationError
		eval     *gateway.EvaluationFailedError
		voice    *gateway.VoiceGenerationError
	)
	return errors.As(err, &upstream) || errors.As(err, &eval) || errors.As(err, &voice)
}
