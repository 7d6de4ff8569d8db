package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-record-service/internal/usecase/user"
	apperrors "user-record-service/pkg/errors"
	"user-record-service/pkg/logger"
)

// Messages rendered on success and for transport-level failures.
const (
	MsgConnectionUp  = "database connection successful"
	MsgRecordCreated = "record created"
	MsgRecordUpdated = "updated"
	MsgRecordDeleted = "deleted"
	MsgRouteNotFound = "route not found"
	MsgInternalError = "internal server error"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// UserRequest is the JSON body accepted by create and update.
type UserRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// UserResponse represents a stored user
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MessageResponse carries a status message
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateUserResponse is returned by POST /create
type CreateUserResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// ErrorResponse represents an error response. Error holds the raw driver
// message for storage failures.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Health handles GET /
func (h *UserHandler) Health(c *gin.Context) {
	if err := h.uc.Ping(c.Request.Context()); err != nil {
		c.String(http.StatusInternalServerError, user.MsgPingFailed)
		return
	}
	c.String(http.StatusOK, MsgConnectionUp)
}

// CreateUser handles POST /create
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create user body", zap.Error(err))
		h.handleError(c, apperrors.NewValidationError(user.MsgMissingFields))
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:  req.Name,
		Value: req.Value,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateUserResponse{
		Message: MsgRecordCreated,
		ID:      resp.ID,
	})
}

// ListUsers handles GET /read
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = UserResponse{ID: u.ID, Name: u.Name, Value: u.Value}
	}

	c.JSON(http.StatusOK, users)
}

// UpdateUser handles PUT /update/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")

	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid update user body", zap.String("id", id), zap.Error(err))
		h.handleError(c, apperrors.NewValidationError(user.MsgMissingFields))
		return
	}

	_, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:    id,
		Name:  req.Name,
		Value: req.Value,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: MsgRecordUpdated})
}

// DeleteUser handles DELETE /delete/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	_, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: c.Param("id")})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: MsgRecordDeleted})
}

// NotFound answers every request that matched no route.
func (h *UserHandler) NotFound(c *gin.Context) {
	h.handleError(c, apperrors.NewRouteNotFoundError(MsgRouteNotFound))
}

// handleError renders usecase errors; anything that is not an *AppError is
// reported as an internal error without detail.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		logger.WithContext(c.Request.Context(), h.log).Error("unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: MsgInternalError})
		return
	}

	c.JSON(appErr.HTTPStatus(), ErrorResponse{
		Message: appErr.Message,
		Error:   appErr.Detail,
	})
}
