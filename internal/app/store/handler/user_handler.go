package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"hazelmart/internal/app/store/entity"
	"hazelmart/internal/app/store/service"
	"hazelmart/pkg/logger"
)

type UserServiceInterface interface {
	GetAll(ctx context.Context) ([]entity.User, error)
	GetByID(ctx context.Context, id string, editor entity.Identity) (*entity.User, error)
	Update(ctx context.Context, id string, editor entity.Identity, req *entity.UpdateUserRequest) (*entity.User, error)
	UpdatePassword(ctx context.Context, id string, editor entity.Identity, req *entity.UpdatePasswordRequest) error
	Delete(ctx context.Context, id string, editor entity.Identity) error
}

type UserHandler struct {
	userService UserServiceInterface
	sessions    *SessionWriter
	validator   *validator.Validate
}

func NewUserHandler(userService UserServiceInterface, sessions *SessionWriter) *UserHandler {
	return &UserHandler{
		userService: userService,
		sessions:    sessions,
		validator:   validator.New(),
	}
}

// GetUsers возвращает всех пользователей с ролью user; только для админа
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetAll(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("failed to get users")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// ShowMe возвращает identity текущей сессии без похода в хранилище
func (h *UserHandler) ShowMe(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"id":   identity.ID.Hex(),
		"name": identity.Name,
		"role": identity.Role,
	}})
}

// GetUser возвращает пользователя; свой профиль или админ
func (h *UserHandler) GetUser(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), c.Param("user_id"), identity)
	if err != nil {
		respondUserError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUser обновляет имя и/или email
// Изменение собственного профиля перевыпускает сессионную cookie:
// имя пользователя зашито в полезную нагрузку токена
func (h *UserHandler) UpdateUser(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	var req entity.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if req.Name == "" && req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Please provide name or email",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": formatValidationError(err),
		})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("user_id"), identity, &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "User with this email already exists",
			})
			return
		}
		respondUserError(c, err, "Failed to update user")
		return
	}

	if user.ID == identity.ID {
		if _, err := h.sessions.Attach(c, user); err != nil {
			logger.Error().Err(err).Msg("failed to reissue session token")
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdatePassword меняет пароль; требует текущий пароль, кроме админа
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	var req entity.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": formatValidationError(err),
		})
		return
	}

	if err := h.userService.UpdatePassword(c.Request.Context(), c.Param("user_id"), identity, &req); err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Invalid credentials",
			})
			return
		}
		respondUserError(c, err, "Failed to update password")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Password updated successfully",
	})
}

// DeleteUser удаляет пользователя вместе с его отзывами
// Удаление собственного аккаунта дополнительно гасит сессию
func (h *UserHandler) DeleteUser(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	userID := c.Param("user_id")
	if err := h.userService.Delete(c.Request.Context(), userID, identity); err != nil {
		respondUserError(c, err, "Failed to delete user")
		return
	}

	if userID == identity.ID.Hex() {
		h.sessions.Clear(c)
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "User deleted successfully",
	})
}

func respondUserError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "User not found",
		})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Unauthorized to access this route",
		})
	default:
		logger.Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": fallback,
		})
	}
}
