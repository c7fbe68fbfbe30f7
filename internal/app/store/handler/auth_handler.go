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
	"hazelmart/pkg/metrics"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.User, error)
}

type AuthHandler struct {
	authService AuthServiceInterface
	sessions    *SessionWriter
	validator   *validator.Validate
}

func NewAuthHandler(authService AuthServiceInterface, sessions *SessionWriter) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		validator:   validator.New(),
	}
}

// Register регистрирует пользователя и сразу открывает сессию:
// токен уходит и в теле ответа, и в httpOnly cookie
func (h *AuthHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
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

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "User with this email already exists",
			})
		default:
			logger.Error().Err(err).Msg("failed to register user")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to register user",
			})
		}
		return
	}

	token, err := h.sessions.Attach(c, user)
	if err != nil {
		logger.Error().Err(err).Msg("failed to issue session token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to register user",
		})
		return
	}

	metrics.AuthRegistrations.Inc()
	metrics.AuthTokensIssued.Inc()

	c.JSON(http.StatusCreated, entity.AuthResponse{
		Name:  user.Name,
		Token: token,
	})
}

// Login проверяет учетные данные и открывает сессию
func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
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

	user, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Invalid email or password",
			})
		default:
			logger.Error().Err(err).Msg("failed to login")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to login",
			})
		}
		return
	}

	token, err := h.sessions.Attach(c, user)
	if err != nil {
		logger.Error().Err(err).Msg("failed to issue session token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to login",
		})
		return
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	metrics.AuthTokensIssued.Inc()

	c.JSON(http.StatusOK, entity.AuthResponse{
		Name:  user.Name,
		Token: token,
	})
}

// Logout гасит сессионную cookie; состояния на сервере нет
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Successfully logged out",
	})
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
