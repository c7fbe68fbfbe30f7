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

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, productID string, author entity.Identity, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetReviewsByProduct(ctx context.Context, productID string) ([]entity.Review, error)
	GetReview(ctx context.Context, reviewID string) (*entity.ReviewDetails, error)
	UpdateReview(ctx context.Context, reviewID string, editor entity.Identity, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, reviewID string, editor entity.Identity) error
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// CreateReview создает отзыв на товар от имени текущей сессии
// Один пользователь - один отзыв на товар; повтор дает 409
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	var req entity.CreateReviewRequest
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

	review, err := h.reviewService.CreateReview(c.Request.Context(), c.Param("product_id"), identity, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Product not found",
			})
		case errors.Is(err, service.ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "Already submitted review for this product",
			})
		default:
			logger.Error().Err(err).Msg("failed to create review")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to create review",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// GetProductReviews возвращает все отзывы товара; маршрут публичный
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	reviews, err := h.reviewService.GetReviewsByProduct(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Product not found",
			})
			return
		}
		logger.Error().Err(err).Msg("failed to get reviews")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get reviews",
		})
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Reviews: reviews,
		Total:   len(reviews),
	})
}

// GetReview возвращает отзыв с данными автора и товара; маршрут публичный
func (h *ReviewHandler) GetReview(c *gin.Context) {
	details, err := h.reviewService.GetReview(c.Request.Context(), c.Param("review_id"))
	if err != nil {
		respondReviewError(c, err, "Failed to get review")
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": details})
}

// UpdateReview обновляет отзыв; автор или админ
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	var req entity.UpdateReviewRequest
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

	review, err := h.reviewService.UpdateReview(c.Request.Context(), c.Param("review_id"), identity, &req)
	if err != nil {
		respondReviewError(c, err, "Failed to update review")
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// DeleteReview удаляет отзыв; автор или админ
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("review_id"), identity); err != nil {
		respondReviewError(c, err, "Failed to delete review")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Review deleted successfully",
	})
}

func respondReviewError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Review not found",
		})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Not authorized to modify this review",
		})
	default:
		logger.Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": fallback,
		})
	}
}
