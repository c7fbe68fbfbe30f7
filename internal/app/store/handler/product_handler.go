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

type ProductServiceInterface interface {
	Create(ctx context.Context, creator entity.Identity, req *entity.CreateProductRequest) (*entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, id string, req *entity.UpdateProductRequest) (*entity.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductHandler struct {
	productService ProductServiceInterface
	validator      *validator.Validate
}

func NewProductHandler(productService ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
	}
}

// CreateProduct создает товар; маршрут закрыт ролью admin
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		abortUnauthorized(c)
		return
	}

	var req entity.CreateProductRequest
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

	product, err := h.productService.Create(c.Request.Context(), identity, &req)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create product")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to create product",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// GetProducts возвращает весь каталог; маршрут публичный
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.productService.GetAll(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("failed to get products")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// GetProduct возвращает товар по идентификатору; маршрут публичный
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetByID(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		respondProductError(c, err, "Failed to get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// UpdateProduct обновляет товар; только admin
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req entity.UpdateProductRequest
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

	product, err := h.productService.Update(c.Request.Context(), c.Param("product_id"), &req)
	if err != nil {
		respondProductError(c, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct удаляет товар вместе с его отзывами; только admin
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), c.Param("product_id")); err != nil {
		respondProductError(c, err, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Product deleted successfully",
	})
}

func respondProductError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Product not found",
		})
	default:
		logger.Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": fallback,
		})
	}
}
