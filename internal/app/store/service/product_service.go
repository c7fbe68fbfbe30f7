package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hazelmart/internal/app/store/entity"
	"hazelmart/internal/app/store/repository"
	"hazelmart/internal/app/store/util"
	"hazelmart/pkg/logger"
)

// ProductService обрабатывает бизнес-логику каталога товаров
// Производные поля рейтинга сервис не трогает: их владелец - ReviewService
type ProductService struct {
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
	cache       *util.RedisClient
}

func NewProductService(
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	cache *util.RedisClient,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		cache:       cache,
	}
}

// Create создает новый товар от имени создателя
// Рейтинг нового товара всегда {0, 0}
func (s *ProductService) Create(ctx context.Context, creator entity.Identity, req *entity.CreateProductRequest) (*entity.Product, error) {
	product := &entity.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
		Company:     req.Company,
		Colors:      req.Colors,
		Inventory:   req.Inventory,
		UserID:      creator.ID,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateCache(ctx)

	return product, nil
}

// GetAll возвращает все товары каталога с кешированием в Redis
func (s *ProductService) GetAll(ctx context.Context) ([]entity.Product, error) {
	if s.cache != nil {
		cached, err := s.cache.GetProducts(ctx)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetProducts(ctx, products, time.Hour); err != nil {
			logger.Warn().Err(err).Msg("failed to cache products")
		}
	}

	return products, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// Update обновляет товар
// API-клиент не может записать average_rating/num_of_reviews:
// запрос не содержит этих полей, а репозиторий их не перечисляет в $set
func (s *ProductService) Update(ctx context.Context, id string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Image != "" {
		product.Image = req.Image
	}
	if req.Category != "" {
		product.Category = req.Category
	}
	if req.Company != "" {
		product.Company = req.Company
	}
	if req.Colors != nil {
		product.Colors = req.Colors
	}
	if req.Inventory != nil {
		product.Inventory = *req.Inventory
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateCache(ctx)

	return product, nil
}

// Delete удаляет товар вместе со всеми его отзывами
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.reviewRepo.DeleteByProductID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product reviews: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidateCache(ctx)

	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteProducts(ctx); err != nil {
		// Товар уже изменен, устаревший кеш не критичен - запись истечет по TTL
		logger.Warn().Err(err).Msg("failed to invalidate products cache")
	}
}
