package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hazelmart/internal/app/store/entity"
	"hazelmart/internal/app/store/infrastructure"
	"hazelmart/internal/app/store/repository"
	"hazelmart/internal/app/store/util"
	"hazelmart/pkg/logger"
	"hazelmart/pkg/metrics"
)

// RatingRecomputer пересчитывает агрегат рейтинга товара
// Реализуется ReviewService; используется фоновым reconciler и
// каскадным удалением пользователя
type RatingRecomputer interface {
	RecomputeRating(ctx context.Context, productID string) error
}

// ReviewService обрабатывает бизнес-логику отзывов и владеет
// производными полями average_rating/num_of_reviews товара:
// каждая мутация отзыва завершается полным пересчётом агрегата
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	productRepo   repository.ProductRepository
	userRepo      repository.UserRepository
	kafkaProducer infrastructure.MessagePublisher
	cache         *util.RedisClient
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	kafkaProducer infrastructure.MessagePublisher,
	cache *util.RedisClient,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		productRepo:   productRepo,
		userRepo:      userRepo,
		kafkaProducer: kafkaProducer,
		cache:         cache,
	}
}

// CreateReview создает новый отзыв
// 1. Товар должен существовать
// 2. Пользователь еще не оставлял отзыв на этот товар (предварительная
//    проверка; при гонке вторую вставку отклонит уникальный индекс)
// 3. Вставка отзыва
// 4. Полный пересчёт агрегата товара
func (s *ReviewService) CreateReview(ctx context.Context, productID string, author entity.Identity, req *entity.CreateReviewRequest) (*entity.Review, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if _, err := s.reviewRepo.GetByProductAndUser(ctx, productID, author.ID.Hex()); err == nil {
		return nil, ErrAlreadyReviewed
	} else if !errors.Is(err, repository.ErrReviewNotFound) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	review := &entity.Review{
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		UserID:    author.ID,
		ProductID: product.ID,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating))

	// Отзыв записан; отказ пересчёта не откатывает запись,
	// агрегат выправится при следующей успешной мутации
	if err := s.RecomputeRating(ctx, productID); err != nil {
		logger.Error().Err(err).
			Str("product_id", productID).
			Msg("rating recompute failed after review create")
	}

	s.publishReviewEvent(ctx, entity.EventReviewCreated, review)

	return review, nil
}

// GetReviewsByProduct возвращает снимок живого множества отзывов товара
// Отсутствующий товар - NotFound, товар без отзывов - пустой список
func (s *ReviewService) GetReviewsByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	reviews, err := s.reviewRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	return reviews, nil
}

// GetReview возвращает отзыв, обогащенный данными автора и товара
// Чистая проекция, без побочных эффектов
func (s *ReviewService) GetReview(ctx context.Context, reviewID string) (*entity.ReviewDetails, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	details := &entity.ReviewDetails{Review: *review}

	if user, err := s.userRepo.GetByID(ctx, review.UserID.Hex()); err == nil {
		details.User = entity.UserSummary{
			ID:    user.ID.Hex(),
			Name:  user.Name,
			Email: user.Email,
		}
	}

	if product, err := s.productRepo.GetByID(ctx, review.ProductID.Hex()); err == nil {
		details.Product = entity.ProductSummary{
			ID:      product.ID.Hex(),
			Name:    product.Name,
			Company: product.Company,
		}
	}

	return details, nil
}

// UpdateReview обновляет отзыв с проверкой прав доступа
// Изменяемы только rating/title/comment; автор или админ
// Изменение оценки влечет пересчёт агрегата товара
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID string, editor entity.Identity, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	if !editor.CanModify(review.UserID) {
		return nil, ErrForbidden
	}

	ratingChanged := false
	if req.Rating > 0 && req.Rating != review.Rating {
		review.Rating = req.Rating
		ratingChanged = true
	}
	if req.Title != "" {
		review.Title = req.Title
	}
	if req.Comment != "" {
		review.Comment = req.Comment
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if ratingChanged {
		if err := s.RecomputeRating(ctx, review.ProductID.Hex()); err != nil {
			logger.Error().Err(err).
				Str("product_id", review.ProductID.Hex()).
				Msg("rating recompute failed after review update")
		}
	}

	s.publishReviewEvent(ctx, entity.EventReviewUpdated, review)

	return review, nil
}

// DeleteReview удаляет отзыв с проверкой прав доступа
// После удаления агрегат пересчитывается по оставшемуся множеству;
// последний удаленный отзыв сбрасывает рейтинг товара в {0, 0}
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID string, editor entity.Identity) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}

	if !editor.CanModify(review.UserID) {
		return ErrForbidden
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if err := s.RecomputeRating(ctx, review.ProductID.Hex()); err != nil {
		logger.Error().Err(err).
			Str("product_id", review.ProductID.Hex()).
			Msg("rating recompute failed after review delete")
	}

	s.publishReviewEvent(ctx, entity.EventReviewDeleted, review)

	return nil
}

// RecomputeRating полностью пересчитывает агрегат рейтинга товара
// по живому множеству отзывов и записывает его на документ товара
// Идемпотентен: повторный запуск на том же множестве дает те же числа,
// поэтому пропущенный пересчёт самовыправляется при следующем запуске
func (s *ReviewService) RecomputeRating(ctx context.Context, productID string) error {
	summary, err := s.reviewRepo.RatingSummary(ctx, productID)
	if err != nil {
		metrics.RecordRatingRecompute(false)
		return fmt.Errorf("failed to compute rating summary: %w", err)
	}

	if err := s.productRepo.UpdateRating(ctx, productID, summary.AverageRating, summary.NumOfReviews); err != nil {
		metrics.RecordRatingRecompute(false)
		return fmt.Errorf("failed to persist rating summary: %w", err)
	}

	metrics.RecordRatingRecompute(true)

	// Пересчёт изменил документ товара - закешированный каталог устарел
	if s.cache != nil {
		if err := s.cache.DeleteProducts(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to invalidate products cache after recompute")
		}
	}

	return nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Отправка best-effort: отзыв уже записан, проблемы брокера не критичны
func (s *ReviewService) publishReviewEvent(ctx context.Context, eventType string, review *entity.Review) {
	if s.kafkaProducer == nil {
		return
	}

	event := entity.ReviewEvent{
		EventType: eventType,
		ReviewID:  review.ID.Hex(),
		ProductID: review.ProductID.Hex(),
		UserID:    review.UserID.Hex(),
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal review event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ReviewID, eventData); err != nil {
		logger.Warn().Err(err).
			Str("event_type", eventType).
			Msg("failed to publish review event")
	}
}
