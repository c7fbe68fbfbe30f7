package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hazelmart/internal/app/store/entity"
	"hazelmart/pkg/logger"
	"hazelmart/pkg/metrics"
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает новый репозиторий отзывов
// Создает уникальный составной индекс (product_id, user_id): два
// конкурентных создания отзыва могут пройти предварительную проверку,
// но второй InsertOne упрется в индекс и вернет ErrDuplicateReview
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uniqueIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "product_id", Value: 1},
			{Key: "user_id", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("product_user_unique_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, uniqueIndex); err != nil {
		// Индекс может уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("failed to create unique index on reviews (product_id, user_id)")
	}

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetName("user_id_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, userIndex); err != nil {
		logger.Warn().Err(err).Msg("failed to create index on reviews.user_id")
	}

	return &reviewRepository{collection: collection}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt

	timer := metrics.NewMongoTimer(serviceName, "insert", "reviews")
	result, err := r.collection.InsertOne(ctx, review)
	timer.ObserveDuration()
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateReview
		}
		metrics.RecordMongoError(serviceName, "insert")
		return fmt.Errorf("failed to create review: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	var review entity.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

// GetByProductAndUser ищет отзыв пользователя на товар
// Предварительная проверка перед созданием; гарантию уникальности
// при гонке дает составной индекс, а не этот запрос
func (r *reviewRepository) GetByProductAndUser(ctx context.Context, productID, userID string) (*entity.Review, error) {
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var review entity.Review
	err = r.collection.FindOne(ctx, bson.M{"product_id": productOID, "user_id": userOID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review by product and user: %w", err)
	}

	return &review, nil
}

func (r *reviewRepository) GetByProductID(ctx context.Context, productID string) ([]entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"product_id": objectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Review, error) {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": objectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now()

	filter := bson.M{"_id": review.ID}
	update := bson.M{
		"$set": bson.M{
			"rating":     review.Rating,
			"title":      review.Title,
			"comment":    review.Comment,
			"updated_at": review.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrReviewNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *reviewRepository) DeleteByProductID(ctx context.Context, productID string) error {
	objectID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return ErrProductNotFound
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"product_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete reviews by product: %w", err)
	}

	return nil
}

func (r *reviewRepository) DeleteByUserID(ctx context.Context, userID string) error {
	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrUserNotFound
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"user_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete reviews by user: %w", err)
	}

	return nil
}

// RatingSummary считает агрегат по отзывам товара через $group
// Полный пересчёт от исходных данных, без инкрементальных правок:
// одинаковое множество отзывов всегда дает одинаковый результат
func (r *reviewRepository) RatingSummary(ctx context.Context, productID string) (*entity.RatingSummary, error) {
	objectID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "product_id", Value: objectID}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "average_rating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "num_of_reviews", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	timer := metrics.NewMongoTimer(serviceName, "aggregate", "reviews")
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, "aggregate")
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var results []entity.RatingSummary
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode rating summary: %w", err)
	}

	// Пустая группа: у товара нет отзывов, агрегат сбрасывается в {0, 0}
	if len(results) == 0 {
		return &entity.RatingSummary{AverageRating: 0, NumOfReviews: 0}, nil
	}

	return &results[0], nil
}
