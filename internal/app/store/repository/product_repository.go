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
	"hazelmart/pkg/metrics"
)

const serviceName = "hazelmart"

type productRepository struct {
	collection *mongo.Collection
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{collection: db.Collection("products")}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	// Производные поля нового товара всегда нулевые
	product.AverageRating = 0
	product.NumOfReviews = 0

	timer := metrics.NewMongoTimer(serviceName, "insert", "products")
	result, err := r.collection.InsertOne(ctx, product)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, "insert")
		return fmt.Errorf("failed to create product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}

	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var product entity.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// GetAllIDs возвращает идентификаторы всех товаров
// Используется фоновым пересчётом рейтингов
func (r *productRepository) GetAllIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find product ids: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode product ids: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID.Hex())
	}

	return ids, nil
}

// Update обновляет разрешенные поля товара
// average_rating и num_of_reviews здесь не перечислены намеренно:
// эти поля пишет только UpdateRating
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()

	filter := bson.M{"_id": product.ID}
	update := bson.M{
		"$set": bson.M{
			"name":        product.Name,
			"price":       product.Price,
			"description": product.Description,
			"image":       product.Image,
			"category":    product.Category,
			"company":     product.Company,
			"colors":      product.Colors,
			"inventory":   product.Inventory,
			"updated_at":  product.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// UpdateRating записывает свежепосчитанный агрегат на документ товара
// Запись одного документа атомарна на уровне MongoDB: при гонке пересчётов
// побеждает последний, что допустимо - каждый результат корректен
// для множества отзывов на момент своего вычисления
func (r *productRepository) UpdateRating(ctx context.Context, id string, averageRating float64, numOfReviews int) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrProductNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"average_rating": averageRating,
			"num_of_reviews": numOfReviews,
			"updated_at":     time.Now(),
		},
	}

	timer := metrics.NewMongoTimer(serviceName, "update_rating", "products")
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	timer.ObserveDuration()
	if err != nil {
		metrics.RecordMongoError(serviceName, "update_rating")
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrProductNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}
