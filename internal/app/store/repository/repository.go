package repository

import (
	"context"
	"errors"

	"hazelmart/internal/app/store/entity"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrReviewNotFound  = errors.New("review not found")
	// ErrEmailTaken - нарушение уникального индекса по email
	ErrEmailTaken = errors.New("email already taken")
	// ErrDuplicateReview - нарушение уникального составного индекса (product_id, user_id)
	// Именно индекс, а не предварительная проверка, гарантирует
	// "один отзыв на товар" при конкурентных вставках
	ErrDuplicateReview = errors.New("review for this product already exists")
)

// UserRepository определяет методы для работы с пользователями в MongoDB
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetAllByRole(ctx context.Context, role string) ([]entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// ProductRepository определяет методы для работы с товарами в MongoDB
// UpdateRating - единственный путь записи производных полей
// average_rating/num_of_reviews
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	GetAllIDs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateRating(ctx context.Context, id string, averageRating float64, numOfReviews int) error
	Delete(ctx context.Context, id string) error
}

// ReviewRepository определяет методы для работы с отзывами в MongoDB
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetByProductAndUser(ctx context.Context, productID, userID string) (*entity.Review, error)
	GetByProductID(ctx context.Context, productID string) ([]entity.Review, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id string) error
	DeleteByProductID(ctx context.Context, productID string) error
	DeleteByUserID(ctx context.Context, userID string) error
	// RatingSummary считает агрегат {средняя оценка, количество} по живому
	// множеству отзывов товара; пустое множество дает {0, 0}
	RatingSummary(ctx context.Context, productID string) (*entity.RatingSummary, error)
}
