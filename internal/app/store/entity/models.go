package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет пользователя в системе
// Пароль хранится только как bcrypt-хэш и никогда не сериализуется в JSON
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Role      string             `json:"role" bson:"role"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Product представляет товар в каталоге
// Поля AverageRating и NumOfReviews - производные: их владелец - пересчёт
// рейтинга, API-клиенты не могут изменять их напрямую
type Product struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Price         float64            `json:"price" bson:"price"`
	Description   string             `json:"description" bson:"description"`
	Image         string             `json:"image" bson:"image"`
	Category      string             `json:"category" bson:"category"`
	Company       string             `json:"company" bson:"company"`
	Colors        []string           `json:"colors" bson:"colors"`
	Inventory     int                `json:"inventory" bson:"inventory"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id"` // создатель товара
	AverageRating float64            `json:"average_rating" bson:"average_rating"`
	NumOfReviews  int                `json:"num_of_reviews" bson:"num_of_reviews"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// Review представляет отзыв на товар
// Пара (product_id, user_id) уникальна: не более одного отзыва
// от пользователя на товар (уникальный составной индекс)
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Rating    int                `json:"rating" bson:"rating"` // Оценка от 1 до 5
	Title     string             `json:"title" bson:"title"`
	Comment   string             `json:"comment" bson:"comment"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// RatingSummary - агрегат по отзывам товара
// Пустое множество отзывов дает {0, 0}
type RatingSummary struct {
	AverageRating float64 `bson:"average_rating"`
	NumOfReviews  int     `bson:"num_of_reviews"`
}

// Identity - проверенная личность запроса, привязывается middleware
// после успешной верификации сессионного токена
type Identity struct {
	ID   primitive.ObjectID
	Role string
	Name string
}

// IsAdmin сообщает, имеет ли личность роль администратора
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanModify - предикат "владелец или админ"
// Используется всеми операциями, где важно владение ресурсом
func (i Identity) CanModify(ownerID primitive.ObjectID) bool {
	return i.ID == ownerID || i.IsAdmin()
}

// ReviewEvent - событие об изменении отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED, REVIEW_UPDATED, REVIEW_DELETED
	ReviewID  string    `json:"review_id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// Событийные типы для ReviewEvent
const (
	EventReviewCreated = "REVIEW_CREATED"
	EventReviewUpdated = "REVIEW_UPDATED"
	EventReviewDeleted = "REVIEW_DELETED"
)
