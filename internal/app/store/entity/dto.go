package entity

// RegisterRequest - запрос на регистрацию пользователя
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse - ответ на регистрацию/вход
type AuthResponse struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// UpdateUserRequest - запрос на обновление профиля
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"omitempty,min=3,max=50"`
	Email string `json:"email" validate:"omitempty,email"`
}

// UpdatePasswordRequest - запрос на смену пароля
type UpdatePasswordRequest struct {
	Password    string `json:"password"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// CreateProductRequest - запрос на создание товара
// Производные поля рейтинга в запросе отсутствуют намеренно
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Description string   `json:"description" validate:"required,max=1000"`
	Image       string   `json:"image"`
	Category    string   `json:"category" validate:"required"`
	Company     string   `json:"company" validate:"required"`
	Colors      []string `json:"colors"`
	Inventory   int      `json:"inventory" validate:"gte=0"`
}

// UpdateProductRequest - запрос на обновление товара
type UpdateProductRequest struct {
	Name        string   `json:"name" validate:"omitempty,max=100"`
	Price       float64  `json:"price" validate:"omitempty,gt=0"`
	Description string   `json:"description" validate:"omitempty,max=1000"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Company     string   `json:"company"`
	Colors      []string `json:"colors"`
	Inventory   *int     `json:"inventory" validate:"omitempty,gte=0"`
}

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"required,max=100"`
	Comment string `json:"comment" validate:"required"`
}

// UpdateReviewRequest - запрос на обновление отзыва
// Изменяемы только rating/title/comment
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title   string `json:"title" validate:"omitempty,max=100"`
	Comment string `json:"comment"`
}

// UserSummary - краткая информация об авторе отзыва
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProductSummary - краткая информация о товаре в отзыве
type ProductSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
}

// ReviewDetails - отзыв, обогащенный данными автора и товара
type ReviewDetails struct {
	Review
	User    UserSummary    `json:"user"`
	Product ProductSummary `json:"product"`
}

// ReviewListResponse - ответ со списком отзывов
type ReviewListResponse struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
