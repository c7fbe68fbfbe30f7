package service

import "errors"

// Закрытый набор ошибок бизнес-логики
// Handlers отображают каждую в свой HTTP статус
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrAlreadyReviewed    = errors.New("product already reviewed by this user")
	ErrForbidden          = errors.New("access forbidden")
	ErrWrongPassword      = errors.New("incorrect password")
)
