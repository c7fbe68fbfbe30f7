package service

import (
	"context"
	"errors"
	"fmt"

	"hazelmart/internal/app/store/entity"
	"hazelmart/internal/app/store/repository"
	"hazelmart/internal/app/store/util"
)

// AuthService обрабатывает регистрацию и проверку учетных данных
// Выпуск токена и установка cookie - забота HTTP слоя
type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Register регистрирует нового пользователя
// Пароль хэшируется до записи; уникальность email обеспечивает
// индекс хранилища
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error) {
	passwordHash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = entity.RoleUser
	}

	user := &entity.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: passwordHash,
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login проверяет учетные данные пользователя
// "Нет такого email" и "неверный пароль" неразличимы снаружи
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
