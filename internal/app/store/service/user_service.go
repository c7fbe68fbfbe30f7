package service

import (
	"context"
	"errors"
	"fmt"

	"hazelmart/internal/app/store/entity"
	"hazelmart/internal/app/store/repository"
	"hazelmart/internal/app/store/util"
	"hazelmart/pkg/logger"
)

// UserService обрабатывает бизнес-логику пользователей
// Операции над чужим профилем доступны только администратору
type UserService struct {
	userRepo   repository.UserRepository
	reviewRepo repository.ReviewRepository
	recomputer RatingRecomputer
}

func NewUserService(
	userRepo repository.UserRepository,
	reviewRepo repository.ReviewRepository,
	recomputer RatingRecomputer,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
		recomputer: recomputer,
	}
}

// GetAll возвращает всех пользователей с ролью user (админы не листингуются)
func (s *UserService) GetAll(ctx context.Context) ([]entity.User, error) {
	users, err := s.userRepo.GetAllByRole(ctx, entity.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	return users, nil
}

// GetByID возвращает пользователя; свой профиль или админ
func (s *UserService) GetByID(ctx context.Context, id string, editor entity.Identity) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !editor.CanModify(user.ID) {
		return nil, ErrForbidden
	}

	return user, nil
}

// Update обновляет имя и email пользователя; свой профиль или админ
func (s *UserService) Update(ctx context.Context, id string, editor entity.Identity, req *entity.UpdateUserRequest) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !editor.CanModify(user.ID) {
		return nil, ErrForbidden
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// UpdatePassword меняет пароль пользователя
// Требует текущий пароль; админ меняет без него
// Хэширование происходит здесь - только при изменении значения пароля
func (s *UserService) UpdatePassword(ctx context.Context, id string, editor entity.Identity, req *entity.UpdatePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !editor.CanModify(user.ID) {
		return ErrForbidden
	}

	if !editor.IsAdmin() && !util.CheckPassword(req.Password, user.Password) {
		return ErrWrongPassword
	}

	passwordHash, err := util.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, id, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// Delete удаляет пользователя вместе с его отзывами
// Затронутые товары пересчитываются, чтобы агрегаты не дрейфовали
func (s *UserService) Delete(ctx context.Context, id string, editor entity.Identity) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !editor.CanModify(user.ID) {
		return ErrForbidden
	}

	reviews, err := s.reviewRepo.GetByUserID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get user reviews: %w", err)
	}

	if err := s.reviewRepo.DeleteByUserID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user reviews: %w", err)
	}

	// Каждый товар, на который пользователь оставлял отзыв, пересчитывается
	// по оставшемуся множеству; отказы не прерывают удаление -
	// агрегат выправит фоновый пересчёт
	affected := make(map[string]struct{}, len(reviews))
	for _, review := range reviews {
		affected[review.ProductID.Hex()] = struct{}{}
	}
	for productID := range affected {
		if err := s.recomputer.RecomputeRating(ctx, productID); err != nil {
			logger.Error().Err(err).
				Str("product_id", productID).
				Msg("rating recompute failed after user delete")
		}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
