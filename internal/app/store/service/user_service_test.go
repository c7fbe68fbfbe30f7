package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hazelmart/internal/app/store/entity"
	"hazelmart/internal/app/store/repository"
	"hazelmart/internal/app/store/repository/mocks"
	"hazelmart/internal/app/store/util"
)

type stubRecomputer struct {
	mock.Mock
}

func (s *stubRecomputer) RecomputeRating(ctx context.Context, productID string) error {
	args := s.Called(ctx, productID)
	return args.Error(0)
}

func TestUserGetAll_OnlyUserRole(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo, new(mocks.MockReviewRepository), nil)

	ctx := context.Background()

	userRepo.On("GetAllByRole", ctx, entity.RoleUser).Return([]entity.User{
		{Name: "Alice"},
		{Name: "Bob"},
	}, nil)

	users, err := svc.GetAll(ctx)

	require.NoError(t, err)
	assert.Len(t, users, 2)
	userRepo.AssertCalled(t, "GetAllByRole", ctx, entity.RoleUser)
}

func TestUserGetByID_StrangerForbidden(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo, new(mocks.MockReviewRepository), nil)

	ctx := context.Background()
	targetID := primitive.NewObjectID()

	userRepo.On("GetByID", ctx, targetID.Hex()).Return(&entity.User{ID: targetID}, nil)

	stranger := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleUser}
	user, err := svc.GetByID(ctx, targetID.Hex(), stranger)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUserGetByID_AdminAllowed(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo, new(mocks.MockReviewRepository), nil)

	ctx := context.Background()
	targetID := primitive.NewObjectID()

	userRepo.On("GetByID", ctx, targetID.Hex()).Return(&entity.User{ID: targetID, Name: "Alice"}, nil)

	admin := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleAdmin}
	user, err := svc.GetByID(ctx, targetID.Hex(), admin)

	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
}

func TestUserUpdate_Self(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo, new(mocks.MockReviewRepository), nil)

	ctx := context.Background()
	selfID := primitive.NewObjectID()

	userRepo.On("GetByID", ctx, selfID.Hex()).Return(&entity.User{ID: selfID, Name: "Old", Email: "old@example.com"}, nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*entity.User")).Return(nil)

	self := entity.Identity{ID: selfID, Role: entity.RoleUser}
	user, err := svc.Update(ctx, selfID.Hex(), self, &entity.UpdateUserRequest{Name: "New"})

	require.NoError(t, err)
	assert.Equal(t, "New", user.Name)
	assert.Equal(t, "old@example.com", user.Email)
}

func TestUserUpdate_EmailTaken(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo, new(mocks.MockReviewRepository), nil)

	ctx := context.Background()
	selfID := primitive.NewObjectID()

	userRepo.On("GetByID", ctx, selfID.Hex()).Return(&entity.User{ID: selfID}, nil)
	userRepo.On("Update", ctx, mock.Anything).Return(repository.ErrEmailTaken)

	self := entity.Identity{ID: selfID, Role: entity.RoleUser}
	user, err := svc.Update(ctx, selfID.Hex(), self, &entity.UpdateUserRequest{Email: "taken@example.com"})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdatePassword_WrongOldPassword(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo, new(mocks.MockReviewRepository), nil)

	ctx := context.Background()
	selfID := primitive.NewObjectID()
	passwordHash, err := util.HashPassword("correct1")
	require.NoError(t, err)

	userRepo.On("GetByID", ctx, selfID.Hex()).Return(&entity.User{ID: selfID, Password: passwordHash}, nil)

	self := entity.Identity{ID: selfID, Role: entity.RoleUser}
	err = svc.UpdatePassword(ctx, selfID.Hex(), self, &entity.UpdatePasswordRequest{
		Password:    "wrong",
		NewPassword: "newsecret",
	})

	assert.ErrorIs(t, err, ErrWrongPassword)
	userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePassword_AdminSkipsOldPassword(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo, new(mocks.MockReviewRepository), nil)

	ctx := context.Background()
	targetID := primitive.NewObjectID()
	passwordHash, err := util.HashPassword("correct1")
	require.NoError(t, err)

	userRepo.On("GetByID", ctx, targetID.Hex()).Return(&entity.User{ID: targetID, Password: passwordHash}, nil)
	userRepo.On("UpdatePassword", ctx, targetID.Hex(), mock.AnythingOfType("string")).Return(nil)

	admin := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleAdmin}
	err = svc.UpdatePassword(ctx, targetID.Hex(), admin, &entity.UpdatePasswordRequest{NewPassword: "newsecret"})

	require.NoError(t, err)
}

func TestUserDelete_CascadesAndRecomputes(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	recomputer := new(stubRecomputer)
	svc := NewUserService(userRepo, reviewRepo, recomputer)

	ctx := context.Background()
	selfID := primitive.NewObjectID()
	productA := primitive.NewObjectID()
	productB := primitive.NewObjectID()

	userRepo.On("GetByID", ctx, selfID.Hex()).Return(&entity.User{ID: selfID}, nil)
	reviewRepo.On("GetByUserID", ctx, selfID.Hex()).Return([]entity.Review{
		{ProductID: productA, Rating: 5},
		{ProductID: productB, Rating: 2},
	}, nil)
	reviewRepo.On("DeleteByUserID", ctx, selfID.Hex()).Return(nil)
	recomputer.On("RecomputeRating", ctx, productA.Hex()).Return(nil)
	recomputer.On("RecomputeRating", ctx, productB.Hex()).Return(nil)
	userRepo.On("Delete", ctx, selfID.Hex()).Return(nil)

	self := entity.Identity{ID: selfID, Role: entity.RoleUser}
	require.NoError(t, svc.Delete(ctx, selfID.Hex(), self))

	recomputer.AssertExpectations(t)
	reviewRepo.AssertCalled(t, "DeleteByUserID", ctx, selfID.Hex())
}

func TestUserDelete_StrangerForbidden(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	svc := NewUserService(userRepo, reviewRepo, new(stubRecomputer))

	ctx := context.Background()
	targetID := primitive.NewObjectID()

	userRepo.On("GetByID", ctx, targetID.Hex()).Return(&entity.User{ID: targetID}, nil)

	stranger := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleUser}
	err := svc.Delete(ctx, targetID.Hex(), stranger)

	assert.ErrorIs(t, err, ErrForbidden)
	reviewRepo.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
}
