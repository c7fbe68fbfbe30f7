package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hazelmart/internal/app/store/entity"
	"hazelmart/internal/app/store/repository"
	"hazelmart/internal/app/store/repository/mocks"
	"hazelmart/internal/app/store/service"
	"hazelmart/internal/app/store/util"
)

func newTestAuthHandler(userRepo *mocks.MockUserRepository) (*AuthHandler, *util.CookieSigner, *util.TokenManager) {
	tokenManager := util.NewTokenManager("test-secret-key", time.Hour)
	cookieSigner := util.NewCookieSigner("test-secret-key")
	sessions := NewSessionWriter(tokenManager, cookieSigner, false)
	return NewAuthHandler(service.NewAuthService(userRepo), sessions), cookieSigner, tokenManager
}

func findSessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	return nil
}

func TestRegisterHandler_SetsSessionCookie(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	authHandler, cookieSigner, tokenManager := newTestAuthHandler(userRepo)

	userID := primitive.NewObjectID()
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.User).ID = userID
	})

	router := gin.New()
	router.POST("/register", authHandler.Register)

	body, _ := json.Marshal(entity.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp entity.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Alice", resp.Name)
	assert.NotEmpty(t, resp.Token)

	cookie := findSessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)

	// Cookie несет тот же токен с валидной внешней подписью
	token, err := cookieSigner.Unsign(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, resp.Token, token)

	claims, err := tokenManager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID.Hex(), claims.UserID)
	assert.Equal(t, entity.RoleUser, claims.Role)
	assert.Equal(t, "Alice", claims.Name)
}

func TestRegisterHandler_ValidationFailure(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	authHandler, _, _ := newTestAuthHandler(userRepo)

	router := gin.New()
	router.POST("/register", authHandler.Register)

	body, _ := json.Marshal(entity.RegisterRequest{
		Name:     "Al",
		Email:    "not-an-email",
		Password: "123",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	authHandler, _, _ := newTestAuthHandler(userRepo)

	userRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrEmailTaken)

	router := gin.New()
	router.POST("/register", authHandler.Register)

	body, _ := json.Marshal(entity.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginHandler_Success(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	authHandler, cookieSigner, _ := newTestAuthHandler(userRepo)

	passwordHash, err := util.HashPassword("secret123")
	require.NoError(t, err)

	userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(&entity.User{
		ID:       primitive.NewObjectID(),
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: passwordHash,
		Role:     entity.RoleUser,
	}, nil)

	router := gin.New()
	router.POST("/login", authHandler.Login)

	body, _ := json.Marshal(entity.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findSessionCookie(t, rec)
	require.NotNil(t, cookie)
	_, err = cookieSigner.Unsign(cookie.Value)
	assert.NoError(t, err)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	authHandler, _, _ := newTestAuthHandler(userRepo)

	userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, repository.ErrUserNotFound)

	router := gin.New()
	router.POST("/login", authHandler.Login)

	body, _ := json.Marshal(entity.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, findSessionCookie(t, rec))
}

func TestLogoutHandler_ClearsCookie(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	authHandler, _, _ := newTestAuthHandler(userRepo)

	router := gin.New()
	router.GET("/logout", authHandler.Logout)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findSessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}
