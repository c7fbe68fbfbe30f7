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
	"hazelmart/internal/app/store/repository/mocks"
	"hazelmart/internal/app/store/service"
	"hazelmart/internal/app/store/util"
)

type userHandlerFixture struct {
	router       *gin.Engine
	userRepo     *mocks.MockUserRepository
	cookieSigner *util.CookieSigner
	tokenManager *util.TokenManager
	session      func(t *testing.T, identity entity.Identity) *http.Cookie
}

func newUserHandlerFixture() *userHandlerFixture {
	userRepo := new(mocks.MockUserRepository)
	reviewRepo := new(mocks.MockReviewRepository)

	userService := service.NewUserService(userRepo, reviewRepo, nil)

	tokenManager := util.NewTokenManager("test-secret-key", time.Hour)
	cookieSigner := util.NewCookieSigner("test-secret-key")
	sessions := NewSessionWriter(tokenManager, cookieSigner, false)
	middleware := NewAuthMiddleware(tokenManager, cookieSigner)
	userHandler := NewUserHandler(userService, sessions)

	router := gin.New()
	users := router.Group("/users")
	users.Use(middleware.Authenticate())
	users.GET("", middleware.RequireRoles(entity.RoleAdmin), userHandler.GetUsers)
	users.GET("/showMe", userHandler.ShowMe)
	users.GET("/:user_id", userHandler.GetUser)
	users.PATCH("/edit/:user_id", userHandler.UpdateUser)

	return &userHandlerFixture{
		router:       router,
		userRepo:     userRepo,
		cookieSigner: cookieSigner,
		tokenManager: tokenManager,
		session: func(t *testing.T, identity entity.Identity) *http.Cookie {
			return sessionCookie(t, tokenManager, cookieSigner, identity)
		},
	}
}

func TestGetUsersHandler_UserRoleForbidden(t *testing.T) {
	f := newUserHandlerFixture()

	user := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleUser, Name: "Alice"}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(f.session(t, user))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetUsersHandler_AdminAllowed(t *testing.T) {
	f := newUserHandlerFixture()

	f.userRepo.On("GetAllByRole", mock.Anything, entity.RoleUser).Return([]entity.User{{Name: "Alice"}}, nil)

	admin := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleAdmin, Name: "Root"}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(f.session(t, admin))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestShowMeHandler_ReflectsSession(t *testing.T) {
	f := newUserHandlerFixture()

	identity := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleUser, Name: "Alice"}
	req := httptest.NewRequest(http.MethodGet, "/users/showMe", nil)
	req.AddCookie(f.session(t, identity))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, identity.ID.Hex(), resp.User.ID)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.Equal(t, entity.RoleUser, resp.User.Role)
}

func TestGetUserHandler_StrangerForbidden(t *testing.T) {
	f := newUserHandlerFixture()

	targetID := primitive.NewObjectID()
	f.userRepo.On("GetByID", mock.Anything, targetID.Hex()).Return(&entity.User{ID: targetID}, nil)

	stranger := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleUser, Name: "Mallory"}
	req := httptest.NewRequest(http.MethodGet, "/users/"+targetID.Hex(), nil)
	req.AddCookie(f.session(t, stranger))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateUserHandler_SelfEditReissuesCookie(t *testing.T) {
	// Имя зашито в токен, поэтому правка собственного профиля
	// перевыпускает cookie с обновленной полезной нагрузкой
	f := newUserHandlerFixture()

	selfID := primitive.NewObjectID()
	f.userRepo.On("GetByID", mock.Anything, selfID.Hex()).Return(&entity.User{ID: selfID, Name: "Alice", Role: entity.RoleUser}, nil)
	f.userRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	self := entity.Identity{ID: selfID, Role: entity.RoleUser, Name: "Alice"}
	body, _ := json.Marshal(entity.UpdateUserRequest{Name: "Alicia"})
	req := httptest.NewRequest(http.MethodPatch, "/users/edit/"+selfID.Hex(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(f.session(t, self))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findSessionCookie(t, rec)
	require.NotNil(t, cookie)

	token, err := f.cookieSigner.Unsign(cookie.Value)
	require.NoError(t, err)

	claims, err := f.tokenManager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", claims.Name)
	assert.Equal(t, selfID.Hex(), claims.UserID)
}

func TestUpdateUserHandler_AdminEditNoCookie(t *testing.T) {
	f := newUserHandlerFixture()

	targetID := primitive.NewObjectID()
	f.userRepo.On("GetByID", mock.Anything, targetID.Hex()).Return(&entity.User{ID: targetID, Name: "Alice", Role: entity.RoleUser}, nil)
	f.userRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	admin := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleAdmin, Name: "Root"}
	body, _ := json.Marshal(entity.UpdateUserRequest{Name: "Alicia"})
	req := httptest.NewRequest(http.MethodPatch, "/users/edit/"+targetID.Hex(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(f.session(t, admin))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, findSessionCookie(t, rec))
}

func TestUpdateUserHandler_EmptyBody(t *testing.T) {
	f := newUserHandlerFixture()

	selfID := primitive.NewObjectID()
	self := entity.Identity{ID: selfID, Role: entity.RoleUser, Name: "Alice"}

	req := httptest.NewRequest(http.MethodPatch, "/users/edit/"+selfID.Hex(), bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(f.session(t, self))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
