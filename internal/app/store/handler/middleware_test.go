package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hazelmart/internal/app/store/entity"
	"hazelmart/internal/app/store/util"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestAuthMiddleware(ttl time.Duration) (*AuthMiddleware, *util.TokenManager, *util.CookieSigner) {
	tokenManager := util.NewTokenManager("test-secret-key", ttl)
	cookieSigner := util.NewCookieSigner("test-secret-key")
	return NewAuthMiddleware(tokenManager, cookieSigner), tokenManager, cookieSigner
}

func sessionCookie(t *testing.T, tokenManager *util.TokenManager, signer *util.CookieSigner, identity entity.Identity) *http.Cookie {
	t.Helper()
	token, err := tokenManager.Generate(identity.ID.Hex(), identity.Role, identity.Name)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookieName, Value: signer.Sign(token)}
}

func TestAuthenticate_Success(t *testing.T) {
	middleware, tokenManager, signer := newTestAuthMiddleware(time.Hour)

	identity := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleUser, Name: "Alice"}

	router := gin.New()
	router.GET("/protected", middleware.Authenticate(), func(c *gin.Context) {
		got, ok := identityFromContext(c)
		assert.True(t, ok)
		assert.Equal(t, identity, got)
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(sessionCookie(t, tokenManager, signer, identity))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_FailuresIndistinguishable(t *testing.T) {
	// Отсутствие cookie, битая подпись и истекший токен дают один ответ
	middleware, tokenManager, signer := newTestAuthMiddleware(time.Hour)
	expiredManager := util.NewTokenManager("test-secret-key", -time.Hour)

	identity := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleUser, Name: "Alice"}

	router := gin.New()
	router.GET("/protected", middleware.Authenticate(), func(c *gin.Context) {
		t.Error("Handler should not be called")
	})

	tamperedValue := func() string {
		token, err := tokenManager.Generate(identity.ID.Hex(), identity.Role, identity.Name)
		require.NoError(t, err)
		return signer.Sign(token) + "x"
	}()

	cases := []struct {
		name   string
		cookie *http.Cookie
	}{
		{name: "no cookie", cookie: nil},
		{name: "tampered signature", cookie: &http.Cookie{Name: sessionCookieName, Value: tamperedValue}},
		{name: "expired token", cookie: sessionCookie(t, expiredManager, signer, identity)},
		{name: "garbage value", cookie: &http.Cookie{Name: sessionCookieName, Value: "not-a-token"}},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			bodies = append(bodies, rec.Body.String())
		})
	}

	for i := 1; i < len(bodies); i++ {
		assert.Equal(t, bodies[0], bodies[i])
	}
}

func TestAuthenticate_UnsignedTokenRejected(t *testing.T) {
	// Валидный JWT без внешней подписи cookie не проходит
	middleware, tokenManager, _ := newTestAuthMiddleware(time.Hour)

	identity := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleUser, Name: "Alice"}
	token, err := tokenManager.Generate(identity.ID.Hex(), identity.Role, identity.Name)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", middleware.Authenticate(), func(c *gin.Context) {
		t.Error("Handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles_AdminOnly(t *testing.T) {
	middleware, tokenManager, signer := newTestAuthMiddleware(time.Hour)

	router := gin.New()
	router.GET("/admin", middleware.Authenticate(), middleware.RequireRoles(entity.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	user := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleUser, Name: "Alice"}
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(sessionCookie(t, tokenManager, signer, user))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := entity.Identity{ID: primitive.NewObjectID(), Role: entity.RoleAdmin, Name: "Root"}
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(sessionCookie(t, tokenManager, signer, admin))
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
