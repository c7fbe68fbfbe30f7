package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hazelmart/internal/app/store/entity"
	"hazelmart/internal/app/store/util"
)

// sessionCookieName - имя cookie, несущей сессионный токен
const sessionCookieName = "token"

// identityKey - ключ контекста gin, под которым лежит entity.Identity
const identityKey = "identity"

type AuthMiddleware struct {
	tokenManager *util.TokenManager
	cookieSigner *util.CookieSigner
}

func NewAuthMiddleware(tokenManager *util.TokenManager, cookieSigner *util.CookieSigner) *AuthMiddleware {
	return &AuthMiddleware{
		tokenManager: tokenManager,
		cookieSigner: cookieSigner,
	}
}

// Authenticate извлекает сессионный токен из cookie и кладет identity
// в контекст запроса. Любой отказ (нет cookie, битая внешняя подпись,
// невалидный или истекший токен) дает один и тот же ответ 401 -
// снаружи причины неразличимы
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		signed, err := c.Cookie(sessionCookieName)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		// Внешняя подпись проверяется до разбора токена
		token, err := m.cookieSigner.Unsign(signed)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		claims, err := m.tokenManager.Validate(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(identityKey, entity.Identity{
			ID:   userID,
			Role: claims.Role,
			Name: claims.Name,
		})

		c.Next()
	}
}

// RequireRoles пропускает только аутентифицированных пользователей
// с одной из перечисленных ролей
func (m *AuthMiddleware) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFromContext(c)
		if !ok {
			abortUnauthorized(c)
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Unauthorized to access this route",
		})
		c.Abort()
	}
}

func identityFromContext(c *gin.Context) (entity.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return entity.Identity{}, false
	}

	identity, ok := value.(entity.Identity)
	return identity, ok
}

func abortUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "Unauthorized",
		"message": "Authentication invalid",
	})
	c.Abort()
}
