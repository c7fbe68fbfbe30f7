package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"hazelmart/internal/app/store/entity"
	"hazelmart/internal/app/store/util"
)

// SessionWriter выпускает сессионный токен и прикрепляет его к ответу
// в виде httpOnly cookie с внешней подписью. Флаг secure включается
// только в production
type SessionWriter struct {
	tokenManager *util.TokenManager
	cookieSigner *util.CookieSigner
	secure       bool
}

func NewSessionWriter(tokenManager *util.TokenManager, cookieSigner *util.CookieSigner, secure bool) *SessionWriter {
	return &SessionWriter{
		tokenManager: tokenManager,
		cookieSigner: cookieSigner,
		secure:       secure,
	}
}

// Attach выпускает токен для пользователя и устанавливает cookie
// Время жизни cookie совпадает с TTL токена
func (w *SessionWriter) Attach(c *gin.Context, user *entity.User) (string, error) {
	token, err := w.tokenManager.Generate(user.ID.Hex(), user.Role, user.Name)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	maxAge := int(w.tokenManager.ExpiresIn().Seconds())
	c.SetCookie(sessionCookieName, w.cookieSigner.Sign(token), maxAge, "/", "", w.secure, true)

	return token, nil
}

// Clear немедленно гасит сессионную cookie
func (w *SessionWriter) Clear(c *gin.Context) {
	c.SetCookie(sessionCookieName, "", -1, "/", "", w.secure, true)
}
