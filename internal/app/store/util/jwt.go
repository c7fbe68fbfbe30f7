package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается при любой причине отказа верификации:
// неверная подпись, битая структура, истекший срок. Причина наружу
// не раскрывается, чтобы не давать oracle для перебора
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims - полезная нагрузка сессионного токена
type SessionClaims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет сессионные токены
// Чистая функция от секрета, полезной нагрузки и часов; без I/O
type TokenManager struct {
	secretKey string
	expiresIn time.Duration
}

func NewTokenManager(secretKey string, expiresIn time.Duration) *TokenManager {
	return &TokenManager{
		secretKey: secretKey,
		expiresIn: expiresIn,
	}
}

// Generate выпускает подписанный токен с полезной нагрузкой {id, role, name}
// и сроком действия now + TTL
func (m *TokenManager) Generate(userID, role, name string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Role:   role,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// Validate проверяет токен целиком: подпись, структуру и срок действия
// Любой отказ возвращает ErrInvalidToken, частичного доверия нет
func (m *TokenManager) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secretKey), nil
		},
	)

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ExpiresIn возвращает настроенный TTL токена
func (m *TokenManager) ExpiresIn() time.Duration {
	return m.expiresIn
}
