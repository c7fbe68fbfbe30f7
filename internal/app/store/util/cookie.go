package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidSignature возвращается, если внешняя подпись cookie не сходится
var ErrInvalidSignature = errors.New("invalid cookie signature")

// CookieSigner подписывает значение сессионной cookie на транспортном уровне
// (HMAC-SHA256 поверх уже подписанного JWT). Проверка этой подписи -
// предусловие к разбору самого токена
type CookieSigner struct {
	secret []byte
}

func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

// Sign возвращает значение в формате "<value>.<base64url(hmac)>"
func (s *CookieSigner) Sign(value string) string {
	return value + "." + s.signature(value)
}

// Unsign проверяет внешнюю подпись и возвращает исходное значение
func (s *CookieSigner) Unsign(signed string) (string, error) {
	idx := strings.LastIndex(signed, ".")
	if idx < 0 {
		return "", ErrInvalidSignature
	}

	value, sig := signed[:idx], signed[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(s.signature(value))) {
		return "", ErrInvalidSignature
	}

	return value, nil
}

func (s *CookieSigner) signature(value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
