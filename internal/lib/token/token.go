// Package token реализует одноразовые токены для подтверждения почты
// и сброса пароля: случайное 32-байтовое значение в hex и его sha-256
// дайджест. В письмо уходит само значение, в базе хранится только дайджест.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// New генерирует одноразовый токен и возвращает пару (plain, digest):
// plain — значение для ссылки в письме, digest — то, что сохраняется в базе.
func New() (plain, digest string, err error) {
	const op = "token.New"
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	plain = hex.EncodeToString(buf)
	return plain, Digest(plain), nil
}

// Digest возвращает sha-256 дайджест токена в hex.
// Используется при поиске пользователя по токену из ссылки.
func Digest(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
