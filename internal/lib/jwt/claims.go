// Package jwt реализует выпуск и разбор подписанных токенов доступа.
//
// Maker описывает интерфейс для генерации и проверки токена с идентификатором
// пользователя. Сервис создает два независимых Maker'а: короткоживущий access
// и долгоживущий refresh, каждый со своим секретом и TTL.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для выпуска и разбора токенов.
type Maker interface {
	// Issue выпускает токен, привязанный к идентификатору пользователя.
	Issue(userUID string) (string, error)
	// Parse проверяет подпись и срок действия, возвращает claims.
	// Ошибки различимы: ErrTokenExpired либо ErrTokenMalformed.
	Parse(tokenStr string) (*Claims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewMaker создает новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// TTL возвращает время жизни выпускаемых токенов.
// Используется при выставлении сроков действия cookie.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
