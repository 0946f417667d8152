package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Ошибки разбора токена. Маршрутизация различает их: протухший access-токен
// ведет на обновление через refresh, испорченный — сразу на повторный вход.
var (
	// ErrTokenExpired — подпись корректна, но срок действия истек.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed — токен поврежден или подписан другим секретом.
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims описывает данные, хранящиеся в токене: идентификатор пользователя
// и стандартные claims (ExpiresAt, IssuedAt и пр.).
type Claims struct {
	UserUID              string `json:"uid"`
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT
}

// Issue выпускает токен с идентификатором пользователя, подписывая его
// секретным ключом. Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) Issue(userUID string) (string, error) {
	claims := Claims{
		UserUID: userUID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// Parse разбирает токен, проверяет подпись и срок действия,
// возвращает Claims, если токен корректен.
func (j *MakerImpl) Parse(tokenStr string) (*Claims, error) {
	const op = "jwt.Parse"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s: %w", op, ErrTokenMalformed)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenMalformed)
	}
	return claims, nil
}
