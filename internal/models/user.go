// Package models содержит доменные модели системы бронирования туров:
// пользователей, туры, отзывы и бронирования. Структуры используются
// в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// User представляет зарегистрированного пользователя системы.
//
// PasswordHash и служебные поля токенов никогда не сериализуются в ответы.
type User struct {
	UID                 string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"` // хранится в нижнем регистре, уникален
	Photo               string     `json:"photo"`
	Role                string     `json:"role"`
	PasswordHash        string     `json:"-"`
	PasswordChangedAt   *time.Time `json:"-"`
	PasswordResetToken  *string    `json:"-"` // sha-256 digest, не сам токен
	PasswordResetExpire *time.Time `json:"-"`
	EmailConfirmToken   *string    `json:"-"` // sha-256 digest, не сам токен
	EmailConfirmExpire  *time.Time `json:"-"`
	LoginAttempts       int        `json:"-"`
	LockExpires         *time.Time `json:"-"`
	Active              bool       `json:"-"`
}

// ChangedPasswordAfter сообщает, был ли пароль изменен после выдачи токена.
//
// Сравнение идет с точностью до секунды, как и у iat в JWT; при равных
// метках времени считается, что пароль не менялся после выдачи.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}
