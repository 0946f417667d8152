// Package cookies задает работу с cookie сессии: access и refresh токены,
// адрес возврата после обновления токена и email для платёжной страницы.
package cookies

import (
	"net/http"
	"time"
)

// Имена cookie.
const (
	JWT         = "jwt"
	Refresh     = "refresh"
	OriginalURL = "originalUrl"
	Email       = "email"
)

// loggedOutValue записывается вместо токена при выходе.
const loggedOutValue = "loggedout"

// Secure сообщает, пришел ли запрос по TLS напрямую или через
// терминирующий TLS прокси.
func Secure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

// SetToken выставляет httpOnly cookie с токеном на время его жизни.
func SetToken(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   Secure(r),
	})
}

// Set выставляет обычную httpOnly cookie без токена (originalUrl, email).
func Set(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   Secure(r),
	})
}

// Clear затирает cookie значением loggedout с истекшим сроком.
func Clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    loggedOutValue,
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   Secure(r),
	})
}
