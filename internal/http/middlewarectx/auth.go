// Package middlewarectx содержит HTTP middleware контроля доступа.
//
// Три варианта охраны маршрутов: RequireAuth для API (отвечает ошибкой),
// RequireAuthView для браузерных страниц (уводит на обновление токена),
// ResolveUser для публичных страниц (пользователь в контексте, если есть).
// RequireRoles ограничивает маршрут списком ролей.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-booking/internal/http/cookies"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// UserKey — ключ для пользователя в контексте.
const UserKey Key = "user"

// RefreshPath — маршрут обновления access-токена, на который уводятся
// браузерные запросы с протухшим токеном.
const RefreshPath = "/api/v1/users/access-token"

// UserFinder описывает поиск активного пользователя по UID.
type UserFinder interface {
	FindActiveUserByUID(ctx context.Context, uid string) (*models.User, error)
}

// UserFromContext возвращает пользователя из контекста запроса или nil.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

// tokenFromRequest извлекает access-токен из заголовка Authorization
// либо из cookie jwt.
func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if c, err := r.Cookie(cookies.JWT); err == nil {
		return c.Value
	}
	return ""
}

// resolve проверяет токен и возвращает привязанного к нему пользователя.
// Различает три исхода: невалидный токен, пользователь исчез,
// пароль сменился после выпуска токена.
func resolve(r *http.Request, maker jwt.Maker, users UserFinder) (*models.User, error) {
	tokenStr := tokenFromRequest(r)
	if tokenStr == "" {
		return nil, jwt.ErrTokenMalformed
	}

	claims, err := maker.Parse(tokenStr)
	if err != nil {
		return nil, err
	}

	user, err := users.FindActiveUserByUID(r.Context(), claims.UserUID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUserGone
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	if user.ChangedPasswordAfter(issuedAt) {
		return nil, errPasswordChanged
	}
	return user, nil
}

var (
	errUserGone        = errors.New("user belonging to this token no longer exists")
	errPasswordChanged = errors.New("password changed after token was issued")
)

// RequireAuth возвращает middleware для API-маршрутов: без валидного
// токена и живого пользователя запрос не проходит.
func RequireAuth(maker jwt.Maker, users UserFinder, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAuth"

			reqLog := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			user, err := resolve(r, maker, users)
			if err != nil {
				switch {
				case errors.Is(err, errUserGone):
					reqLog.Error("token user no longer exists")
					render.Status(r, http.StatusNotFound)
					render.JSON(w, r, response.Error("the user belonging to this token no longer exists"))
				case errors.Is(err, errPasswordChanged):
					reqLog.Error("password changed after token was issued")
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("user recently changed password, please log in again"))
				default:
					reqLog.Error("invalid or expired token", sl.Err(err))
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("invalid or expired token"))
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthView возвращает middleware для браузерных страниц: вместо
// ошибки запрос уводится на обновление токена, а исходный адрес
// запоминается в cookie для возврата.
func RequireAuthView(maker jwt.Maker, users UserFinder, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAuthView"

			user, err := resolve(r, maker, users)
			if err != nil {
				log.Info("view request without valid token, redirecting to refresh",
					slog.String("op", op), slog.String("path", r.URL.Path))
				cookies.Set(w, r, cookies.OriginalURL, r.URL.RequestURI(), time.Hour)
				http.Redirect(w, r, RefreshPath, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveUser возвращает middleware публичных страниц: пользователь
// кладется в контекст, если токен валиден, но запрос проходит и без него.
// Если access-токена нет, а refresh еще жив, запрос уводится на обновление.
func ResolveUser(maker jwt.Maker, users UserFinder, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.ResolveUser"

			user, err := resolve(r, maker, users)
			if err != nil {
				_, jwtErr := r.Cookie(cookies.JWT)
				_, refreshErr := r.Cookie(cookies.Refresh)
				if jwtErr != nil && refreshErr == nil {
					log.Info("access token missing but refresh alive, redirecting",
						slog.String("op", op), slog.String("path", r.URL.Path))
					cookies.Set(w, r, cookies.OriginalURL, r.URL.RequestURI(), time.Hour)
					http.Redirect(w, r, RefreshPath, http.StatusFound)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles возвращает middleware, пропускающий только пользователей
// с одной из перечисленных ролей. Ставится после RequireAuth.
func RequireRoles(log *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireRoles"

			user := UserFromContext(r.Context())
			if user == nil {
				log.Error("user missing in context", slog.String("op", op))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("you are not logged in"))
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("role not allowed", slog.String("op", op),
				slog.String("uid", user.UID), slog.String("role", user.Role))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("you do not have permission to perform this action"))
		})
	}
}
