// Package accesstoken реализует HTTP-обработчик обновления access-токена
// по refresh-токену из cookie.
package accesstoken

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/http/cookies"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
)

var errRefreshMissing = errs.New(errs.KindUnauthorized, "you are not logged in, please log in again")

// Service определяет методы бизнес-логики обновления токена.
type Service interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// Handler обрабатывает HTTP-запросы обновления access-токена.
type Handler struct {
	log      *slog.Logger
	service  Service
	tokenTTL time.Duration
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, tokenTTL time.Duration) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		tokenTTL: tokenTTL,
	}
}

// ServeHTTP godoc
// @Summary Обновление access-токена
// @Description Выпускает новый access-токен по refresh-токену из cookie и возвращает на исходную страницу
// @Tags Auth
// @Produce json
// @Success 302 "Редирект на страницу из cookie originalUrl"
// @Failure 401 {object} response.ErrorResponse "Refresh-токен отсутствует или истек"
// @Router /users/access-token [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.accesstoken"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	refreshCookie, err := r.Cookie(cookies.Refresh)
	if err != nil {
		log.Error("refresh cookie missing")
		response.RenderError(w, r, errRefreshMissing)
		return
	}

	accessToken, err := h.service.RefreshAccessToken(r.Context(), refreshCookie.Value)
	if err != nil {
		log.Error("failed to refresh access token", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	cookies.SetToken(w, r, cookies.JWT, accessToken, h.tokenTTL)

	// Возврат на страницу, с которой пользователя увело на обновление.
	target := "/"
	if c, err := r.Cookie(cookies.OriginalURL); err == nil && c.Value != "" {
		target = c.Value
	}
	cookies.Clear(w, r, cookies.OriginalURL)

	log.Info("access token refreshed", slog.String("redirect", target))
	http.Redirect(w, r, target, http.StatusFound)
}
