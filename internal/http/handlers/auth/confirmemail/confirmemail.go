// Package confirmemail реализует HTTP-обработчик подтверждения почты
// по ссылке из письма.
package confirmemail

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-booking/internal/http/cookies"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/services/session"
)

// Service определяет методы бизнес-логики подтверждения почты.
type Service interface {
	ConfirmEmail(ctx context.Context, plainToken string) (*session.Result, error)
}

// Handler обрабатывает HTTP-запросы подтверждения почты.
type Handler struct {
	log         *slog.Logger
	service     Service
	tokenTTL    time.Duration
	refreshTTL  time.Duration
	verifiedURL string
}

// New создает новый экземпляр Handler. verifiedURL — страница,
// на которую пользователь попадает после подтверждения почты.
func New(log *slog.Logger, service Service, tokenTTL, refreshTTL time.Duration, verifiedURL string) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		tokenTTL:    tokenTTL,
		refreshTTL:  refreshTTL,
		verifiedURL: verifiedURL,
	}
}

// ServeHTTP godoc
// @Summary Подтверждение почты
// @Description Активирует пользователя по токену из письма и сразу выдает токены сессии
// @Tags Auth
// @Produce json
// @Param token path string true "Токен подтверждения из письма"
// @Success 302 "Редирект на страницу подтвержденной почты"
// @Failure 400 {object} response.ErrorResponse "Токен неверен или истек"
// @Router /users/confirm-email/{token} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.confirmemail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plainToken := chi.URLParam(r, "token")
	if plainToken == "" {
		log.Error("missing token in path")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("token is required"))
		return
	}

	result, err := h.service.ConfirmEmail(r.Context(), plainToken)
	if err != nil {
		log.Error("email confirmation failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	cookies.SetToken(w, r, cookies.JWT, result.Token, h.tokenTTL)
	cookies.SetToken(w, r, cookies.Refresh, result.RefreshToken, h.refreshTTL)

	log.Info("email confirmed", slog.String("uid", result.User.UID))
	http.Redirect(w, r, h.verifiedURL, http.StatusFound)
}
