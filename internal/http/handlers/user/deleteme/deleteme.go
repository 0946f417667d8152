// Package deleteme реализует HTTP-обработчик деактивации аккаунта
// текущего пользователя.
package deleteme

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-booking/internal/http/cookies"
	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
)

// Service определяет методы бизнес-логики профиля.
type Service interface {
	DeleteMe(ctx context.Context, uid string) error
}

// Handler обрабатывает HTTP-запросы деактивации аккаунта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удаление аккаунта
// @Description Деактивирует аккаунт текущего пользователя, данные остаются в базе
// @Tags Users
// @Produce json
// @Success 204 "Аккаунт деактивирован"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Security BearerAuth
// @Router /users/delete-me [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.deleteme"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		log.Error("user missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("you are not logged in"))
		return
	}

	if err := h.service.DeleteMe(r.Context(), user.UID); err != nil {
		log.Error("failed to deactivate user", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	cookies.Clear(w, r, cookies.JWT)
	cookies.Clear(w, r, cookies.Refresh)

	log.Info("user deactivated", slog.String("uid", user.UID))
	render.NoContent(w, r)
}
