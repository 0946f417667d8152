// Package remove реализует HTTP-обработчик удаления отзыва.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// Service определяет методы бизнес-логики отзывов.
type Service interface {
	Delete(ctx context.Context, actor *models.User, reviewUID string) error
}

// Handler обрабатывает HTTP-запросы удаления отзыва.
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
// @Summary Удаление отзыва
// @Description Удаляет отзыв и пересчитывает рейтинг тура. Доступно автору и администратору
// @Tags Reviews
// @Produce json
// @Param reviewUID path string true "UID отзыва"
// @Success 200 {object} response.OKResponse "Отзыв удален"
// @Failure 403 {object} response.ErrorResponse "Чужой отзыв"
// @Failure 404 {object} response.ErrorResponse "Отзыв не найден"
// @Security BearerAuth
// @Router /reviews/{reviewUID} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.remove"

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

	reviewUID := chi.URLParam(r, "reviewUID")
	if err := h.service.Delete(r.Context(), user, reviewUID); err != nil {
		log.Error("failed to delete review", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("review deleted", slog.String("uid", reviewUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "review deleted",
	}))
}
