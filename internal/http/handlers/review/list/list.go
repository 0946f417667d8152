// Package list реализует HTTP-обработчик списка отзывов о туре.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// Service определяет методы бизнес-логики отзывов.
type Service interface {
	ListByTour(ctx context.Context, tourUID string) ([]*models.Review, error)
}

// Handler обрабатывает HTTP-запросы списка отзывов.
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
// @Summary Список отзывов о туре
// @Description Возвращает отзывы о туре, свежие первыми
// @Tags Reviews
// @Produce json
// @Param tourUID path string true "UID тура"
// @Success 200 {object} response.OKResponse "Список отзывов"
// @Router /tours/{tourUID}/reviews [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	reviews, err := h.service.ListByTour(r.Context(), chi.URLParam(r, "tourUID"))
	if err != nil {
		log.Error("failed to list reviews", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(reviews))
}
