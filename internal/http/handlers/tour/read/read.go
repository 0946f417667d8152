// Package read реализует HTTP-обработчик чтения одного тура.
package read

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

// Service определяет методы бизнес-логики туров.
type Service interface {
	GetTour(ctx context.Context, uid string) (*models.Tour, error)
}

// Handler обрабатывает HTTP-запросы чтения тура.
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
// @Summary Чтение тура
// @Description Возвращает тур по UID с агрегированным рейтингом
// @Tags Tours
// @Produce json
// @Param tourUID path string true "UID тура"
// @Success 200 {object} response.OKResponse "Тур"
// @Failure 404 {object} response.ErrorResponse "Тур не найден"
// @Router /tours/{tourUID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tour.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tour, err := h.service.GetTour(r.Context(), chi.URLParam(r, "tourUID"))
	if err != nil {
		log.Error("failed to read tour", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(tour))
}
