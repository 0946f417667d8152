// Package list реализует HTTP-обработчик списка бронирований пользователя.
package list

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

// Service определяет методы бизнес-логики бронирований.
type Service interface {
	ListMyBookings(ctx context.Context, userUID string) ([]*models.Booking, error)
}

// Handler обрабатывает HTTP-запросы списка бронирований.
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
// @Summary Бронирования пользователя
// @Description Возвращает бронирования текущего пользователя, свежие первыми
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.OKResponse "Список бронирований"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Security BearerAuth
// @Router /bookings/my [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.list"

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

	bookings, err := h.service.ListMyBookings(r.Context(), user.UID)
	if err != nil {
		log.Error("failed to list bookings", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(bookings))
}

// ForUserHandler отдает бронирования произвольного пользователя.
// Маршрут закрыт проверкой ролей, поэтому владельца здесь не сверяем.
type ForUserHandler struct {
	log     *slog.Logger
	service Service
}

// NewForUser создает новый экземпляр ForUserHandler.
func NewForUser(log *slog.Logger, service Service) *ForUserHandler {
	return &ForUserHandler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Бронирования произвольного пользователя
// @Description Возвращает бронирования пользователя по его идентификатору, доступно только персоналу
// @Tags Bookings
// @Produce json
// @Param userUID path string true "UID пользователя"
// @Success 200 {object} response.OKResponse "Список бронирований"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Security BearerAuth
// @Router /bookings/user/{userUID} [get]
func (h *ForUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.list.foruser"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userUID")
	if userUID == "" {
		log.Error("userUID is empty")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("userUID is required"))
		return
	}

	bookings, err := h.service.ListMyBookings(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list bookings", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(bookings))
}
