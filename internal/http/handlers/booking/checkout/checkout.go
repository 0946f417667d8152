// Package checkout реализует HTTP-обработчик создания платёжной сессии
// для бронирования тура.
package checkout

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-booking/internal/http/cookies"
	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/paymentprovider"
)

// Service определяет методы бизнес-логики оплаты.
type Service interface {
	CreateCheckoutSession(ctx context.Context, actor *models.User, tourUID string) (*paymentprovider.CheckoutSession, error)
}

// Handler обрабатывает HTTP-запросы создания платёжной сессии.
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
// @Summary Создание платёжной сессии
// @Description Создает hosted checkout сессию у платёжного провайдера и возвращает адрес оплаты
// @Tags Bookings
// @Produce json
// @Param tourUID path string true "UID тура"
// @Success 200 {object} response.OKResponse "Сессия с адресом платёжной страницы"
// @Failure 404 {object} response.ErrorResponse "Тур не найден"
// @Failure 503 {object} response.ErrorResponse "Платёжный провайдер недоступен"
// @Security BearerAuth
// @Router /bookings/checkout-session/{tourUID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.checkout"

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

	session, err := h.service.CreateCheckoutSession(r.Context(), user, chi.URLParam(r, "tourUID"))
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	// Email пригодится платёжной странице для предзаполнения формы.
	cookies.Set(w, r, cookies.Email, user.Email, time.Hour)

	log.Info("checkout session created", slog.String("session_id", session.ID))
	render.JSON(w, r, response.OKWithData(session))
}
