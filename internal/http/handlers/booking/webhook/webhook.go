// Package webhook реализует HTTP-обработчик вебхуков платёжного провайдера.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
)

// SignatureHeader — заголовок с HMAC-подписью тела вебхука.
const SignatureHeader = "X-Payment-Signature"

// Service определяет методы бизнес-логики обработки вебхуков.
type Service interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// Handler обрабатывает вебхуки платёжного провайдера.
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
// @Summary Вебхук платёжного провайдера
// @Description Создает бронирование по событию успешной оплаты. Подпись тела обязательна
// @Tags Bookings
// @Accept json
// @Produce json
// @Param X-Payment-Signature header string true "HMAC-SHA256 подпись тела"
// @Success 200 {object} response.OKResponse "Событие обработано"
// @Failure 400 {object} response.ErrorResponse "Тело вебхука не разбирается"
// @Failure 401 {object} response.ErrorResponse "Подпись не сходится"
// @Router /bookings/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read request body"))
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get(SignatureHeader)); err != nil {
		log.Error("failed to handle webhook", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("webhook processed")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"received": true,
	}))
}
