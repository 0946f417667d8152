// Package create реализует HTTP-обработчик создания отзыва о туре.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// Request — входные данные для создания отзыва.
type Request struct {
	Text   string  `json:"text" validate:"required,min=3"`
	Rating float64 `json:"rating" validate:"required,gte=1,lte=5"`
}

// Service определяет методы бизнес-логики отзывов.
type Service interface {
	Create(ctx context.Context, actor *models.User, tourUID, text string, rating float64) (*models.Review, error)
}

// Handler обрабатывает HTTP-запросы создания отзыва.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создание отзыва
// @Description Создает отзыв о забронированном туре и пересчитывает его рейтинг
// @Tags Reviews
// @Accept json
// @Produce json
// @Param tourUID path string true "UID тура"
// @Param request body Request true "Текст и рейтинг отзыва"
// @Success 201 {object} response.OKResponse "Отзыв создан"
// @Failure 401 {object} response.ErrorResponse "Тур не бронировался этим пользователем"
// @Failure 409 {object} response.ErrorResponse "Отзыв об этом туре уже есть"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации данных"
// @Security BearerAuth
// @Router /tours/{tourUID}/reviews [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.create"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	review, err := h.service.Create(r.Context(), user, chi.URLParam(r, "tourUID"), req.Text, req.Rating)
	if err != nil {
		log.Error("failed to create review", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("review created", slog.String("uid", review.UID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(review))
}
