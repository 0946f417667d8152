// Package resetpassword реализует HTTP-обработчик установки нового пароля
// по токену из письма.
package resetpassword

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tour-booking/internal/http/cookies"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/services/session"
)

// Request — входные данные установки нового пароля.
type Request struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// Service определяет методы бизнес-логики сброса пароля.
type Service interface {
	ResetPassword(ctx context.Context, plainToken, newPassword string) (*session.Result, error)
}

// Handler обрабатывает HTTP-запросы установки нового пароля.
type Handler struct {
	log        *slog.Logger
	service    Service
	tokenTTL   time.Duration
	refreshTTL time.Duration
	validate   *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, tokenTTL, refreshTTL time.Duration) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
		validate:   validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Установка нового пароля
// @Description Меняет пароль по токену из письма и выдает свежие токены сессии
// @Tags Auth
// @Accept json
// @Produce json
// @Param token path string true "Токен сброса из письма"
// @Param request body Request true "Новый пароль"
// @Success 200 {object} response.OKResponse "Пароль изменен, пользователь вошел"
// @Failure 400 {object} response.ErrorResponse "Токен неверен или истек"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации данных"
// @Router /users/reset-password/{token} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	result, err := h.service.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password)
	if err != nil {
		log.Error("password reset failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	cookies.SetToken(w, r, cookies.JWT, result.Token, h.tokenTTL)
	cookies.SetToken(w, r, cookies.Refresh, result.RefreshToken, h.refreshTTL)

	log.Info("password reset", slog.String("uid", result.User.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": result.Token,
		"user":  result.User,
	}))
}
