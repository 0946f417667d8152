// Package updatepassword реализует HTTP-обработчик смены пароля
// аутентифицированного пользователя.
package updatepassword

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tour-booking/internal/http/cookies"
	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/services/session"
)

// Request — входные данные смены пароля.
type Request struct {
	PasswordCurrent string `json:"password_current" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// Service определяет методы бизнес-логики смены пароля.
type Service interface {
	UpdatePassword(ctx context.Context, userUID, currentPassword, newPassword string) (*session.Result, error)
}

// Handler обрабатывает HTTP-запросы смены пароля.
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
// @Summary Смена пароля
// @Description Проверяет текущий пароль, сохраняет новый и выдает свежие токены сессии
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Текущий и новый пароль"
// @Success 200 {object} response.OKResponse "Пароль изменен"
// @Failure 400 {object} response.ErrorResponse "Текущий пароль неверен"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации данных"
// @Security BearerAuth
// @Router /users/update-my-password [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.updatepassword"

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

	result, err := h.service.UpdatePassword(r.Context(), user.UID, req.PasswordCurrent, req.Password)
	if err != nil {
		log.Error("password update failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	cookies.SetToken(w, r, cookies.JWT, result.Token, h.tokenTTL)
	cookies.SetToken(w, r, cookies.Refresh, result.RefreshToken, h.refreshTTL)

	log.Info("password updated", slog.String("uid", user.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": result.Token,
		"user":  result.User,
	}))
}
