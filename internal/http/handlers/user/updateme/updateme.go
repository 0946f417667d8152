// Package updateme реализует HTTP-обработчик обновления профиля:
// имя, email и аватар через multipart-форму.
package updateme

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/http/response"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// maxUploadSize — предел размера multipart-формы с аватаром.
const maxUploadSize = 10 << 20

// Service определяет методы бизнес-логики профиля.
type Service interface {
	UpdateMe(ctx context.Context, uid string, name, email *string, avatar []byte) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы обновления профиля.
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
// @Summary Обновление профиля
// @Description Обновляет имя, email и аватар текущего пользователя. Смена пароля здесь запрещена
// @Tags Users
// @Accept mpfd
// @Produce json
// @Param name formData string false "Имя"
// @Param email formData string false "Email"
// @Param photo formData file false "Аватар"
// @Success 200 {object} response.OKResponse "Обновленный профиль"
// @Failure 400 {object} response.ErrorResponse "Файл не является изображением или передан пароль"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Security BearerAuth
// @Router /users/update-me [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.updateme"

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

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	// Смена пароля живет на отдельном маршруте.
	if r.FormValue("password") != "" || r.FormValue("password_confirm") != "" {
		log.Error("password update attempted through profile route")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("this route is not for password updates, please use /users/update-my-password"))
		return
	}

	var name, email *string
	if v := r.FormValue("name"); v != "" {
		name = &v
	}
	if v := r.FormValue("email"); v != "" {
		email = &v
	}

	var avatar []byte
	if file, _, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		avatar, err = io.ReadAll(file)
		if err != nil {
			log.Error("failed to read uploaded photo", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to read uploaded photo"))
			return
		}
	}

	updated, err := h.service.UpdateMe(r.Context(), user.UID, name, email, avatar)
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("profile updated", slog.String("uid", user.UID))
	render.JSON(w, r, response.OKWithData(updated))
}
