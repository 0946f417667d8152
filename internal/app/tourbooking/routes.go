// Package tourbooking собирает основное приложение: хранилище, кеш,
// очередь писем, сервисы и маршруты HTTP API.
package tourbooking

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/accesstoken"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/confirmemail"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/auth/updatepassword"
	bookinglist "github.com/magabrotheeeer/tour-booking/internal/http/handlers/booking/list"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/booking/checkout"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/booking/webhook"
	reviewcreate "github.com/magabrotheeeer/tour-booking/internal/http/handlers/review/create"
	reviewlist "github.com/magabrotheeeer/tour-booking/internal/http/handlers/review/list"
	reviewremove "github.com/magabrotheeeer/tour-booking/internal/http/handlers/review/remove"
	reviewupdate "github.com/magabrotheeeer/tour-booking/internal/http/handlers/review/update"
	tourlist "github.com/magabrotheeeer/tour-booking/internal/http/handlers/tour/list"
	tourread "github.com/magabrotheeeer/tour-booking/internal/http/handlers/tour/read"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/user/deleteme"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/tour-booking/internal/http/handlers/user/updateme"
	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/lib/jwt"
	bookingservice "github.com/magabrotheeeer/tour-booking/internal/services/booking"
	profileservice "github.com/magabrotheeeer/tour-booking/internal/services/profile"
	reviewservice "github.com/magabrotheeeer/tour-booking/internal/services/review"
	sessionservice "github.com/magabrotheeeer/tour-booking/internal/services/session"
	tourservice "github.com/magabrotheeeer/tour-booking/internal/services/tour"
	"github.com/magabrotheeeer/tour-booking/internal/storage/repository"

	_ "github.com/magabrotheeeer/tour-booking/docs"
)

// Services группирует бизнес-сервисы, обслуживаемые маршрутами.
type Services struct {
	Session *sessionservice.Service
	Tour    *tourservice.Service
	Review  *reviewservice.Service
	Booking *bookingservice.Service
	Profile *profileservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services,
	accessMaker, refreshMaker *jwt.MakerImpl, users *repository.Storage, baseURL string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	requireAuth := middlewarectx.RequireAuth(accessMaker, users, logger)
	requireRoles := middlewarectx.RequireRoles(logger, "admin", "lead-guide")

	// Один общий лимитер на конечные точки аутентификации: они самые
	// чувствительные к перебору.
	authLimiter := rate.NewLimiter(rate.Every(time.Second), 10)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			// Открытые конечные точки аутентификации
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(authLimiter, logger))
				r.Post("/signup", signup.New(logger, svc.Session).ServeHTTP)
				r.Post("/login", login.New(logger, svc.Session, accessMaker.TTL(), refreshMaker.TTL()).ServeHTTP)
				r.Get("/confirm-email/{token}", confirmemail.New(logger, svc.Session, accessMaker.TTL(), refreshMaker.TTL(), baseURL+"/email-verified").ServeHTTP)
				r.Post("/forgot-password", forgotpassword.New(logger, svc.Session).ServeHTTP)
				r.Patch("/reset-password/{token}", resetpassword.New(logger, svc.Session, accessMaker.TTL(), refreshMaker.TTL()).ServeHTTP)
			})
			r.Get("/logout", logout.New(logger).ServeHTTP)
			r.Get("/access-token", accesstoken.New(logger, svc.Session, accessMaker.TTL()).ServeHTTP)

			// Группа с JWT аутентификацией
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Patch("/update-my-password", updatepassword.New(logger, svc.Session, accessMaker.TTL(), refreshMaker.TTL()).ServeHTTP)
				r.Get("/me", me.New(logger).ServeHTTP)
				r.Patch("/update-me", updateme.New(logger, svc.Profile).ServeHTTP)
				r.Delete("/delete-me", deleteme.New(logger, svc.Profile).ServeHTTP)
			})
		})

		r.Route("/tours", func(r chi.Router) {
			// Открытые маршруты: пользователь подхватывается из cookie, если есть
			r.Use(middlewarectx.ResolveUser(accessMaker, users, logger))
			r.Get("/", tourlist.New(logger, svc.Tour).ServeHTTP)
			r.Get("/{tourUID}", tourread.New(logger, svc.Tour).ServeHTTP)
			r.Get("/{tourUID}/reviews", reviewlist.New(logger, svc.Review).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/{tourUID}/reviews", reviewcreate.New(logger, svc.Review).ServeHTTP)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(requireAuth)
			r.Patch("/{reviewUID}", reviewupdate.New(logger, svc.Review).ServeHTTP)
			r.Delete("/{reviewUID}", reviewremove.New(logger, svc.Review).ServeHTTP)
		})

		r.Route("/bookings", func(r chi.Router) {
			// Webhook endpoint (без аутентификации, подпись проверяет сервис)
			r.Post("/webhook", webhook.New(logger, svc.Booking).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/my", bookinglist.New(logger, svc.Booking).ServeHTTP)
				r.Get("/checkout-session/{tourUID}", checkout.New(logger, svc.Booking).ServeHTTP)

				// Служебный список всех бронирований только для персонала
				r.Group(func(r chi.Router) {
					r.Use(requireRoles)
					r.Get("/user/{userUID}", bookinglist.NewForUser(logger, svc.Booking).ServeHTTP)
				})
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
