package tourbooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tour-booking/internal/cache"
	"github.com/magabrotheeeer/tour-booking/internal/config"
	"github.com/magabrotheeeer/tour-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-booking/internal/migrations"
	"github.com/magabrotheeeer/tour-booking/internal/paymentprovider"
	"github.com/magabrotheeeer/tour-booking/internal/rabbitmq"
	bookingservice "github.com/magabrotheeeer/tour-booking/internal/services/booking"
	emailservice "github.com/magabrotheeeer/tour-booking/internal/services/email"
	profileservice "github.com/magabrotheeeer/tour-booking/internal/services/profile"
	reviewservice "github.com/magabrotheeeer/tour-booking/internal/services/review"
	sessionservice "github.com/magabrotheeeer/tour-booking/internal/services/session"
	tourservice "github.com/magabrotheeeer/tour-booking/internal/services/tour"
	"github.com/magabrotheeeer/tour-booking/internal/storage/repository"
)

// App агрегирует ресурсы основного приложения и управляет их жизненным циклом.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New собирает приложение: подключения, миграции, сервисы и HTTP-сервер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.ConnRetries, cfg.ConnRetryWait)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	accessMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	refreshMaker := jwt.NewMaker(cfg.RefreshSecretKey, cfg.RefreshTTL)

	mailer := emailservice.New(rabbitmq.NewPublisher(ch), cfg.BaseURL, logger)
	provider := paymentprovider.NewClient(cfg.PaymentAPIURL, cfg.PaymentSecretKey, cfg.PaymentWebhookSecret)

	services := Services{
		Session: sessionservice.New(db, mailer, accessMaker, refreshMaker,
			cfg.MaxLoginAttempts, cfg.ConfirmTokenTTL, cfg.ResetTokenTTL, logger),
		Tour:    tourservice.New(db, cacheRedis, logger),
		Review:  reviewservice.New(db, db, db, cacheRedis, logger),
		Booking: bookingservice.New(provider, db, db, db, cfg.BaseURL, logger),
		Profile: profileservice.New(db, cfg.UploadDir, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services, accessMaker, refreshMaker, db, cfg.BaseURL)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и мягко останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close database", slog.Any("err", cerr))
		}
		return err
	}
}
