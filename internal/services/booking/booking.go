// Package booking реализует оплату туров через hosted checkout платёжного
// провайдера. Бронирование создается только по вебхуку об успешной оплате,
// а не в момент создания сессии.
package booking

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/paymentprovider"
)

// PaymentProvider описывает контракт платёжного провайдера.
type PaymentProvider interface {
	CreateCheckoutSession(req paymentprovider.CreateCheckoutSessionRequest) (*paymentprovider.CheckoutSession, error)
	VerifySignature(payload []byte, signature string) bool
	ParseEvent(payload []byte) (*paymentprovider.Event, error)
}

// TourRepository описывает чтение тура для расчета стоимости сессии.
type TourRepository interface {
	GetTour(ctx context.Context, uid string) (*models.Tour, error)
}

// BookingRepository описывает контракт для работы с бронированиями.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking models.Booking) (string, error)
	ListBookingsByUser(ctx context.Context, userUID string) ([]*models.Booking, error)
}

// UserRepository описывает поиск пользователя по email из вебхука.
type UserRepository interface {
	FindActiveUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service отвечает за оплату и бронирование туров.
type Service struct {
	provider PaymentProvider
	tours    TourRepository
	bookings BookingRepository
	users    UserRepository
	baseURL  string
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(provider PaymentProvider, tours TourRepository, bookings BookingRepository,
	users UserRepository, baseURL string, log *slog.Logger) *Service {
	return &Service{
		provider: provider,
		tours:    tours,
		bookings: bookings,
		users:    users,
		baseURL:  baseURL,
		log:      log,
	}
}

// CreateCheckoutSession создает платёжную сессию для тура и возвращает
// адрес платёжной страницы. Сумма передается в минорных единицах валюты.
func (s *Service) CreateCheckoutSession(ctx context.Context, actor *models.User, tourUID string) (*paymentprovider.CheckoutSession, error) {
	tour, err := s.tours.GetTour(ctx, tourUID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, errs.New(errs.KindNotFound, "tour not found")
	}

	session, err := s.provider.CreateCheckoutSession(paymentprovider.CreateCheckoutSessionRequest{
		ClientReferenceID: tour.UID,
		CustomerEmail:     actor.Email,
		SuccessURL:        s.baseURL + "/my-tours?alert=booking",
		CancelURL:         s.baseURL + "/tour/" + tour.Slug,
		AmountTotal:       int64(tour.Price * 100),
		Currency:          "usd",
		Description:       tour.Summary,
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindRetryable, "payment provider is unavailable, try again later", err)
	}

	s.log.Info("checkout session created",
		slog.String("session_id", session.ID), slog.String("tour_uid", tour.UID))
	return session, nil
}

// HandleWebhook обрабатывает событие платёжного провайдера. Бронирование
// создается по событию успешной оплаты; повторная доставка того же события
// гасится уникальным индексом бронирований и не считается ошибкой.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.provider.VerifySignature(payload, signature) {
		return errs.New(errs.KindUnauthorized, "invalid webhook signature")
	}

	event, err := s.provider.ParseEvent(payload)
	if err != nil {
		return errs.Wrap(errs.KindBadRequest, "malformed webhook payload", err)
	}
	if event.Type != paymentprovider.EventCheckoutCompleted {
		s.log.Info("webhook event ignored", slog.String("type", event.Type))
		return nil
	}

	user, err := s.users.FindActiveUserByEmail(ctx, event.Session.CustomerEmail)
	if err != nil {
		return err
	}
	if user == nil {
		return errs.New(errs.KindNotFound, "user from checkout session not found")
	}

	booking := models.Booking{
		TourUID: event.Session.ClientReferenceID,
		UserUID: user.UID,
		Price:   float64(event.Session.AmountTotal) / 100,
		Paid:    true,
	}
	if _, err := s.bookings.CreateBooking(ctx, booking); err != nil {
		if errs.KindOf(err) == errs.KindConflict {
			s.log.Info("duplicate webhook delivery ignored",
				slog.String("tour_uid", booking.TourUID), slog.String("user_uid", booking.UserUID))
			return nil
		}
		return err
	}

	s.log.Info("booking created from webhook",
		slog.String("tour_uid", booking.TourUID), slog.String("user_uid", booking.UserUID))
	return nil
}

// ListMyBookings возвращает бронирования пользователя.
func (s *Service) ListMyBookings(ctx context.Context, userUID string) ([]*models.Booking, error) {
	return s.bookings.ListBookingsByUser(ctx, userUID)
}
