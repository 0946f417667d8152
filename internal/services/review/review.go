// Package review реализует работу с отзывами и пересчет агрегированного
// рейтинга тура. Любое изменение множества отзывов тура завершается
// пересчетом count и avg и инвалидацией кэша тура.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/metrics"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// ReviewRepository описывает контракт для работы с отзывами в базе данных.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review models.Review) (string, error)
	GetReview(ctx context.Context, uid string) (*models.Review, error)
	ListReviewsByTour(ctx context.Context, tourUID string) ([]*models.Review, error)
	UpdateReview(ctx context.Context, uid, text string, rating float64) (int64, error)
	RemoveReview(ctx context.Context, uid string) (int64, error)
	AggregateTourRatings(ctx context.Context, tourUID string) (int, float64, error)
}

// TourRepository описывает запись агрегатов рейтинга в тур.
type TourRepository interface {
	UpdateTourRatings(ctx context.Context, tourUID string, quantity int, average float64) error
}

// BookingRepository описывает проверку наличия бронирования.
type BookingRepository interface {
	ExistsBooking(ctx context.Context, tourUID, userUID string) (bool, error)
}

// Cache описывает инвалидацию кэшированного тура.
type Cache interface {
	Invalidate(ctx context.Context, key string) error
}

// Service отвечает за отзывы и агрегированный рейтинг туров.
type Service struct {
	reviews  ReviewRepository
	tours    TourRepository
	bookings BookingRepository
	cache    Cache
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(reviews ReviewRepository, tours TourRepository, bookings BookingRepository,
	cache Cache, log *slog.Logger) *Service {
	return &Service{
		reviews:  reviews,
		tours:    tours,
		bookings: bookings,
		cache:    cache,
		log:      log,
	}
}

// Create создает отзыв о туре. Обычный пользователь может оставить отзыв
// только о забронированном туре; администратор пишет без ограничения.
// Повторный отзыв о том же туре отклоняет уникальный индекс базы.
func (s *Service) Create(ctx context.Context, actor *models.User, tourUID, text string, rating float64) (*models.Review, error) {
	if actor.Role != models.RoleAdmin {
		booked, err := s.bookings.ExistsBooking(ctx, tourUID, actor.UID)
		if err != nil {
			return nil, err
		}
		if !booked {
			return nil, errs.New(errs.KindUnauthorized, "you can only review tours you have booked")
		}
	}

	review := models.Review{
		Text:    text,
		Rating:  rating,
		TourUID: tourUID,
		UserUID: actor.UID,
	}
	uid, err := s.reviews.CreateReview(ctx, review)
	if err != nil {
		return nil, err
	}
	review.UID = uid
	metrics.ReviewsWritten.Inc()

	if err := s.Recalculate(ctx, tourUID); err != nil {
		return nil, err
	}

	s.log.Info("review created", slog.String("uid", uid), slog.String("tour_uid", tourUID))
	return &review, nil
}

// Update меняет текст и рейтинг отзыва. Разрешено автору и администратору.
func (s *Service) Update(ctx context.Context, actor *models.User, reviewUID, text string, rating float64) (*models.Review, error) {
	review, err := s.reviews.GetReview(ctx, reviewUID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, errs.New(errs.KindNotFound, "review not found")
	}
	if review.UserUID != actor.UID && actor.Role != models.RoleAdmin {
		return nil, errs.New(errs.KindForbidden, "you can only edit your own reviews")
	}

	if _, err := s.reviews.UpdateReview(ctx, reviewUID, text, rating); err != nil {
		return nil, err
	}
	review.Text = text
	review.Rating = rating

	if err := s.Recalculate(ctx, review.TourUID); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete удаляет отзыв. Разрешено автору и администратору.
func (s *Service) Delete(ctx context.Context, actor *models.User, reviewUID string) error {
	review, err := s.reviews.GetReview(ctx, reviewUID)
	if err != nil {
		return err
	}
	if review == nil {
		return errs.New(errs.KindNotFound, "review not found")
	}
	if review.UserUID != actor.UID && actor.Role != models.RoleAdmin {
		return errs.New(errs.KindForbidden, "you can only delete your own reviews")
	}

	if _, err := s.reviews.RemoveReview(ctx, reviewUID); err != nil {
		return err
	}
	return s.Recalculate(ctx, review.TourUID)
}

// ListByTour возвращает отзывы о туре.
func (s *Service) ListByTour(ctx context.Context, tourUID string) ([]*models.Review, error) {
	return s.reviews.ListReviewsByTour(ctx, tourUID)
}

// Recalculate пересчитывает количество и средний рейтинг отзывов тура
// и записывает их в тур. У тура без отзывов рейтинг возвращается
// к значению по умолчанию. Среднее округляется до одного знака.
func (s *Service) Recalculate(ctx context.Context, tourUID string) error {
	quantity, average, err := s.reviews.AggregateTourRatings(ctx, tourUID)
	if err != nil {
		return err
	}
	if quantity == 0 {
		average = models.DefaultRatingsAverage
	} else {
		average = math.Round(average*10) / 10
	}

	if err := s.tours.UpdateTourRatings(ctx, tourUID, quantity, average); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, fmt.Sprintf("tour:%s", tourUID)); err != nil {
		// Кэш истечет сам: пересчет важнее инвалидации.
		s.log.Error("failed to invalidate tour cache", sl.Err(err))
	}
	return nil
}
