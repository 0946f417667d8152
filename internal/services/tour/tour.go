// Package tour реализует чтение туров по схеме cache-aside:
// сначала Redis, при промахе — база с последующей записью в кэш.
package tour

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// TTL кэшированных значений.
const (
	tourCacheTTL = 5 * time.Minute
	listCacheTTL = time.Minute
)

// TourRepository описывает контракт для чтения туров из базы данных.
type TourRepository interface {
	GetTour(ctx context.Context, uid string) (*models.Tour, error)
	ListTours(ctx context.Context, limit, offset int) ([]*models.Tour, error)
}

// Cache описывает контракт кэша туров.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service отвечает за чтение туров.
type Service struct {
	tours TourRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(tours TourRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		tours: tours,
		cache: cache,
		log:   log,
	}
}

// GetTour возвращает тур по UID, сначала проверяя кэш.
// Ключ "tour:<uid>" инвалидирует агрегатор отзывов после пересчета рейтинга.
func (s *Service) GetTour(ctx context.Context, uid string) (*models.Tour, error) {
	key := fmt.Sprintf("tour:%s", uid)

	var cached models.Tour
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Error("failed to read tour from cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	tour, err := s.tours.GetTour(ctx, uid)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, errs.New(errs.KindNotFound, "tour not found")
	}

	if err := s.cache.Set(ctx, key, tour, tourCacheTTL); err != nil {
		s.log.Error("failed to cache tour", sl.Err(err))
	}
	return tour, nil
}

// ListTours возвращает страницу туров, сначала проверяя кэш страницы.
func (s *Service) ListTours(ctx context.Context, limit, offset int) ([]*models.Tour, error) {
	key := fmt.Sprintf("tours:%d:%d", limit, offset)

	var cached []*models.Tour
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Error("failed to read tours from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	tours, err := s.tours.ListTours(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, tours, listCacheTTL); err != nil {
		s.log.Error("failed to cache tours", sl.Err(err))
	}
	return tours, nil
}
