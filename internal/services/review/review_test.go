package review

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

type ReviewRepoMock struct{ mock.Mock }

func (m *ReviewRepoMock) CreateReview(ctx context.Context, review models.Review) (string, error) {
	args := m.Called(ctx, review)
	return args.String(0), args.Error(1)
}

func (m *ReviewRepoMock) GetReview(ctx context.Context, uid string) (*models.Review, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *ReviewRepoMock) ListReviewsByTour(ctx context.Context, tourUID string) ([]*models.Review, error) {
	args := m.Called(ctx, tourUID)
	return args.Get(0).([]*models.Review), args.Error(1)
}

func (m *ReviewRepoMock) UpdateReview(ctx context.Context, uid, text string, rating float64) (int64, error) {
	args := m.Called(ctx, uid, text, rating)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReviewRepoMock) RemoveReview(ctx context.Context, uid string) (int64, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReviewRepoMock) AggregateTourRatings(ctx context.Context, tourUID string) (int, float64, error) {
	args := m.Called(ctx, tourUID)
	return args.Int(0), args.Get(1).(float64), args.Error(2)
}

type TourRepoMock struct{ mock.Mock }

func (m *TourRepoMock) UpdateTourRatings(ctx context.Context, tourUID string, quantity int, average float64) error {
	return m.Called(ctx, tourUID, quantity, average).Error(0)
}

type BookingRepoMock struct{ mock.Mock }

func (m *BookingRepoMock) ExistsBooking(ctx context.Context, tourUID, userUID string) (bool, error) {
	args := m.Called(ctx, tourUID, userUID)
	return args.Bool(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_Create(t *testing.T) {
	regular := &models.User{UID: "user-1", Role: models.RoleUser}
	admin := &models.User{UID: "admin-1", Role: models.RoleAdmin}

	tests := []struct {
		name       string
		actor      *models.User
		setupMocks func(reviews *ReviewRepoMock, tours *TourRepoMock, bookings *BookingRepoMock, cache *CacheMock)
		wantErr    bool
		wantKind   errs.Kind
	}{
		{
			name:  "booked user creates review and ratings are recalculated",
			actor: regular,
			setupMocks: func(reviews *ReviewRepoMock, tours *TourRepoMock, bookings *BookingRepoMock, cache *CacheMock) {
				bookings.On("ExistsBooking", mock.Anything, "tour-1", "user-1").Return(true, nil)
				reviews.On("CreateReview", mock.Anything, mock.Anything).Return("review-1", nil)
				reviews.On("AggregateTourRatings", mock.Anything, "tour-1").Return(3, 4.3333333, nil)
				tours.On("UpdateTourRatings", mock.Anything, "tour-1", 3, 4.3).Return(nil)
				cache.On("Invalidate", mock.Anything, "tour:tour-1").Return(nil)
			},
			wantErr: false,
		},
		{
			name:  "user without booking is rejected",
			actor: regular,
			setupMocks: func(_ *ReviewRepoMock, _ *TourRepoMock, bookings *BookingRepoMock, _ *CacheMock) {
				bookings.On("ExistsBooking", mock.Anything, "tour-1", "user-1").Return(false, nil)
			},
			wantErr:  true,
			wantKind: errs.KindUnauthorized,
		},
		{
			name:  "admin bypasses booking check",
			actor: admin,
			setupMocks: func(reviews *ReviewRepoMock, tours *TourRepoMock, _ *BookingRepoMock, cache *CacheMock) {
				reviews.On("CreateReview", mock.Anything, mock.Anything).Return("review-2", nil)
				reviews.On("AggregateTourRatings", mock.Anything, "tour-1").Return(1, 5.0, nil)
				tours.On("UpdateTourRatings", mock.Anything, "tour-1", 1, 5.0).Return(nil)
				cache.On("Invalidate", mock.Anything, "tour:tour-1").Return(nil)
			},
			wantErr: false,
		},
		{
			name:  "duplicate review conflict is passed through",
			actor: regular,
			setupMocks: func(reviews *ReviewRepoMock, _ *TourRepoMock, bookings *BookingRepoMock, _ *CacheMock) {
				bookings.On("ExistsBooking", mock.Anything, "tour-1", "user-1").Return(true, nil)
				reviews.On("CreateReview", mock.Anything, mock.Anything).
					Return("", errs.New(errs.KindConflict, "you have already reviewed this tour"))
			},
			wantErr:  true,
			wantKind: errs.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := new(ReviewRepoMock)
			tours := new(TourRepoMock)
			bookings := new(BookingRepoMock)
			cache := new(CacheMock)
			tt.setupMocks(reviews, tours, bookings, cache)

			svc := New(reviews, tours, bookings, cache, NewNoopLogger())
			got, err := svc.Create(context.Background(), tt.actor, "tour-1", "great tour", 5)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, errs.KindOf(err))
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.NotEmpty(t, got.UID)
			}
			reviews.AssertExpectations(t)
			tours.AssertExpectations(t)
			bookings.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_Delete(t *testing.T) {
	existing := &models.Review{
		UID:       "review-1",
		TourUID:   "tour-1",
		UserUID:   "user-1",
		CreatedAt: time.Now(),
	}

	tests := []struct {
		name       string
		actor      *models.User
		setupMocks func(reviews *ReviewRepoMock, tours *TourRepoMock, cache *CacheMock)
		wantErr    bool
		wantKind   errs.Kind
	}{
		{
			name:  "owner deletes review, tour falls back to default rating",
			actor: &models.User{UID: "user-1", Role: models.RoleUser},
			setupMocks: func(reviews *ReviewRepoMock, tours *TourRepoMock, cache *CacheMock) {
				reviews.On("GetReview", mock.Anything, "review-1").Return(existing, nil)
				reviews.On("RemoveReview", mock.Anything, "review-1").Return(int64(1), nil)
				reviews.On("AggregateTourRatings", mock.Anything, "tour-1").Return(0, 0.0, nil)
				tours.On("UpdateTourRatings", mock.Anything, "tour-1", 0, models.DefaultRatingsAverage).Return(nil)
				cache.On("Invalidate", mock.Anything, "tour:tour-1").Return(nil)
			},
			wantErr: false,
		},
		{
			name:  "stranger cannot delete review",
			actor: &models.User{UID: "user-2", Role: models.RoleUser},
			setupMocks: func(reviews *ReviewRepoMock, _ *TourRepoMock, _ *CacheMock) {
				reviews.On("GetReview", mock.Anything, "review-1").Return(existing, nil)
			},
			wantErr:  true,
			wantKind: errs.KindForbidden,
		},
		{
			name:  "admin can delete any review",
			actor: &models.User{UID: "admin-1", Role: models.RoleAdmin},
			setupMocks: func(reviews *ReviewRepoMock, tours *TourRepoMock, cache *CacheMock) {
				reviews.On("GetReview", mock.Anything, "review-1").Return(existing, nil)
				reviews.On("RemoveReview", mock.Anything, "review-1").Return(int64(1), nil)
				reviews.On("AggregateTourRatings", mock.Anything, "tour-1").Return(2, 3.95, nil)
				tours.On("UpdateTourRatings", mock.Anything, "tour-1", 2, 4.0).Return(nil)
				cache.On("Invalidate", mock.Anything, "tour:tour-1").Return(nil)
			},
			wantErr: false,
		},
		{
			name:  "missing review",
			actor: &models.User{UID: "user-1", Role: models.RoleUser},
			setupMocks: func(reviews *ReviewRepoMock, _ *TourRepoMock, _ *CacheMock) {
				reviews.On("GetReview", mock.Anything, "missing").Return((*models.Review)(nil), nil)
			},
			wantErr:  true,
			wantKind: errs.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := new(ReviewRepoMock)
			tours := new(TourRepoMock)
			cache := new(CacheMock)
			tt.setupMocks(reviews, tours, cache)

			svc := New(reviews, tours, new(BookingRepoMock), cache, NewNoopLogger())

			reviewUID := "review-1"
			if tt.name == "missing review" {
				reviewUID = "missing"
			}
			err := svc.Delete(context.Background(), tt.actor, reviewUID)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, errs.KindOf(err))
			} else {
				require.NoError(t, err)
			}
			reviews.AssertExpectations(t)
			tours.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestService_Update(t *testing.T) {
	existing := &models.Review{UID: "review-1", TourUID: "tour-1", UserUID: "user-1", Rating: 3}

	t.Run("owner updates review and ratings are recalculated", func(t *testing.T) {
		reviews := new(ReviewRepoMock)
		tours := new(TourRepoMock)
		cache := new(CacheMock)

		reviews.On("GetReview", mock.Anything, "review-1").Return(existing, nil)
		reviews.On("UpdateReview", mock.Anything, "review-1", "updated text", 5.0).Return(int64(1), nil)
		reviews.On("AggregateTourRatings", mock.Anything, "tour-1").Return(1, 5.0, nil)
		tours.On("UpdateTourRatings", mock.Anything, "tour-1", 1, 5.0).Return(nil)
		cache.On("Invalidate", mock.Anything, "tour:tour-1").Return(nil)

		svc := New(reviews, tours, new(BookingRepoMock), cache, NewNoopLogger())
		got, err := svc.Update(context.Background(), &models.User{UID: "user-1", Role: models.RoleUser},
			"review-1", "updated text", 5)

		require.NoError(t, err)
		assert.Equal(t, 5.0, got.Rating)
		reviews.AssertExpectations(t)
		tours.AssertExpectations(t)
	})

	t.Run("stranger cannot update review", func(t *testing.T) {
		reviews := new(ReviewRepoMock)
		reviews.On("GetReview", mock.Anything, "review-1").Return(existing, nil)

		svc := New(reviews, new(TourRepoMock), new(BookingRepoMock), new(CacheMock), NewNoopLogger())
		_, err := svc.Update(context.Background(), &models.User{UID: "user-2", Role: models.RoleGuide},
			"review-1", "hacked", 1)

		require.Error(t, err)
		assert.Equal(t, errs.KindForbidden, errs.KindOf(err))
	})
}

func TestService_Recalculate_Rounding(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		rawAvg   float64
		wantAvg  float64
	}{
		{name: "rounds down", quantity: 3, rawAvg: 4.3333333, wantAvg: 4.3},
		{name: "rounds up", quantity: 2, rawAvg: 3.95, wantAvg: 4.0},
		{name: "no reviews resets to default", quantity: 0, rawAvg: 0, wantAvg: models.DefaultRatingsAverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := new(ReviewRepoMock)
			tours := new(TourRepoMock)
			cache := new(CacheMock)

			reviews.On("AggregateTourRatings", mock.Anything, "tour-1").Return(tt.quantity, tt.rawAvg, nil)
			tours.On("UpdateTourRatings", mock.Anything, "tour-1", tt.quantity, tt.wantAvg).Return(nil)
			cache.On("Invalidate", mock.Anything, "tour:tour-1").Return(nil)

			svc := New(reviews, tours, new(BookingRepoMock), cache, NewNoopLogger())
			require.NoError(t, svc.Recalculate(context.Background(), "tour-1"))

			tours.AssertExpectations(t)
		})
	}
}
