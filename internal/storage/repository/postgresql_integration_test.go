package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	tests := []struct {
		name     string
		user     models.User
		wantKind errs.Kind
		wantErr  bool
		setup    func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name: "successful create user",
			user: models.User{
				Name:         "Test User",
				Email:        "Test@Example.com",
				Role:         models.RoleUser,
				PasswordHash: "hashedpassword",
			},
			wantErr: false,
			setup:   func(_ *testing.T, _ *TestDataFactory) {},
		},
		{
			name: "duplicate email returns conflict",
			user: models.User{
				Name:         "Second User",
				Email:        "taken@example.com",
				Role:         models.RoleUser,
				PasswordHash: "hashedpassword",
			},
			wantKind: errs.KindConflict,
			wantErr:  true,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, "First User", "taken@example.com", "hashedpassword", models.RoleUser, true)
			},
		},
		{
			name: "duplicate email differs only in case",
			user: models.User{
				Name:         "Second User",
				Email:        "TAKEN2@example.com",
				Role:         models.RoleUser,
				PasswordHash: "hashedpassword",
			},
			wantKind: errs.KindConflict,
			wantErr:  true,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, "First User", "taken2@example.com", "hashedpassword", models.RoleUser, true)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			uid, err := storage.CreateUser(context.Background(), tt.user)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, errs.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, uid)

				// Email должен быть сохранен в нижнем регистре
				found, err := storage.FindActiveUserByEmail(context.Background(), tt.user.Email)
				require.NoError(t, err)
				assert.Nil(t, found) // создан неактивным

				any, err := storage.FindAnyUserByEmail(context.Background(), tt.user.Email)
				require.NoError(t, err)
				require.NotNil(t, any)
				assert.Equal(t, "test@example.com", any.Email)
			}
		})
	}
}

func TestStorage_FindUserByEmailConfirmToken(t *testing.T) {
	now := time.Now().UTC()
	digest := "a1b2c3d4"

	tests := []struct {
		name     string
		digest   string
		wantUser bool
		setup    func(t *testing.T, storage *Storage, factory *TestDataFactory) string
	}{
		{
			name:     "finds inactive user with valid token",
			digest:   digest,
			wantUser: true,
			setup: func(t *testing.T, storage *Storage, factory *TestDataFactory) string {
				uid := factory.CreateUser(t, "Pending", "pending@example.com", "hash", models.RoleUser, false)
				expires := now.Add(time.Hour)
				require.NoError(t, storage.UpdateEmailConfirmToken(context.Background(), uid, &digest, &expires))
				return uid
			},
		},
		{
			name:     "expired token is not found",
			digest:   digest,
			wantUser: false,
			setup: func(t *testing.T, storage *Storage, factory *TestDataFactory) string {
				uid := factory.CreateUser(t, "Pending", "pending@example.com", "hash", models.RoleUser, false)
				expires := now.Add(-time.Hour)
				require.NoError(t, storage.UpdateEmailConfirmToken(context.Background(), uid, &digest, &expires))
				return uid
			},
		},
		{
			name:     "unknown digest is not found",
			digest:   "unknown",
			wantUser: false,
			setup: func(t *testing.T, storage *Storage, factory *TestDataFactory) string {
				return factory.CreateUser(t, "Pending", "pending@example.com", "hash", models.RoleUser, false)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			uid := tt.setup(t, storage, factory)

			got, err := storage.FindUserByEmailConfirmToken(context.Background(), tt.digest, now)
			require.NoError(t, err)

			if tt.wantUser {
				require.NotNil(t, got)
				assert.Equal(t, uid, got.UID)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestStorage_ActivateUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "Pending", "pending@example.com", "hash", models.RoleUser, false)

	digest := "digest"
	expires := time.Now().Add(time.Hour)
	require.NoError(t, storage.UpdateEmailConfirmToken(context.Background(), uid, &digest, &expires))

	require.NoError(t, storage.ActivateUser(context.Background(), uid))

	verification := NewTestVerification(storage)
	verification.VerifyUserActive(t, uid, true)

	got, err := storage.FindActiveUserByUID(context.Background(), uid)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.EmailConfirmToken)
	assert.Nil(t, got.EmailConfirmExpire)
}

func TestStorage_UpdateLockState(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "User", "user@example.com", "hash", models.RoleUser, true)

	lockExpires := time.Now().UTC().Add(time.Minute).Truncate(time.Microsecond)
	require.NoError(t, storage.UpdateLockState(context.Background(), uid, 5, &lockExpires))

	got, err := storage.FindActiveUserByUID(context.Background(), uid)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.LoginAttempts)
	require.NotNil(t, got.LockExpires)
	assert.WithinDuration(t, lockExpires, *got.LockExpires, time.Millisecond)

	// Сброс после успешного входа
	require.NoError(t, storage.UpdateLockState(context.Background(), uid, 0, nil))
	got, err = storage.FindActiveUserByUID(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LoginAttempts)
	assert.Nil(t, got.LockExpires)
}

func TestStorage_UpdateUserPassword(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "User", "user@example.com", "oldhash", models.RoleUser, true)

	digest := "resetdigest"
	expires := time.Now().Add(time.Hour)
	require.NoError(t, storage.UpdatePasswordResetToken(context.Background(), uid, &digest, &expires))

	changedAt := time.Now().UTC().Add(-time.Second)
	require.NoError(t, storage.UpdateUserPassword(context.Background(), uid, "newhash", changedAt))

	got, err := storage.FindActiveUserByUID(context.Background(), uid)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "newhash", got.PasswordHash)
	require.NotNil(t, got.PasswordChangedAt)
	assert.Nil(t, got.PasswordResetToken)
	assert.Nil(t, got.PasswordResetExpire)
}

func TestStorage_CreateReview(t *testing.T) {
	tests := []struct {
		name     string
		wantKind errs.Kind
		wantErr  bool
		setup    func(t *testing.T, factory *TestDataFactory) (tourUID, userUID string)
	}{
		{
			name:    "successful create review",
			wantErr: false,
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				tourUID := factory.CreateTour(t, "Forest Hiker", "forest-hiker", "easy", 397)
				userUID := factory.CreateUser(t, "User", "user@example.com", "hash", models.RoleUser, true)
				return tourUID, userUID
			},
		},
		{
			name:     "second review for same tour returns conflict",
			wantKind: errs.KindConflict,
			wantErr:  true,
			setup: func(t *testing.T, factory *TestDataFactory) (string, string) {
				tourUID := factory.CreateTour(t, "Forest Hiker", "forest-hiker", "easy", 397)
				userUID := factory.CreateUser(t, "User", "user@example.com", "hash", models.RoleUser, true)
				factory.CreateReview(t, tourUID, userUID, "first review", 4)
				return tourUID, userUID
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tourUID, userUID := tt.setup(t, factory)

			_, err := storage.CreateReview(context.Background(), models.Review{
				Text:    "amazing tour",
				Rating:  5,
				TourUID: tourUID,
				UserUID: userUID,
			})

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, errs.KindOf(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestStorage_AggregateTourRatings(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	tourUID := factory.CreateTour(t, "Sea Explorer", "sea-explorer", "medium", 497)

	// Без отзывов агрегат нулевой
	quantity, average, err := storage.AggregateTourRatings(context.Background(), tourUID)
	require.NoError(t, err)
	assert.Equal(t, 0, quantity)
	assert.Equal(t, 0.0, average)

	user1 := factory.CreateUser(t, "User1", "user1@example.com", "hash", models.RoleUser, true)
	user2 := factory.CreateUser(t, "User2", "user2@example.com", "hash", models.RoleUser, true)
	factory.CreateReview(t, tourUID, user1, "good", 4)
	factory.CreateReview(t, tourUID, user2, "great", 5)

	quantity, average, err = storage.AggregateTourRatings(context.Background(), tourUID)
	require.NoError(t, err)
	assert.Equal(t, 2, quantity)
	assert.InDelta(t, 4.5, average, 0.001)
}

func TestStorage_RemoveReview(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	tourUID := factory.CreateTour(t, "Forest Hiker", "forest-hiker", "easy", 397)
	userUID := factory.CreateUser(t, "User", "user@example.com", "hash", models.RoleUser, true)
	reviewUID := factory.CreateReview(t, tourUID, userUID, "text", 3)

	count, err := storage.RemoveReview(context.Background(), reviewUID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	verification := NewTestVerification(storage)
	verification.VerifyReviewDeleted(t, reviewUID)

	count, err = storage.RemoveReview(context.Background(), reviewUID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestStorage_UpdateTourRatings(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	tourUID := factory.CreateTour(t, "Forest Hiker", "forest-hiker", "easy", 397)

	require.NoError(t, storage.UpdateTourRatings(context.Background(), tourUID, 3, 4.7))

	verification := NewTestVerification(storage)
	verification.VerifyTourRatings(t, tourUID, 3, 4.7)
}

func TestStorage_CreateBooking(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	tourUID := factory.CreateTour(t, "Forest Hiker", "forest-hiker", "easy", 397)
	userUID := factory.CreateUser(t, "User", "user@example.com", "hash", models.RoleUser, true)

	booking := models.Booking{TourUID: tourUID, UserUID: userUID, Price: 397, Paid: true}

	uid, err := storage.CreateBooking(context.Background(), booking)
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	exists, err := storage.ExistsBooking(context.Background(), tourUID, userUID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Повторное бронирование того же тура
	_, err = storage.CreateBooking(context.Background(), booking)
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

func TestStorage_ListTours(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateTour(t, "Forest Hiker", "forest-hiker", "easy", 397)
	factory.CreateTour(t, "Sea Explorer", "sea-explorer", "medium", 497)
	factory.CreateTour(t, "Snow Adventurer", "snow-adventurer", "difficult", 997)

	tours, err := storage.ListTours(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, tours, 2)
	assert.Equal(t, "Forest Hiker", tours[0].Name)

	tours, err = storage.ListTours(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.Equal(t, "Snow Adventurer", tours[0].Name)
}
