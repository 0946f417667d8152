package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// CreateBooking сохраняет бронирование и возвращает его UID.
// Повторное бронирование того же тура тем же пользователем отклоняется
// уникальным индексом и возвращается как Conflict.
func (s *Storage) CreateBooking(ctx context.Context, booking models.Booking) (string, error) {
	const op = "storage.CreateBooking"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO bookings (tour_uid, user_uid, price, paid)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		booking.TourUID, booking.UserUID, booking.Price, booking.Paid).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", errs.Wrap(errs.KindConflict, "you have already booked this tour", err)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// ExistsBooking сообщает, есть ли у пользователя бронирование данного тура.
func (s *Storage) ExistsBooking(ctx context.Context, tourUID, userUID string) (bool, error) {
	const op = "storage.ExistsBooking"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE tour_uid = $1 AND user_uid = $2)`
	if err := s.DB.QueryRowContext(ctx, query, tourUID, userUID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListBookingsByUser возвращает бронирования пользователя, свежие первыми.
func (s *Storage) ListBookingsByUser(ctx context.Context, userUID string) ([]*models.Booking, error) {
	const op = "storage.ListBookingsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, tour_uid, user_uid, price, paid, created_at
			  FROM bookings WHERE user_uid = $1 ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		if err := rows.Scan(&b.UID, &b.TourUID, &b.UserUID, &b.Price, &b.Paid, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bookings, nil
}
