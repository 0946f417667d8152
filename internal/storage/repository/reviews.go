package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

const reviewColumns = `uid, text, rating, tour_uid, user_uid, created_at`

func scanReview(row interface{ Scan(dest ...any) error }) (*models.Review, error) {
	r := &models.Review{}
	if err := row.Scan(&r.UID, &r.Text, &r.Rating, &r.TourUID, &r.UserUID, &r.CreatedAt); err != nil {
		return nil, err
	}
	return r, nil
}

// CreateReview сохраняет отзыв и возвращает его UID. Повторный отзыв
// того же пользователя о том же туре отклоняется уникальным индексом
// и возвращается как Conflict.
func (s *Storage) CreateReview(ctx context.Context, review models.Review) (string, error) {
	const op = "storage.CreateReview"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO reviews (text, rating, tour_uid, user_uid)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		review.Text, review.Rating, review.TourUID, review.UserUID).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", errs.Wrap(errs.KindConflict, "you have already reviewed this tour", err)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetReview возвращает отзыв по UID или nil, если такого нет.
func (s *Storage) GetReview(ctx context.Context, uid string) (*models.Review, error) {
	const op = "storage.GetReview"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE uid = $1`
	r, err := scanReview(s.DB.QueryRowContext(ctx, query, uid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ListReviewsByTour возвращает отзывы о туре, свежие первыми.
func (s *Storage) ListReviewsByTour(ctx context.Context, tourUID string) ([]*models.Review, error) {
	const op = "storage.ListReviewsByTour"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE tour_uid = $1 ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, tourUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}

// UpdateReview обновляет текст и рейтинг отзыва, возвращает число затронутых строк.
func (s *Storage) UpdateReview(ctx context.Context, uid, text string, rating float64) (int64, error) {
	const op = "storage.UpdateReview"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reviews SET text = $1, rating = $2 WHERE uid = $3`
	res, err := s.DB.ExecContext(ctx, query, text, rating, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// RemoveReview удаляет отзыв, возвращает число затронутых строк.
func (s *Storage) RemoveReview(ctx context.Context, uid string) (int64, error) {
	const op = "storage.RemoveReview"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM reviews WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// AggregateTourRatings считает количество отзывов тура и их средний рейтинг.
// При отсутствии отзывов возвращает (0, 0): значение по умолчанию
// подставляет агрегатор, а не хранилище.
func (s *Storage) AggregateTourRatings(ctx context.Context, tourUID string) (int, float64, error) {
	const op = "storage.AggregateTourRatings"
	select {
	case <-ctx.Done():
		return 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		quantity int
		average  sql.NullFloat64
	)
	query := `SELECT COUNT(*), AVG(rating) FROM reviews WHERE tour_uid = $1`
	if err := s.DB.QueryRowContext(ctx, query, tourUID).Scan(&quantity, &average); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return quantity, average.Float64, nil
}
