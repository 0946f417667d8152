package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/tour-booking/internal/models"
)

const tourColumns = `uid, name, slug, duration, max_group_size, difficulty,
	price, summary, description, image_cover, ratings_average, ratings_quantity`

func scanTour(row interface{ Scan(dest ...any) error }) (*models.Tour, error) {
	t := &models.Tour{}
	var description sql.NullString
	if err := row.Scan(&t.UID, &t.Name, &t.Slug, &t.Duration, &t.MaxGroupSize,
		&t.Difficulty, &t.Price, &t.Summary, &description, &t.ImageCover,
		&t.RatingsAverage, &t.RatingsQuantity); err != nil {
		return nil, err
	}
	t.Description = description.String
	return t, nil
}

// GetTour возвращает тур по UID или nil, если такого нет.
func (s *Storage) GetTour(ctx context.Context, uid string) (*models.Tour, error) {
	const op = "storage.GetTour"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + tourColumns + ` FROM tours WHERE uid = $1`
	t, err := scanTour(s.DB.QueryRowContext(ctx, query, uid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ListTours возвращает страницу туров, отсортированную по имени.
func (s *Storage) ListTours(ctx context.Context, limit, offset int) ([]*models.Tour, error) {
	const op = "storage.ListTours"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + tourColumns + ` FROM tours ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var tours []*models.Tour
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tours = append(tours, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tours, nil
}

// UpdateTourRatings записывает пересчитанные количество и среднее отзывов тура.
func (s *Storage) UpdateTourRatings(ctx context.Context, tourUID string, quantity int, average float64) error {
	const op = "storage.UpdateTourRatings"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE tours SET ratings_quantity = $1, ratings_average = $2 WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, quantity, average, tourUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
