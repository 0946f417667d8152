package models

import "time"

// Review представляет отзыв пользователя о туре.
// Пара (TourUID, UserUID) уникальна: один отзыв на тур от пользователя,
// уникальность обеспечивается индексом в базе.
type Review struct {
	UID       string    `json:"id"`
	Text      string    `json:"text"`
	Rating    float64   `json:"rating"` // в диапазоне [1.0, 5.0]
	TourUID   string    `json:"tour_id"`
	UserUID   string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
