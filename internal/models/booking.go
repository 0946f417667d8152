package models

import "time"

// Booking представляет оплаченное бронирование тура.
// Пара (TourUID, UserUID) уникальна; наличие бронирования дает
// пользователю право оставить отзыв о туре.
type Booking struct {
	UID       string    `json:"id"`
	TourUID   string    `json:"tour_id"`
	UserUID   string    `json:"user_id"`
	Price     float64   `json:"price"`
	Paid      bool      `json:"paid"`
	CreatedAt time.Time `json:"created_at"`
}
