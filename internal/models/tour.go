package models

// DefaultRatingsAverage — рейтинг тура без единого отзыва.
const DefaultRatingsAverage = 4.5

// Tour представляет тур. Поля RatingsAverage и RatingsQuantity — производные,
// их пересчитывает агрегатор отзывов; сам тур ими не владеет.
type Tour struct {
	UID             string  `json:"id"`
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Duration        int     `json:"duration"`
	MaxGroupSize    int     `json:"max_group_size"`
	Difficulty      string  `json:"difficulty"` // easy, medium или difficult
	Price           float64 `json:"price"`
	Summary         string  `json:"summary"`
	Description     string  `json:"description,omitempty"`
	ImageCover      string  `json:"image_cover"`
	RatingsAverage  float64 `json:"ratings_average"`
	RatingsQuantity int     `json:"ratings_quantity"`
}
