package kinopoisk

// NameQuery — параметры поиска по названию.
type NameQuery struct {
	Query string
	Limit int
}

// RatingQuery — параметры поиска по диапазону рейтинга и жанру.
// Genre == nil означает отсутствие жанрового фильтра.
type RatingQuery struct {
	MinRating float64
	MaxRating float64
	Genre     *string
	Limit     int
}

// BudgetQuery — параметры поиска по диапазону бюджета (USD) и жанру.
type BudgetQuery struct {
	BudgetLow  int64
	BudgetHigh int64
	Genre      *string
	Limit      int
}

// MovieDoc — сырая запись фильма из ответа API Кинопоиска.
type MovieDoc struct {
	Name            string     `json:"name"`
	AlternativeName string     `json:"alternativeName"`
	Description     string     `json:"description"`
	Year            int        `json:"year"`
	AgeRating       int        `json:"ageRating"`
	Rating          RatingDoc  `json:"rating"`
	Genres          []GenreDoc `json:"genres"`
	Poster          PosterDoc  `json:"poster"`
	Budget          BudgetDoc  `json:"budget"`
}

type RatingDoc struct {
	KP   float64 `json:"kp"`
	IMDB float64 `json:"imdb"`
}

type GenreDoc struct {
	Name string `json:"name"`
}

type PosterDoc struct {
	URL string `json:"url"`
}

type BudgetDoc struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

type searchResponse struct {
	Docs []MovieDoc `json:"docs"`
}
