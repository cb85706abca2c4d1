package movies

import "kinobot/internal/kinopoisk"

// Movie — значение с данными фильма, собранное один раз из сырой записи
// API. Отсутствующие поля моделируются nil-указателями.
type Movie struct {
	Title       string
	Description string
	Rating      *float64
	Year        *int
	Genres      []string
	AgeRating   *int
	PosterURL   string
	Budget      *int64
}

// Подстановки для отсутствующих полей, как их показывает бот.
const (
	placeholderTitle       = "Без названия"
	placeholderDescription = "Описание отсутствует."
)

// FromDoc собирает Movie из сырой записи API с подстановками
// для отсутствующих полей.
func FromDoc(doc kinopoisk.MovieDoc) Movie {
	m := Movie{
		Title:       doc.Name,
		Description: doc.Description,
		PosterURL:   doc.Poster.URL,
	}

	if m.Title == "" {
		m.Title = doc.AlternativeName
	}
	if m.Title == "" {
		m.Title = placeholderTitle
	}
	if m.Description == "" {
		m.Description = placeholderDescription
	}

	switch {
	case doc.Rating.KP > 0:
		rating := doc.Rating.KP
		m.Rating = &rating
	case doc.Rating.IMDB > 0:
		rating := doc.Rating.IMDB
		m.Rating = &rating
	}

	if doc.Year > 0 {
		year := doc.Year
		m.Year = &year
	}
	if doc.AgeRating > 0 {
		age := doc.AgeRating
		m.AgeRating = &age
	}
	if doc.Budget.Value > 0 {
		budget := doc.Budget.Value
		m.Budget = &budget
	}

	for _, g := range doc.Genres {
		if g.Name != "" {
			m.Genres = append(m.Genres, g.Name)
		}
	}

	return m
}

// FromDocs конвертирует список записей, сохраняя порядок выдачи API.
func FromDocs(docs []kinopoisk.MovieDoc) []Movie {
	result := make([]Movie, 0, len(docs))
	for _, doc := range docs {
		result = append(result, FromDoc(doc))
	}
	return result
}
