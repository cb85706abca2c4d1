package history

import (
	"context"
	"time"
)

// SearchType — тип выполненного поиска.
type SearchType string

const (
	TypeName   SearchType = "name"
	TypeRating SearchType = "rating"
	TypeBudget SearchType = "budget"
)

// SearchParams — провалидированные и нормализованные параметры поиска,
// ровно те, с которыми выполнялся запрос к API. Заполняются поля,
// относящиеся к типу поиска; Count присутствует всегда.
type SearchParams struct {
	Name       string  `json:"name,omitempty"`
	MinRating  float64 `json:"min_rating,omitempty"`
	MaxRating  float64 `json:"max_rating,omitempty"`
	Genre      *string `json:"genre,omitempty"`
	BudgetLow  int64   `json:"budget_low,omitempty"`
	BudgetHigh int64   `json:"budget_high,omitempty"`
	Count      int     `json:"count"`
}

// Entry — одна запись истории поиска. После записи не изменяется.
type Entry struct {
	ID        int64
	UserID    int64
	Type      SearchType
	Params    SearchParams
	Timestamp time.Time
}

// Store — журнал истории поиска, ключом служит идентификатор
// пользователя Telegram. Записи других пользователей недоступны.
type Store interface {
	// Append добавляет запись с серверной меткой времени (UTC).
	Append(ctx context.Context, userID int64, searchType SearchType, params SearchParams) error

	// List возвращает до limit записей пользователя, новые первыми.
	List(ctx context.Context, userID int64, limit int) ([]Entry, error)

	// Clear удаляет все записи пользователя. Идемпотентна.
	Clear(ctx context.Context, userID int64) error
}
