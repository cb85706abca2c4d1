package bot

import (
	"html"
	"strconv"
	"strings"

	"kinobot/internal/telegram"
)

// ValidationError — некорректный ввод на шаге диалога. Message уходит
// пользователю как есть, диалог остаётся на том же шаге.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// Границы числа результатов и рейтинга.
const (
	minCount  = 1
	maxCount  = 250
	minRating = 1
	maxRating = 10
)

// Диапазоны бюджета в USD для двух фиксированных кнопок.
const (
	lowBudgetMin  int64 = 0
	lowBudgetMax  int64 = 1_500_000
	highBudgetMin int64 = 100_000_000
	highBudgetMax int64 = 1_000_000_000
)

// anyGenre — литерал «без жанрового фильтра».
const anyGenre = "любой"

// parseName принимает любой непустой текст; значение экранируется
// для последующей HTML-вёрстки.
func parseName(text string) (string, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return "", invalid("❌ <b>Название не может быть пустым.</b>")
	}
	return html.EscapeString(name), nil
}

// parseCount принимает целое число от 1 до 250.
func parseCount(text string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, invalid("❌ <b>Пожалуйста, введите число.</b>")
	}
	if count < minCount || count > maxCount {
		return 0, invalid("❌ <b>Пожалуйста, введите число от 1 до 250.</b>")
	}
	return count, nil
}

// parseRatingRange принимает либо одно число («7»), либо диапазон
// («7-9.5»). Одиночное число означает диапазон до 10.0.
func parseRatingRange(text string) (float64, float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), " ", "")

	var (
		min, max float64
		err      error
	)
	if strings.Contains(cleaned, "-") {
		parts := strings.SplitN(cleaned, "-", 2)
		min, err = strconv.ParseFloat(parts[0], 64)
		if err == nil {
			max, err = strconv.ParseFloat(parts[1], 64)
		}
	} else {
		min, err = strconv.ParseFloat(cleaned, 64)
		max = 10.0
	}
	if err != nil {
		return 0, 0, invalid("❌ <b>Пожалуйста, введите корректный рейтинг или диапазон рейтингов.</b>")
	}

	if min < minRating || min > maxRating || max < minRating || max > maxRating {
		return 0, 0, invalid("❌ <b>Пожалуйста, введите рейтинги в диапазоне от 1 до 10.</b>")
	}
	if min > max {
		return 0, 0, invalid("❌ <b>Минимальный рейтинг не может быть больше максимального.</b>")
	}
	return min, max, nil
}

// parseGenre возвращает nil для литерала «любой» (без учёта регистра),
// иначе — нормализованный жанр: в нижнем регистре, без краёв, экранированный.
func parseGenre(text string) *string {
	genre := strings.ToLower(strings.TrimSpace(text))
	if genre == anyGenre {
		return nil
	}
	escaped := html.EscapeString(genre)
	return &escaped
}

// parseBudgetType — тотальная функция от двух фиксированных меток
// к двум непересекающимся диапазонам; всё остальное отклоняется.
func parseBudgetType(text string) (int64, int64, error) {
	switch strings.TrimSpace(text) {
	case telegram.ButtonLowBudget:
		return lowBudgetMin, lowBudgetMax, nil
	case telegram.ButtonHighBudget:
		return highBudgetMin, highBudgetMax, nil
	default:
		return 0, 0, invalid("❌ <b>Пожалуйста, выберите корректный тип бюджета или нажмите 'Отмена'.</b>")
	}
}

// parseCity принимает любой непустой текст как название города.
func parseCity(text string) (string, error) {
	city := strings.TrimSpace(text)
	if city == "" {
		return "", invalid("❌ <b>Название города не может быть пустым.</b>")
	}
	return city, nil
}
