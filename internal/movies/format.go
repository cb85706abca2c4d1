package movies

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// maxDescriptionLength — предел длины описания в карточке фильма (в рунах).
const maxDescriptionLength = 300

const ellipsis = "..."

// Rendered — готовая к отправке карточка фильма. Full укладывается в limit
// за счёт лестницы сокращений; PhotoURL пуст, если постера нет.
type Rendered struct {
	Full     string
	PhotoURL string
}

// Render собирает HTML-карточку фильма, не превышающую limit символов.
// Лестница сокращений: полная карточка → без описания и бюджета →
// жёсткое усечение с многоточием.
func Render(m Movie, limit int) Rendered {
	full := renderCard(m, true)
	if runeLen(full) > limit {
		full = renderCard(m, false)
	}
	if runeLen(full) > limit {
		full = truncateRunes(full, limit-len(ellipsis)) + ellipsis
	}
	return Rendered{Full: full, PhotoURL: m.PosterURL}
}

// renderCard формирует текст карточки. withOptional управляет
// необязательными полями (описание и бюджет) для лестницы сокращений.
func renderCard(m Movie, withOptional bool) string {
	title := html.EscapeString(m.Title)
	rating := "N/A"
	if m.Rating != nil {
		rating = strconv.FormatFloat(*m.Rating, 'f', -1, 64)
	}
	year := "Неизвестно"
	if m.Year != nil {
		year = strconv.Itoa(*m.Year)
	}
	genres := html.EscapeString(strings.Join(m.Genres, ", "))
	age := "N/A"
	if m.AgeRating != nil {
		age = strconv.Itoa(*m.AgeRating)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📌 <b>Название:</b> %s\n", title)
	if withOptional {
		fmt.Fprintf(&b, "📝 <b>Описание:</b> %s\n", html.EscapeString(TruncateDescription(m.Description)))
	}
	fmt.Fprintf(&b, "⭐ <b>Рейтинг:</b> %s\n", rating)
	fmt.Fprintf(&b, "📅 <b>Год:</b> %s\n", year)
	fmt.Fprintf(&b, "🎭 <b>Жанр:</b> %s\n", genres)
	fmt.Fprintf(&b, "🔞 <b>Возрастной рейтинг:</b> %s+\n", age)
	if withOptional && m.Budget != nil {
		fmt.Fprintf(&b, "💸 <b>Бюджет:</b> %s\n", FormatBudget(*m.Budget))
	}
	return b.String()
}

// TruncateDescription усекает описание до maxDescriptionLength рун
// и добавляет многоточие. Короткий текст возвращается как есть.
func TruncateDescription(text string) string {
	runes := []rune(text)
	if len(runes) <= maxDescriptionLength {
		return text
	}
	truncated := strings.TrimRight(string(runes[:maxDescriptionLength]), " ")
	return truncated + ellipsis
}

// FormatBudget печатает сумму в долларах с пробелами между тысячами:
// 1500000 → "$1 500 000".
func FormatBudget(value int64) string {
	digits := strconv.FormatInt(value, 10)
	var b strings.Builder
	b.WriteByte('$')
	offset := len(digits) % 3
	if offset == 0 {
		offset = 3
	}
	b.WriteString(digits[:offset])
	for i := offset; i < len(digits); i += 3 {
		b.WriteByte(' ')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimRight(string(runes[:n]), " \n")
}
