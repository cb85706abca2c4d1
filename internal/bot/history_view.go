package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kinobot/internal/history"
	"kinobot/internal/telegram"
	"log/slog"
)

// historyTimeFormat — формат отображения времени записи.
// Часовой пояс задаётся явно при создании сервиса, а не локалью процесса.
const historyTimeFormat = "02.01.2006 15:04"

// showHistory отправляет историю поиска пользователя. К непустой
// истории прикрепляются inline-кнопки подтверждения очистки; слишком
// длинный текст уходит частями без кнопок.
func (s *Service) showHistory(ctx context.Context, ev telegram.Event) {
	entries, err := s.history.List(ctx, ev.UserID, s.historyLimit)
	if err != nil {
		s.logger.Error("history list failed",
			slog.Int64("user_id", ev.UserID),
			slog.String("error", err.Error()))
		s.reply(ctx, ev.ChatID, msgHistoryFailed)
		return
	}

	if len(entries) == 0 {
		s.reply(ctx, ev.ChatID, msgEmptyHistory)
		return
	}

	text := renderHistory(entries, s.timeLoc)
	if len([]rune(text)) > telegram.MaxTextLength {
		for _, chunk := range splitRunes(text, telegram.MaxTextLength) {
			s.reply(ctx, ev.ChatID, chunk)
		}
		return
	}

	if err := s.bot.SendMessageWithInlineKeyboard(ctx, ev.ChatID, text, clearHistoryKeyboard()); err != nil {
		s.logger.Error("send history failed", slog.String("error", err.Error()))
	}
}

// renderHistory собирает текст истории, новые записи первыми.
// Строковые параметры хранятся уже экранированными.
func renderHistory(entries []history.Entry, loc *time.Location) string {
	lines := []string{msgHistoryHeader}
	for _, entry := range entries {
		timestamp := entry.Timestamp.In(loc).Format(historyTimeFormat)
		params := entry.Params

		switch entry.Type {
		case history.TypeName:
			lines = append(lines, fmt.Sprintf(
				"📖 Поиск по названию:\n"+
					"• Название: %s\n"+
					"• Количество: %d\n"+
					"• Время: %s\n",
				params.Name, params.Count, timestamp))
		case history.TypeRating:
			lines = append(lines, fmt.Sprintf(
				"⭐ Поиск по рейтингу:\n"+
					"• Рейтинг: %g-%g\n"+
					"• Жанр: %s\n"+
					"• Количество: %d\n"+
					"• Время: %s\n",
				params.MinRating, params.MaxRating, genreLabel(params.Genre), params.Count, timestamp))
		case history.TypeBudget:
			lines = append(lines, fmt.Sprintf(
				"💰 Поиск по бюджету:\n"+
					"• Бюджет: %d-%d\n"+
					"• Жанр: %s\n"+
					"• Количество: %d\n"+
					"• Время: %s\n",
				params.BudgetLow, params.BudgetHigh, genreLabel(params.Genre), params.Count, timestamp))
		}
	}
	return strings.Join(lines, "\n")
}

func genreLabel(genre *string) string {
	if genre == nil {
		return anyGenre
	}
	return *genre
}

func splitRunes(text string, size int) []string {
	runes := []rune(text)
	var chunks []string
	for len(runes) > 0 {
		n := size
		if n > len(runes) {
			n = len(runes)
		}
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return chunks
}
