package telegram

import (
	"context"
	"strings"
)

// Кнопки reply-клавиатур бота. Нажатие приходит обычным текстовым
// сообщением, поэтому распознаём их по точному совпадению.
const (
	ButtonSearchByName   = "Поиск по названию"
	ButtonSearchByRating = "Поиск по рейтингу"
	ButtonSearchByBudget = "Поиск по бюджету"
	ButtonHistory        = "История поиска"
	ButtonHelp           = "Помощь"
	ButtonMainMenu       = "На главную"
	ButtonCancel         = "Отмена"
	ButtonLowBudget      = "Малобюджетные"
	ButtonHighBudget     = "Высокобюджетные"
)

// Данные callback-кнопок подтверждения очистки истории.
const (
	CallbackConfirmClearHistory = "confirm_clear_history"
	CallbackCancelClearHistory  = "cancel_clear_history"
)

type EventKind int

const (
	// EventCommand — слэш-команда (/start, /movie_search, ...).
	EventCommand EventKind = iota
	// EventButton — нажатие одной из известных reply-кнопок.
	EventButton
	// EventText — произвольный текст (ответ внутри диалога).
	EventText
	// EventCallback — ответ inline-кнопки (callback query).
	EventCallback
)

// Event — закрытый набор входящих событий, которые транспорт передаёт
// боту. Диспетчер бота не знает про устройство Telegram Update.
type Event struct {
	Kind       EventKind
	UserID     int64
	ChatID     int64
	MessageID  int64
	Command    string // имя команды без слэша
	Arg        string // аргумент команды, если был
	Text       string // исходный текст сообщения или метка кнопки
	CallbackID string
	Data       string // payload callback-кнопки
}

// Dispatcher обрабатывает одно входящее событие целиком, включая отправку
// ответов. Ошибки обработки не возвращаются: бот сам доводит их до
// пользователя или журнала.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event)
}

var knownButtons = map[string]struct{}{
	ButtonSearchByName:   {},
	ButtonSearchByRating: {},
	ButtonSearchByBudget: {},
	ButtonHistory:        {},
	ButtonHelp:           {},
	ButtonMainMenu:       {},
	ButtonCancel:         {},
	ButtonLowBudget:      {},
	ButtonHighBudget:     {},
}

// classifyMessage переводит текстовое сообщение в событие.
func classifyMessage(msg *Message, text string) Event {
	ev := Event{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      text,
	}

	if strings.HasPrefix(text, "/") {
		parts := strings.SplitN(text, " ", 2)
		ev.Kind = EventCommand
		ev.Command = strings.TrimPrefix(parts[0], "/")
		if len(parts) > 1 {
			ev.Arg = strings.TrimSpace(parts[1])
		}
		return ev
	}

	if _, ok := knownButtons[text]; ok {
		ev.Kind = EventButton
		return ev
	}

	ev.Kind = EventText
	return ev
}
