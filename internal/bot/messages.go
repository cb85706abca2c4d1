package bot

import "kinobot/internal/telegram"

// Тексты бота. Вся разметка — HTML, переменные части экранируются
// до подстановки.
const (
	msgStart      = "👋 Привет! Я бот для поиска фильмов. Выберите действие:"
	msgNextAction = "🔄 <b>Выберите следующее действие:</b>"
	msgCancelled  = "❌ Действие отменено."
	msgUseMenu    = "Выберите действие в меню или отправьте /help."
	msgUnknownCmd = "Неизвестная команда. Попробуйте /start"

	msgHelp = "📜 <b>Доступные команды:</b>\n\n" +
		"/start - Приветственное сообщение\n" +
		"/help - Список доступных команд\n" +
		"/movie_search - Поиск фильма/сериала по названию\n" +
		"/movie_by_rating - Поиск фильмов/сериалов по рейтингу и жанру\n" +
		"/movie_by_budget - Поиск фильмов по бюджету и жанру\n" +
		"/lowprice - Поиск отелей по цене\n" +
		"/history - Просмотр истории поиска\n"

	promptName  = "🎬 <b>Введите название фильма или сериала:</b>"
	promptCount = "🔢 <b>Сколько вариантов вывести?</b> (1-250)"
	promptRating = "⭐ <b>Введите рейтинг или диапазон рейтингов " +
		"(например, 7 или 7-9.5):</b>"
	promptGenre = "🎨 <b>Введите жанр фильма (например, драма, комедия) " +
		"или напишите 'любой':</b>"
	promptBudgetType = "💰 <b>Выберите тип бюджета:</b>\n" +
		"• <b>Малобюджетные</b> (0-1,500,000 USD)\n" +
		"• <b>Высокобюджетные</b> (100,000,000 USD и выше)"
	promptCity = "🏨 <b>Введите город для поиска отелей:</b>"

	msgNoResults     = "🔍 <b>Фильмы не найдены. Попробуйте другой запрос.</b>"
	msgDeliverFailed = "❌ <b>Не удалось отправить информацию о фильме. Пожалуйста, попробуйте позже.</b>"

	msgEmptyHistory   = "📭 <b>Ваша история поиска пуста.</b>"
	msgHistoryHeader  = "📚 <b>Ваша история поиска:</b>"
	msgHistoryCleared = "🗑️ Ваша история поиска успешно очищена."
	msgClearCancelled = "ℹ️ Очистка истории поиска отменена."
	msgHistoryFailed  = "❌ <b>Не удалось загрузить историю поиска.</b>"
	msgClearFailed    = "❌ Не удалось очистить историю поиска."

	msgHotelsNotFound = "Не удалось найти отели."
)

// mainMenuKeyboard — главное меню бота.
func mainMenuKeyboard() *telegram.ReplyKeyboardMarkup {
	return &telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{
				{Text: telegram.ButtonSearchByName},
				{Text: telegram.ButtonSearchByRating},
				{Text: telegram.ButtonSearchByBudget},
			},
			{
				{Text: telegram.ButtonHistory},
				{Text: telegram.ButtonHelp},
			},
		},
		ResizeKeyboard: true,
	}
}

// cancelKeyboard показывается на каждом шаге диалога.
func cancelKeyboard() *telegram.ReplyKeyboardMarkup {
	return &telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: telegram.ButtonCancel}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// budgetTypeKeyboard — выбор типа бюджета плюс отмена.
func budgetTypeKeyboard() *telegram.ReplyKeyboardMarkup {
	return &telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{
				{Text: telegram.ButtonLowBudget},
				{Text: telegram.ButtonHighBudget},
			},
			{{Text: telegram.ButtonCancel}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

// clearHistoryKeyboard — inline-подтверждение очистки истории.
func clearHistoryKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{
				{Text: "✅ Да, очистить", CallbackData: telegram.CallbackConfirmClearHistory},
				{Text: "❌ Нет, не очищать", CallbackData: telegram.CallbackCancelClearHistory},
			},
		},
	}
}
