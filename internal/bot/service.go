package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"kinobot/internal/booking"
	"kinobot/internal/history"
	"kinobot/internal/kinopoisk"
	"kinobot/internal/movies"
	"kinobot/internal/telegram"
	"log/slog"
)

type Deps struct {
	Bot          telegram.BotClient
	Search       kinopoisk.Client
	Hotels       booking.Client
	History      history.Store
	Logger       *slog.Logger
	HistoryLimit int
	// TimeLocation задаёт часовой пояс отображения времени в истории.
	// Нулевое значение означает UTC.
	TimeLocation *time.Location
}

// Service — диспетчер диалогов: ведёт пошаговые сценарии поиска,
// выполняет завершающий запрос к API и пишет историю.
type Service struct {
	bot          telegram.BotClient
	search       kinopoisk.Client
	hotels       booking.Client
	history      history.Store
	sessions     *SessionStore
	logger       *slog.Logger
	historyLimit int
	timeLoc      *time.Location
}

func NewService(deps Deps) *Service {
	loc := deps.TimeLocation
	if loc == nil {
		loc = time.UTC
	}
	limit := deps.HistoryLimit
	if limit <= 0 {
		limit = 20
	}
	return &Service{
		bot:          deps.Bot,
		search:       deps.Search,
		hotels:       deps.Hotels,
		history:      deps.History,
		sessions:     NewSessionStore(),
		logger:       deps.Logger,
		historyLimit: limit,
		timeLoc:      loc,
	}
}

// Dispatch обрабатывает одно входящее событие целиком: валидация,
// переход состояния, запросы к коллабораторам и ответы пользователю.
// Никакая ошибка не покидает диспетчер.
func (s *Service) Dispatch(ctx context.Context, ev telegram.Event) {
	switch ev.Kind {
	case telegram.EventCommand:
		s.handleCommand(ctx, ev)
	case telegram.EventButton:
		s.handleButton(ctx, ev)
	case telegram.EventText:
		s.handleText(ctx, ev)
	case telegram.EventCallback:
		s.handleCallback(ctx, ev)
	}
}

func (s *Service) handleCommand(ctx context.Context, ev telegram.Event) {
	switch ev.Command {
	case "start":
		s.sessions.Delete(ev.UserID)
		s.replyWithKeyboard(ctx, ev.ChatID, msgStart, mainMenuKeyboard())
	case "help":
		s.replyWithKeyboard(ctx, ev.ChatID, msgHelp, mainMenuKeyboard())
	case "cancel":
		s.cancelFlow(ctx, ev)
	case "history":
		s.showHistory(ctx, ev)
	case "movie_search":
		s.startFlow(ctx, ev, FlowName, StateAwaitingName, promptName, cancelKeyboard())
	case "movie_by_rating":
		s.startFlow(ctx, ev, FlowRating, StateAwaitingRating, promptRating, cancelKeyboard())
	case "movie_by_budget":
		s.startFlow(ctx, ev, FlowBudget, StateAwaitingBudgetType, promptBudgetType, budgetTypeKeyboard())
	case "lowprice":
		s.startFlow(ctx, ev, FlowHotels, StateAwaitingCity, promptCity, cancelKeyboard())
	default:
		s.reply(ctx, ev.ChatID, msgUnknownCmd)
	}
}

func (s *Service) handleButton(ctx context.Context, ev telegram.Event) {
	switch ev.Text {
	case telegram.ButtonCancel:
		s.cancelFlow(ctx, ev)
	case telegram.ButtonSearchByName:
		s.startFlow(ctx, ev, FlowName, StateAwaitingName, promptName, cancelKeyboard())
	case telegram.ButtonSearchByRating:
		s.startFlow(ctx, ev, FlowRating, StateAwaitingRating, promptRating, cancelKeyboard())
	case telegram.ButtonSearchByBudget:
		s.startFlow(ctx, ev, FlowBudget, StateAwaitingBudgetType, promptBudgetType, budgetTypeKeyboard())
	case telegram.ButtonHistory:
		s.showHistory(ctx, ev)
	case telegram.ButtonHelp:
		s.replyWithKeyboard(ctx, ev.ChatID, msgHelp, mainMenuKeyboard())
	case telegram.ButtonMainMenu:
		s.sessions.Delete(ev.UserID)
		s.replyWithKeyboard(ctx, ev.ChatID, msgStart, mainMenuKeyboard())
	case telegram.ButtonLowBudget, telegram.ButtonHighBudget:
		// Ответ внутри диалога выбора бюджета; вне его метка бессмысленна.
		if session, ok := s.sessions.Get(ev.UserID); ok && session.State == StateAwaitingBudgetType {
			s.advance(ctx, ev, session)
			return
		}
		s.replyWithKeyboard(ctx, ev.ChatID, msgUseMenu, mainMenuKeyboard())
	}
}

func (s *Service) handleText(ctx context.Context, ev telegram.Event) {
	session, ok := s.sessions.Get(ev.UserID)
	if !ok {
		s.replyWithKeyboard(ctx, ev.ChatID, msgUseMenu, mainMenuKeyboard())
		return
	}
	s.advance(ctx, ev, session)
}

// startFlow создаёт новую сессию, вытесняя незавершённую, и задаёт
// первый вопрос сценария.
func (s *Service) startFlow(ctx context.Context, ev telegram.Event, flow Flow, state State, prompt string, keyboard *telegram.ReplyKeyboardMarkup) {
	s.sessions.Put(ev.UserID, &Session{Flow: flow, State: state})
	s.replyWithKeyboard(ctx, ev.ChatID, prompt, keyboard)
}

// cancelFlow прерывает диалог на любом шаге; накопленные ответы
// отбрасываются вместе с сессией.
func (s *Service) cancelFlow(ctx context.Context, ev telegram.Event) {
	s.sessions.Delete(ev.UserID)
	s.replyWithKeyboard(ctx, ev.ChatID, msgCancelled, mainMenuKeyboard())
}

// advance продвигает сессию на один шаг. Некорректный ввод оставляет
// диалог на месте: поле не записывается, пользователь получает
// пояснение и может пробовать сколько угодно раз.
func (s *Service) advance(ctx context.Context, ev telegram.Event, session *Session) {
	switch session.State {
	case StateAwaitingName:
		name, err := parseName(ev.Text)
		if err != nil {
			s.replyValidation(ctx, ev.ChatID, err)
			return
		}
		session.Name = name
		session.State = StateAwaitingCount
		s.reply(ctx, ev.ChatID, promptCount)

	case StateAwaitingRating:
		min, max, err := parseRatingRange(ev.Text)
		if err != nil {
			s.replyValidation(ctx, ev.ChatID, err)
			return
		}
		session.MinRating = min
		session.MaxRating = max
		session.State = StateAwaitingGenre
		s.reply(ctx, ev.ChatID, promptGenre)

	case StateAwaitingBudgetType:
		low, high, err := parseBudgetType(ev.Text)
		if err != nil {
			s.replyValidation(ctx, ev.ChatID, err)
			return
		}
		session.BudgetLow = low
		session.BudgetHigh = high
		session.State = StateAwaitingGenre
		s.reply(ctx, ev.ChatID, promptGenre)

	case StateAwaitingGenre:
		session.Genre = parseGenre(ev.Text)
		session.State = StateAwaitingCount
		s.reply(ctx, ev.ChatID, promptCount)

	case StateAwaitingCount:
		count, err := parseCount(ev.Text)
		if err != nil {
			s.replyValidation(ctx, ev.ChatID, err)
			return
		}
		session.Count = count
		s.runSearch(ctx, ev, session)

	case StateAwaitingCity:
		city, err := parseCity(ev.Text)
		if err != nil {
			s.replyValidation(ctx, ev.ChatID, err)
			return
		}
		session.City = city
		s.runHotels(ctx, ev, session)
	}
}

// runSearch — завершающий шаг сценариев поиска фильмов: запрос к API,
// выдача карточек в порядке ответа, одна запись истории, главное меню.
func (s *Service) runSearch(ctx context.Context, ev telegram.Event, session *Session) {
	defer s.sessions.Delete(ev.UserID)

	docs := s.fetch(ctx, session)
	if len(docs) == 0 {
		s.reply(ctx, ev.ChatID, msgNoResults)
		return
	}

	for _, movie := range movies.FromDocs(docs) {
		s.sendMovie(ctx, ev.ChatID, movie)
	}

	// История — best-effort: её отказ не должен помешать выдаче.
	searchType, params := historyParams(session)
	if err := s.history.Append(ctx, ev.UserID, searchType, params); err != nil {
		s.logger.Error("history append failed",
			slog.Int64("user_id", ev.UserID),
			slog.String("error", err.Error()))
	}

	s.replyWithKeyboard(ctx, ev.ChatID, msgNextAction, mainMenuKeyboard())
}

// fetch выполняет поиск по параметрам сессии. Отказ коллаборатора
// журналируется и сворачивается в пустую выдачу: пользователь всегда
// получает определённый ответ.
func (s *Service) fetch(ctx context.Context, session *Session) []kinopoisk.MovieDoc {
	var (
		docs []kinopoisk.MovieDoc
		err  error
	)
	switch session.Flow {
	case FlowName:
		docs, err = s.search.SearchByName(ctx, buildNameQuery(session))
	case FlowRating:
		docs, err = s.search.SearchByRating(ctx, buildRatingQuery(session))
	case FlowBudget:
		docs, err = s.search.SearchByBudget(ctx, buildBudgetQuery(session))
	}
	if err != nil {
		s.logger.Error("movie search failed",
			slog.String("flow", string(session.Flow)),
			slog.String("error", err.Error()))
		return nil
	}
	return docs
}

// sendMovie отправляет карточку фильма: с постером — фото с подписью,
// без — обычным сообщением. Лимит длины зависит от способа отправки.
func (s *Service) sendMovie(ctx context.Context, chatID int64, movie movies.Movie) {
	limit := telegram.MaxTextLength
	if movie.PosterURL != "" {
		limit = telegram.MaxCaptionLength
	}
	card := movies.Render(movie, limit)

	var err error
	if card.PhotoURL != "" {
		err = s.bot.SendPhoto(ctx, chatID, card.PhotoURL, card.Full)
	} else {
		err = s.bot.SendMessage(ctx, chatID, card.Full)
	}
	if err != nil {
		s.logger.Error("send movie failed", slog.String("error", err.Error()))
		s.reply(ctx, chatID, msgDeliverFailed)
	}
}

// runHotels — завершающий шаг сценария поиска отелей (вторичный API).
// Даты заезда фиксированные: через месяц, на четыре ночи.
func (s *Service) runHotels(ctx context.Context, ev telegram.Event, session *Session) {
	defer s.sessions.Delete(ev.UserID)

	checkin := time.Now().AddDate(0, 1, 0)
	checkout := checkin.AddDate(0, 0, 4)

	hotels, err := s.hotels.SearchHotels(ctx, booking.HotelQuery{
		City:         session.City,
		CheckinDate:  checkin.Format("2006-01-02"),
		CheckoutDate: checkout.Format("2006-01-02"),
		Adults:       1,
	})
	if err != nil {
		s.logger.Error("hotel search failed", slog.String("error", err.Error()))
	}
	if len(hotels) == 0 {
		s.replyWithKeyboard(ctx, ev.ChatID, msgHotelsNotFound, mainMenuKeyboard())
		return
	}

	for _, hotel := range hotels {
		text := fmt.Sprintf("🏨 <b>Отель:</b> %s\n💵 <b>Цена:</b> %.2f %s\n🔗 %s",
			html.EscapeString(hotel.Name), hotel.Total, hotel.Currency, hotel.URL)
		s.reply(ctx, ev.ChatID, text)
	}
	s.replyWithKeyboard(ctx, ev.ChatID, msgNextAction, mainMenuKeyboard())
}

func (s *Service) handleCallback(ctx context.Context, ev telegram.Event) {
	if err := s.bot.AnswerCallbackQuery(ctx, ev.CallbackID, ""); err != nil {
		s.logger.Error("answer callback failed", slog.String("error", err.Error()))
	}

	switch ev.Data {
	case telegram.CallbackConfirmClearHistory:
		if err := s.history.Clear(ctx, ev.UserID); err != nil {
			s.logger.Error("history clear failed",
				slog.Int64("user_id", ev.UserID),
				slog.String("error", err.Error()))
			s.editMessage(ctx, ev, msgClearFailed)
			return
		}
		s.editMessage(ctx, ev, msgHistoryCleared)
	case telegram.CallbackCancelClearHistory:
		s.editMessage(ctx, ev, msgClearCancelled)
	}
}

// Построение запросов к API из накопленных полей сессии: чистое
// отображение без побочных эффектов.

func buildNameQuery(session *Session) kinopoisk.NameQuery {
	return kinopoisk.NameQuery{Query: session.Name, Limit: session.Count}
}

func buildRatingQuery(session *Session) kinopoisk.RatingQuery {
	return kinopoisk.RatingQuery{
		MinRating: session.MinRating,
		MaxRating: session.MaxRating,
		Genre:     session.Genre,
		Limit:     session.Count,
	}
}

func buildBudgetQuery(session *Session) kinopoisk.BudgetQuery {
	return kinopoisk.BudgetQuery{
		BudgetLow:  session.BudgetLow,
		BudgetHigh: session.BudgetHigh,
		Genre:      session.Genre,
		Limit:      session.Count,
	}
}

// historyParams собирает запись истории из тех же провалидированных
// значений, что ушли в запрос к API.
func historyParams(session *Session) (history.SearchType, history.SearchParams) {
	switch session.Flow {
	case FlowRating:
		return history.TypeRating, history.SearchParams{
			MinRating: session.MinRating,
			MaxRating: session.MaxRating,
			Genre:     session.Genre,
			Count:     session.Count,
		}
	case FlowBudget:
		return history.TypeBudget, history.SearchParams{
			BudgetLow:  session.BudgetLow,
			BudgetHigh: session.BudgetHigh,
			Genre:      session.Genre,
			Count:      session.Count,
		}
	default:
		return history.TypeName, history.SearchParams{
			Name:  session.Name,
			Count: session.Count,
		}
	}
}

func (s *Service) reply(ctx context.Context, chatID int64, text string) {
	if err := s.bot.SendMessage(ctx, chatID, text); err != nil {
		s.logger.Error("send message failed", slog.String("error", err.Error()))
	}
}

func (s *Service) replyWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *telegram.ReplyKeyboardMarkup) {
	if err := s.bot.SendMessageWithKeyboard(ctx, chatID, text, keyboard); err != nil {
		s.logger.Error("send message failed", slog.String("error", err.Error()))
	}
}

func (s *Service) replyValidation(ctx context.Context, chatID int64, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		s.reply(ctx, chatID, ve.Message)
		return
	}
	s.reply(ctx, chatID, msgUseMenu)
}

func (s *Service) editMessage(ctx context.Context, ev telegram.Event, text string) {
	if err := s.bot.EditMessageText(ctx, ev.ChatID, ev.MessageID, text); err != nil {
		s.logger.Error("edit message failed", slog.String("error", err.Error()))
	}
}
