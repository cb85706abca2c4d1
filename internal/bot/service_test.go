package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kinobot/internal/booking"
	"kinobot/internal/history"
	"kinobot/internal/kinopoisk"
	"kinobot/internal/telegram"
	"log/slog"
)

type sentMessage struct {
	text     string
	photoURL string
}

type stubBot struct {
	messages []sentMessage
	edits    []string
	answered []string
}

func (b *stubBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	b.messages = append(b.messages, sentMessage{text: text})
	return nil
}

func (b *stubBot) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *telegram.ReplyKeyboardMarkup) error {
	b.messages = append(b.messages, sentMessage{text: text})
	return nil
}

func (b *stubBot) SendMessageWithInlineKeyboard(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error {
	b.messages = append(b.messages, sentMessage{text: text})
	return nil
}

func (b *stubBot) SendPhoto(ctx context.Context, chatID int64, photoURL string, caption string) error {
	b.messages = append(b.messages, sentMessage{text: caption, photoURL: photoURL})
	return nil
}

func (b *stubBot) EditMessageText(ctx context.Context, chatID int64, messageID int64, text string) error {
	b.edits = append(b.edits, text)
	return nil
}

func (b *stubBot) AnswerCallbackQuery(ctx context.Context, callbackQueryID string, text string) error {
	b.answered = append(b.answered, callbackQueryID)
	return nil
}

func (b *stubBot) lastText() string {
	if len(b.messages) == 0 {
		return ""
	}
	return b.messages[len(b.messages)-1].text
}

type stubSearch struct {
	docs []kinopoisk.MovieDoc
	err  error

	nameQuery   *kinopoisk.NameQuery
	ratingQuery *kinopoisk.RatingQuery
	budgetQuery *kinopoisk.BudgetQuery
}

func (s *stubSearch) SearchByName(ctx context.Context, q kinopoisk.NameQuery) ([]kinopoisk.MovieDoc, error) {
	s.nameQuery = &q
	return s.docs, s.err
}

func (s *stubSearch) SearchByRating(ctx context.Context, q kinopoisk.RatingQuery) ([]kinopoisk.MovieDoc, error) {
	s.ratingQuery = &q
	return s.docs, s.err
}

func (s *stubSearch) SearchByBudget(ctx context.Context, q kinopoisk.BudgetQuery) ([]kinopoisk.MovieDoc, error) {
	s.budgetQuery = &q
	return s.docs, s.err
}

type stubHotels struct {
	hotels []booking.Hotel
	err    error
}

func (s *stubHotels) SearchHotels(ctx context.Context, q booking.HotelQuery) ([]booking.Hotel, error) {
	return s.hotels, s.err
}

type historyRecord struct {
	userID     int64
	searchType history.SearchType
	params     history.SearchParams
}

type stubHistory struct {
	records   []historyRecord
	appendErr error
	cleared   []int64
}

func (s *stubHistory) Append(ctx context.Context, userID int64, searchType history.SearchType, params history.SearchParams) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.records = append(s.records, historyRecord{userID: userID, searchType: searchType, params: params})
	return nil
}

func (s *stubHistory) List(ctx context.Context, userID int64, limit int) ([]history.Entry, error) {
	var entries []history.Entry
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if rec.userID != userID || len(entries) >= limit {
			continue
		}
		entries = append(entries, history.Entry{
			ID:        int64(i + 1),
			UserID:    rec.userID,
			Type:      rec.searchType,
			Params:    rec.params,
			Timestamp: time.Now().UTC(),
		})
	}
	return entries, nil
}

func (s *stubHistory) Clear(ctx context.Context, userID int64) error {
	s.cleared = append(s.cleared, userID)
	var kept []historyRecord
	for _, rec := range s.records {
		if rec.userID != userID {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	return nil
}

type fixture struct {
	service *Service
	bot     *stubBot
	search  *stubSearch
	history *stubHistory
	hotels  *stubHotels
}

func newFixture() *fixture {
	f := &fixture{
		bot:     &stubBot{},
		search:  &stubSearch{},
		history: &stubHistory{},
		hotels:  &stubHotels{},
	}
	f.service = NewService(Deps{
		Bot:          f.bot,
		Search:       f.search,
		Hotels:       f.hotels,
		History:      f.history,
		Logger:       slog.New(slog.NewTextHandler(discard{}, nil)),
		HistoryLimit: 20,
	})
	return f
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

const testUser = int64(42)

func buttonEvent(text string) telegram.Event {
	return telegram.Event{Kind: telegram.EventButton, UserID: testUser, ChatID: testUser, Text: text}
}

func textEvent(text string) telegram.Event {
	return telegram.Event{Kind: telegram.EventText, UserID: testUser, ChatID: testUser, Text: text}
}

func commandEvent(cmd string) telegram.Event {
	return telegram.Event{Kind: telegram.EventCommand, UserID: testUser, ChatID: testUser, Command: cmd}
}

func callbackEvent(data string) telegram.Event {
	return telegram.Event{Kind: telegram.EventCallback, UserID: testUser, ChatID: testUser, MessageID: 7, CallbackID: "cb1", Data: data}
}

func TestNameFlowEndToEnd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.search.docs = []kinopoisk.MovieDoc{
		{Name: "Inception", Description: "Сон во сне", Year: 2010},
		{Name: "Inception 2"},
	}

	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonSearchByName))
	f.service.Dispatch(ctx, textEvent("Inception"))
	f.service.Dispatch(ctx, textEvent("3"))

	if f.search.nameQuery == nil {
		t.Fatal("search was not invoked")
	}
	if f.search.nameQuery.Query != "Inception" || f.search.nameQuery.Limit != 3 {
		t.Fatalf("unexpected query: %+v", f.search.nameQuery)
	}

	var cards int
	for _, msg := range f.bot.messages {
		if strings.Contains(msg.text, "Название:") {
			cards++
		}
	}
	if cards != 2 {
		t.Fatalf("expected 2 movie cards, got %d", cards)
	}

	if len(f.history.records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(f.history.records))
	}
	rec := f.history.records[0]
	if rec.searchType != history.TypeName {
		t.Fatalf("unexpected search type %q", rec.searchType)
	}
	if rec.params.Name != "Inception" || rec.params.Count != 3 {
		t.Fatalf("unexpected params: %+v", rec.params)
	}

	// Сессия завершена: произвольный текст больше не ответ диалога.
	if _, ok := f.service.sessions.Get(testUser); ok {
		t.Fatal("session should be removed after terminal step")
	}
}

func TestRatingFlowNoResults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonSearchByRating))
	f.service.Dispatch(ctx, textEvent("7-9.5"))
	f.service.Dispatch(ctx, textEvent("drama"))
	f.service.Dispatch(ctx, textEvent("5"))

	q := f.search.ratingQuery
	if q == nil {
		t.Fatal("search was not invoked")
	}
	if q.MinRating != 7.0 || q.MaxRating != 9.5 {
		t.Fatalf("unexpected rating range %g-%g", q.MinRating, q.MaxRating)
	}
	if q.Genre == nil || *q.Genre != "drama" {
		t.Fatalf("unexpected genre: %v", q.Genre)
	}
	if q.Limit != 5 {
		t.Fatalf("unexpected limit %d", q.Limit)
	}

	if f.bot.lastText() != msgNoResults {
		t.Fatalf("expected no-results message, got %q", f.bot.lastText())
	}
	if len(f.history.records) != 0 {
		t.Fatal("no history entry expected for empty response")
	}
}

func TestBudgetFlowAnyGenre(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.search.docs = []kinopoisk.MovieDoc{{Name: "Фильм"}}

	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonSearchByBudget))
	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonLowBudget))
	f.service.Dispatch(ctx, textEvent("любой"))
	f.service.Dispatch(ctx, textEvent("10"))

	q := f.search.budgetQuery
	if q == nil {
		t.Fatal("search was not invoked")
	}
	if q.BudgetLow != 0 || q.BudgetHigh != 1_500_000 {
		t.Fatalf("unexpected budget range %d-%d", q.BudgetLow, q.BudgetHigh)
	}
	if q.Genre != nil {
		t.Fatalf("expected nil genre filter, got %q", *q.Genre)
	}

	if len(f.history.records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(f.history.records))
	}
	params := f.history.records[0].params
	if params.BudgetLow != 0 || params.BudgetHigh != 1_500_000 || params.Genre != nil || params.Count != 10 {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestCancelMidFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonSearchByRating))
	f.service.Dispatch(ctx, textEvent("7"))
	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonCancel))

	if _, ok := f.service.sessions.Get(testUser); ok {
		t.Fatal("session should be removed on cancel")
	}
	if f.bot.lastText() != msgCancelled {
		t.Fatalf("expected cancellation message, got %q", f.bot.lastText())
	}
	if f.search.ratingQuery != nil {
		t.Fatal("search must not run after cancel")
	}
}

func TestInvalidCountKeepsState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.search.docs = []kinopoisk.MovieDoc{{Name: "Фильм"}}

	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonSearchByName))
	f.service.Dispatch(ctx, textEvent("Дюна"))
	f.service.Dispatch(ctx, textEvent("abc"))
	f.service.Dispatch(ctx, textEvent("300"))

	session, ok := f.service.sessions.Get(testUser)
	if !ok {
		t.Fatal("session should survive invalid input")
	}
	if session.State != StateAwaitingCount {
		t.Fatalf("expected count state, got %d", session.State)
	}
	if f.search.nameQuery != nil {
		t.Fatal("search must not run on invalid count")
	}

	f.service.Dispatch(ctx, textEvent("2"))
	if f.search.nameQuery == nil || f.search.nameQuery.Limit != 2 {
		t.Fatalf("expected search with limit 2, got %+v", f.search.nameQuery)
	}
}

func TestCollaboratorFaultFoldsToNoResults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.search.err = errors.New("upstream down")

	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonSearchByName))
	f.service.Dispatch(ctx, textEvent("Дюна"))
	f.service.Dispatch(ctx, textEvent("1"))

	if f.bot.lastText() != msgNoResults {
		t.Fatalf("expected no-results message, got %q", f.bot.lastText())
	}
	if len(f.history.records) != 0 {
		t.Fatal("no history entry expected on collaborator fault")
	}
}

func TestHistoryAppendFaultDoesNotBlockResults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.search.docs = []kinopoisk.MovieDoc{{Name: "Фильм"}}
	f.history.appendErr = errors.New("disk full")

	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonSearchByName))
	f.service.Dispatch(ctx, textEvent("Дюна"))
	f.service.Dispatch(ctx, textEvent("1"))

	var cards int
	for _, msg := range f.bot.messages {
		if strings.Contains(msg.text, "Название:") {
			cards++
		}
	}
	if cards != 1 {
		t.Fatalf("results must be delivered despite history fault, got %d cards", cards)
	}
	if f.bot.lastText() != msgNextAction {
		t.Fatalf("expected menu prompt, got %q", f.bot.lastText())
	}
}

func TestHistoryViewAndClear(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.history.records = []historyRecord{
		{userID: testUser, searchType: history.TypeName, params: history.SearchParams{Name: "Дюна", Count: 3}},
	}

	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonHistory))
	if !strings.Contains(f.bot.lastText(), "Дюна") {
		t.Fatalf("history text should mention the search, got %q", f.bot.lastText())
	}

	f.service.Dispatch(ctx, callbackEvent(telegram.CallbackConfirmClearHistory))
	if len(f.bot.answered) != 1 {
		t.Fatal("callback query must be answered")
	}
	if len(f.history.cleared) != 1 || f.history.cleared[0] != testUser {
		t.Fatalf("expected clear for user %d, got %v", testUser, f.history.cleared)
	}
	if len(f.bot.edits) != 1 || f.bot.edits[0] != msgHistoryCleared {
		t.Fatalf("expected cleared confirmation, got %v", f.bot.edits)
	}

	f.bot.edits = nil
	f.service.Dispatch(ctx, callbackEvent(telegram.CallbackCancelClearHistory))
	if len(f.bot.edits) != 1 || f.bot.edits[0] != msgClearCancelled {
		t.Fatalf("expected cancel confirmation, got %v", f.bot.edits)
	}
}

func TestEmptyHistory(t *testing.T) {
	f := newFixture()
	f.service.Dispatch(context.Background(), commandEvent("history"))
	if f.bot.lastText() != msgEmptyHistory {
		t.Fatalf("expected empty history message, got %q", f.bot.lastText())
	}
}

func TestNewFlowReplacesOldSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonSearchByName))
	f.service.Dispatch(ctx, buttonEvent(telegram.ButtonSearchByRating))

	session, ok := f.service.sessions.Get(testUser)
	if !ok {
		t.Fatal("expected active session")
	}
	if session.Flow != FlowRating || session.State != StateAwaitingRating {
		t.Fatalf("expected fresh rating session, got %+v", session)
	}
}

func TestHotelsFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.hotels.hotels = []booking.Hotel{
		{Name: "Hotel Astoria", Total: 120.5, Currency: "EUR", URL: "https://example.com/astoria"},
	}

	f.service.Dispatch(ctx, commandEvent("lowprice"))
	f.service.Dispatch(ctx, textEvent("Paris"))

	var found bool
	for _, msg := range f.bot.messages {
		if strings.Contains(msg.text, "Hotel Astoria") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected hotel card in replies")
	}
	if _, ok := f.service.sessions.Get(testUser); ok {
		t.Fatal("hotel session should end after result")
	}
}
