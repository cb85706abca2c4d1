package bot

import "sync"

// Flow — тип активного диалога.
type Flow string

const (
	FlowName   Flow = "name"
	FlowRating Flow = "rating"
	FlowBudget Flow = "budget"
	FlowHotels Flow = "hotels"
)

// State — текущий шаг диалога: какой ввод бот ждёт от пользователя.
type State int

const (
	StateAwaitingName State = iota
	StateAwaitingRating
	StateAwaitingGenre
	StateAwaitingBudgetType
	StateAwaitingCount
	StateAwaitingCity
)

// Session — состояние одного незавершённого диалога пользователя.
// У пользователя не бывает двух активных диалогов: запуск нового
// вытесняет предыдущий. Поля заполняются по мере прохождения шагов
// уже провалидированными значениями.
type Session struct {
	Flow  Flow
	State State

	Name       string
	MinRating  float64
	MaxRating  float64
	Genre      *string
	BudgetLow  int64
	BudgetHigh int64
	Count      int
	City       string
}

// SessionStore — потокобезопасное in-memory хранилище сессий,
// ключом служит идентификатор пользователя. Сессии не переживают
// рестарт процесса: диалоги короткие, начать заново не проблема.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

func (s *SessionStore) Get(userID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	return session, ok
}

func (s *SessionStore) Put(userID int64, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[userID] = session
}

func (s *SessionStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
}
