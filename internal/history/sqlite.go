package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS search_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	search_type TEXT NOT NULL,
	search_params TEXT NOT NULL,
	timestamp TEXT NOT NULL
)`

// SQLiteStore хранит историю поиска в локальном файле SQLite.
// Одна таблица, запись только добавлением; порядок выдачи — по
// убыванию id, который монотонно растёт.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite открывает (или создаёт) базу истории и гарантирует
// наличие таблицы. Безопасно вызывать повторно.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}

	// SQLite поддерживает только одного писателя.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, userID int64, searchType SearchType, params SearchParams) error {
	blob, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal search params: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_history (user_id, search_type, search_params, timestamp)
		VALUES (?, ?, ?, ?)`,
		userID, string(searchType), string(blob), timestamp,
	)
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, userID int64, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, search_type, search_params, timestamp
		FROM search_history
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			searchType string
			blob       string
			timestamp  string
		)
		if err := rows.Scan(&entry.ID, &searchType, &blob, &timestamp); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		entry.UserID = userID
		entry.Type = SearchType(searchType)
		if err := json.Unmarshal([]byte(blob), &entry.Params); err != nil {
			return nil, fmt.Errorf("decode search params: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse history timestamp: %w", err)
		}
		entry.Timestamp = parsed

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM search_history WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
